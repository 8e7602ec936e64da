package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docseek"
)

// Ensure LoggingCache implements docseek.SemanticCache.
var _ docseek.SemanticCache = (*LoggingCache)(nil)

// LoggingCache wraps a SemanticCache with logging.
type LoggingCache struct {
	next   docseek.SemanticCache
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next docseek.SemanticCache, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

// EnsureCollection delegates to the wrapped cache.
func (c *LoggingCache) EnsureCollection(ctx context.Context, name string) (err error) {
	defer func(begin time.Time) {
		c.logger.Debug("ensure collection",
			"collection", name,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.EnsureCollection(ctx, name)
}

// Search logs the best match found for query.
func (c *LoggingCache) Search(ctx context.Context, collection string, query string, topK int) (matches []docseek.CacheMatch, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"collection", collection,
			"query", query,
			"matches", len(matches),
		}
		if len(matches) > 0 && matches[0].Entry != nil {
			attrs = append(attrs, "top_url", matches[0].Entry.Page.URL, "top_score", matches[0].Score)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		c.logger.Info("cache search", attrs...)
	}(time.Now())
	return c.next.Search(ctx, collection, query, topK)
}

// Add logs the page stored in the cache.
func (c *LoggingCache) Add(ctx context.Context, collection string, page *docseek.Page) (entry *docseek.CacheEntry, err error) {
	defer func(begin time.Time) {
		var url string
		if page != nil {
			url = page.URL
		}
		c.logger.Info("cache add",
			"collection", collection,
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Add(ctx, collection, page)
}

// Count delegates to the wrapped cache.
func (c *LoggingCache) Count(ctx context.Context, collection string) (int, error) {
	return c.next.Count(ctx, collection)
}
