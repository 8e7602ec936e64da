package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docseek"
)

// Ensure LoggingSitemapService implements docseek.SitemapService.
var _ docseek.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   docseek.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next docseek.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs logs how many URLs the sitemap yielded for baseURL.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *docseek.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("sitemap",
			"url", baseURL,
			"filtered", filter != nil,
			"urls", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
