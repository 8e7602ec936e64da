package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docseek"
)

// Ensure LoggingFetcher implements docseek.Fetcher.
var _ docseek.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   docseek.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docseek.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingPageFetcher implements docseek.PageFetcher.
var _ docseek.PageFetcher = (*LoggingPageFetcher)(nil)

// LoggingPageFetcher wraps a PageFetcher with logging.
type LoggingPageFetcher struct {
	next   docseek.PageFetcher
	logger *slog.Logger
}

// NewLoggingPageFetcher creates a new LoggingPageFetcher.
func NewLoggingPageFetcher(next docseek.PageFetcher, logger *slog.Logger) *LoggingPageFetcher {
	return &LoggingPageFetcher{next: next, logger: logger}
}

// FetchPage delegates to the wrapped fetcher and logs the page size.
func (f *LoggingPageFetcher) FetchPage(ctx context.Context, url string) (page *docseek.Page, err error) {
	defer func(begin time.Time) {
		var text, links int
		if page != nil {
			text, links = len(page.Text), len(page.Links)
		}
		f.logger.Info("fetch page",
			"url", url,
			"text", text,
			"links", links,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchPage(ctx, url)
}
