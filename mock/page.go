package mock

import (
	"context"

	"github.com/fwojciec/docseek"
)

var _ docseek.PageFetcher = (*PageFetcher)(nil)

// PageFetcher is a mock implementation of docseek.PageFetcher.
type PageFetcher struct {
	FetchPageFn func(ctx context.Context, url string) (*docseek.Page, error)
}

func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*docseek.Page, error) {
	return f.FetchPageFn(ctx, url)
}

var _ docseek.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of docseek.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]docseek.Link, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]docseek.Link, error) {
	return e.ExtractLinksFn(html, baseURL)
}
