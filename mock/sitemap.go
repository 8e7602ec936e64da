package mock

import (
	"context"

	"github.com/fwojciec/docseek"
)

var _ docseek.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of docseek.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *docseek.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *docseek.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
