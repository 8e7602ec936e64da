package docseek

import (
	"context"
	"regexp"
	"slices"
)

// SitemapService lists the page URLs a site advertises in its sitemaps.
type SitemapService interface {
	// DiscoverURLs returns the fragment-free page URLs of siteURL that pass
	// filter, in sitemap order. A site without a sitemap yields an empty
	// slice and no error.
	DiscoverURLs(ctx context.Context, siteURL string, filter *URLFilter) ([]string, error)
}

// URLFilter narrows the pages a warm-up visits.
type URLFilter struct {
	// Include, when non-empty, keeps only URLs matching one of its patterns.
	Include []*regexp.Regexp

	// Exclude drops URLs matching any of its patterns, after Include.
	Exclude []*regexp.Regexp
}

// Match reports whether url passes the filter. A nil filter passes all.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	matches := func(re *regexp.Regexp) bool { return re.MatchString(url) }
	if len(f.Include) > 0 && !slices.ContainsFunc(f.Include, matches) {
		return false
	}
	return !slices.ContainsFunc(f.Exclude, matches)
}
