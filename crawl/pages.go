package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docseek"
)

// Compile-time interface verification.
var _ docseek.PageFetcher = (*Pages)(nil)

// Pages fetches a URL and turns it into a docseek.Page: links come from the
// raw HTML, text from the extracted main content converted to markdown.
type Pages struct {
	Fetcher     docseek.Fetcher
	Extractor   docseek.Extractor
	Converter   docseek.Converter
	Links       docseek.LinkExtractor
	RateLimiter docseek.DomainLimiter // optional

	// RetryDelays enables retries of failed fetches. Nil means one attempt.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// FetchPage retrieves the page at rawURL.
// Fetch failures return EFETCH. Content extraction failures are logged and
// leave Page.Text empty; the links are still usable.
func (p *Pages) FetchPage(ctx context.Context, rawURL string) (*docseek.Page, error) {
	logger := loggerOrDiscard(p.Logger)

	pageURL := docseek.StripFragment(rawURL)
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, docseek.Errorf(docseek.EFETCH, "cannot fetch %q: not an absolute HTTP URL", rawURL)
	}

	if p.RateLimiter != nil {
		if err := p.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, docseek.Errorf(docseek.EFETCH, "fetch %s: %v", pageURL, err)
		}
	}

	fetch := func(ctx context.Context, url string) (string, error) {
		return p.Fetcher.Fetch(ctx, url)
	}
	html, err := FetchWithRetryDelays(ctx, pageURL, fetch, logger, p.RetryDelays)
	if err != nil {
		if docseek.ErrorCode(err) == docseek.EFETCH {
			return nil, err
		}
		return nil, docseek.Errorf(docseek.EFETCH, "fetch %s: %v", pageURL, err)
	}

	page := &docseek.Page{URL: pageURL}

	links, err := p.Links.ExtractLinks(html, pageURL)
	if err != nil {
		logger.Warn("link extraction failed", "url", pageURL, "error", err)
	}
	page.Links = dedupeLinks(links)

	extracted, err := p.Extractor.Extract(html)
	if err != nil {
		logger.Warn("content extraction failed", "url", pageURL, "error", err)
		return page, nil
	}
	page.Title = extracted.Title
	page.Description = extracted.Description

	markdown, err := p.Converter.Convert(extracted.ContentHTML, pageURL)
	if err != nil {
		logger.Warn("markdown conversion failed", "url", pageURL, "error", err)
		return page, nil
	}
	page.Text = strings.TrimSpace(markdown)

	return page, nil
}

// dedupeLinks drops fragments and exact duplicate URLs, keeping the first
// occurrence.
func dedupeLinks(links []docseek.Link) []docseek.Link {
	seen := make(map[string]bool, len(links))
	out := make([]docseek.Link, 0, len(links))
	for _, l := range links {
		l.URL = docseek.StripFragment(l.URL)
		if l.URL == "" || seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		out = append(out, l)
	}
	return out
}
