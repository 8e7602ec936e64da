// Package goquery implements HTML link and metadata extraction with goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docseek"
)

var _ docseek.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor extracts every anchor of a page in document order.
// It makes no assumption about the markup dialect of the site.
type LinkExtractor struct {
	// SameHostOnly drops links to hosts other than the page's own,
	// subdomains included.
	SameHostOnly bool
}

// NewLinkExtractor creates a LinkExtractor that keeps links to any host.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks parses HTML and returns absolute links in document order.
// Fragments are stripped and exact duplicate URLs are dropped, keeping the
// first occurrence. Links pointing back at baseURL itself are skipped.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]docseek.Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, docseek.Errorf(docseek.EINVALID, "invalid base URL: %q", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "failed to parse HTML: %v", err)
	}

	// <base href> overrides the document URL for resolution.
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}
	self := docseek.StripFragment(baseURL)

	seen := make(map[string]bool)
	links := []docseek.Link{}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || resolved == self {
			return
		}
		if e.SameHostOnly && !isSameHost(base, resolved) {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true

		title, _ := sel.Attr("title")
		links = append(links, docseek.Link{
			URL:   resolved,
			Text:  collapseSpace(sel.Text()),
			Title: strings.TrimSpace(title),
		})
	})

	return links, nil
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed or is not HTTP(S).
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// isSameHost checks if the resolved URL has the same host as the base URL.
// This uses exact host matching - subdomains are considered different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
