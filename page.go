package docseek

import (
	"context"
	"strings"
)

// Page represents a fetched page of the site.
// Pages are never mutated after creation; a fresh fetch produces a new Page.
type Page struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Text        string `json:"text"` // Markdown
	Links       []Link `json:"links,omitempty"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// Link is an outbound link found on a page, in document order.
type Link struct {
	URL   string `json:"url"`
	Text  string `json:"text,omitempty"`
	Title string `json:"title,omitempty"`
}

// Equal reports whether two links point to the same URL.
func (l Link) Equal(other Link) bool {
	return l.URL == other.URL
}

// StripFragment removes the #fragment part of a URL.
// URLs differing only by fragment address the same page.
func StripFragment(rawURL string) string {
	if idx := strings.Index(rawURL, "#"); idx != -1 {
		return rawURL[:idx]
	}
	return rawURL
}

// PageFetcher retrieves a page and extracts its text and outbound links.
type PageFetcher interface {
	// FetchPage retrieves the page at url.
	// Returns EFETCH if the request fails or the status is not successful.
	// Page.Links contains only absolute URLs.
	FetchPage(ctx context.Context, url string) (*Page, error)
}

// LinkExtractor extracts outbound links from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns links in document order.
	// The baseURL is used to resolve relative URLs.
	ExtractLinks(html string, baseURL string) ([]Link, error)
}
