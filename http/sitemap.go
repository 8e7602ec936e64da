package http

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docseek"
)

// MaxSitemaps bounds the sitemap documents read in one discovery, indexes
// included.
const MaxSitemaps = 64

var _ docseek.SitemapService = (*SitemapService)(nil)

// SitemapService lists the pages a site advertises in its sitemaps.
// It is the warm-up source of page URLs; the link walk is the fallback.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns the page URLs advertised for siteURL, fragment-free,
// deduplicated and in sitemap order. Sitemaps are taken from the robots.txt
// Sitemap directives, or /sitemap.xml when robots.txt names none. A site
// with no sitemap yields an empty slice.
//
// A path in siteURL scopes the result: https://x.test/docs keeps /docs and
// /docs/... but not /documentation.
func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string, filter *docseek.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	site, err := url.Parse(siteURL)
	if err != nil || site.Host == "" {
		return nil, docseek.Errorf(docseek.EINVALID, "invalid site URL %q", siteURL)
	}

	d := &discovery{
		svc:      s,
		prefix:   strings.TrimSuffix(site.Path, "/"),
		filter:   filter,
		sitemaps: make(map[string]bool),
		pages:    make(map[string]bool),
		urls:     []string{},
	}

	roots, err := s.robotsSitemaps(ctx, site)
	if err != nil {
		return nil, err
	}
	fallback := len(roots) == 0
	if fallback {
		roots = []string{site.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}
	}

	for _, root := range roots {
		if err := d.read(ctx, root); err != nil {
			if fallback && docseek.ErrorCode(err) == docseek.ENOTFOUND {
				return []string{}, nil
			}
			return nil, err
		}
	}
	return d.urls, nil
}

// robotsSitemaps returns the Sitemap directives of the site's robots.txt.
// A missing or unreadable robots.txt yields none.
func (s *SitemapService) robotsSitemaps(ctx context.Context, site *url.URL) ([]string, error) {
	body, err := s.get(ctx, site.ResolveReference(&url.URL{Path: "/robots.txt"}).String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			sitemaps = append(sitemaps, v)
		}
	}
	return sitemaps, nil
}

func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "invalid URL %q: %v", target, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, docseek.Errorf(docseek.EFETCH, "GET %s: %v", target, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, docseek.Errorf(docseek.ENOTFOUND, "no sitemap at %s", target)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, docseek.Errorf(docseek.EFETCH, "HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}

// discovery accumulates page URLs across the sitemaps of one site.
type discovery struct {
	svc      *SitemapService
	prefix   string
	filter   *docseek.URLFilter
	sitemaps map[string]bool
	pages    map[string]bool
	urls     []string
}

// read collects the pages of one sitemap, descending into sitemap indexes.
func (d *discovery) read(ctx context.Context, sitemapURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.sitemaps[sitemapURL] || len(d.sitemaps) >= MaxSitemaps {
		return nil
	}
	d.sitemaps[sitemapURL] = true

	body, err := d.svc.get(ctx, sitemapURL)
	if err != nil {
		return err
	}
	doc := etree.NewDocument()
	_, err = doc.ReadFrom(body)
	body.Close()
	if err != nil {
		return docseek.Errorf(docseek.EINVALID, "malformed sitemap %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return docseek.Errorf(docseek.EINVALID, "empty sitemap %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		// A broken child sitemap is skipped.
		for _, child := range locs(root, "sitemap") {
			if err := d.read(ctx, child); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
		return nil
	}

	for _, loc := range locs(root, "url") {
		d.add(loc)
	}
	return nil
}

func (d *discovery) add(rawURL string) {
	u := docseek.StripFragment(rawURL)
	if d.pages[u] {
		return
	}
	d.pages[u] = true
	if !underPrefix(u, d.prefix) || !d.filter.Match(u) {
		return
	}
	d.urls = append(d.urls, u)
}

// locs returns the non-empty <loc> texts of root's children named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// underPrefix reports whether rawURL's path is prefix or lies below it.
// An empty prefix matches everything.
func underPrefix(rawURL, prefix string) bool {
	if prefix == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}
