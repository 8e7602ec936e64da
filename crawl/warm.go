package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/docseek"
	"golang.org/x/sync/errgroup"
)

// Frontier configuration for breadth-first warming.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
	// DefaultMaxWarmPages limits the pages processed to prevent runaway crawls.
	DefaultMaxWarmPages = 1000
)

// Warmer pre-populates a cache collection with the pages of a site.
type Warmer struct {
	Sitemaps     docseek.SitemapService
	Pages        docseek.PageFetcher
	Cache        docseek.SemanticCache
	TokenCounter docseek.TokenCounter // optional

	Collection string

	// Concurrency is the number of sitemap pages processed at once.
	Concurrency int

	// MaxPages caps the pages fetched. Zero means DefaultMaxWarmPages.
	MaxPages int

	Logger *slog.Logger
}

// WarmResult holds the outcome of a warm crawl.
type WarmResult struct {
	Added   int
	Skipped int // pages without text or with text already added in this run
	Failed  int
	Bytes   int
	Tokens  int
}

// Warm adds the pages of the site at sourceURL to the cache.
//
// URLs come from the site's sitemap. When the sitemap lists nothing, Warm
// walks links breadth-first from sourceURL, staying on the same host and
// under the source path. Pages failing to fetch or embed are counted and
// skipped.
func (w *Warmer) Warm(ctx context.Context, sourceURL string, filter *docseek.URLFilter, progress ProgressFunc) (*WarmResult, error) {
	logger := loggerOrDiscard(w.Logger)

	if err := w.Cache.EnsureCollection(ctx, w.Collection); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	urls, err := w.Sitemaps.DiscoverURLs(ctx, sourceURL, filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("sitemap discovery failed, walking links instead", "url", sourceURL, "error", err)
		urls = nil
	}

	st := &warmState{
		warmer:   w,
		progress: progress,
		hashes:   make(map[string]bool),
	}
	if len(urls) == 0 {
		err = st.walk(ctx, sourceURL, filter)
	} else {
		err = st.sitemap(ctx, urls)
	}

	progress(ProgressEvent{
		Type:      ProgressFinished,
		Completed: st.completed,
		Total:     st.total,
	})
	return &st.result, err
}

func (w *Warmer) maxPages() int {
	if w.MaxPages > 0 {
		return w.MaxPages
	}
	return DefaultMaxWarmPages
}

// warmState accumulates the outcome of one Warm call.
// Progress callbacks run under mu, so they never overlap.
type warmState struct {
	warmer   *Warmer
	progress ProgressFunc

	mu        sync.Mutex
	result    WarmResult
	hashes    map[string]bool
	completed int
	total     int
}

// sitemap processes a known URL list concurrently.
func (st *warmState) sitemap(ctx context.Context, urls []string) error {
	if len(urls) > st.warmer.maxPages() {
		urls = urls[:st.warmer.maxPages()]
	}
	st.total = len(urls)
	st.progress(ProgressEvent{Type: ProgressStarted, Total: st.total})

	concurrency := st.warmer.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, u := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st.process(gctx, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// walk follows links breadth-first from sourceURL.
// Pages are processed sequentially to keep the frontier order meaningful.
func (st *warmState) walk(ctx context.Context, sourceURL string, filter *docseek.URLFilter) error {
	source, err := url.Parse(sourceURL)
	if err != nil || source.Host == "" {
		return docseek.Errorf(docseek.EINVALID, "invalid source URL %q", sourceURL)
	}
	pathPrefix := strings.TrimSuffix(source.Path, "/")

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(sourceURL)
	st.progress(ProgressEvent{Type: ProgressStarted})

	for processed := 0; processed < st.warmer.maxPages(); processed++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, ok := frontier.Pop()
		if !ok {
			break
		}

		page := st.process(ctx, next)
		if page == nil {
			continue
		}
		for _, link := range page.Links {
			if inScope(link.URL, source.Host, pathPrefix) && filter.Match(link.URL) {
				frontier.Push(link.URL)
			}
		}
	}

	return nil
}

// process fetches one page and adds it to the cache.
// Returns the fetched page, or nil if the fetch failed.
func (st *warmState) process(ctx context.Context, pageURL string) *docseek.Page {
	w := st.warmer
	logger := loggerOrDiscard(w.Logger)

	page, err := w.Pages.FetchPage(ctx, pageURL)
	if err != nil {
		st.fail(pageURL, err)
		return nil
	}

	if page.Text == "" || !st.claim(ComputeHash(page.Text)) {
		logger.Debug("skipping page", "url", page.URL, "empty", page.Text == "")
		st.mu.Lock()
		st.result.Skipped++
		st.completed++
		st.mu.Unlock()
		return page
	}

	if _, err := w.Cache.Add(ctx, w.Collection, page); err != nil {
		st.fail(pageURL, err)
		return page
	}

	tokens := 0
	if w.TokenCounter != nil {
		if n, err := w.TokenCounter.CountTokens(ctx, page.Text); err == nil {
			tokens = n
		}
	}

	st.mu.Lock()
	st.result.Added++
	st.result.Bytes += len(page.Text)
	st.result.Tokens += tokens
	st.completed++
	st.progress(ProgressEvent{Type: ProgressCompleted, Completed: st.completed, Total: st.total, URL: page.URL})
	st.mu.Unlock()

	return page
}

// claim records a content hash. Returns false if it was already recorded.
func (st *warmState) claim(hash string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.hashes[hash] {
		return false
	}
	st.hashes[hash] = true
	return true
}

func (st *warmState) fail(pageURL string, err error) {
	loggerOrDiscard(st.warmer.Logger).Warn("warm failed", "url", pageURL, "error", err)

	st.mu.Lock()
	st.result.Failed++
	st.completed++
	st.progress(ProgressEvent{Type: ProgressFailed, Completed: st.completed, Total: st.total, URL: pageURL, Error: err})
	st.mu.Unlock()
}

// inScope reports whether rawURL is on host and under pathPrefix.
func inScope(rawURL, host, pathPrefix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != host {
		return false
	}
	return pathPrefix == "" || u.Path == pathPrefix || strings.HasPrefix(u.Path, pathPrefix+"/")
}
