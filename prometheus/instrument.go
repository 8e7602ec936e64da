package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/docseek"
)

// Ensure instrumented services implement their interfaces.
var (
	_ docseek.PageFetcher   = (*PageFetcher)(nil)
	_ docseek.SemanticCache = (*SemanticCache)(nil)
	_ docseek.Oracle        = (*Oracle)(nil)
)

// PageFetcher counts and times page fetches.
type PageFetcher struct {
	next    docseek.PageFetcher
	metrics *Metrics
}

// InstrumentPageFetcher wraps next with fetch metrics.
func (m *Metrics) InstrumentPageFetcher(next docseek.PageFetcher) *PageFetcher {
	return &PageFetcher{next: next, metrics: m}
}

// FetchPage delegates to the wrapped fetcher.
func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*docseek.Page, error) {
	begin := time.Now()
	page, err := f.next.FetchPage(ctx, url)
	f.metrics.fetchDuration.Observe(since(begin))
	f.metrics.fetchesTotal.WithLabelValues(status(err)).Inc()
	if page != nil {
		f.metrics.fetchBytes.Add(float64(len(page.Text)))
	}
	return page, err
}

// SemanticCache counts cache searches and adds and records the best score.
type SemanticCache struct {
	next    docseek.SemanticCache
	metrics *Metrics
}

// InstrumentCache wraps next with cache metrics.
func (m *Metrics) InstrumentCache(next docseek.SemanticCache) *SemanticCache {
	return &SemanticCache{next: next, metrics: m}
}

// EnsureCollection delegates to the wrapped cache.
func (c *SemanticCache) EnsureCollection(ctx context.Context, name string) error {
	return c.next.EnsureCollection(ctx, name)
}

// Search delegates to the wrapped cache.
func (c *SemanticCache) Search(ctx context.Context, collection string, query string, topK int) ([]docseek.CacheMatch, error) {
	matches, err := c.next.Search(ctx, collection, query, topK)
	c.metrics.cacheSearches.WithLabelValues(status(err)).Inc()
	if len(matches) > 0 {
		c.metrics.cacheScore.Observe(matches[0].Score)
	}
	return matches, err
}

// Add delegates to the wrapped cache.
func (c *SemanticCache) Add(ctx context.Context, collection string, page *docseek.Page) (*docseek.CacheEntry, error) {
	entry, err := c.next.Add(ctx, collection, page)
	c.metrics.cacheAdds.WithLabelValues(status(err)).Inc()
	return entry, err
}

// Count delegates to the wrapped cache.
func (c *SemanticCache) Count(ctx context.Context, collection string) (int, error) {
	return c.next.Count(ctx, collection)
}

// Oracle counts and times model calls.
type Oracle struct {
	next    docseek.Oracle
	metrics *Metrics
}

// InstrumentOracle wraps next with oracle metrics.
func (m *Metrics) InstrumentOracle(next docseek.Oracle) *Oracle {
	return &Oracle{next: next, metrics: m}
}

// ExtractAnswer delegates to the wrapped oracle.
func (o *Oracle) ExtractAnswer(ctx context.Context, question, pageText string) (string, error) {
	begin := time.Now()
	answer, err := o.next.ExtractAnswer(ctx, question, pageText)
	o.observe("extract", begin, err)
	return answer, err
}

// RankLinks delegates to the wrapped oracle.
func (o *Oracle) RankLinks(ctx context.Context, question string, candidates []docseek.Link) (docseek.Link, error) {
	begin := time.Now()
	link, err := o.next.RankLinks(ctx, question, candidates)
	o.observe("rank", begin, err)
	return link, err
}

func (o *Oracle) observe(op string, begin time.Time, err error) {
	o.metrics.oracleDuration.WithLabelValues(op).Observe(since(begin))
	o.metrics.oracleCalls.WithLabelValues(op, status(err)).Inc()
}
