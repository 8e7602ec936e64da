package crawl_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/crawl"
	"github.com/fwojciec/docseek/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sitemapOf(urls ...string) *mock.SitemapService {
	return &mock.SitemapService{
		DiscoverURLsFn: func(context.Context, string, *docseek.URLFilter) ([]string, error) {
			return urls, nil
		},
	}
}

func TestWarmer_Warm(t *testing.T) {
	t.Parallel()

	t.Run("adds sitemap pages", func(t *testing.T) {
		t.Parallel()

		s := newSite(
			page("https://x.test/a", "alpha"),
			page("https://x.test/b", "beta"),
		)
		c := &memCache{}
		w := &crawl.Warmer{
			Sitemaps:    sitemapOf("https://x.test/a", "https://x.test/b", "https://x.test/gone"),
			Pages:       s.fetcher(),
			Cache:       c.mock(),
			Collection:  "pages",
			Concurrency: 2,
			TokenCounter: &mock.TokenCounter{
				CountTokensFn: func(_ context.Context, text string) (int, error) {
					return len(text), nil
				},
			},
		}
		var mu sync.Mutex
		var types []crawl.ProgressType

		result, err := w.Warm(context.Background(), "https://x.test/", nil, func(ev crawl.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			types = append(types, ev.Type)
		})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, len("alpha")+len("beta"), result.Bytes)
		assert.Equal(t, len("alpha")+len("beta"), result.Tokens)
		assert.ElementsMatch(t, []string{"https://x.test/a", "https://x.test/b"}, c.AddedURLs())
		require.Len(t, types, 5)
		assert.Equal(t, crawl.ProgressStarted, types[0])
		assert.Equal(t, crawl.ProgressFinished, types[4])
	})

	t.Run("skips empty and duplicate content", func(t *testing.T) {
		t.Parallel()

		s := newSite(
			page("https://x.test/a", "same"),
			page("https://x.test/b", "same"),
			page("https://x.test/c", ""),
		)
		c := &memCache{}
		w := &crawl.Warmer{
			Sitemaps:   sitemapOf("https://x.test/a", "https://x.test/b", "https://x.test/c"),
			Pages:      s.fetcher(),
			Cache:      c.mock(),
			Collection: "pages",
		}

		result, err := w.Warm(context.Background(), "https://x.test/", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Added)
		assert.Equal(t, 2, result.Skipped)
		assert.Equal(t, []string{"https://x.test/a"}, c.AddedURLs())
	})

	t.Run("counts embedding failures", func(t *testing.T) {
		t.Parallel()

		s := newSite(page("https://x.test/a", "alpha"))
		c := &memCache{addErr: docseek.Errorf(docseek.EEMBEDDING, "quota exceeded")}
		w := &crawl.Warmer{
			Sitemaps:   sitemapOf("https://x.test/a"),
			Pages:      s.fetcher(),
			Cache:      c.mock(),
			Collection: "pages",
		}

		result, err := w.Warm(context.Background(), "https://x.test/", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Added)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("walks links when sitemap is empty", func(t *testing.T) {
		t.Parallel()

		s := newSite(
			page("https://x.test/docs/", "index",
				"https://x.test/docs/a", "https://x.test/blog/post", "https://other.test/docs/x", "https://x.test/docs/private/b"),
			page("https://x.test/docs/a", "a", "https://x.test/docs/", "https://x.test/docs/a#top", "https://x.test/docs/c"),
			page("https://x.test/docs/c", "c"),
		)
		c := &memCache{}
		w := &crawl.Warmer{
			Sitemaps:   sitemapOf(),
			Pages:      s.fetcher(),
			Cache:      c.mock(),
			Collection: "pages",
		}
		filter := &docseek.URLFilter{Exclude: []*regexp.Regexp{regexp.MustCompile(`/private/`)}}

		result, err := w.Warm(context.Background(), "https://x.test/docs/", filter, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://x.test/docs/", "https://x.test/docs/a", "https://x.test/docs/c"}, s.Fetched())
		assert.Equal(t, 3, result.Added)
	})

	t.Run("walks links when sitemap discovery fails", func(t *testing.T) {
		t.Parallel()

		s := newSite(page("https://x.test/", "home"))
		w := &crawl.Warmer{
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(context.Context, string, *docseek.URLFilter) ([]string, error) {
					return nil, errors.New("no sitemap")
				},
			},
			Pages:      s.fetcher(),
			Cache:      (&memCache{}).mock(),
			Collection: "pages",
		}

		result, err := w.Warm(context.Background(), "https://x.test/", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Added)
	})

	t.Run("stops at max pages", func(t *testing.T) {
		t.Parallel()

		pages := []*docseek.Page{page("https://x.test/", "home", pageURL(0))}
		for i := 0; i < 10; i++ {
			pages = append(pages, page(pageURL(i), "text "+pageURL(i), pageURL(i+1)))
		}
		s := newSite(pages...)
		w := &crawl.Warmer{
			Sitemaps:   sitemapOf(),
			Pages:      s.fetcher(),
			Cache:      (&memCache{}).mock(),
			Collection: "pages",
			MaxPages:   3,
		}

		result, err := w.Warm(context.Background(), "https://x.test/", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Added)
		assert.Equal(t, []string{"https://x.test/", pageURL(0), pageURL(1)}, s.Fetched())
	})

	t.Run("rejects invalid source URL for walking", func(t *testing.T) {
		t.Parallel()

		w := &crawl.Warmer{
			Sitemaps:   sitemapOf(),
			Pages:      newSite().fetcher(),
			Cache:      (&memCache{}).mock(),
			Collection: "pages",
		}

		_, err := w.Warm(context.Background(), "not a url", nil, nil)

		assert.Equal(t, docseek.EINVALID, docseek.ErrorCode(err))
	})

	t.Run("returns error when collection cannot be prepared", func(t *testing.T) {
		t.Parallel()

		cache := (&memCache{}).mock()
		cache.EnsureCollectionFn = func(context.Context, string) error {
			return errors.New("read-only database")
		}
		w := &crawl.Warmer{Sitemaps: sitemapOf(), Pages: newSite().fetcher(), Cache: cache, Collection: "pages"}

		_, err := w.Warm(context.Background(), "https://x.test/", nil, nil)

		require.Error(t, err)
	})
}
