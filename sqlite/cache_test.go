package sqlite_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/mock"
	"github.com/fwojciec/docseek/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vectors maps text to a fixed embedding.
type vectors map[string][]float32

func (v vectors) embedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, text string) ([]float32, error) {
			vec, ok := v[text]
			if !ok {
				return nil, errors.New("no vector for " + text)
			}
			return vec, nil
		},
	}
}

func newCache(t *testing.T, embedder docseek.Embedder) *sqlite.Cache {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	cache := sqlite.NewCache(db, embedder)
	require.NoError(t, cache.EnsureCollection(context.Background(), "pages"))
	return cache
}

func TestCache_EnsureCollection(t *testing.T) {
	t.Parallel()

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{}.embedder())
		ctx := context.Background()

		require.NoError(t, cache.EnsureCollection(ctx, "pages"))
		require.NoError(t, cache.EnsureCollection(ctx, "pages"))

		n, err := cache.Count(ctx, "pages")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{}.embedder())

		err := cache.EnsureCollection(context.Background(), "")

		assert.Equal(t, docseek.EINVALID, docseek.ErrorCode(err))
	})
}

func TestCache_Search(t *testing.T) {
	t.Parallel()

	t.Run("returns empty without embedding when collection is empty", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		cache := newCache(t, &mock.Embedder{
			EmbedFn: func(_ context.Context, _ string) ([]float32, error) {
				calls.Add(1)
				return []float32{1}, nil
			},
		})

		matches, err := cache.Search(context.Background(), "pages", "anything", 1)

		require.NoError(t, err)
		assert.Empty(t, matches)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("returns ENOTFOUND for unknown collection", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{}.embedder())

		_, err := cache.Search(context.Background(), "missing", "q", 1)

		assert.Equal(t, docseek.ENOTFOUND, docseek.ErrorCode(err))
	})

	t.Run("orders by descending score and limits to topK", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{
			"about rivers":  {1, 0, 0},
			"about capital": {0, 1, 0},
			"about both":    {0.6, 0.8, 0},
			"capital?":      {0, 1, 0},
		}.embedder())
		ctx := context.Background()
		for url, text := range map[string]string{
			"https://example.com/rivers":  "about rivers",
			"https://example.com/capital": "about capital",
			"https://example.com/both":    "about both",
		} {
			_, err := cache.Add(ctx, "pages", &docseek.Page{URL: url, Text: text})
			require.NoError(t, err)
		}

		matches, err := cache.Search(ctx, "pages", "capital?", 2)

		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "https://example.com/capital", matches[0].Entry.Page.URL)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
		assert.Equal(t, "https://example.com/both", matches[1].Entry.Page.URL)
		assert.InDelta(t, 0.8, matches[1].Score, 1e-6)
	})

	t.Run("clamps negative similarity to zero", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{
			"text":  {1, 0},
			"query": {-1, 0},
		}.embedder())
		ctx := context.Background()
		_, err := cache.Add(ctx, "pages", &docseek.Page{URL: "https://example.com/", Text: "text"})
		require.NoError(t, err)

		matches, err := cache.Search(ctx, "pages", "query", 1)

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Zero(t, matches[0].Score)
	})

	t.Run("round-trips page fields", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{"body": {1, 2, 3}, "q": {1, 2, 3}}.embedder())
		ctx := context.Background()
		page := &docseek.Page{
			URL:         "https://example.com/a",
			Title:       "A",
			Description: "first page",
			Text:        "body",
			Links: []docseek.Link{
				{URL: "https://example.com/b", Text: "B", Title: "bee"},
			},
		}
		added, err := cache.Add(ctx, "pages", page)
		require.NoError(t, err)

		matches, err := cache.Search(ctx, "pages", "q", 1)

		require.NoError(t, err)
		require.Len(t, matches, 1)
		got := matches[0].Entry
		assert.Equal(t, added.ID, got.ID)
		assert.Equal(t, *page, got.Page)
		assert.Equal(t, []float32{1, 2, 3}, got.Embedding)
		assert.Equal(t, added.ContentHash, got.ContentHash)
		assert.Equal(t, "pages", got.Collection)
	})

	t.Run("reports query embedding failure as EEMBEDDING", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{"body": {1}}.embedder())
		ctx := context.Background()
		_, err := cache.Add(ctx, "pages", &docseek.Page{URL: "https://example.com/", Text: "body"})
		require.NoError(t, err)

		_, err = cache.Search(ctx, "pages", "unknown query", 1)

		assert.Equal(t, docseek.EEMBEDDING, docseek.ErrorCode(err))
	})
}

func TestCache_Add(t *testing.T) {
	t.Parallel()

	t.Run("is append-only", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{"same text": {1, 1}}.embedder())
		ctx := context.Background()
		page := &docseek.Page{URL: "https://example.com/", Text: "same text"}

		first, err := cache.Add(ctx, "pages", page)
		require.NoError(t, err)
		second, err := cache.Add(ctx, "pages", page)
		require.NoError(t, err)

		n, err := cache.Count(ctx, "pages")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, first.ContentHash, second.ContentHash)
	})

	t.Run("stores nothing when embedding fails", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, &mock.Embedder{
			EmbedFn: func(_ context.Context, _ string) ([]float32, error) {
				return nil, errors.New("provider unreachable")
			},
		})
		ctx := context.Background()

		_, err := cache.Add(ctx, "pages", &docseek.Page{URL: "https://example.com/", Text: "text"})

		assert.Equal(t, docseek.EEMBEDDING, docseek.ErrorCode(err))
		n, err := cache.Count(ctx, "pages")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("rejects page without text", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{}.embedder())

		_, err := cache.Add(context.Background(), "pages", &docseek.Page{URL: "https://example.com/"})

		assert.Equal(t, docseek.EINVALID, docseek.ErrorCode(err))
	})

	t.Run("rejects unknown collection", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{"text": {1}}.embedder())

		_, err := cache.Add(context.Background(), "other", &docseek.Page{URL: "https://example.com/", Text: "text"})

		assert.Equal(t, docseek.ENOTFOUND, docseek.ErrorCode(err))
	})

	t.Run("count never decreases", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t, vectors{"a": {1, 0}, "b": {0, 1}}.embedder())
		ctx := context.Background()

		prev := 0
		for _, text := range []string{"a", "b", "a", "missing", "b"} {
			_, _ = cache.Add(ctx, "pages", &docseek.Page{URL: "https://example.com/" + text, Text: text})
			n, err := cache.Count(ctx, "pages")
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, prev)
			prev = n
		}
		assert.Equal(t, 4, prev)
	})
}
