package mock

import (
	"context"

	"github.com/fwojciec/docseek"
)

var _ docseek.SemanticCache = (*SemanticCache)(nil)

// SemanticCache is a mock implementation of docseek.SemanticCache.
type SemanticCache struct {
	EnsureCollectionFn func(ctx context.Context, name string) error
	SearchFn           func(ctx context.Context, collection string, query string, topK int) ([]docseek.CacheMatch, error)
	AddFn              func(ctx context.Context, collection string, page *docseek.Page) (*docseek.CacheEntry, error)
	CountFn            func(ctx context.Context, collection string) (int, error)
}

func (c *SemanticCache) EnsureCollection(ctx context.Context, name string) error {
	return c.EnsureCollectionFn(ctx, name)
}

func (c *SemanticCache) Search(ctx context.Context, collection string, query string, topK int) ([]docseek.CacheMatch, error) {
	return c.SearchFn(ctx, collection, query, topK)
}

func (c *SemanticCache) Add(ctx context.Context, collection string, page *docseek.Page) (*docseek.CacheEntry, error) {
	return c.AddFn(ctx, collection, page)
}

func (c *SemanticCache) Count(ctx context.Context, collection string) (int, error) {
	return c.CountFn(ctx, collection)
}

var _ docseek.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docseek.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}
