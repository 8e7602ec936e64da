package docseek

import (
	"context"
	"time"
)

// CacheEntry is a page stored in the semantic cache together with the
// embedding of its text.
type CacheEntry struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection"`
	Page        Page      `json:"page"`
	Embedding   []float32 `json:"embedding,omitempty"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CacheMatch is a search hit with its similarity to the query.
type CacheMatch struct {
	Entry *CacheEntry `json:"entry"`

	// Score is the cosine similarity clamped to [0,1].
	Score float64 `json:"score"`
}

// SemanticCache stores pages and finds them by similarity to a query.
// The cache is append-only: entries are never updated or deleted, and a URL
// fetched twice may be stored twice.
type SemanticCache interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, name string) error

	// Search returns at most topK entries ordered by descending score.
	// Returns an empty slice when the collection holds no entries.
	// Returns ENOTFOUND if the collection does not exist.
	Search(ctx context.Context, collection string, query string, topK int) ([]CacheMatch, error)

	// Add embeds page.Text and stores a new entry.
	// Returns EEMBEDDING if the embedding could not be computed; in that case
	// nothing is stored.
	Add(ctx context.Context, collection string, page *Page) (*CacheEntry, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context, collection string) (int, error)
}

// Embedder converts text to an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
