package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fwojciec/docseek"
)

// Compile-time interface verification.
var _ docseek.Embedder = (*EmbeddingCache)(nil)

// EmbeddingCache decorates an Embedder with a persistent cache keyed by a
// hash of the model name and text. Repeated questions and re-fetched pages
// with identical text cost no provider call.
type EmbeddingCache struct {
	db     *DB
	inner  docseek.Embedder
	model  string
	logger *slog.Logger
}

// NewEmbeddingCache creates a new EmbeddingCache.
// Entries written for one model are never served for another.
func NewEmbeddingCache(db *DB, inner docseek.Embedder, model string, logger *slog.Logger) *EmbeddingCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EmbeddingCache{db: db, inner: inner, model: model, logger: logger}
}

// Embed returns a cached vector or calls the inner embedder.
// Cache read and write failures are logged and never fail the call.
func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := hashContent(c.model + "\x00" + text)

	var blob []byte
	err := c.db.QueryRowContext(ctx, `
		SELECT vector FROM embeddings WHERE key = ?
	`, key).Scan(&blob)
	switch {
	case err == nil:
		vec, err := decodeVector(blob)
		if err == nil && len(vec) > 0 {
			return vec, nil
		}
		c.logger.Warn("discarding cached embedding", "key", key, "error", err)
	case err != sql.ErrNoRows:
		c.logger.Warn("failed to read cached embedding", "key", key, "error", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO embeddings (key, model, vector, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET vector = excluded.vector, created_at = excluded.created_at
	`, key, c.model, encodeVector(vec), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		c.logger.Warn("failed to cache embedding", "key", key, "error", err)
	}

	return vec, nil
}
