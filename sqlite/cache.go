package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fwojciec/docseek"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docseek.SemanticCache = (*Cache)(nil)

// Cache implements docseek.SemanticCache using SQLite.
// Similarity is computed in process over every entry of the collection.
type Cache struct {
	db       *DB
	embedder docseek.Embedder
}

// NewCache creates a new Cache that embeds text with embedder.
func NewCache(db *DB, embedder docseek.Embedder) *Cache {
	return &Cache{db: db, embedder: embedder}
}

// EnsureCollection creates the collection if it does not exist.
func (c *Cache) EnsureCollection(ctx context.Context, name string) error {
	if name == "" {
		return docseek.Errorf(docseek.EINVALID, "collection name required")
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO collections (name, created_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, time.Now().UTC().Format(time.RFC3339))

	return err
}

// Search returns the topK entries most similar to query.
func (c *Cache) Search(ctx context.Context, collection string, query string, topK int) ([]docseek.CacheMatch, error) {
	if topK <= 0 {
		return nil, docseek.Errorf(docseek.EINVALID, "topK must be positive")
	}

	n, err := c.Count(ctx, collection)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []docseek.CacheMatch{}, nil
	}

	q, err := c.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, url, title, description, text, links, content_hash, embedding, created_at
		FROM entries
		WHERE collection = ?
		ORDER BY rowid
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []docseek.CacheMatch
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entry.Collection = collection
		matches = append(matches, docseek.CacheMatch{
			Entry: entry,
			Score: similarity(q, entry.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// Add embeds page.Text and appends a new entry to the collection.
func (c *Cache) Add(ctx context.Context, collection string, page *docseek.Page) (*docseek.CacheEntry, error) {
	if page == nil {
		return nil, docseek.Errorf(docseek.EINVALID, "page required")
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if page.Text == "" {
		return nil, docseek.Errorf(docseek.EINVALID, "page %s has no text to embed", page.URL)
	}
	if err := c.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	vec, err := c.embed(ctx, page.Text)
	if err != nil {
		return nil, err
	}

	links := page.Links
	if links == nil {
		links = []docseek.Link{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to encode links: %w", err)
	}

	entry := &docseek.CacheEntry{
		ID:          uuid.New().String(),
		Collection:  collection,
		Page:        *page,
		Embedding:   vec,
		ContentHash: hashContent(page.Text),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO entries (id, collection, url, title, description, text, links, content_hash, embedding, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, collection, page.URL, page.Title, page.Description, page.Text, string(linksJSON),
		entry.ContentHash, encodeVector(vec), len(vec), entry.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Count returns the number of entries in the collection.
func (c *Cache) Count(ctx context.Context, collection string) (int, error) {
	if err := c.requireCollection(ctx, collection); err != nil {
		return 0, err
	}

	var n int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries WHERE collection = ?
	`, collection).Scan(&n)

	return n, err
}

func (c *Cache) requireCollection(ctx context.Context, name string) error {
	var found string
	err := c.db.QueryRowContext(ctx, `
		SELECT name FROM collections WHERE name = ?
	`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return docseek.Errorf(docseek.ENOTFOUND, "collection %q not found", name)
	}
	return err
}

// embed computes an embedding, reporting every failure as EEMBEDDING.
func (c *Cache) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		if docseek.ErrorCode(err) == docseek.EEMBEDDING {
			return nil, err
		}
		return nil, docseek.Errorf(docseek.EEMBEDDING, "embed text: %v", err)
	}
	if len(vec) == 0 {
		return nil, docseek.Errorf(docseek.EEMBEDDING, "embedder returned an empty vector")
	}
	return vec, nil
}

func scanEntry(rows *sql.Rows) (*docseek.CacheEntry, error) {
	var entry docseek.CacheEntry
	var linksJSON, createdAt string
	var blob []byte

	if err := rows.Scan(&entry.ID, &entry.Page.URL, &entry.Page.Title, &entry.Page.Description,
		&entry.Page.Text, &linksJSON, &entry.ContentHash, &blob, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(linksJSON), &entry.Page.Links); err != nil {
		return nil, fmt.Errorf("failed to decode links of %s: %w", entry.Page.URL, err)
	}

	vec, err := decodeVector(blob)
	if err != nil {
		return nil, err
	}
	entry.Embedding = vec

	entry.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}

	return &entry, nil
}
