package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/openai"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("returns vector", func(t *testing.T) {
		t.Parallel()

		var (
			mu   sync.Mutex
			got  goopenai.EmbeddingRequest
			auth string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/embeddings" {
				http.NotFound(w, r)
				return
			}
			mu.Lock()
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&got)
			mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object": "list", "data": [{"object": "embedding", "index": 0, "embedding": [0.1, 0.2, 0.3, 0.4]}], "model": "m", "usage": {"prompt_tokens": 2, "total_tokens": 2}}`))
		}))
		defer srv.Close()

		embedder := openai.NewEmbedder(openai.Config{APIKey: "test-key", BaseURL: srv.URL}, 4)

		vec, err := embedder.Embed(context.Background(), "hello world")

		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, vec)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "Bearer test-key", auth)
		assert.Equal(t, goopenai.EmbeddingModel(openai.DefaultEmbeddingModel), got.Model)
		assert.Equal(t, 4, got.Dimensions)
	})

	t.Run("maps provider detail errors to EEMBEDDING", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail": "input too long"}`))
		}))
		defer srv.Close()

		_, err := openai.NewEmbedder(openai.Config{APIKey: "k", BaseURL: srv.URL}, 0).Embed(context.Background(), "hello")

		require.Error(t, err)
		assert.Equal(t, docseek.EEMBEDDING, docseek.ErrorCode(err))
		assert.Contains(t, docseek.ErrorMessage(err), "400")
	})

	t.Run("returns EEMBEDDING for empty data", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object": "list", "data": []}`))
		}))
		defer srv.Close()

		_, err := openai.NewEmbedder(openai.Config{APIKey: "k", BaseURL: srv.URL}, 0).Embed(context.Background(), "hello")

		assert.Equal(t, docseek.EEMBEDDING, docseek.ErrorCode(err))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		_, err := openai.NewEmbedder(openai.Config{APIKey: "k"}, 0).Embed(context.Background(), "")

		assert.Equal(t, docseek.EINVALID, docseek.ErrorCode(err))
	})
}
