package openai

import (
	"context"

	"github.com/fwojciec/docseek"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is the embedding model used when none is configured.
const DefaultEmbeddingModel = string(openai.LargeEmbedding3)

var _ docseek.Embedder = (*Embedder)(nil)

// Embedder computes embeddings with the OpenAI embeddings endpoint.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewEmbedder creates a new Embedder. An empty cfg.Model means
// DefaultEmbeddingModel; zero dimensions keeps the model's default size.
func NewEmbedder(cfg Config, dimensions int) *Embedder {
	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{
		client:     NewClient(cfg),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
	}
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, docseek.Errorf(docseek.EINVALID, "text required")
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, apiError(docseek.EEMBEDDING, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, docseek.Errorf(docseek.EEMBEDDING, "openai returned no embedding")
	}
	return resp.Data[0].Embedding, nil
}
