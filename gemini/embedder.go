package gemini

import (
	"context"

	"github.com/fwojciec/docseek"
	"google.golang.org/genai"
)

// DefaultEmbeddingModel is the embedding model used when none is configured.
const DefaultEmbeddingModel = "gemini-embedding-001"

var _ docseek.Embedder = (*Embedder)(nil)

// Embedder computes semantic-similarity embeddings with Gemini.
// Questions and page texts are embedded with the same task type so their
// vectors are comparable.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// NewEmbedder creates a new Embedder. An empty model means
// DefaultEmbeddingModel; zero dimensions keeps the model's default size.
func NewEmbedder(client *genai.Client, model string, dimensions int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, dimensions: int32(dimensions)}
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, docseek.Errorf(docseek.EINVALID, "text required")
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		BuildEmbedConfig(e.dimensions),
	)
	if err != nil {
		return nil, apiError(docseek.EEMBEDDING, err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, docseek.Errorf(docseek.EEMBEDDING, "gemini returned no embedding")
	}
	return result.Embeddings[0].Values, nil
}

// BuildEmbedConfig returns the EmbedContentConfig for cache embeddings.
func BuildEmbedConfig(dimensions int32) *genai.EmbedContentConfig {
	config := &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"}
	if dimensions > 0 {
		config.OutputDimensionality = &dimensions
	}
	return config
}
