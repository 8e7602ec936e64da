// Package openai implements docseek.Oracle and docseek.Embedder on top of
// the OpenAI API or any OpenAI-compatible endpoint.
package openai

import (
	"encoding/json"
	"errors"

	"github.com/fwojciec/docseek"
	openai "github.com/sashabaranov/go-openai"
)

// Config holds the settings shared by Oracle and Embedder.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for compatible providers.
	BaseURL string
	Model   string
}

// NewClient creates an API client from cfg.
func NewClient(cfg Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// apiError maps an API failure to code with a human-readable message.
func apiError(code string, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return docseek.Errorf(code, "openai: HTTP %d: %s", reqErr.HTTPStatusCode, detail)
		}
		return docseek.Errorf(code, "openai: HTTP %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return docseek.Errorf(code, "openai: HTTP %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	return docseek.Errorf(code, "openai: %v", err)
}

// extractDetail returns the "detail" field of a JSON error body, used by
// some compatible providers instead of the OpenAI error object.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
