package http

import (
	"context"
	"io"
	"net/http"

	"github.com/fwojciec/docseek"
)

// Ensure QuestionSource implements docseek.QuestionSource at compile time.
var _ docseek.QuestionSource = (*QuestionSource)(nil)

// QuestionSource downloads the question batch as a JSON object of question
// ID to question text.
type QuestionSource struct {
	client *http.Client
	url    string
}

// NewQuestionSource creates a QuestionSource reading from url.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewQuestionSource(client *http.Client, url string) *QuestionSource {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &QuestionSource{client: client, url: url}
}

// Questions returns the batch in the order the document lists it.
func (s *QuestionSource) Questions(ctx context.Context) ([]docseek.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "invalid questions URL %q: %v", s.url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, docseek.Errorf(docseek.EFETCH, "GET %s: %v", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, docseek.Errorf(docseek.EFETCH, "HTTP %d for %s", resp.StatusCode, s.url)
	}

	return docseek.DecodeQuestions(io.LimitReader(resp.Body, DefaultMaxBodySize))
}
