package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fwojciec/docseek"
)

// Ensure Reporter implements docseek.AnswerReporter at compile time.
var _ docseek.AnswerReporter = (*Reporter)(nil)

// Reporter submits the answer map to a verification endpoint.
//
// The request body is {"task": ..., "apikey": ..., "answer": {id: text}}.
// The endpoint replies with {"code": n, "message": ...}; code 0 means the
// answers were accepted.
type Reporter struct {
	client        *http.Client
	url           string
	task          string
	apiKey        string
	failureMarker string
}

// NewReporter creates a Reporter posting to url.
// Failed questions are reported as failureMarker.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewReporter(client *http.Client, url, task, apiKey, failureMarker string) *Reporter {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Reporter{
		client:        client,
		url:           url,
		task:          task,
		apiKey:        apiKey,
		failureMarker: failureMarker,
	}
}

type reportRequest struct {
	Task   string            `json:"task"`
	APIKey string            `json:"apikey"`
	Answer map[string]string `json:"answer"`
}

type reportResponse struct {
	Code    *int   `json:"code"`
	Message string `json:"message"`
}

// Report posts the answers and returns the endpoint's verdict.
// A rejection with a well-formed reply is an Ack with Passed false, not an
// error.
func (r *Reporter) Report(ctx context.Context, answers []docseek.Answer) (*docseek.Ack, error) {
	body, err := json.Marshal(reportRequest{
		Task:   r.task,
		APIKey: r.apiKey,
		Answer: docseek.AnswerMap(answers, r.failureMarker),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "invalid report URL %q: %v", r.url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, docseek.Errorf(docseek.EFETCH, "POST %s: %v", r.url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBodySize))
	if err != nil {
		return nil, docseek.Errorf(docseek.EFETCH, "read report response: %v", err)
	}

	var reply reportResponse
	if err := json.Unmarshal(raw, &reply); err != nil || reply.Code == nil {
		return nil, docseek.Errorf(docseek.EFETCH, "HTTP %d from %s: unexpected reply %q", resp.StatusCode, r.url, truncate(string(raw), 200))
	}

	return &docseek.Ack{
		Passed:  *reply.Code == 0,
		Code:    *reply.Code,
		Message: reply.Message,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
