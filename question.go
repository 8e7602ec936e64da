package docseek

import (
	"context"
	"encoding/json"
	"io"
)

// Question is a natural language question identified within a batch.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Validate returns an error if the question contains invalid fields.
func (q *Question) Validate() error {
	if q.ID == "" {
		return Errorf(EINVALID, "question ID required")
	}
	if q.Text == "" {
		return Errorf(EINVALID, "question %q text required", q.ID)
	}
	return nil
}

// Status is the terminal state of a question.
type Status string

// Question statuses.
const (
	StatusAnswered Status = "answered"
	StatusFailed   Status = "failed"
)

// Answer is the outcome of resolving one question.
type Answer struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	Status     Status `json:"status"`

	// URL is the page the answer was read from.
	URL string `json:"url,omitempty"`

	// Visited lists the pages examined, in visit order.
	Visited []string `json:"visited,omitempty"`

	// CacheHit is true if the first page came from the semantic cache.
	CacheHit bool `json:"cacheHit"`

	// Err holds the failure reason when Status is StatusFailed.
	Err error `json:"-"`
}

// QuestionSource supplies the ordered question batch.
type QuestionSource interface {
	Questions(ctx context.Context) ([]Question, error)
}

// Ack is the reporting endpoint's verdict on submitted answers.
type Ack struct {
	Passed  bool   `json:"passed"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AnswerReporter delivers answers to a collaborator.
type AnswerReporter interface {
	Report(ctx context.Context, answers []Answer) (*Ack, error)
}

// AnswerMap returns question ID to answer text.
// Failed questions map to failureMarker.
func AnswerMap(answers []Answer, failureMarker string) map[string]string {
	m := make(map[string]string, len(answers))
	for _, a := range answers {
		if a.Status == StatusAnswered {
			m[a.QuestionID] = a.Text
		} else {
			m[a.QuestionID] = failureMarker
		}
	}
	return m
}

// DecodeQuestions decodes a JSON object of question ID to question text.
// Questions are returned in the order their keys appear in the document.
func DecodeQuestions(r io.Reader) ([]Question, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, Errorf(EINVALID, "decode questions: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, Errorf(EINVALID, "questions must be a JSON object")
	}

	var questions []Question
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, Errorf(EINVALID, "decode questions: %v", err)
		}
		id, _ := tok.(string)

		var text string
		if err := dec.Decode(&text); err != nil {
			return nil, Errorf(EINVALID, "question %q: %v", id, err)
		}
		if seen[id] {
			return nil, Errorf(EINVALID, "duplicate question ID %q", id)
		}
		seen[id] = true

		q := Question{ID: id, Text: text}
		if err := q.Validate(); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	if _, err := dec.Token(); err != nil {
		return nil, Errorf(EINVALID, "decode questions: %v", err)
	}

	return questions, nil
}
