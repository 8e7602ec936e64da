package mock

import (
	"context"

	"github.com/fwojciec/docseek"
)

var _ docseek.QuestionSource = (*QuestionSource)(nil)

// QuestionSource is a mock implementation of docseek.QuestionSource.
type QuestionSource struct {
	QuestionsFn func(ctx context.Context) ([]docseek.Question, error)
}

func (s *QuestionSource) Questions(ctx context.Context) ([]docseek.Question, error) {
	return s.QuestionsFn(ctx)
}

var _ docseek.AnswerReporter = (*AnswerReporter)(nil)

// AnswerReporter is a mock implementation of docseek.AnswerReporter.
type AnswerReporter struct {
	ReportFn func(ctx context.Context, answers []docseek.Answer) (*docseek.Ack, error)
}

func (r *AnswerReporter) Report(ctx context.Context, answers []docseek.Answer) (*docseek.Ack, error) {
	return r.ReportFn(ctx, answers)
}
