package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docseek"
)

// Ensure LoggingReporter implements docseek.AnswerReporter.
var _ docseek.AnswerReporter = (*LoggingReporter)(nil)

// LoggingReporter wraps an AnswerReporter with logging.
type LoggingReporter struct {
	next   docseek.AnswerReporter
	logger *slog.Logger
}

// NewLoggingReporter creates a new LoggingReporter.
func NewLoggingReporter(next docseek.AnswerReporter, logger *slog.Logger) *LoggingReporter {
	return &LoggingReporter{next: next, logger: logger}
}

// Report logs the acknowledgement returned for answers.
func (r *LoggingReporter) Report(ctx context.Context, answers []docseek.Answer) (ack *docseek.Ack, err error) {
	defer func(begin time.Time) {
		attrs := []any{"answers", len(answers)}
		if ack != nil {
			attrs = append(attrs, "passed", ack.Passed, "code", ack.Code, "message", ack.Message)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		r.logger.Info("report", attrs...)
	}(time.Now())
	return r.next.Report(ctx, answers)
}
