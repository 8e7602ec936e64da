package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docseek"
)

// Ensure LoggingOracle implements docseek.Oracle.
var _ docseek.Oracle = (*LoggingOracle)(nil)

// LoggingOracle wraps an Oracle with logging.
type LoggingOracle struct {
	next   docseek.Oracle
	logger *slog.Logger
}

// NewLoggingOracle creates a new LoggingOracle.
func NewLoggingOracle(next docseek.Oracle, logger *slog.Logger) *LoggingOracle {
	return &LoggingOracle{next: next, logger: logger}
}

// ExtractAnswer logs the answer read from the page. A missing answer is
// logged as found=false rather than as an error.
func (o *LoggingOracle) ExtractAnswer(ctx context.Context, question, pageText string) (answer string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"question", question,
			"text", len(pageText),
			"found", err == nil,
		}
		if err == nil {
			attrs = append(attrs, "answer", answer)
		}
		attrs = append(attrs, "duration", time.Since(begin))
		if err != nil && docseek.ErrorCode(err) != docseek.ENOTFOUND {
			attrs = append(attrs, "err", err)
		}
		o.logger.Info("extract answer", attrs...)
	}(time.Now())
	return o.next.ExtractAnswer(ctx, question, pageText)
}

// RankLinks logs the link chosen among candidates.
func (o *LoggingOracle) RankLinks(ctx context.Context, question string, candidates []docseek.Link) (link docseek.Link, err error) {
	defer func(begin time.Time) {
		o.logger.Info("rank links",
			"question", question,
			"candidates", len(candidates),
			"chosen", link.URL,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return o.next.RankLinks(ctx, question, candidates)
}
