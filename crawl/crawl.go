// Package crawl answers questions by walking a site page by page.
//
// Pages turns a URL into a docseek.Page. Seeker runs the per-question
// cache lookup, fetch, answer and link-selection loop over a batch of
// questions. Warmer pre-populates the semantic cache from a sitemap or a
// breadth-first walk so later questions can skip the network.
package crawl

import (
	"context"
	"log/slog"
	"time"
)

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressAnswered
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a batch or a warm crawl.
type ProgressEvent struct {
	Type       ProgressType
	Completed  int
	Total      int
	QuestionID string
	URL        string
	Error      error
}

// ProgressFunc is a callback for reporting progress.
type ProgressFunc func(event ProgressEvent)

// withTimeout bounds ctx by d. A non-positive d leaves ctx unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
