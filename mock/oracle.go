package mock

import (
	"context"

	"github.com/fwojciec/docseek"
)

var _ docseek.Oracle = (*Oracle)(nil)

// Oracle is a mock implementation of docseek.Oracle.
type Oracle struct {
	ExtractAnswerFn func(ctx context.Context, question, pageText string) (string, error)
	RankLinksFn     func(ctx context.Context, question string, candidates []docseek.Link) (docseek.Link, error)
}

func (o *Oracle) ExtractAnswer(ctx context.Context, question, pageText string) (string, error) {
	return o.ExtractAnswerFn(ctx, question, pageText)
}

func (o *Oracle) RankLinks(ctx context.Context, question string, candidates []docseek.Link) (docseek.Link, error) {
	return o.RankLinksFn(ctx, question, candidates)
}
