package mock

import "github.com/fwojciec/docseek"

var _ docseek.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docseek.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docseek.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docseek.ExtractResult, error) {
	return e.ExtractFn(html)
}
