package readability

import (
	"strings"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/goquery"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements docseek.Extractor at compile time.
var _ docseek.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
// It suits article-like pages where trafilatura drops too much.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
// The description is the page's meta description when present, otherwise
// readability's excerpt of the content.
func (e *Extractor) Extract(rawHTML string) (*docseek.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docseek.Errorf(docseek.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "extract content: %v", err)
	}

	out := &docseek.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}
	if meta, err := goquery.ExtractMetadata(rawHTML); err == nil {
		if out.Title == "" {
			out.Title = meta.Title
		}
		out.Description = meta.Description
	}
	if out.Description == "" {
		out.Description = strings.TrimSpace(article.Excerpt)
	}
	return out, nil
}
