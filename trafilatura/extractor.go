package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements docseek.Extractor at compile time.
var _ docseek.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
// Title and description missing from trafilatura's metadata are read from
// the document head.
func (e *Extractor) Extract(rawHTML string) (*docseek.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docseek.Errorf(docseek.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "extract content: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	out := &docseek.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		Description: strings.TrimSpace(result.Metadata.Description),
		ContentHTML: contentHTML,
	}
	if out.Title == "" || out.Description == "" {
		if meta, err := goquery.ExtractMetadata(rawHTML); err == nil {
			out.Title = firstNonEmpty(out.Title, meta.Title)
			out.Description = firstNonEmpty(out.Description, meta.Description)
		}
	}
	return out, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
