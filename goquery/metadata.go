package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docseek"
)

// Metadata is the title and summary a page declares about itself.
type Metadata struct {
	Title       string
	Description string
}

// ExtractMetadata reads the page title and description from HTML.
// The title falls back from og:title to <title> to the first <h1>.
// The description falls back from the description meta tag to og:description.
func ExtractMetadata(html string) (*Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "failed to parse HTML: %v", err)
	}

	return &Metadata{
		Title: firstNonEmpty(
			metaContent(doc, `meta[property="og:title"]`),
			collapseSpace(doc.Find("title").First().Text()),
			collapseSpace(doc.Find("h1").First().Text()),
		),
		Description: firstNonEmpty(
			metaContent(doc, `meta[name="description"]`),
			metaContent(doc, `meta[property="og:description"]`),
		),
	}, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
