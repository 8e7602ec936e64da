package docseek

import (
	"fmt"
	"strings"
)

// FormatLinks formats candidate links as a numbered list for LLM context.
// Numbers start at 1 and follow slice order.
func FormatLinks(links []Link) string {
	if len(links) == 0 {
		return ""
	}

	parts := make([]string, 0, len(links))
	for i, link := range links {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d. %s", i+1, link.URL)
		if link.Text != "" {
			sb.WriteString(" | text: " + link.Text)
		}
		if link.Title != "" {
			sb.WriteString(" | title: " + link.Title)
		}
		parts = append(parts, sb.String())
	}

	return strings.Join(parts, "\n")
}

// FormatPage formats a page for display.
// Uses title if available, falls back to URL.
func FormatPage(page *Page) string {
	header := page.Title
	if header == "" {
		header = page.URL
	}

	var sb strings.Builder
	sb.WriteString("## Page: " + header + "\n")
	if page.Description != "" {
		sb.WriteString("> " + page.Description + "\n")
	}
	sb.WriteString(page.Text)
	return sb.String()
}
