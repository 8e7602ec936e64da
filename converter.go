package docseek

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms extracted content HTML into Markdown.
	// Relative links and images are resolved against pageURL so the text
	// handed to the oracle only carries absolute URLs.
	Convert(html, pageURL string) (string, error)
}
