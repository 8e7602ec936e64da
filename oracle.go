package docseek

import "context"

// Oracle is a language model used to read pages and choose links.
type Oracle interface {
	// ExtractAnswer answers question from pageText.
	// Returns ENOTFOUND if the text does not contain the answer.
	// Returns EORACLE if the model call fails or its reply cannot be parsed.
	ExtractAnswer(ctx context.Context, question, pageText string) (string, error)

	// RankLinks returns the candidate most likely to lead to the answer.
	// The returned link is always one of the candidates.
	// Returns ENOCANDIDATE if candidates is empty.
	RankLinks(ctx context.Context, question string, candidates []Link) (Link, error)
}
