package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/fwojciec/docseek"
	"google.golang.org/genai"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultTemperature keeps replies close to the page text.
const DefaultTemperature float32 = 0.2

// Ensure Oracle implements docseek.Oracle at compile time.
var _ docseek.Oracle = (*Oracle)(nil)

// Oracle implements docseek.Oracle using Google Gemini structured output.
type Oracle struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewOracle creates a new Oracle. An empty model means DefaultModel.
func NewOracle(client *genai.Client, model string, temperature float32) *Oracle {
	if model == "" {
		model = DefaultModel
	}
	return &Oracle{client: client, model: model, temperature: temperature}
}

// ExtractAnswer answers question from pageText.
func (o *Oracle) ExtractAnswer(ctx context.Context, question, pageText string) (string, error) {
	if question == "" {
		return "", docseek.Errorf(docseek.EINVALID, "question required")
	}
	if strings.TrimSpace(pageText) == "" {
		return "", docseek.Errorf(docseek.ENOTFOUND, "page has no text")
	}

	reply, err := o.generate(ctx, BuildAnswerConfig(o.temperature), docseek.AnswerPrompt(question, pageText))
	if err != nil {
		return "", err
	}
	return docseek.ParseAnswerReply(reply)
}

// RankLinks returns the candidate most likely to lead to the answer.
func (o *Oracle) RankLinks(ctx context.Context, question string, candidates []docseek.Link) (docseek.Link, error) {
	if len(candidates) == 0 {
		return docseek.Link{}, docseek.Errorf(docseek.ENOCANDIDATE, "no candidate links")
	}
	if question == "" {
		return docseek.Link{}, docseek.Errorf(docseek.EINVALID, "question required")
	}

	reply, err := o.generate(ctx, BuildRankConfig(o.temperature), docseek.RankPrompt(question, candidates))
	if err != nil {
		return docseek.Link{}, err
	}
	return docseek.ParseRankReply(reply, candidates)
}

func (o *Oracle) generate(ctx context.Context, config *genai.GenerateContentConfig, prompt string) (string, error) {
	result, err := o.client.Models.GenerateContent(ctx, o.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", apiError(docseek.EORACLE, err)
	}
	if result == nil {
		return "", docseek.Errorf(docseek.EORACLE, "gemini returned nil result")
	}
	return result.Text(), nil
}

// BuildAnswerConfig returns the GenerateContentConfig for answer extraction.
// The reply is constrained to {"found": bool, "answer": string}.
func BuildAnswerConfig(temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: docseek.AnswerInstruction}},
		},
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"found":  {Type: genai.TypeBoolean},
				"answer": {Type: genai.TypeString},
			},
			Required: []string{"found", "answer"},
		},
	}
}

// BuildRankConfig returns the GenerateContentConfig for link ranking.
// The reply is constrained to {"index": integer}.
func BuildRankConfig(temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: docseek.RankInstruction}},
		},
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"index": {Type: genai.TypeInteger},
			},
			Required: []string{"index"},
		},
	}
}

// apiError maps a Gemini API failure to code, keeping the HTTP status in
// the message.
func apiError(code string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return docseek.Errorf(code, "gemini: HTTP %d %s: %s", apiErr.Code, apiErr.Status, apiErr.Message)
	}
	return docseek.Errorf(code, "gemini: %v", err)
}
