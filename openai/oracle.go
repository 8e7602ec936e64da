package openai

import (
	"context"
	"strings"

	"github.com/fwojciec/docseek"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4oMini

var _ docseek.Oracle = (*Oracle)(nil)

// Oracle implements docseek.Oracle with chat completions in JSON mode.
type Oracle struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOracle creates a new Oracle. An empty cfg.Model means DefaultModel.
func NewOracle(cfg Config, temperature float32) *Oracle {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Oracle{client: NewClient(cfg), model: model, temperature: temperature}
}

// ExtractAnswer answers question from pageText.
func (o *Oracle) ExtractAnswer(ctx context.Context, question, pageText string) (string, error) {
	if question == "" {
		return "", docseek.Errorf(docseek.EINVALID, "question required")
	}
	if strings.TrimSpace(pageText) == "" {
		return "", docseek.Errorf(docseek.ENOTFOUND, "page has no text")
	}

	reply, err := o.complete(ctx, BuildRequest(o.model, o.temperature, docseek.AnswerInstruction, docseek.AnswerPrompt(question, pageText)))
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

	reply, err := o.complete(ctx, BuildRequest(o.model, o.temperature, docseek.RankInstruction, docseek.RankPrompt(question, candidates)))
	if err != nil {
		return docseek.Link{}, err
	}
	return docseek.ParseRankReply(reply, candidates)
}

func (o *Oracle) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", apiError(docseek.EORACLE, err)
	}
	if len(resp.Choices) == 0 {
		return "", docseek.Errorf(docseek.EORACLE, "openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildRequest returns a JSON-mode chat completion request with the given
// system instruction and user prompt.
func BuildRequest(model string, temperature float32, instruction, prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}
