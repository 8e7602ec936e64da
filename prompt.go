package docseek

import (
	"encoding/json"
	"fmt"
	"strings"
)

// System instructions shared by every Oracle backend.
const (
	AnswerInstruction = "You answer questions using only the web page provided. " +
		"Reply with a JSON object {\"found\": boolean, \"answer\": string}. " +
		"Set found to true only when the page states the answer; the answer must then be short and exact, " +
		"such as an address, a name or a URL, with no commentary. " +
		"When the page does not contain the answer set found to false and answer to an empty string."

	RankInstruction = "You choose which link of a web page most likely leads to the answer of a question. " +
		"Links are numbered from 1. Judge each link by its URL, text and title. " +
		"Reply with a JSON object {\"index\": number} naming exactly one of the listed links."
)

// AnswerPrompt builds the user prompt asking question about pageText.
func AnswerPrompt(question, pageText string) string {
	var sb strings.Builder
	sb.WriteString("<page>\n")
	sb.WriteString(pageText)
	sb.WriteString("\n</page>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}

// RankPrompt builds the user prompt asking which of candidates to follow.
func RankPrompt(question string, candidates []Link) string {
	var sb strings.Builder
	sb.WriteString("<links>\n")
	sb.WriteString(FormatLinks(candidates))
	sb.WriteString("\n</links>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}

type answerReply struct {
	Found  bool   `json:"found"`
	Answer string `json:"answer"`
}

type rankReply struct {
	Index *int `json:"index"`
}

// ParseAnswerReply decodes a model reply to an AnswerPrompt.
// Returns ENOTFOUND when the model reports no answer or an empty one.
// Returns EORACLE when the reply is not the expected JSON object.
func ParseAnswerReply(reply string) (string, error) {
	var r answerReply
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &r); err != nil {
		return "", Errorf(EORACLE, "unparseable answer reply: %v", err)
	}
	answer := strings.TrimSpace(r.Answer)
	if !r.Found || answer == "" {
		return "", Errorf(ENOTFOUND, "answer not on page")
	}
	return answer, nil
}

// ParseRankReply decodes a model reply to a RankPrompt and returns the
// chosen candidate. Returns ENOCANDIDATE if candidates is empty and EORACLE
// when the reply does not name one of them.
func ParseRankReply(reply string, candidates []Link) (Link, error) {
	if len(candidates) == 0 {
		return Link{}, Errorf(ENOCANDIDATE, "no candidate links")
	}
	var r rankReply
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &r); err != nil {
		return Link{}, Errorf(EORACLE, "unparseable rank reply: %v", err)
	}
	if r.Index == nil {
		return Link{}, Errorf(EORACLE, "rank reply has no index")
	}
	if *r.Index < 1 || *r.Index > len(candidates) {
		return Link{}, Errorf(EORACLE, "rank reply index %d out of range 1..%d", *r.Index, len(candidates))
	}
	return candidates[*r.Index-1], nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add around JSON even when asked not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
