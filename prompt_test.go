package docseek_test

import (
	"testing"

	"github.com/fwojciec/docseek"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerPrompt(t *testing.T) {
	t.Parallel()

	prompt := docseek.AnswerPrompt("What is the email?", "Write to biuro@softo.test")

	assert.Equal(t, "<page>\nWrite to biuro@softo.test\n</page>\n\nQuestion: What is the email?", prompt)
}

func TestRankPrompt(t *testing.T) {
	t.Parallel()

	prompt := docseek.RankPrompt("Who is the CEO?", []docseek.Link{
		{URL: "https://x.test/team", Text: "Team"},
		{URL: "https://x.test/blog"},
	})

	assert.Equal(t, "<links>\n1. https://x.test/team | text: Team\n2. https://x.test/blog\n</links>\n\nQuestion: Who is the CEO?", prompt)
}

func TestParseAnswerReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
		want  string
		code  string
	}{
		{name: "found", reply: `{"found": true, "answer": " biuro@softo.test "}`, want: "biuro@softo.test"},
		{name: "fenced", reply: "```json\n{\"found\": true, \"answer\": \"Warsaw\"}\n```", want: "Warsaw"},
		{name: "not found", reply: `{"found": false, "answer": ""}`, code: docseek.ENOTFOUND},
		{name: "found but empty", reply: `{"found": true, "answer": "  "}`, code: docseek.ENOTFOUND},
		{name: "answer without found flag", reply: `{"answer": "maybe"}`, code: docseek.ENOTFOUND},
		{name: "not json", reply: "The answer is Warsaw.", code: docseek.EORACLE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := docseek.ParseAnswerReply(tt.reply)

			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, docseek.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRankReply(t *testing.T) {
	t.Parallel()

	candidates := []docseek.Link{
		{URL: "https://x.test/a"},
		{URL: "https://x.test/b"},
	}

	tests := []struct {
		name       string
		reply      string
		candidates []docseek.Link
		want       string
		code       string
	}{
		{name: "first", reply: `{"index": 1}`, candidates: candidates, want: "https://x.test/a"},
		{name: "last", reply: `{"index": 2}`, candidates: candidates, want: "https://x.test/b"},
		{name: "zero", reply: `{"index": 0}`, candidates: candidates, code: docseek.EORACLE},
		{name: "too large", reply: `{"index": 3}`, candidates: candidates, code: docseek.EORACLE},
		{name: "missing index", reply: `{}`, candidates: candidates, code: docseek.EORACLE},
		{name: "not json", reply: "2", candidates: candidates, code: docseek.EORACLE},
		{name: "no candidates", reply: `{"index": 1}`, code: docseek.ENOCANDIDATE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := docseek.ParseRankReply(tt.reply, tt.candidates)

			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, docseek.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.URL)
		})
	}
}
