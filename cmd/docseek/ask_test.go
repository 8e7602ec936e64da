package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/docseek"
	main "github.com/fwojciec/docseek/cmd/docseek"
	"github.com/fwojciec/docseek/crawl"
	"github.com/fwojciec/docseek/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entryURL = "https://softo.test/"

// softoSite links the home page to a contact page holding the email and
// the office address.
func softoSite() map[string]*docseek.Page {
	return map[string]*docseek.Page{
		entryURL: {
			URL:   entryURL,
			Text:  "Welcome to SoftoAI",
			Links: []docseek.Link{{URL: "https://softo.test/kontakt", Text: "Kontakt"}},
		},
		"https://softo.test/kontakt": {
			URL:  "https://softo.test/kontakt",
			Text: "email: biuro@softo.test",
		},
	}
}

// newSeeker returns a Seeker over pages whose oracle answers "email"
// questions from any page containing "email:" and always follows the first
// candidate link.
func newSeeker(pages map[string]*docseek.Page) *crawl.Seeker {
	return &crawl.Seeker{
		Pages: &mock.PageFetcher{
			FetchPageFn: func(_ context.Context, url string) (*docseek.Page, error) {
				if p, ok := pages[url]; ok {
					return p, nil
				}
				return nil, docseek.Errorf(docseek.EFETCH, "HTTP 404")
			},
		},
		Cache: &mock.SemanticCache{
			EnsureCollectionFn: func(context.Context, string) error { return nil },
			SearchFn: func(context.Context, string, string, int) ([]docseek.CacheMatch, error) {
				return nil, nil
			},
			AddFn: func(_ context.Context, _ string, p *docseek.Page) (*docseek.CacheEntry, error) {
				return &docseek.CacheEntry{Page: *p}, nil
			},
		},
		Oracle: &mock.Oracle{
			ExtractAnswerFn: func(_ context.Context, question, text string) (string, error) {
				if strings.Contains(question, "email") {
					if _, after, ok := strings.Cut(text, "email: "); ok {
						return after, nil
					}
				}
				return "", docseek.Errorf(docseek.ENOTFOUND, "not on page")
			},
			RankLinksFn: func(_ context.Context, _ string, candidates []docseek.Link) (docseek.Link, error) {
				return candidates[0], nil
			},
		},
		Collection: "softo",
		Threshold:  docseek.DefaultThreshold,
		MaxSteps:   docseek.DefaultMaxSteps,
	}
}

func newDeps(stdout, stderr *bytes.Buffer) *main.Dependencies {
	cfg := docseek.DefaultConfig()
	cfg.EntryURL = entryURL
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Config: cfg,
		Seeker: newSeeker(softoSite()),
	}
}

func TestAskCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("answers single question", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		err := (&main.AskCmd{Question: "What is the email?"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "biuro@softo.test\n")
		assert.Contains(t, stdout.String(), "source: https://softo.test/kontakt")
		assert.Empty(t, stderr.String())
	})

	t.Run("reports exhausted search", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		err := (&main.AskCmd{Question: "Who is the CEO?"}).Run(deps)

		assert.Equal(t, docseek.ENOCANDIDATE, docseek.ErrorCode(err))
		assert.Contains(t, stderr.String(), "visited 2 pages")
		assert.Empty(t, stdout.String())
	})

	t.Run("requires entry URL", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Config.EntryURL = ""

		err := (&main.AskCmd{Question: "What is the email?"}).Run(deps)

		assert.Equal(t, docseek.EINVALID, docseek.ErrorCode(err))
		assert.Contains(t, stderr.String(), "entry URL required")
	})

	t.Run("entry flag overrides config", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Config.EntryURL = "https://elsewhere.test/"

		err := (&main.AskCmd{Question: "What is the email?", Entry: entryURL}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "biuro@softo.test")
	})

	t.Run("requires question source for batch", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		err := (&main.AskCmd{}).Run(deps)

		assert.Equal(t, docseek.EINVALID, docseek.ErrorCode(err))
		assert.Contains(t, stderr.String(), "no questions")
	})
}

func TestAskCmd_Run_Batch(t *testing.T) {
	t.Parallel()

	questions := &mock.QuestionSource{
		QuestionsFn: func(context.Context) ([]docseek.Question, error) {
			return []docseek.Question{
				{ID: "01", Text: "What is the email?"},
				{ID: "02", Text: "Who is the CEO?"},
			}, nil
		},
	}

	t.Run("prints answers in order", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Questions = questions

		err := (&main.AskCmd{}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Answering 2 questions from https://softo.test/")
		assert.Contains(t, out, "01\tbiuro@softo.test\thttps://softo.test/kontakt\n")
		assert.Contains(t, out, "02\tunknown\t(no_candidate)\n")
		assert.Contains(t, out, "Answered 1 of 2 questions")
		assert.Less(t, strings.Index(out, "01\t"), strings.Index(out, "02\t"))
		assert.Contains(t, stderr.String(), "02 failed")
	})

	t.Run("reads questions from file flag", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "questions.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"07": "What is the email?"}`), 0o644))
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		err := (&main.AskCmd{Questions: path}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "07\tbiuro@softo.test")
	})

	t.Run("writes output file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "answers.json")
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Questions = questions

		err := (&main.AskCmd{Output: path}).Run(deps)

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got map[string]string
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, map[string]string{"01": "biuro@softo.test", "02": "unknown"}, got)
		assert.Contains(t, stdout.String(), "Wrote answers to "+path)
	})

	t.Run("reports answers", func(t *testing.T) {
		t.Parallel()

		var reported []docseek.Answer
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Questions = questions
		deps.Reporter = &mock.AnswerReporter{
			ReportFn: func(_ context.Context, answers []docseek.Answer) (*docseek.Ack, error) {
				reported = answers
				return &docseek.Ack{Passed: true, Message: "OK"}, nil
			},
		}

		err := (&main.AskCmd{Report: true}).Run(deps)

		require.NoError(t, err)
		require.Len(t, reported, 2)
		assert.Equal(t, "01", reported[0].QuestionID)
		assert.Contains(t, stdout.String(), "Report accepted: OK")
	})

	t.Run("rejected report is an error", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Questions = questions
		deps.Reporter = &mock.AnswerReporter{
			ReportFn: func(context.Context, []docseek.Answer) (*docseek.Ack, error) {
				return &docseek.Ack{Passed: false, Code: -340, Message: "wrong answer for 02"}, nil
			},
		}

		err := (&main.AskCmd{Report: true}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "report rejected (code -340): wrong answer for 02")
	})

	t.Run("report without reporter", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Questions = questions

		err := (&main.AskCmd{Report: true}).Run(deps)

		assert.Equal(t, docseek.EINVALID, docseek.ErrorCode(err))
	})

	t.Run("question source failure", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Questions = &mock.QuestionSource{
			QuestionsFn: func(context.Context) ([]docseek.Question, error) {
				return nil, docseek.Errorf(docseek.EFETCH, "HTTP 503")
			},
		}

		err := (&main.AskCmd{}).Run(deps)

		assert.Equal(t, docseek.EFETCH, docseek.ErrorCode(err))
		assert.Contains(t, stderr.String(), "HTTP 503")
	})

	t.Run("concurrency flag", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Questions = questions

		err := (&main.AskCmd{Concurrency: 3}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 3, deps.Seeker.Concurrency)
		assert.Contains(t, stdout.String(), "Answered 1 of 2 questions")
	})
}
