package main

import (
	"fmt"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/crawl"
	"github.com/fwojciec/docseek/fs"
)

// adHocQuestionID identifies a question given on the command line.
const adHocQuestionID = "question"

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	entryURL := c.Entry
	if entryURL == "" {
		entryURL = deps.Config.EntryURL
	}
	if entryURL == "" {
		err := docseek.Errorf(docseek.EINVALID, "entry URL required: pass --entry or set entry_url")
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}
	if c.Concurrency > 0 {
		deps.Seeker.Concurrency = c.Concurrency
	}

	if c.Question != "" {
		return c.runOne(deps, entryURL)
	}
	return c.runBatch(deps, entryURL)
}

func (c *AskCmd) runOne(deps *Dependencies, entryURL string) error {
	q := docseek.Question{ID: adHocQuestionID, Text: c.Question}

	result, err := deps.Seeker.AnswerAll(deps.Ctx, []docseek.Question{q}, entryURL, nil)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}
	answer := result.Answers[0]
	observe(deps, &answer)

	if answer.Status != docseek.StatusAnswered {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(answer.Err))
		fmt.Fprintf(deps.Stderr, "  visited %d pages\n", len(answer.Visited))
		return answer.Err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)
	fmt.Fprintf(deps.Stdout, "  source: %s%s\n", answer.URL, cacheNote(&answer))
	return nil
}

func (c *AskCmd) runBatch(deps *Dependencies, entryURL string) error {
	source := deps.Questions
	if c.Questions != "" {
		source = questionSource(c.Questions)
	}
	if source == nil {
		err := docseek.Errorf(docseek.EINVALID, "no questions: pass a question, --questions, or set questions.url or questions.file")
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}

	questions, err := source.Questions(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Answering %d questions from %s\n", event.Total, entryURL)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s failed: %s\n", event.Completed, event.Total, event.QuestionID, docseek.ErrorMessage(event.Error))
		}
	}

	result, err := deps.Seeker.AnswerAll(deps.Ctx, questions, entryURL, progress)
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}

	for i := range result.Answers {
		a := &result.Answers[i]
		observe(deps, a)
		if a.Status == docseek.StatusAnswered {
			fmt.Fprintf(deps.Stdout, "%s\t%s\t%s%s\n", a.QuestionID, a.Text, a.URL, cacheNote(a))
		} else {
			fmt.Fprintf(deps.Stdout, "%s\t%s\t(%s)\n", a.QuestionID, deps.Config.Report.FailureMarker, docseek.ErrorCode(a.Err))
		}
	}
	fmt.Fprintf(deps.Stdout, "Answered %d of %d questions\n", result.Answered, len(questions))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}

	output := deps.Output
	if c.Output != "" {
		output = fs.NewAnswerWriter(c.Output, deps.Config.Report.FailureMarker)
	}
	if output != nil {
		ack, err := output.Report(deps.Ctx, result.Answers)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote answers to %s\n", ack.Message)
	}

	if c.Report {
		return report(deps, result.Answers)
	}
	return nil
}

func report(deps *Dependencies, answers []docseek.Answer) error {
	if deps.Reporter == nil {
		err := docseek.Errorf(docseek.EINVALID, "report URL not configured: set report.url")
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}

	ack, err := deps.Reporter.Report(deps.Ctx, answers)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}
	if !ack.Passed {
		fmt.Fprintf(deps.Stderr, "report rejected (code %d): %s\n", ack.Code, ack.Message)
		return docseek.Errorf(docseek.EINVALID, "report rejected: %s", ack.Message)
	}
	fmt.Fprintf(deps.Stdout, "Report accepted: %s\n", ack.Message)
	return nil
}

func observe(deps *Dependencies, a *docseek.Answer) {
	if deps.Metrics != nil {
		deps.Metrics.ObserveAnswer(a)
	}
}

func cacheNote(a *docseek.Answer) string {
	if a.CacheHit {
		return " (cached)"
	}
	return ""
}
