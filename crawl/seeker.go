package crawl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/docseek"
	"golang.org/x/sync/errgroup"
)

// Seeker resolves questions by reading pages of a site.
//
// For each question it first asks the semantic cache for a page similar to
// the question. On a miss it fetches the start URL live. Whenever the page
// at hand does not answer the question, the oracle picks the next link among
// those not yet visited, which is always fetched live. A question fails when
// no unvisited link remains, when a fetch or oracle call fails, or when
// MaxSteps pages have been examined.
type Seeker struct {
	Pages  docseek.PageFetcher
	Cache  docseek.SemanticCache
	Oracle docseek.Oracle

	// Collection names the cache collection shared by all questions.
	Collection string

	// Threshold is the minimum cache score treated as a hit (inclusive).
	Threshold float64

	// MaxSteps caps the pages examined per question. Zero disables the cap.
	MaxSteps int

	// StepTimeout bounds each fetch, cache and oracle call. Zero disables it.
	StepTimeout time.Duration

	// Concurrency is the number of questions resolved at once. Values below
	// two resolve questions one after another.
	Concurrency int

	Logger *slog.Logger
}

// BatchResult holds the outcome of a batch, one answer per question in input
// order.
type BatchResult struct {
	Answers  []docseek.Answer
	Answered int
	Failed   int
}

// AnswerAll resolves every question in order.
//
// Questions run one after another by default. Each starts from the URL of
// the page that answered the previous successful question, or from entryURL
// until one succeeds. With Concurrency above one, questions run in parallel
// and each starts from entryURL.
//
// A failed question never stops the batch. AnswerAll returns an error only
// if the cache collection cannot be prepared or ctx ends; in the latter case
// the answers resolved so far are returned with the error.
func (s *Seeker) AnswerAll(ctx context.Context, questions []docseek.Question, entryURL string, progress ProgressFunc) (*BatchResult, error) {
	if err := s.Cache.EnsureCollection(ctx, s.Collection); err != nil {
		return nil, err
	}

	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	progress(ProgressEvent{Type: ProgressStarted, Total: len(questions)})

	var (
		result *BatchResult
		err    error
	)
	if s.Concurrency > 1 {
		result, err = s.answerConcurrently(ctx, questions, entryURL, progress)
	} else {
		result, err = s.answerSequentially(ctx, questions, entryURL, progress)
	}

	progress(ProgressEvent{
		Type:      ProgressFinished,
		Completed: result.Answered + result.Failed,
		Total:     len(questions),
	})

	return result, err
}

func (s *Seeker) answerSequentially(ctx context.Context, questions []docseek.Question, entryURL string, progress ProgressFunc) (*BatchResult, error) {
	result := &BatchResult{Answers: make([]docseek.Answer, 0, len(questions))}

	lastGoodURL := entryURL
	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		answer := s.Resolve(ctx, q, lastGoodURL)
		if answer.Status == docseek.StatusAnswered {
			lastGoodURL = answer.URL
		}
		result.add(*answer)
		progress(answerEvent(answer, result, len(questions)))
	}

	return result, ctx.Err()
}

func (s *Seeker) answerConcurrently(ctx context.Context, questions []docseek.Question, entryURL string, progress ProgressFunc) (*BatchResult, error) {
	answers := make([]*docseek.Answer, len(questions))

	var mu sync.Mutex
	progressResult := &BatchResult{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i, q := range questions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			answer := s.Resolve(gctx, q, entryURL)
			answers[i] = answer

			mu.Lock()
			progressResult.add(*answer)
			progress(answerEvent(answer, progressResult, len(questions)))
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	result := &BatchResult{Answers: make([]docseek.Answer, 0, len(questions))}
	for _, a := range answers {
		if a != nil {
			result.add(*a)
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	return result, err
}

func (r *BatchResult) add(a docseek.Answer) {
	r.Answers = append(r.Answers, a)
	if a.Status == docseek.StatusAnswered {
		r.Answered++
	} else {
		r.Failed++
	}
}

func answerEvent(a *docseek.Answer, r *BatchResult, total int) ProgressEvent {
	ev := ProgressEvent{
		Type:       ProgressAnswered,
		Completed:  r.Answered + r.Failed,
		Total:      total,
		QuestionID: a.QuestionID,
		URL:        a.URL,
	}
	if a.Status != docseek.StatusAnswered {
		ev.Type = ProgressFailed
		ev.Error = a.Err
	}
	return ev
}

// Resolve answers a single question starting at startURL.
// It always returns an Answer; failures are reported through its Status and
// Err fields.
func (s *Seeker) Resolve(ctx context.Context, q docseek.Question, startURL string) *docseek.Answer {
	logger := loggerOrDiscard(s.Logger).With("question", q.ID)
	answer := &docseek.Answer{QuestionID: q.ID}
	visited := NewVisitedSet()

	fail := func(err error) *docseek.Answer {
		answer.Status = docseek.StatusFailed
		answer.Err = err
		answer.Visited = visited.URLs()
		logger.Warn("question failed", "visited", visited.Len(), "error", err)
		return answer
	}

	page := s.lookup(ctx, q, logger)
	answer.CacheHit = page != nil

	currentURL := docseek.StripFragment(startURL)
	steps := 0
	for {
		if page == nil {
			if s.MaxSteps > 0 && steps >= s.MaxSteps {
				return fail(docseek.Errorf(docseek.ELIMIT, "no answer after %d pages", steps))
			}

			fetched, err := s.fetch(ctx, currentURL)
			if err != nil {
				return fail(err)
			}
			visited.Add(currentURL)
			s.store(ctx, fetched, logger)
			page = fetched
		}
		visited.Add(page.URL)
		steps++

		text, err := s.extractAnswer(ctx, q.Text, page.Text)
		switch {
		case err == nil && strings.TrimSpace(text) != "":
			answer.Text = strings.TrimSpace(text)
			answer.Status = docseek.StatusAnswered
			answer.URL = page.URL
			answer.Visited = visited.URLs()
			logger.Info("question answered", "url", page.URL, "visited", visited.Len(), "cacheHit", answer.CacheHit)
			return answer
		case err != nil && docseek.ErrorCode(err) != docseek.ENOTFOUND:
			return fail(err)
		}
		logger.Debug("no answer on page", "url", page.URL)

		candidates := visited.Unvisited(page.Links)
		if len(candidates) == 0 {
			return fail(docseek.Errorf(docseek.ENOCANDIDATE, "answer not found: no unvisited links after %d pages", visited.Len()))
		}

		next, err := s.rankLinks(ctx, q.Text, candidates)
		if err != nil {
			return fail(err)
		}
		if !containsLink(candidates, next) {
			return fail(docseek.Errorf(docseek.EORACLE, "oracle chose %q which is not an unvisited candidate", next.URL))
		}
		logger.Debug("following link", "from", page.URL, "to", next.URL, "candidates", len(candidates))

		currentURL = docseek.StripFragment(next.URL)
		page = nil
	}
}

// lookup returns the cached page for q when its score reaches the
// threshold. Cache failures are logged and treated as a miss.
func (s *Seeker) lookup(ctx context.Context, q docseek.Question, logger *slog.Logger) *docseek.Page {
	stepCtx, cancel := withTimeout(ctx, s.StepTimeout)
	defer cancel()

	matches, err := s.Cache.Search(stepCtx, s.Collection, q.Text, 1)
	if err != nil {
		logger.Warn("cache lookup failed", "error", err)
		return nil
	}
	if len(matches) == 0 || matches[0].Entry == nil {
		logger.Debug("cache miss")
		return nil
	}
	if matches[0].Score < s.Threshold {
		logger.Debug("cache miss", "url", matches[0].Entry.Page.URL, "score", matches[0].Score)
		return nil
	}

	logger.Debug("cache hit", "url", matches[0].Entry.Page.URL, "score", matches[0].Score)
	page := matches[0].Entry.Page
	return &page
}

func (s *Seeker) fetch(ctx context.Context, url string) (*docseek.Page, error) {
	stepCtx, cancel := withTimeout(ctx, s.StepTimeout)
	defer cancel()

	page, err := s.Pages.FetchPage(stepCtx, url)
	if err != nil {
		if docseek.ErrorCode(err) == docseek.EFETCH {
			return nil, err
		}
		return nil, docseek.Errorf(docseek.EFETCH, "fetch %s: %v", url, err)
	}
	return page, nil
}

// store adds the page to the cache. Failures are logged and never fail the
// question: the page text remains usable for answering.
func (s *Seeker) store(ctx context.Context, page *docseek.Page, logger *slog.Logger) {
	if page.Text == "" {
		logger.Debug("not caching page without text", "url", page.URL)
		return
	}

	stepCtx, cancel := withTimeout(ctx, s.StepTimeout)
	defer cancel()

	if _, err := s.Cache.Add(stepCtx, s.Collection, page); err != nil {
		logger.Warn("page not cached", "url", page.URL, "code", docseek.ErrorCode(err), "error", err)
	}
}

func (s *Seeker) extractAnswer(ctx context.Context, question, text string) (string, error) {
	stepCtx, cancel := withTimeout(ctx, s.StepTimeout)
	defer cancel()

	answer, err := s.Oracle.ExtractAnswer(stepCtx, question, text)
	if err != nil {
		return "", oracleError(err)
	}
	return answer, nil
}

func (s *Seeker) rankLinks(ctx context.Context, question string, candidates []docseek.Link) (docseek.Link, error) {
	stepCtx, cancel := withTimeout(ctx, s.StepTimeout)
	defer cancel()

	link, err := s.Oracle.RankLinks(stepCtx, question, candidates)
	if err != nil {
		return docseek.Link{}, oracleError(err)
	}
	return link, nil
}

// oracleError reports unclassified oracle failures as EORACLE.
func oracleError(err error) error {
	switch docseek.ErrorCode(err) {
	case docseek.ENOTFOUND, docseek.EORACLE, docseek.ENOCANDIDATE:
		return err
	default:
		return docseek.Errorf(docseek.EORACLE, "oracle: %v", err)
	}
}

func containsLink(links []docseek.Link, l docseek.Link) bool {
	for _, c := range links {
		if c.Equal(l) {
			return true
		}
	}
	return false
}
