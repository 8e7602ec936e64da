package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/crawl"
	"github.com/fwojciec/docseek/fs"
	"github.com/fwojciec/docseek/gemini"
	"github.com/fwojciec/docseek/goquery"
	"github.com/fwojciec/docseek/htmltomarkdown"
	dshttp "github.com/fwojciec/docseek/http"
	"github.com/fwojciec/docseek/openai"
	"github.com/fwojciec/docseek/prometheus"
	"github.com/fwojciec/docseek/readability"
	"github.com/fwojciec/docseek/rod"
	dsslog "github.com/fwojciec/docseek/slog"
	"github.com/fwojciec/docseek/sqlite"
	"github.com/fwojciec/docseek/trafilatura"
	"google.golang.org/genai"
)

// wire builds the services cmd needs from m.Config into deps.
func (m *Main) wire(ctx context.Context, deps *Dependencies, cmd string, stderr io.Writer) error {
	cfg := m.Config
	logger := newLogger(stderr, cfg.Log)
	deps.Logger = logger

	if cfg.Metrics.File != "" {
		deps.Metrics = prometheus.NewMetrics()
	}

	embedder := m.Embedder
	if embedder == nil {
		var err error
		if embedder, err = newEmbedder(ctx, cfg.Embedding); err != nil {
			fmt.Fprintln(stderr, keyHint(cfg.Embedding.Provider))
			return err
		}
	}
	embedder = sqlite.NewEmbeddingCache(m.DB, embedder, embeddingModel(cfg.Embedding), logger)

	var cache docseek.SemanticCache = sqlite.NewCache(m.DB, embedder)
	if deps.Metrics != nil {
		cache = deps.Metrics.InstrumentCache(cache)
	}
	cache = dsslog.NewLoggingCache(cache, logger)
	deps.Cache = cache

	if cmd == "search" {
		return nil
	}

	pages, err := m.newPages(cfg.Fetch, logger)
	if err != nil {
		return err
	}
	if deps.Metrics != nil {
		pages = deps.Metrics.InstrumentPageFetcher(pages)
	}
	pages = dsslog.NewLoggingPageFetcher(pages, logger)

	if cmd == "warm" {
		var tokens docseek.TokenCounter
		if tc, err := gemini.NewTokenCounter(gemini.DefaultModel); err != nil {
			logger.Warn("token counting disabled", "error", err)
		} else {
			tokens = tc
		}
		deps.Warmer = &crawl.Warmer{
			Sitemaps:     dsslog.NewLoggingSitemapService(dshttp.NewSitemapService(nil), logger),
			Pages:        pages,
			Cache:        cache,
			TokenCounter: tokens,
			Collection:   cfg.Collection,
			Logger:       logger,
		}
		return nil
	}

	oracle := m.Oracle
	if oracle == nil {
		if oracle, err = newOracle(ctx, cfg.Oracle); err != nil {
			fmt.Fprintln(stderr, keyHint(cfg.Oracle.Provider))
			return err
		}
	}
	if deps.Metrics != nil {
		oracle = deps.Metrics.InstrumentOracle(oracle)
	}
	oracle = dsslog.NewLoggingOracle(oracle, logger)

	deps.Seeker = &crawl.Seeker{
		Pages:       pages,
		Cache:       cache,
		Oracle:      oracle,
		Collection:  cfg.Collection,
		Threshold:   cfg.Threshold,
		MaxSteps:    cfg.MaxSteps,
		StepTimeout: cfg.StepTimeout,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}
	deps.Questions = newQuestionSource(cfg.Questions)
	if cfg.Report.URL != "" {
		deps.Reporter = dsslog.NewLoggingReporter(
			dshttp.NewReporter(nil, cfg.Report.URL, cfg.Report.Task, cfg.Report.APIKey, cfg.Report.FailureMarker),
			logger,
		)
	}
	if cfg.Report.Output != "" {
		deps.Output = fs.NewAnswerWriter(cfg.Report.Output, cfg.Report.FailureMarker)
	}
	return nil
}

// newPages composes the page pipeline: fetch, extract main content,
// convert to markdown and collect links.
func (m *Main) newPages(cfg docseek.FetchConfig, logger *slog.Logger) (docseek.PageFetcher, error) {
	fetcher := m.Fetcher
	if fetcher == nil {
		switch cfg.Backend {
		case "rod":
			f, err := rod.NewFetcher(rod.WithFetchTimeout(cfg.Timeout))
			if err != nil {
				return nil, docseek.Errorf(docseek.EINTERNAL, "failed to start browser (Chrome or Chromium must be installed): %v", err)
			}
			fetcher = f
		default:
			fetcher = dshttp.NewFetcher(dshttp.WithTimeout(cfg.Timeout))
		}
		m.closers = append(m.closers, fetcher)
	}

	var extractor docseek.Extractor
	switch cfg.Extractor {
	case "readability":
		extractor = readability.NewExtractor()
	default:
		extractor = trafilatura.NewExtractor()
	}

	var limiter docseek.DomainLimiter
	if cfg.RateLimit > 0 {
		limiter = crawl.NewDomainLimiter(cfg.RateLimit)
	}

	return &crawl.Pages{
		Fetcher:     dsslog.NewLoggingFetcher(fetcher, logger),
		Extractor:   extractor,
		Converter:   htmltomarkdown.NewConverter(),
		Links:       &goquery.LinkExtractor{SameHostOnly: cfg.SameHostLinks},
		RateLimiter: limiter,
		RetryDelays: cfg.RetryDelays,
		Logger:      logger,
	}, nil
}

func newOracle(ctx context.Context, cfg docseek.OracleConfig) (docseek.Oracle, error) {
	if cfg.APIKey == "" {
		return nil, docseek.Errorf(docseek.EINVALID, "%s API key not set", cfg.Provider)
	}
	switch cfg.Provider {
	case "openai":
		model := cfg.Model
		if model == "" {
			model = openai.DefaultModel
		}
		return openai.NewOracle(openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: model}, cfg.Temperature), nil
	default:
		client, err := newGenaiClient(ctx, cfg.APIKey, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return gemini.NewOracle(client, cfg.Model, cfg.Temperature), nil
	}
}

func newEmbedder(ctx context.Context, cfg docseek.EmbeddingConfig) (docseek.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, docseek.Errorf(docseek.EINVALID, "%s API key not set", cfg.Provider)
	}
	switch cfg.Provider {
	case "openai":
		return openai.NewEmbedder(openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: embeddingModel(cfg)}, cfg.Dimensions), nil
	default:
		client, err := newGenaiClient(ctx, cfg.APIKey, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return gemini.NewEmbedder(client, cfg.Model, cfg.Dimensions), nil
	}
}

// embeddingModel names the model whose vectors the embedding cache holds.
func embeddingModel(cfg docseek.EmbeddingConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if cfg.Provider == "openai" {
		return openai.DefaultEmbeddingModel
	}
	return gemini.DefaultEmbeddingModel
}

func newGenaiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "failed to connect to Gemini API: %v", err)
	}
	return client, nil
}

func newQuestionSource(cfg docseek.QuestionsConfig) docseek.QuestionSource {
	switch {
	case cfg.URL != "":
		return dshttp.NewQuestionSource(nil, cfg.URL)
	case cfg.File != "":
		return fs.NewQuestionFile(cfg.File)
	default:
		return nil
	}
}

// questionSource resolves a --questions value, a URL or a file path.
func questionSource(location string) docseek.QuestionSource {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return dshttp.NewQuestionSource(nil, location)
	}
	return fs.NewQuestionFile(location)
}

func newLogger(w io.Writer, cfg docseek.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func keyHint(provider string) string {
	if provider == "openai" {
		return "Hint: Set OPENAI_API_KEY or the api_key configuration value"
	}
	return "Hint: Set GEMINI_API_KEY or the api_key configuration value. Get a key at https://aistudio.google.com/apikey"
}
