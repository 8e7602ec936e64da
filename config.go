package docseek

import (
	"net/url"
	"time"
)

// Default configuration values.
const (
	DefaultCollection    = "pages"
	DefaultThreshold     = 0.5
	DefaultMaxSteps      = 14
	DefaultStepTimeout   = 30 * time.Second
	DefaultFetchTimeout  = 10 * time.Second
	DefaultRateLimit     = 2.0
	DefaultFailureMarker = "unknown"
)

// Config holds the static settings for a run.
type Config struct {
	// EntryURL is the page every batch starts from.
	EntryURL string `yaml:"entry_url"`

	// Collection names the semantic cache collection.
	Collection string `yaml:"collection"`

	// Threshold is the minimum similarity score for a cache hit (inclusive).
	Threshold float64 `yaml:"threshold"`

	// MaxSteps caps the pages examined per question. Zero disables the cap.
	MaxSteps int `yaml:"max_steps"`

	// StepTimeout bounds every network call made while resolving a question.
	StepTimeout time.Duration `yaml:"step_timeout"`

	// Concurrency is the number of questions resolved at once.
	Concurrency int `yaml:"concurrency"`

	Database  DatabaseConfig  `yaml:"database"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Questions QuestionsConfig `yaml:"questions"`
	Report    ReportConfig    `yaml:"report"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DatabaseConfig holds semantic cache storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// FetchConfig holds page retrieval settings.
type FetchConfig struct {
	Backend       string          `yaml:"backend"`   // http, rod
	Extractor     string          `yaml:"extractor"` // trafilatura, readability
	Timeout       time.Duration   `yaml:"timeout"`
	RateLimit     float64         `yaml:"rate_limit"` // requests per second per host
	RetryDelays   []time.Duration `yaml:"retry_delays"`
	SameHostLinks bool            `yaml:"same_host_links"` // drop links to other hosts
}

// OracleConfig holds language model settings.
type OracleConfig struct {
	Provider    string  `yaml:"provider"` // gemini, openai
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // gemini, openai
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Dimensions int    `yaml:"dimensions"`
}

// QuestionsConfig locates the question batch. URL takes precedence over File.
type QuestionsConfig struct {
	URL  string `yaml:"url"`
	File string `yaml:"file"`
}

// ReportConfig holds answer delivery settings.
type ReportConfig struct {
	URL           string `yaml:"url"`
	Task          string `yaml:"task"`
	APIKey        string `yaml:"api_key"`
	FailureMarker string `yaml:"failure_marker"`
	Output        string `yaml:"output"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// File receives metrics in Prometheus text format at exit.
	File string `yaml:"file"`
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() Config {
	return Config{
		Collection:  DefaultCollection,
		Threshold:   DefaultThreshold,
		MaxSteps:    DefaultMaxSteps,
		StepTimeout: DefaultStepTimeout,
		Concurrency: 1,
		Fetch: FetchConfig{
			Backend:   "http",
			Extractor: "trafilatura",
			Timeout:   DefaultFetchTimeout,
			RateLimit: DefaultRateLimit,
		},
		Oracle: OracleConfig{
			Provider:    "gemini",
			Temperature: 0.2,
		},
		Embedding: EmbeddingConfig{
			Provider: "gemini",
		},
		Report: ReportConfig{
			FailureMarker: DefaultFailureMarker,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate returns an error if the configuration contains invalid values.
func (c *Config) Validate() error {
	if c.EntryURL != "" {
		u, err := url.Parse(c.EntryURL)
		if err != nil || !u.IsAbs() {
			return Errorf(EINVALID, "entry URL %q must be absolute", c.EntryURL)
		}
	}
	if c.Collection == "" {
		return Errorf(EINVALID, "collection required")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return Errorf(EINVALID, "threshold must be between 0 and 1, got %v", c.Threshold)
	}
	if c.MaxSteps < 0 {
		return Errorf(EINVALID, "max steps must not be negative")
	}
	if c.StepTimeout < 0 {
		return Errorf(EINVALID, "step timeout must not be negative")
	}
	if c.Concurrency < 1 {
		return Errorf(EINVALID, "concurrency must be at least 1")
	}
	switch c.Fetch.Backend {
	case "http", "rod":
	default:
		return Errorf(EINVALID, "unknown fetch backend %q (use http or rod)", c.Fetch.Backend)
	}
	switch c.Fetch.Extractor {
	case "trafilatura", "readability":
	default:
		return Errorf(EINVALID, "unknown extractor %q (use trafilatura or readability)", c.Fetch.Extractor)
	}
	for _, p := range []string{c.Oracle.Provider, c.Embedding.Provider} {
		switch p {
		case "gemini", "openai":
		default:
			return Errorf(EINVALID, "unknown provider %q (use gemini or openai)", p)
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return Errorf(EINVALID, "unknown log format %q (use text or json)", c.Log.Format)
	}
	return nil
}
