package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/crawl"
	"github.com/fwojciec/docseek/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config docseek.Config

	Cache     docseek.SemanticCache
	Seeker    *crawl.Seeker
	Warmer    *crawl.Warmer
	Questions docseek.QuestionSource // nil when no batch is configured
	Reporter  docseek.AnswerReporter // nil when no report URL is configured
	Output    docseek.AnswerReporter // nil when no output file is configured
	Metrics   *prometheus.Metrics    // optional
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" type:"path" help:"Configuration file (default: $DOCSEEK_CONFIG)"`
	Verbose bool   `short:"v" help:"Log every fetch, cache and model call"`

	Ask    AskCmd    `cmd:"" help:"Answer one question or the configured question batch"`
	Warm   WarmCmd   `cmd:"" help:"Add the pages of a site to the semantic cache"`
	Search SearchCmd `cmd:"" help:"Show the cached pages most similar to a query"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question    string `arg:"" optional:"" help:"Question to answer (default: the configured batch)"`
	Entry       string `short:"e" help:"URL the search starts from (default: entry_url)"`
	Questions   string `short:"q" help:"Question batch URL or JSON file (default: questions.url or questions.file)"`
	Output      string `short:"o" type:"path" help:"Write the answer map to this JSON file"`
	Report      bool   `short:"r" help:"Send answers to the configured report URL"`
	Concurrency int    `short:"c" help:"Questions resolved at once (default: concurrency)"`
}

// WarmCmd is the "warm" subcommand.
type WarmCmd struct {
	URL         string   `arg:"" help:"Site URL"`
	Filter      []string `short:"F" name:"filter" help:"Filter URLs by regex (repeatable)"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent fetch limit"`
	MaxPages    int      `short:"m" help:"Maximum pages to add (default: 1000)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Text to search for"`
	Limit int    `short:"n" default:"5" help:"Number of matches to show"`
}
