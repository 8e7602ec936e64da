package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/crawl"
)

// Run executes the warm command.
func (c *WarmCmd) Run(deps *Dependencies) error {
	var urlFilter *docseek.URLFilter
	if len(c.Filter) > 0 {
		urlFilter = &docseek.URLFilter{}
		for _, pattern := range c.Filter {
			re, err := regexp.Compile(pattern)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: invalid filter pattern %q: %v\n", pattern, err)
				return docseek.Errorf(docseek.EINVALID, "invalid filter pattern %q: %v", pattern, err)
			}
			urlFilter.Include = append(urlFilter.Include, re)
		}
	}

	if c.Concurrency > 0 {
		deps.Warmer.Concurrency = c.Concurrency
	}
	if c.MaxPages > 0 {
		deps.Warmer.MaxPages = c.MaxPages
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			if event.Total > 0 {
				fmt.Fprintf(deps.Stdout, "  Found %d URLs\n", event.Total)
			} else {
				fmt.Fprintln(deps.Stdout, "  No sitemap, following links")
			}
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", crawl.TruncateURL(event.URL, 80), docseek.ErrorMessage(event.Error))
		}
	}

	fmt.Fprintf(deps.Stdout, "Warming %q from %s\n", deps.Warmer.Collection, c.URL)
	result, err := deps.Warmer.Warm(deps.Ctx, c.URL, urlFilter, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Added %d pages (%s, %s), skipped %d, failed %d\n",
		result.Added, crawl.FormatBytes(result.Bytes), crawl.FormatTokens(result.Tokens), result.Skipped, result.Failed)
	return nil
}
