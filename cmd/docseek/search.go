package main

import (
	"fmt"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/crawl"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	collection := deps.Config.Collection

	matches, err := deps.Cache.Search(deps.Ctx, collection, c.Query, c.Limit)
	if docseek.ErrorCode(err) == docseek.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "collection %q does not exist. Use 'docseek warm' to fill it.\n", collection)
		return err
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docseek.ErrorMessage(err))
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintf(deps.Stdout, "No cached pages in %q\n", collection)
		return nil
	}

	for _, m := range matches {
		hit := " "
		if m.Score >= deps.Config.Threshold {
			hit = "*"
		}
		line := fmt.Sprintf("%s %.4f  %s", hit, m.Score, crawl.TruncateURL(m.Entry.Page.URL, 80))
		if m.Entry.Page.Title != "" {
			line += "  " + m.Entry.Page.Title
		}
		fmt.Fprintln(deps.Stdout, line)
	}
	return nil
}
