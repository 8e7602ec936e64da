package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/docseek"
	main "github.com/fwojciec/docseek/cmd/docseek"
	"github.com/fwojciec/docseek/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints matches with scores", func(t *testing.T) {
		t.Parallel()

		var gotCollection string
		var gotTopK int
		cache := &mock.SemanticCache{
			SearchFn: func(_ context.Context, collection, query string, topK int) ([]docseek.CacheMatch, error) {
				gotCollection, gotTopK = collection, topK
				return []docseek.CacheMatch{
					{Entry: &docseek.CacheEntry{Page: docseek.Page{URL: "https://softo.test/kontakt", Title: "Kontakt"}}, Score: 0.7312},
					{Entry: &docseek.CacheEntry{Page: docseek.Page{URL: "https://softo.test/"}}, Score: 0.41},
				}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Config: docseek.DefaultConfig(),
			Cache:  cache,
		}

		err := (&main.SearchCmd{Query: "email", Limit: 3}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, docseek.DefaultCollection, gotCollection)
		assert.Equal(t, 3, gotTopK)
		assert.Equal(t, "* 0.7312  https://softo.test/kontakt  Kontakt\n  0.4100  https://softo.test/\n", stdout.String())
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()

		cache := &mock.SemanticCache{
			SearchFn: func(context.Context, string, string, int) ([]docseek.CacheMatch, error) {
				return []docseek.CacheMatch{}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Config: docseek.DefaultConfig(), Cache: cache}

		err := (&main.SearchCmd{Query: "email", Limit: 5}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No cached pages")
	})

	t.Run("missing collection", func(t *testing.T) {
		t.Parallel()

		cache := &mock.SemanticCache{
			SearchFn: func(context.Context, string, string, int) ([]docseek.CacheMatch, error) {
				return nil, docseek.Errorf(docseek.ENOTFOUND, "collection not found")
			},
		}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Config: docseek.DefaultConfig(), Cache: cache}

		err := (&main.SearchCmd{Query: "email", Limit: 5}).Run(deps)

		assert.Equal(t, docseek.ENOTFOUND, docseek.ErrorCode(err))
		assert.Contains(t, stderr.String(), "docseek warm")
	})
}
