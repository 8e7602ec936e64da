package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionFile_Questions(t *testing.T) {
	t.Parallel()

	t.Run("keeps file order", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "questions.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"02": "What is the email?", "01": "Where is the office?"}`), 0o644))

		questions, err := fs.NewQuestionFile(path).Questions(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []docseek.Question{
			{ID: "02", Text: "What is the email?"},
			{ID: "01", Text: "Where is the office?"},
		}, questions)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewQuestionFile(filepath.Join(t.TempDir(), "nope.json")).Questions(context.Background())

		assert.Equal(t, docseek.ENOTFOUND, docseek.ErrorCode(err))
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "questions.json")
		require.NoError(t, os.WriteFile(path, []byte(`["not", "an", "object"]`), 0o644))

		_, err := fs.NewQuestionFile(path).Questions(context.Background())

		assert.Equal(t, docseek.EINVALID, docseek.ErrorCode(err))
	})
}
