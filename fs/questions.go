package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/docseek"
)

// Ensure QuestionFile implements docseek.QuestionSource at compile time.
var _ docseek.QuestionSource = (*QuestionFile)(nil)

// QuestionFile reads the question batch from a local JSON object of
// question ID to question text.
type QuestionFile struct {
	path string
}

// NewQuestionFile creates a new QuestionFile.
func NewQuestionFile(path string) *QuestionFile {
	return &QuestionFile{path: path}
}

// Questions decodes the file. Questions keep the order of the file's keys.
func (f *QuestionFile) Questions(ctx context.Context) ([]docseek.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Clean(f.path))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, docseek.Errorf(docseek.ENOTFOUND, "questions file %s not found", f.path)
	} else if err != nil {
		return nil, docseek.Errorf(docseek.EINVALID, "open questions: %v", err)
	}
	defer file.Close()

	return docseek.DecodeQuestions(file)
}
