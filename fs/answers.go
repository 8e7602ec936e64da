// Package fs provides file-based question sources and answer sinks.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/docseek"
)

// Ensure AnswerWriter implements docseek.AnswerReporter at compile time.
var _ docseek.AnswerReporter = (*AnswerWriter)(nil)

// AnswerWriter writes the answer map as a JSON object to a file.
// The file is replaced atomically: answers go to a temporary file in the
// same directory which is then renamed over the target.
type AnswerWriter struct {
	path          string
	failureMarker string
}

// NewAnswerWriter creates a new AnswerWriter writing to path. Failed
// questions are written as failureMarker.
func NewAnswerWriter(path, failureMarker string) *AnswerWriter {
	return &AnswerWriter{path: path, failureMarker: failureMarker}
}

// Report writes answers and acknowledges with the written path.
func (w *AnswerWriter) Report(ctx context.Context, answers []docseek.Answer) (*docseek.Ack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(docseek.AnswerMap(answers, w.failureMarker), "", "  ")
	if err != nil {
		return nil, docseek.Errorf(docseek.EINTERNAL, "encode answers: %v", err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(w.path, data); err != nil {
		return nil, docseek.Errorf(docseek.EINTERNAL, "write answers: %v", err)
	}
	return &docseek.Ack{Passed: true, Message: w.path}, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
