// Package fs provides file-based record persistence.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mwalczyk/scholarmail"
)

// Ensure Writer implements scholarmail.PaperWriter at compile time.
var _ scholarmail.PaperWriter = (*Writer)(nil)

// Writer appends papers to a line-delimited JSON file. The sink may
// already hold records from other collectors, so appends preserve
// existing content and keep the one-object-per-line framing intact.
//
// A batch is serialized into memory first and written with a single
// append, so concurrent runs cannot interleave inside a record.
// Guarding whole batches against each other across processes is the
// sink file's responsibility, not handled here.
type Writer struct {
	path string
}

// NewWriter creates a Writer targeting the given sink path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the sink location.
func (w *Writer) Path() string {
	return w.path
}

// WritePapers validates and appends the batch. If the existing file's
// last byte is not a newline, a separating newline is written first so
// the first new record starts on its own line.
func (w *Writer) WritePapers(ctx context.Context, papers []*scholarmail.Paper) error {
	for _, p := range papers {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if len(papers) == 0 {
		return nil
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	needSeparator, err := missingTrailingNewline(w.path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if needSeparator {
		buf.WriteByte('\n')
	}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // redirect URLs carry & and = freely
	for _, p := range papers {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// missingTrailingNewline reports whether the sink exists, is non-empty,
// and does not end in a newline.
func missingTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}
