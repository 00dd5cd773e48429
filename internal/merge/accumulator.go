// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdfmerge/internal/pdfops"
)

// ErrReleased is returned by accumulator operations after Close.
var ErrReleased = errors.New("accumulator released")

// Accumulator collects PDF documents in order and writes them as one.
type Accumulator interface {
	// Append reads every page of the PDF at path. The file may be deleted
	// as soon as Append returns. It returns the number of pages added.
	Append(path string) (int, error)

	// Pages returns the total number of pages appended so far.
	Pages() int

	// Write writes the merged document to path.
	Write(path string) error

	// Close releases the accumulated documents. It is safe to call more
	// than once.
	Close() error
}

type block struct {
	source string
	data   []byte
	pages  int
}

// PDFAccumulator holds appended documents in memory and merges them with
// pdfcpu on Write.
type PDFAccumulator struct {
	blocks   []block
	pages    int
	released bool
}

// NewPDFAccumulator returns an empty accumulator.
func NewPDFAccumulator() *PDFAccumulator {
	return &PDFAccumulator{}
}

func (a *PDFAccumulator) Append(path string) (int, error) {
	if a.released {
		return 0, ErrReleased
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n, err := pdfops.PageCount(data)
	if err != nil {
		return 0, fmt.Errorf("appending %s: %w", path, err)
	}
	a.blocks = append(a.blocks, block{source: path, data: data, pages: n})
	a.pages += n
	return n, nil
}

func (a *PDFAccumulator) Pages() int { return a.pages }

// Write merges the appended documents into a temporary file next to path and
// renames it into place, so a failed write never leaves a partial output.
func (a *PDFAccumulator) Write(path string) error {
	if a.released {
		return ErrReleased
	}
	if len(a.blocks) == 0 {
		return ErrNothingToMerge
	}

	docs := make([][]byte, len(a.blocks))
	for i, b := range a.blocks {
		docs[i] = b.data
	}

	var buf bytes.Buffer
	if err := pdfops.Merge(&buf, docs); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfmerge-*.pdf")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("creating output: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}

func (a *PDFAccumulator) Close() error {
	a.blocks = nil
	a.released = true
	return nil
}
