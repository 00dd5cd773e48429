// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selector obtains the files to merge and the output location, from
// native dialogs, command-line arguments, or a job manifest.
package selector

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfmerge/pkg/types"
)

// Selector provides the inputs and output of a merge run. Cancellation is
// reported as an empty result with a nil error; errors are reserved for a
// backend that cannot work at all.
type Selector interface {
	// SelectInputs returns the chosen files in selection order.
	SelectInputs(ctx context.Context) ([]string, error)

	// SelectOutput returns the path to write the merged PDF to, proposing
	// defaultName.
	SelectOutput(ctx context.Context, defaultName string) (string, error)
}

// ForcePDFExt appends ".pdf" to path unless it already ends in it (in any
// case). An empty path stays empty.
func ForcePDFExt(path string) string {
	if path == "" || strings.EqualFold(filepath.Ext(path), ".pdf") {
		return path
	}
	return path + ".pdf"
}

// Static is a Selector over fixed values, used for non-interactive runs.
type Static struct {
	Inputs []string
	Output string
}

func (s Static) SelectInputs(context.Context) ([]string, error) {
	return append([]string(nil), s.Inputs...), nil
}

// SelectOutput returns Output, or defaultName when Output is empty.
func (s Static) SelectOutput(_ context.Context, defaultName string) (string, error) {
	out := s.Output
	if out == "" {
		out = defaultName
	}
	if out == "" {
		out = types.DefaultOutputName
	}
	return ForcePDFExt(out), nil
}
