// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncruces/zenity"

	"github.com/pdiddy/pdfmerge/pkg/types"
)

const (
	openTitle = "Select PDF, Word, or Image Files to Merge"
	saveTitle = "Save Merged PDF As"
)

// Dialog function seams; tests replace them.
var (
	selectFileMultiple = zenity.SelectFileMultiple
	selectFileSave     = zenity.SelectFileSave
)

// Dialog shows native modal dialogs. It holds no state between calls; each
// call opens and closes its own dialog.
type Dialog struct{}

// SelectInputs shows a multi-select open dialog filtered to the supported
// formats.
func (Dialog) SelectInputs(ctx context.Context) ([]string, error) {
	paths, err := selectFileMultiple(
		zenity.Context(ctx),
		zenity.Title(openTitle),
		zenity.FileFilters{
			{Name: "PDF, Word, and Image Files", Patterns: types.SupportedPatterns()},
		},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file selection dialog: %w", err)
	}
	return paths, nil
}

// SelectOutput shows a save-as dialog proposing defaultName and forces the
// ".pdf" extension on the answer.
func (Dialog) SelectOutput(ctx context.Context, defaultName string) (string, error) {
	if defaultName == "" {
		defaultName = types.DefaultOutputName
	}
	path, err := selectFileSave(
		zenity.Context(ctx),
		zenity.Title(saveTitle),
		zenity.Filename(defaultName),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{
			{Name: "PDF Files", Patterns: []string{"*.pdf"}},
		},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("save dialog: %w", err)
	}
	return ForcePDFExt(path), nil
}
