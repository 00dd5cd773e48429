// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns images and Word documents into PDFs that the merge
// driver can append. Each converter writes its output next to the source
// file, with the extension changed to ".pdf".
package convert

import (
	"context"
	"errors"
)

// ErrUnsupported reports that no backend is available for a conversion.
var ErrUnsupported = errors.New("conversion capability unsupported")

// Converter produces a PDF from a source file.
type Converter interface {
	// Convert reads the file at src and returns the path of the PDF it
	// wrote. On error no PDF path is returned and the caller skips src.
	Convert(ctx context.Context, src string) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, src string) (string, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, src string) (string, error) {
	return f(ctx, src)
}
