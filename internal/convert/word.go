// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/pdfmerge/pkg/types"
)

// Launcher starts word-processor instances. Different backends
// (LibreOffice, a conversion container) implement this interface.
type Launcher interface {
	// Name identifies the backend in logs.
	Name() string

	// Launch starts an instance. It returns an error wrapping
	// ErrUnsupported when the backend is not available on this machine.
	Launch(ctx context.Context) (Application, error)
}

// Application is a running word-processor instance.
type Application interface {
	// Open loads the document at path.
	Open(ctx context.Context, path string) (Document, error)

	// Quit terminates the instance.
	Quit() error
}

// Document is a document opened in an Application.
type Document interface {
	// ExportPDF writes the document as a PDF to dst.
	ExportPDF(ctx context.Context, dst string) error

	// Close releases the document.
	Close() error
}

// WordConverter exports Word documents to PDF through a Launcher. Each
// conversion uses its own instance, which is quit afterwards.
type WordConverter struct {
	launcher Launcher
	timeout  time.Duration
	logger   *zap.Logger
}

// NewWordConverter returns a converter backed by l. A zero timeout leaves
// conversions bounded only by the caller's context.
func NewWordConverter(l Launcher, timeout time.Duration, logger *zap.Logger) *WordConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WordConverter{launcher: l, timeout: timeout, logger: logger}
}

// Convert exports src to its sibling ".pdf" path. The document is closed and
// the instance quit on every path after they were obtained.
func (c *WordConverter) Convert(ctx context.Context, src string) (dst string, err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	app, err := c.launcher.Launch(ctx)
	if err != nil {
		return "", fmt.Errorf("starting %s: %w", c.launcher.Name(), err)
	}
	defer func() {
		if qerr := app.Quit(); qerr != nil {
			c.logger.Warn("quitting word processor", zap.String("backend", c.launcher.Name()), zap.Error(qerr))
		}
	}()

	doc, err := app.Open(ctx, src)
	if err != nil {
		return "", fmt.Errorf("opening %s in %s: %w", src, c.launcher.Name(), err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			c.logger.Warn("closing document", zap.String("path", src), zap.Error(cerr))
		}
	}()

	dst = types.PDFSibling(src)
	if err := doc.ExportPDF(ctx, dst); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("exporting %s: timed out after %v: %w", src, c.timeout, err)
		}
		return "", fmt.Errorf("exporting %s: %w", src, err)
	}
	return dst, nil
}

// unsupportedLauncher is the fallback when no backend is installed.
type unsupportedLauncher struct {
	reason string
}

// Unsupported returns a Launcher whose Launch always fails with
// ErrUnsupported, carrying reason in the message.
func Unsupported(reason string) Launcher {
	return unsupportedLauncher{reason: reason}
}

func (u unsupportedLauncher) Name() string { return "none" }

func (u unsupportedLauncher) Launch(context.Context) (Application, error) {
	if u.reason == "" {
		return nil, ErrUnsupported
	}
	return nil, fmt.Errorf("%s: %w", u.reason, ErrUnsupported)
}
