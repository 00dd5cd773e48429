// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/pdfmerge/internal/container"
)

// ContainerLauncher converts documents by piping them through a conversion
// image. It depends on a container.Runtime (docker or podman) injected at
// construction time.
type ContainerLauncher struct {
	runtime container.Runtime
	image   string
}

// NewContainerLauncher returns a launcher that runs image on rt. The image
// reads a document on stdin and writes a PDF on stdout.
func NewContainerLauncher(rt container.Runtime, image string) *ContainerLauncher {
	return &ContainerLauncher{runtime: rt, image: image}
}

func (l *ContainerLauncher) Name() string { return l.runtime.Name() + ":" + l.image }

// Launch verifies that the image exists locally.
func (l *ContainerLauncher) Launch(context.Context) (Application, error) {
	if err := l.runtime.ImageExists(l.image); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return &containerApp{l: l}, nil
}

type containerApp struct {
	l *ContainerLauncher
}

func (a *containerApp) Open(_ context.Context, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &containerDoc{l: a.l, f: f}, nil
}

func (a *containerApp) Quit() error { return nil }

type containerDoc struct {
	l *ContainerLauncher
	f *os.File
}

// ExportPDF streams the open document through the container into dst. A
// failed or empty export leaves no file at dst.
func (d *containerDoc) ExportPDF(ctx context.Context, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	runErr := d.l.runtime.Run(ctx, d.l.image, d.f, out)
	info, statErr := out.Stat()
	closeErr := out.Close()

	switch {
	case runErr != nil:
		err = runErr
	case statErr != nil:
		err = statErr
	case closeErr != nil:
		err = closeErr
	case info.Size() == 0:
		err = fmt.Errorf("%s produced empty output for %s", d.l.image, d.f.Name())
	}
	if err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

func (d *containerDoc) Close() error { return d.f.Close() }
