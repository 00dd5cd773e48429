// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// officeBins lists the LibreOffice executables tried, in order.
var officeBins = []string{"soffice", "libreoffice"}

// commander abstracts command execution for testing.
type commander interface {
	LookPath(file string) (string, error)
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osCommander struct{}

func (osCommander) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osCommander) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LibreOfficeLauncher drives a headless LibreOffice. Every export is a
// separate soffice process, so Quit and Close have nothing to release.
type LibreOfficeLauncher struct {
	cmd commander
}

// NewLibreOfficeLauncher returns a launcher that runs soffice from PATH.
func NewLibreOfficeLauncher() *LibreOfficeLauncher {
	return &LibreOfficeLauncher{cmd: osCommander{}}
}

func (l *LibreOfficeLauncher) Name() string { return "libreoffice" }

// Available reports whether a LibreOffice executable is on PATH.
func (l *LibreOfficeLauncher) Available() bool {
	_, err := l.lookup()
	return err == nil
}

func (l *LibreOfficeLauncher) lookup() (string, error) {
	for _, bin := range officeBins {
		if path, err := l.cmd.LookPath(bin); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("none of %s found on PATH: %w", strings.Join(officeBins, ", "), ErrUnsupported)
}

func (l *LibreOfficeLauncher) Launch(ctx context.Context) (Application, error) {
	bin, err := l.lookup()
	if err != nil {
		return nil, err
	}
	return &officeApp{bin: bin, cmd: l.cmd}, nil
}

type officeApp struct {
	bin string
	cmd commander
}

func (a *officeApp) Open(_ context.Context, path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &officeDoc{app: a, src: path}, nil
}

func (a *officeApp) Quit() error { return nil }

type officeDoc struct {
	app *officeApp
	src string
}

// ExportPDF runs soffice --convert-to pdf into dst's directory. soffice names
// the output after the source, so it is renamed when dst differs.
func (d *officeDoc) ExportPDF(ctx context.Context, dst string) error {
	outDir := filepath.Dir(dst)
	args := []string{"--headless", "--norestore", "--convert-to", "pdf", "--outdir", outDir, d.src}
	out, err := d.app.cmd.CombinedOutput(ctx, d.app.bin, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("soffice: %w: %s", err, msg)
		}
		return fmt.Errorf("soffice: %w", err)
	}

	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(d.src), filepath.Ext(d.src))+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("soffice produced no PDF for %s: %w", d.src, err)
	}
	if produced != dst {
		if err := os.Rename(produced, dst); err != nil {
			return fmt.Errorf("moving %s to %s: %w", produced, dst, err)
		}
	}
	return nil
}

func (d *officeDoc) Close() error { return nil }
