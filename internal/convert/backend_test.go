// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfmerge/internal/container"
	"github.com/pdiddy/pdfmerge/pkg/types"
)

// fakeCommander simulates soffice: it writes <outdir>/<base>.pdf unless fail
// is set.
type fakeCommander struct {
	bins map[string]bool
	fail bool
	args []string
}

func (f *fakeCommander) LookPath(file string) (string, error) {
	if f.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeCommander) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	f.args = args
	if f.fail {
		return []byte("Error: source file could not be loaded"), errors.New("exit status 1")
	}
	var outDir string
	for i, a := range args {
		if a == "--outdir" {
			outDir = args[i+1]
		}
	}
	src := args[len(args)-1]
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return nil, os.WriteFile(filepath.Join(outDir, base+".pdf"), []byte("%PDF-1.7"), 0o644)
}

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	images map[string]bool
	output string
	runErr error
	input  string
}

func (f *fakeRuntime) Name() string    { return "docker" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error {
	if f.images[image] {
		return nil
	}
	return errors.New("image " + image + " not found")
}

func (f *fakeRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	data, _ := io.ReadAll(stdin)
	f.input = string(data)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.Copy(stdout, bytes.NewBufferString(f.output))
	return err
}

func writeDocx(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "report.docx")
	require.NoError(t, os.WriteFile(src, []byte("docx bytes"), 0o644))
	return src
}

func TestLibreOffice_Convert(t *testing.T) {
	cmd := &fakeCommander{bins: map[string]bool{"libreoffice": true}}
	l := &LibreOfficeLauncher{cmd: cmd}
	src := writeDocx(t)

	dst, err := NewWordConverter(l, 0, nil).Convert(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, types.PDFSibling(src), dst)
	assert.FileExists(t, dst)
	assert.Equal(t, []string{"--headless", "--norestore", "--convert-to", "pdf", "--outdir", filepath.Dir(src), src}, cmd.args)
}

func TestLibreOffice_Failure(t *testing.T) {
	l := &LibreOfficeLauncher{cmd: &fakeCommander{bins: map[string]bool{"soffice": true}, fail: true}}

	_, err := NewWordConverter(l, 0, nil).Convert(context.Background(), writeDocx(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be loaded")
}

func TestLibreOffice_NotInstalled(t *testing.T) {
	l := &LibreOfficeLauncher{cmd: &fakeCommander{}}
	assert.False(t, l.Available())

	_, err := NewWordConverter(l, 0, nil).Convert(context.Background(), writeDocx(t))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestContainer_Convert(t *testing.T) {
	rt := &fakeRuntime{images: map[string]bool{"docx2pdf:latest": true}, output: "%PDF-1.7 converted"}
	src := writeDocx(t)

	dst, err := NewWordConverter(NewContainerLauncher(rt, "docx2pdf:latest"), 0, nil).Convert(context.Background(), src)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 converted", string(data))
	assert.Equal(t, "docx bytes", rt.input)
}

func TestContainer_EmptyOutputLeavesNoFile(t *testing.T) {
	rt := &fakeRuntime{images: map[string]bool{"docx2pdf:latest": true}}
	src := writeDocx(t)

	_, err := NewWordConverter(NewContainerLauncher(rt, "docx2pdf:latest"), 0, nil).Convert(context.Background(), src)
	require.Error(t, err)
	assert.NoFileExists(t, types.PDFSibling(src))
}

func TestContainer_RunFailureLeavesNoFile(t *testing.T) {
	rt := &fakeRuntime{images: map[string]bool{"docx2pdf:latest": true}, runErr: errors.New("exit status 2")}
	src := writeDocx(t)

	_, err := NewWordConverter(NewContainerLauncher(rt, "docx2pdf:latest"), 0, nil).Convert(context.Background(), src)
	require.Error(t, err)
	assert.NoFileExists(t, types.PDFSibling(src))
}

func TestContainer_MissingImage(t *testing.T) {
	rt := &fakeRuntime{}
	_, err := NewWordConverter(NewContainerLauncher(rt, "docx2pdf:latest"), 0, nil).Convert(context.Background(), writeDocx(t))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSelectLauncher(t *testing.T) {
	withImage := func() (container.Runtime, error) {
		return &fakeRuntime{images: map[string]bool{"docx2pdf:latest": true}}, nil
	}
	withoutImage := func() (container.Runtime, error) { return &fakeRuntime{}, nil }
	noRuntime := func() (container.Runtime, error) { return nil, errors.New("no container runtime available") }

	installed := &LibreOfficeLauncher{cmd: &fakeCommander{bins: map[string]bool{"soffice": true}}}
	missing := &LibreOfficeLauncher{cmd: &fakeCommander{}}

	tests := []struct {
		name        string
		backend     types.WordBackend
		office      *LibreOfficeLauncher
		detect      func() (container.Runtime, error)
		wantName    string
		unsupported bool
	}{
		{"auto prefers libreoffice", types.WordBackendAuto, installed, withImage, "libreoffice", false},
		{"auto falls back to container", types.WordBackendAuto, missing, withImage, "docker:docx2pdf:latest", false},
		{"auto without image", types.WordBackendAuto, missing, withoutImage, "none", true},
		{"auto without runtime", types.WordBackendAuto, missing, noRuntime, "none", true},
		{"empty backend means auto", "", installed, noRuntime, "libreoffice", false},
		{"explicit libreoffice", types.WordBackendLibreOffice, missing, withImage, "libreoffice", false},
		{"explicit container", types.WordBackendContainer, installed, withImage, "docker:docx2pdf:latest", false},
		{"explicit container without runtime", types.WordBackendContainer, installed, noRuntime, "none", true},
		{"none", types.WordBackendNone, installed, withImage, "none", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := selectLauncher(types.WordConfig{Backend: tt.backend}, tt.office, tt.detect, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, l.Name())
			if tt.unsupported {
				_, err := l.Launch(context.Background())
				assert.ErrorIs(t, err, ErrUnsupported)
			}
		})
	}
}

func TestSelectLauncher_UnknownBackend(t *testing.T) {
	_, err := selectLauncher(types.WordConfig{Backend: "msword"}, NewLibreOfficeLauncher(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "msword")
}
