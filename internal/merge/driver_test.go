// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfmerge/internal/convert"
	"github.com/pdiddy/pdfmerge/internal/fileutil"
	"github.com/pdiddy/pdfmerge/internal/journal"
	"github.com/pdiddy/pdfmerge/pkg/types"
)

// fakeSelector returns canned answers and counts save prompts.
type fakeSelector struct {
	inputs    []string
	output    string
	inputErr  error
	outputErr error

	savePrompts int
}

func (f *fakeSelector) SelectInputs(context.Context) ([]string, error) {
	return f.inputs, f.inputErr
}

func (f *fakeSelector) SelectOutput(_ context.Context, defaultName string) (string, error) {
	f.savePrompts++
	return f.output, f.outputErr
}

// fakeAccumulator records appended paths. pages maps a path to its page
// count; paths missing from pages fail to append.
type fakeAccumulator struct {
	pages    map[string]int
	writeErr error

	appended []string
	total    int
	written  string
	closed   int
}

func (f *fakeAccumulator) Append(path string) (int, error) {
	n, ok := f.pages[path]
	if !ok {
		return 0, errors.New("not a PDF: " + path)
	}
	f.appended = append(f.appended, path)
	f.total += n
	return n, nil
}

func (f *fakeAccumulator) Pages() int { return f.total }

func (f *fakeAccumulator) Write(path string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = path
	return nil
}

func (f *fakeAccumulator) Close() error {
	f.closed++
	return nil
}

// fakeRemover records calls; errors are keyed by path.
type fakeRemover struct {
	waitErr   map[string]error
	removeErr map[string]error

	waited  []string
	removed []string
}

func (f *fakeRemover) WaitReadable(_ context.Context, path string) error {
	f.waited = append(f.waited, path)
	return f.waitErr[path]
}

func (f *fakeRemover) Remove(_ context.Context, path string) error {
	f.removed = append(f.removed, path)
	return f.removeErr[path]
}

// fakeJournal collects recorded leftovers.
type fakeJournal struct {
	rows []journal.Leftover
}

func (f *fakeJournal) Record(_ context.Context, l journal.Leftover) error {
	f.rows = append(f.rows, l)
	return nil
}

// sibling converts by renaming to .pdf, failing for paths in fail.
func sibling(fail map[string]error) convert.Converter {
	return convert.ConverterFunc(func(_ context.Context, src string) (string, error) {
		if err := fail[src]; err != nil {
			return "", err
		}
		return types.PDFSibling(src), nil
	})
}

type harness struct {
	sel     *fakeSelector
	acc     *fakeAccumulator
	rem     *fakeRemover
	journal *fakeJournal
	out     bytes.Buffer
	driver  *Driver
}

func newHarness(sel *fakeSelector, pages map[string]int, convFail map[string]error) *harness {
	h := &harness{
		sel:     sel,
		acc:     &fakeAccumulator{pages: pages},
		rem:     &fakeRemover{},
		journal: &fakeJournal{},
	}
	h.driver = New(Options{
		Selector:       sel,
		Image:          sibling(convFail),
		Word:           sibling(convFail),
		Remover:        h.rem,
		Journal:        h.journal,
		NewAccumulator: func() Accumulator { return h.acc },
		Out:            &h.out,
	})
	return h
}

func TestRun_OrderAndKinds(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/a.png", "/w/b.docx", "/w/c.pdf"}, output: "/w/out.pdf"}
	h := newHarness(sel, map[string]int{"/w/a.pdf": 1, "/w/b.pdf": 2, "/w/c.pdf": 5}, nil)

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []string{"/w/a.pdf", "/w/b.pdf", "/w/c.pdf"}, h.acc.appended)
	assert.Equal(t, 8, res.Pages)
	assert.Equal(t, "/w/out.pdf", res.Output)
	assert.Equal(t, "/w/out.pdf", h.acc.written)
	assert.Equal(t, 3, res.Appended())
	assert.False(t, res.HasFailures())

	// Only converted inputs are waited on and removed; the passthrough is not.
	assert.Equal(t, []string{"/w/a.pdf", "/w/b.pdf"}, h.rem.waited)
	assert.Equal(t, []string{"/w/a.pdf", "/w/b.pdf"}, h.rem.removed)
	assert.GreaterOrEqual(t, h.acc.closed, 1)

	kinds := []types.InputKind{res.Inputs[0].Kind, res.Inputs[1].Kind, res.Inputs[2].Kind}
	assert.Equal(t, []types.InputKind{types.KindImage, types.KindDocument, types.KindPDF}, kinds)
	assert.Contains(t, h.out.String(), "Merge done: 3 appended, 0 failed (total: 3)")
}

func TestRun_ConversionFailureSkipsInput(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/a.png", "/w/b.docx", "/w/c.pdf"}, output: "/w/out.pdf"}
	convFail := map[string]error{"/w/b.docx": errors.New("automation error")}
	h := newHarness(sel, map[string]int{"/w/a.pdf": 1, "/w/b.pdf": 2, "/w/c.pdf": 2}, convFail)

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/w/a.pdf", "/w/c.pdf"}, h.acc.appended)
	assert.Equal(t, 3, res.Pages)
	assert.NotContains(t, h.rem.removed, "/w/b.pdf", "no removal for a failed conversion")
	assert.NotContains(t, h.rem.waited, "/w/b.pdf")

	b := res.Inputs[1]
	assert.Equal(t, types.StatusConversionFailed, b.Status)
	assert.Empty(t, b.TempPath)
	assert.Zero(t, b.Pages)
	assert.Equal(t, 1, res.Failed())
	assert.Contains(t, h.out.String(), "skipped: b.docx (automation error)")
}

func TestRun_ContiguousBlocksMatchSuccessfulInputs(t *testing.T) {
	inputs := []string{"/w/1.pdf", "/w/2.jpg", "/w/3.docx", "/w/4.png", "/w/5.pdf"}
	pages := map[string]int{"/w/1.pdf": 2, "/w/2.pdf": 1, "/w/3.pdf": 4, "/w/4.pdf": 1, "/w/5.pdf": 3}
	convFail := map[string]error{"/w/4.png": errors.New("decode error")}
	h := newHarness(&fakeSelector{inputs: inputs, output: "/w/o.pdf"}, pages, convFail)

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/w/1.pdf", "/w/2.pdf", "/w/3.pdf", "/w/5.pdf"}, h.acc.appended)
	assert.Equal(t, 4, res.Appended())
	assert.Equal(t, 10, res.Pages)
}

func TestRun_CancelSelection(t *testing.T) {
	sel := &fakeSelector{}
	h := newHarness(sel, nil, nil)

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCanceled, res.State)
	assert.Empty(t, h.acc.appended)
	assert.Zero(t, sel.savePrompts)
	assert.Empty(t, h.rem.waited)
	assert.Contains(t, h.out.String(), "No files selected.")
}

func TestRun_CancelSave(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/c.pdf"}}
	h := newHarness(sel, map[string]int{"/w/c.pdf": 1}, nil)

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCanceled, res.State)
	assert.Equal(t, 1, sel.savePrompts)
	assert.Empty(t, h.acc.written)
	assert.Equal(t, 1, h.acc.closed, "accumulator released exactly once")
	assert.Contains(t, h.out.String(), "Save operation canceled.")
}

func TestRun_SaveFailureStillReleases(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/c.pdf"}, output: "/readonly/out.pdf"}
	h := newHarness(sel, map[string]int{"/w/c.pdf": 1}, nil)
	h.acc.writeErr = errors.New("permission denied")

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Empty(t, res.Output)
	assert.EqualError(t, res.SaveErr, "permission denied")
	assert.True(t, res.HasFailures())
	assert.Equal(t, 1, h.acc.closed)
	assert.Contains(t, h.out.String(), "Error saving merged PDF")
}

func TestRun_RemovalFailureIsLeftover(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/a.png", "/w/c.pdf"}, output: "/w/out.pdf"}
	h := newHarness(sel, map[string]int{"/w/a.pdf": 1, "/w/c.pdf": 1}, nil)
	h.rem.removeErr = map[string]error{"/w/a.pdf": fileutil.ErrStillLocked}

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, "/w/out.pdf", res.Output, "merge proceeds to save")
	assert.Equal(t, []string{"/w/a.pdf"}, res.Leftovers())
	require.Len(t, h.journal.rows, 1)
	assert.Equal(t, "/w/a.pdf", h.journal.rows[0].Path)
	assert.Equal(t, "/w/a.png", h.journal.rows[0].Source)
	assert.Equal(t, res.RunID, h.journal.rows[0].RunID)
	assert.Contains(t, h.out.String(), "1 temporary file(s) left behind")
}

func TestRun_ReadabilityTimeoutIsConversionFailure(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/b.docx", "/w/c.pdf"}, output: "/w/out.pdf"}
	h := newHarness(sel, map[string]int{"/w/b.pdf": 2, "/w/c.pdf": 1}, nil)
	h.rem.waitErr = map[string]error{"/w/b.pdf": fileutil.ErrNotReadable}

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/w/c.pdf"}, h.acc.appended)
	assert.Equal(t, types.StatusConversionFailed, res.Inputs[0].Status)
	assert.ErrorIs(t, res.Inputs[0].Err, fileutil.ErrNotReadable)
	assert.Empty(t, h.rem.removed)
	require.Len(t, h.journal.rows, 1)
	assert.Equal(t, "/w/b.pdf", h.journal.rows[0].Path)
}

func TestRun_AppendFailureContinues(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/corrupt.pdf", "/w/a.png"}, output: "/w/out.pdf"}
	h := newHarness(sel, map[string]int{"/w/a.pdf": 1}, nil)

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.StatusAppendFailed, res.Inputs[0].Status)
	assert.Equal(t, types.StatusAppended, res.Inputs[1].Status)
	assert.Equal(t, "/w/out.pdf", res.Output)
}

func TestRun_NothingToMerge(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/a.png"}, output: "/w/out.pdf"}
	h := newHarness(sel, nil, map[string]error{"/w/a.png": errors.New("decode error")})

	res, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, res.SaveErr, ErrNothingToMerge)
	assert.Zero(t, sel.savePrompts)
	assert.Equal(t, 1, h.acc.closed)
}

func TestRun_MissingConverter(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/b.docx"}, output: "/w/out.pdf"}
	acc := &fakeAccumulator{}
	d := New(Options{
		Selector:       sel,
		Remover:        &fakeRemover{},
		NewAccumulator: func() Accumulator { return acc },
	})

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, res.Inputs[0].Err, convert.ErrUnsupported)
}

func TestRun_SelectorError(t *testing.T) {
	h := newHarness(&fakeSelector{inputErr: errors.New("no display")}, nil, nil)

	res, err := h.driver.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateCanceled, res.State)
}

func TestRun_InterruptStopsProcessing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sel := &fakeSelector{inputs: []string{"/w/a.png", "/w/b.png"}, output: "/w/out.pdf"}
	h := newHarness(sel, map[string]int{"/w/a.pdf": 1, "/w/b.pdf": 1}, nil)
	h.driver.converters[types.KindImage] = convert.ConverterFunc(func(_ context.Context, src string) (string, error) {
		cancel()
		return types.PDFSibling(src), nil
	})

	res, err := h.driver.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateCanceled, res.State)
	assert.Len(t, res.Inputs, 1)
	assert.Zero(t, sel.savePrompts)
	assert.Equal(t, 1, h.acc.closed)
	assert.True(t, strings.Contains(h.out.String(), "Merge interrupted."))
}

func TestRun_WarnsWhenConversionReplacesSelectedPDF(t *testing.T) {
	sel := &fakeSelector{inputs: []string{"/w/a.png", "/w/a.pdf", "/w/b.png"}, output: "/w/out.pdf"}
	h := newHarness(sel, map[string]int{"/w/a.pdf": 1, "/w/b.pdf": 1}, nil)

	_, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "warning: a.png replaced selected input /w/a.pdf")
	assert.NotContains(t, out, "b.png replaced")
}
