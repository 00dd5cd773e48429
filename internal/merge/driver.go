// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge drives a merge run: select inputs, convert and append each
// one in order, clean up temporaries, and save the combined PDF.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/pdfmerge/internal/convert"
	"github.com/pdiddy/pdfmerge/internal/journal"
	"github.com/pdiddy/pdfmerge/internal/selector"
	"github.com/pdiddy/pdfmerge/pkg/types"
)

// ErrNothingToMerge reports that no input contributed any page.
var ErrNothingToMerge = errors.New("nothing to merge")

// State is a step of a merge run.
type State string

const (
	StateIdle       State = "idle"
	StateSelecting  State = "selecting"
	StateProcessing State = "processing"
	StateSaving     State = "saving"
	StateDone       State = "done"
	StateCanceled   State = "canceled"
)

// Remover waits for and deletes the temporary PDFs produced by converters.
type Remover interface {
	WaitReadable(ctx context.Context, path string) error
	Remove(ctx context.Context, path string) error
}

// LeftoverRecorder stores temporary files that could not be removed.
type LeftoverRecorder interface {
	Record(ctx context.Context, l journal.Leftover) error
}

// Options configures a Driver. Selector, Remover, and at least the
// converters for the kinds being merged are required.
type Options struct {
	Selector selector.Selector
	Image    convert.Converter
	Word     convert.Converter
	Remover  Remover

	// Journal records leftovers; nil disables recording.
	Journal LeftoverRecorder

	// NewAccumulator creates the accumulator for a run (default
	// NewPDFAccumulator).
	NewAccumulator func() Accumulator

	// OutputName is proposed when asking for the output path.
	OutputName string

	// Out receives progress lines (default io.Discard).
	Out io.Writer

	Logger *zap.Logger
}

// Driver runs merges. A Driver may be reused; it keeps no state between runs.
type Driver struct {
	selector       selector.Selector
	converters     map[types.InputKind]convert.Converter
	remover        Remover
	journal        LeftoverRecorder
	newAccumulator func() Accumulator
	outputName     string
	w              io.Writer
	logger         *zap.Logger
}

// New returns a Driver built from opts.
func New(opts Options) *Driver {
	d := &Driver{
		selector: opts.Selector,
		converters: map[types.InputKind]convert.Converter{
			types.KindImage:    opts.Image,
			types.KindDocument: opts.Word,
		},
		remover:        opts.Remover,
		journal:        opts.Journal,
		newAccumulator: opts.NewAccumulator,
		outputName:     opts.OutputName,
		w:              opts.Out,
		logger:         opts.Logger,
	}
	if d.newAccumulator == nil {
		d.newAccumulator = func() Accumulator { return NewPDFAccumulator() }
	}
	if d.outputName == "" {
		d.outputName = types.DefaultOutputName
	}
	if d.w == nil {
		d.w = io.Discard
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// Result holds the outcome of a merge run.
type Result struct {
	RunID  string
	State  State
	Output string
	Pages  int
	Inputs []types.InputResult

	// SaveErr is the reason no output was written, if one was expected.
	SaveErr error
}

// Appended returns the number of inputs that contributed pages.
func (r Result) Appended() int {
	n := 0
	for _, in := range r.Inputs {
		if in.Status == types.StatusAppended {
			n++
		}
	}
	return n
}

// Failed returns the number of inputs that contributed nothing.
func (r Result) Failed() int {
	return len(r.Inputs) - r.Appended()
}

// Leftovers returns the temporary files that were left in place.
func (r Result) Leftovers() []string {
	var out []string
	for _, in := range r.Inputs {
		if in.Leftover {
			out = append(out, in.TempPath)
		}
	}
	return out
}

// HasFailures reports whether any input failed or the save did not happen.
func (r Result) HasFailures() bool {
	return r.Failed() > 0 || r.SaveErr != nil
}

// Run performs one merge. Conversion, removal, and save failures are
// reported in the Result; the returned error is non-nil only when the
// selector itself fails. The accumulator is released on every path.
func (d *Driver) Run(ctx context.Context) (res Result, err error) {
	res = Result{RunID: uuid.NewString(), State: StateIdle}
	log := d.logger.With(zap.String("run_id", res.RunID))
	defer func() { d.summarize(res) }()

	res.State = StateSelecting
	inputs, err := d.selector.SelectInputs(ctx)
	if err != nil {
		log.Error("selecting inputs", zap.Error(err))
		res.State = StateCanceled
		return res, err
	}
	if len(inputs) == 0 {
		fmt.Fprintln(d.w, "No files selected.")
		res.State = StateCanceled
		return res, nil
	}
	log.Info("inputs selected", zap.Int("count", len(inputs)))

	acc := d.newAccumulator()
	defer func() {
		if cerr := acc.Close(); cerr != nil {
			log.Warn("releasing accumulator", zap.Error(cerr))
		}
	}()

	selected := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		selected[filepath.Clean(in)] = true
	}

	res.State = StateProcessing
	for _, in := range inputs {
		if ctx.Err() != nil {
			fmt.Fprintln(d.w, "Merge interrupted.")
			res.State = StateCanceled
			return res, nil
		}
		res.Inputs = append(res.Inputs, d.process(ctx, log, acc, in, res.RunID, selected))
	}
	res.Pages = acc.Pages()

	res.State = StateSaving
	if res.Pages == 0 {
		fmt.Fprintln(d.w, "Nothing to merge: no input produced any pages.")
		res.SaveErr = ErrNothingToMerge
		res.State = StateDone
		return res, nil
	}

	out, err := d.selector.SelectOutput(ctx, d.outputName)
	if err != nil {
		log.Error("selecting output", zap.Error(err))
		res.SaveErr = err
		res.State = StateCanceled
		return res, err
	}
	if out == "" {
		fmt.Fprintln(d.w, "Save operation canceled.")
		res.State = StateCanceled
		return res, nil
	}

	if err := acc.Write(out); err != nil {
		log.Error("saving merged PDF", zap.String("path", out), zap.Error(err))
		fmt.Fprintf(d.w, "Error saving merged PDF: %v\n", err)
		res.SaveErr = err
	} else {
		fmt.Fprintf(d.w, "saved: %s (%d pages)\n", out, res.Pages)
		res.Output = out
	}
	res.State = StateDone
	return res, nil
}

// process handles one input: convert if needed, append, remove the
// temporary. It never aborts the run. selected holds the cleaned paths of
// every input of the run.
func (d *Driver) process(ctx context.Context, log *zap.Logger, acc Accumulator, path, runID string, selected map[string]bool) types.InputResult {
	r := types.InputResult{Path: path, Kind: types.Classify(path)}
	name := filepath.Base(path)
	log = log.With(zap.String("input", path), zap.String("kind", string(r.Kind)))

	if r.Kind == types.KindPDF {
		fmt.Fprintf(d.w, "appending: %s\n", name)
		d.appendFile(log, acc, &r, path)
		return r
	}

	fmt.Fprintf(d.w, "converting: %s (%s)\n", name, r.Kind)
	conv := d.converters[r.Kind]
	if conv == nil {
		d.conversionFailed(log, &r, fmt.Errorf("no %s converter: %w", r.Kind, convert.ErrUnsupported))
		return r
	}
	tmp, err := conv.Convert(ctx, path)
	if err != nil {
		d.conversionFailed(log, &r, err)
		return r
	}
	r.TempPath = tmp
	if selected[filepath.Clean(tmp)] {
		log.Warn("conversion replaced a selected input", zap.String("path", tmp))
		fmt.Fprintf(d.w, "  warning: %s replaced selected input %s\n", name, tmp)
	}

	if err := d.remover.WaitReadable(ctx, tmp); err != nil {
		d.conversionFailed(log, &r, err)
		d.leftover(ctx, log, &r, runID, err)
		return r
	}

	d.appendFile(log, acc, &r, tmp)

	if err := d.remover.Remove(ctx, tmp); err != nil {
		fmt.Fprintf(d.w, "  warning: could not remove %s (%v)\n", tmp, err)
		d.leftover(ctx, log, &r, runID, err)
	} else {
		fmt.Fprintf(d.w, "  removed: %s\n", filepath.Base(tmp))
	}
	return r
}

func (d *Driver) appendFile(log *zap.Logger, acc Accumulator, r *types.InputResult, path string) {
	n, err := acc.Append(path)
	if err != nil {
		log.Warn("append failed", zap.Error(err))
		fmt.Fprintf(d.w, "failed:  %s (%v)\n", filepath.Base(r.Path), err)
		r.Status = types.StatusAppendFailed
		r.Err = err
		return
	}
	fmt.Fprintf(d.w, "appended: %s (%d pages)\n", filepath.Base(r.Path), n)
	r.Status = types.StatusAppended
	r.Pages = n
}

func (d *Driver) conversionFailed(log *zap.Logger, r *types.InputResult, err error) {
	log.Warn("conversion failed", zap.Error(err))
	fmt.Fprintf(d.w, "skipped: %s (%v)\n", filepath.Base(r.Path), err)
	r.Status = types.StatusConversionFailed
	r.Err = err
}

func (d *Driver) leftover(ctx context.Context, log *zap.Logger, r *types.InputResult, runID string, cause error) {
	r.Leftover = true
	if d.journal == nil {
		return
	}
	l := journal.Leftover{Path: r.TempPath, Source: r.Path, Reason: cause.Error(), RunID: runID}
	// Record even when the run was interrupted.
	if err := d.journal.Record(context.WithoutCancel(ctx), l); err != nil {
		log.Warn("recording leftover", zap.String("path", r.TempPath), zap.Error(err))
	}
}

func (d *Driver) summarize(res Result) {
	fmt.Fprintf(d.w, "\nMerge %s: %d appended, %d failed (total: %d)",
		res.State, res.Appended(), res.Failed(), len(res.Inputs))
	if n := len(res.Leftovers()); n > 0 {
		fmt.Fprintf(d.w, ", %d temporary file(s) left behind", n)
	}
	fmt.Fprintln(d.w)
}
