package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfmerge/internal/convert"
	"github.com/pdiddy/pdfmerge/internal/fileutil"
	"github.com/pdiddy/pdfmerge/internal/journal"
	"github.com/pdiddy/pdfmerge/internal/merge"
	"github.com/pdiddy/pdfmerge/internal/selector"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge PDF, Word, and image files into one PDF",
	Long: `Merge converts images and Word documents into PDFs and concatenates
them with the given PDFs, in order, into a single output file.

Inputs come from the command line, from a YAML manifest (--manifest), or,
when neither is given, from a native file selection dialog. The output path
is --output, the manifest's output, or the answer to a save dialog. When no
input yields any page, nothing is saved and no output is asked for.

Converted files are written next to their source with a ".pdf" extension,
replacing any file of that name, and are removed once appended.

Temporary PDFs that cannot be removed because another process still holds
them are recorded and can be removed later with "pdfmerge cleanup".`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "", "output PDF path")
	mergeCmd.Flags().StringP("manifest", "m", "", "YAML job file listing inputs and output")
	mergeCmd.Flags().String("word-backend", "", "Word conversion backend: auto, libreoffice, container, or none")
	mergeCmd.Flags().Int("dpi", 0, "resolution images are placed at (default 100)")
	mergeCmd.Flags().Bool("no-journal", false, "do not record temporary files left behind")

	_ = viper.BindPFlag("word.backend", mergeCmd.Flags().Lookup("word-backend"))
	_ = viper.BindPFlag("image.dpi", mergeCmd.Flags().Lookup("dpi"))

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergeConfig(viper.GetViper())
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	manifest, _ := cmd.Flags().GetString("manifest")
	sel, err := chooseSelector(args, manifest, output)
	if err != nil {
		return err
	}

	launcher, err := convert.SelectLauncher(cfg.Word, logger)
	if err != nil {
		return err
	}

	opts := merge.Options{
		Selector:   sel,
		Image:      convert.NewImageConverter(cfg.Image),
		Word:       convert.NewWordConverter(launcher, cfg.Word.Timeout, logger),
		Remover:    fileutil.NewRemover(cfg.Remove, cfg.Wait, logger),
		OutputName: cfg.OutputName,
		Out:        os.Stdout,
		Logger:     logger,
	}

	noJournal, _ := cmd.Flags().GetBool("no-journal")
	if !noJournal && cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		opts.Journal = j
	}

	_, err = merge.New(opts).Run(cmd.Context())
	return err
}

// chooseSelector picks the manifest, the argument list, or the dialogs, in
// that order. A non-empty output overrides the selector's output.
func chooseSelector(args []string, manifest, output string) (selector.Selector, error) {
	var sel selector.Selector
	switch {
	case manifest != "":
		if len(args) > 0 {
			return nil, fmt.Errorf("provide either files or --manifest, not both")
		}
		m, err := selector.LoadManifest(manifest)
		if err != nil {
			return nil, err
		}
		sel = m
	case len(args) > 0:
		sel = selector.Static{Inputs: args}
	default:
		sel = selector.Dialog{}
	}

	if output != "" {
		return fixedOutput{Selector: sel, output: selector.ForcePDFExt(output)}, nil
	}
	return sel, nil
}

// fixedOutput takes inputs from the wrapped selector and always answers
// the output question with output.
type fixedOutput struct {
	selector.Selector
	output string
}

func (f fixedOutput) SelectOutput(context.Context, string) (string, error) {
	return f.output, nil
}
