package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfmerge/internal/fileutil"
	"github.com/pdiddy/pdfmerge/internal/journal"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove temporary PDFs left behind by earlier merges",
	Long: `Cleanup retries the removal of every temporary PDF recorded in the
journal. Files that are removed, or that no longer exist, are forgotten;
files still locked stay in the journal for the next run.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().Bool("list", false, "list leftovers without removing them")

	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergeConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return fmt.Errorf("journal disabled: set journal.path")
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	leftovers, err := j.List(ctx)
	if err != nil {
		return err
	}
	if len(leftovers) == 0 {
		fmt.Println("No leftovers recorded.")
		return nil
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, l := range leftovers {
			fmt.Fprintf(os.Stdout, "%s  %s  (from %s: %s)\n",
				l.RecordedAt.Local().Format("2006-01-02 15:04"), l.Path, l.Source, l.Reason)
		}
		return nil
	}

	remover := fileutil.NewRemover(cfg.Remove, cfg.Wait, logger)
	var removed, kept int
	for _, l := range leftovers {
		if err := remover.Remove(ctx, l.Path); err != nil {
			fmt.Fprintf(os.Stdout, "kept:    %s (%v)\n", l.Path, err)
			kept++
			continue
		}
		if err := j.Forget(ctx, l.Path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "removed: %s\n", l.Path)
		removed++
	}

	fmt.Fprintf(os.Stdout, "\nCleanup summary: %d removed, %d kept (total: %d)\n", removed, kept, removed+kept)
	return nil
}
