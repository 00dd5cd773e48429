package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/pdiddy/pdfmerge/pkg/types"
)

// setDefaults registers every config key so that environment variables and
// config files are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.MergeConfig{}.Defaults()

	v.SetDefault("log_level", "warn")
	v.SetDefault("output_name", d.OutputName)
	v.SetDefault("remove.delay", d.Remove.Delay)
	v.SetDefault("remove.max_retries", d.Remove.MaxRetries)
	v.SetDefault("remove.backoff", d.Remove.Backoff)
	v.SetDefault("wait.interval", d.Wait.Interval)
	v.SetDefault("wait.timeout", d.Wait.Timeout)
	v.SetDefault("image.dpi", d.Image.DPI)
	v.SetDefault("word.backend", string(d.Word.Backend))
	v.SetDefault("word.container_image", d.Word.ContainerImage)
	v.SetDefault("word.timeout", d.Word.Timeout)
	v.SetDefault("journal.path", defaultJournalPath())
}

// defaultJournalPath places the journal in the user cache directory, or in
// the working directory when there is none.
func defaultJournalPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".pdfmerge", "journal.db")
	}
	return filepath.Join(dir, "pdfmerge", "journal.db")
}

// loadMergeConfig decodes the merge settings from v and fills in defaults.
func loadMergeConfig(v *viper.Viper) (types.MergeConfig, error) {
	var cfg types.MergeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.MergeConfig{}, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg.Defaults(), nil
}
