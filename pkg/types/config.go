// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultOutputName is the file name proposed by the save dialog and used by
// non-interactive runs that do not name an output.
const DefaultOutputName = "merged_document.pdf"

// RemoveConfig holds settings for lock-aware removal of temporary files.
type RemoveConfig struct {
	// Delay is the wait between removal attempts (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// MaxRetries bounds the number of removal attempts (default 10).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Backoff multiplies Delay after each failed attempt. Values at or
	// below 1 keep the delay fixed.
	Backoff float64 `json:"backoff" yaml:"backoff" mapstructure:"backoff"`
}

// WaitConfig holds settings for the readability wait that follows a conversion.
type WaitConfig struct {
	// Interval is the polling period (default 500ms).
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`

	// Timeout bounds the whole wait (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ImageConfig holds settings for image-to-PDF conversion.
type ImageConfig struct {
	// DPI is the resolution the image is placed at (default 100).
	DPI int `json:"dpi" yaml:"dpi" mapstructure:"dpi"`
}

// WordBackend identifies the mechanism used to turn Word documents into PDFs.
type WordBackend string

const (
	WordBackendAuto        WordBackend = "auto"
	WordBackendLibreOffice WordBackend = "libreoffice"
	WordBackendContainer   WordBackend = "container"
	WordBackendNone        WordBackend = "none"
)

// WordConfig holds settings for Word-to-PDF conversion.
type WordConfig struct {
	// Backend selects libreoffice, container, none, or auto (default).
	Backend WordBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// ContainerImage is the image used by the container backend. It reads a
	// document on stdin and writes a PDF on stdout.
	ContainerImage string `json:"container_image" yaml:"container_image" mapstructure:"container_image"`

	// Timeout bounds a single document conversion (default 2m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// JournalConfig holds settings for the leftover journal.
type JournalConfig struct {
	// Path is the SQLite database file. Empty disables the journal.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// MergeConfig groups all settings of a merge run.
type MergeConfig struct {
	// OutputName is the default output file name (default merged_document.pdf).
	OutputName string `json:"output_name" yaml:"output_name" mapstructure:"output_name"`

	Remove  RemoveConfig  `json:"remove" yaml:"remove" mapstructure:"remove"`
	Wait    WaitConfig    `json:"wait" yaml:"wait" mapstructure:"wait"`
	Image   ImageConfig   `json:"image" yaml:"image" mapstructure:"image"`
	Word    WordConfig    `json:"word" yaml:"word" mapstructure:"word"`
	Journal JournalConfig `json:"journal" yaml:"journal" mapstructure:"journal"`
}

// Defaults returns a copy of c with every zero field replaced by its default.
func (c MergeConfig) Defaults() MergeConfig {
	if c.OutputName == "" {
		c.OutputName = DefaultOutputName
	}
	if c.Remove.Delay <= 0 {
		c.Remove.Delay = time.Second
	}
	if c.Remove.MaxRetries <= 0 {
		c.Remove.MaxRetries = 10
	}
	if c.Remove.Backoff < 1 {
		c.Remove.Backoff = 1
	}
	if c.Wait.Interval <= 0 {
		c.Wait.Interval = 500 * time.Millisecond
	}
	if c.Wait.Timeout <= 0 {
		c.Wait.Timeout = 30 * time.Second
	}
	if c.Image.DPI <= 0 {
		c.Image.DPI = 100
	}
	if c.Word.Backend == "" {
		c.Word.Backend = WordBackendAuto
	}
	if c.Word.ContainerImage == "" {
		c.Word.ContainerImage = "docx2pdf:latest"
	}
	if c.Word.Timeout <= 0 {
		c.Word.Timeout = 2 * time.Minute
	}
	return c
}
