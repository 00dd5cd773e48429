// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
)

// InputKind classifies a selected file by how it reaches the merged document.
type InputKind string

const (
	KindImage    InputKind = "image"
	KindDocument InputKind = "document"
	KindPDF      InputKind = "pdf"
)

// imageExts lists the image extensions accepted for conversion. The first
// three are the formats offered by the selection dialog's primary filter.
var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// documentExts lists the word-processor extensions accepted for conversion.
var documentExts = []string{".docx"}

// Classify returns the kind of path based on its extension, compared
// case-insensitively. Anything that is neither an image nor a document is
// treated as a PDF and appended as-is.
func Classify(path string) InputKind {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range imageExts {
		if ext == e {
			return KindImage
		}
	}
	for _, e := range documentExts {
		if ext == e {
			return KindDocument
		}
	}
	return KindPDF
}

// SupportedPatterns returns the glob patterns for every accepted input,
// PDF first.
func SupportedPatterns() []string {
	patterns := []string{"*.pdf"}
	for _, e := range documentExts {
		patterns = append(patterns, "*"+e)
	}
	for _, e := range imageExts {
		patterns = append(patterns, "*"+e)
	}
	return patterns
}

// PDFSibling returns path with its extension replaced by ".pdf". Converters
// write their output there.
func PDFSibling(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
}

// InputStatus records what happened to one selected input.
type InputStatus string

const (
	StatusAppended         InputStatus = "appended"
	StatusConversionFailed InputStatus = "conversion_failed"
	StatusAppendFailed     InputStatus = "append_failed"
)

// InputResult is the outcome of processing one selected input.
type InputResult struct {
	// Path is the selected file.
	Path string `json:"path" yaml:"path"`

	// Kind is the classification of Path.
	Kind InputKind `json:"kind" yaml:"kind"`

	// Status tells whether the input contributed pages.
	Status InputStatus `json:"status" yaml:"status"`

	// Pages is the number of pages appended (zero unless Status is appended).
	Pages int `json:"pages" yaml:"pages"`

	// TempPath is the intermediate PDF produced by a converter, if any.
	TempPath string `json:"temp_path,omitempty" yaml:"temp_path,omitempty"`

	// Leftover reports that TempPath could not be removed.
	Leftover bool `json:"leftover,omitempty" yaml:"leftover,omitempty"`

	// Err is the failure that caused a non-appended status.
	Err error `json:"-" yaml:"-"`
}
