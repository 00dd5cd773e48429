// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfops wraps the pdfcpu operations used by the converters and the
// merge accumulator: page counting, merging, and image import.
package pdfops

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// Keep pdfcpu from creating its own config directory under the user's home.
	api.DisableConfigDir()
}

// Config returns a pdfcpu configuration with relaxed validation, which
// accepts the slightly broken PDFs many producers emit.
func Config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages of the PDF held in data. It fails if
// data does not parse as a PDF.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), Config())
	if err != nil {
		return 0, fmt.Errorf("reading PDF: %w", err)
	}
	return n, nil
}

// Merge writes the concatenation of docs, in order, to w. A single document
// is copied unchanged.
func Merge(w io.Writer, docs [][]byte) error {
	switch len(docs) {
	case 0:
		return errors.New("no documents to merge")
	case 1:
		_, err := w.Write(docs[0])
		return err
	}

	rsc := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		rsc[i] = bytes.NewReader(d)
	}
	if err := api.MergeRaw(rsc, w, false, Config()); err != nil {
		return fmt.Errorf("merging %d documents: %w", len(docs), err)
	}
	return nil
}

// ImportImage writes a new single-page PDF at outPath holding the JPEG or
// PNG image at imgPath. The page measures the image's pixel size at dpi, so
// a 200x100 image at 100 dpi yields a 144x72 point page. An existing file at
// outPath is replaced.
func ImportImage(imgPath, outPath string, dpi int) error {
	if dpi <= 0 {
		return fmt.Errorf("invalid resolution %d dpi", dpi)
	}
	dim, err := ImageDim(imgPath, dpi)
	if err != nil {
		return err
	}

	// pdfcpu appends to an existing output file instead of replacing it.
	if err := os.Remove(outPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replacing %s: %w", outPath, err)
	}

	// types.Full would size the page at one point per pixel and ignore DPI.
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &dim
	imp.UserDim = true
	imp.Pos = types.Center
	imp.Scale = 1
	imp.ScaleAbs = false

	if err := api.ImportImagesFile([]string{imgPath}, outPath, imp, Config()); err != nil {
		return fmt.Errorf("importing image into %s: %w", outPath, err)
	}
	return nil
}

// ImageDim returns the size in points of the image at imgPath when printed
// at dpi. Only the image header is read.
func ImageDim(imgPath string, dpi int) (types.Dim, error) {
	f, err := os.Open(imgPath)
	if err != nil {
		return types.Dim{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return types.Dim{}, fmt.Errorf("reading image size of %s: %w", imgPath, err)
	}
	scale := 72 / float64(dpi)
	return types.Dim{Width: float64(cfg.Width) * scale, Height: float64(cfg.Height) * scale}, nil
}
