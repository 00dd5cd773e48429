// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfopstest creates small image and PDF fixtures for tests.
package pdfopstest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdiddy/pdfmerge/internal/pdfops"
)

// WritePNG writes a w×h PNG filled with c to path.
func WritePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// WritePDF writes a PDF with the given number of pages to path. Page i is an
// image i+1 pixels wide, so pages of different fixtures can be told apart
// by their width.
func WritePDF(t *testing.T, path string, pages int) {
	t.Helper()
	dir := t.TempDir()
	imgs := make([]string, pages)
	for i := range imgs {
		imgs[i] = filepath.Join(dir, fmt.Sprintf("page-%d.png", i))
		WritePNG(t, imgs[i], 10*(i+1), 20, color.RGBA{R: uint8(40 * i), A: 255})
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full
	if err := api.ImportImagesFile(imgs, path, imp, pdfops.Config()); err != nil {
		t.Fatal(err)
	}
}
