// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/pdiddy/pdfmerge/internal/pdfops"
	"github.com/pdiddy/pdfmerge/pkg/types"
)

// ImageConverter rasterizes an image onto a single PDF page.
type ImageConverter struct {
	dpi int
}

// NewImageConverter returns a converter that places images at dpi
// (100 when dpi is not positive).
func NewImageConverter(cfg types.ImageConfig) *ImageConverter {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = 100
	}
	return &ImageConverter{dpi: dpi}
}

// Convert decodes src, applies its EXIF orientation, and writes the result
// as a one-page PDF to the sibling ".pdf" path, replacing any file there.
func (c *ImageConverter) Convert(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decoding image %s: %w", src, err)
	}

	// pdfcpu embeds JPEG and PNG; everything else is normalized to PNG.
	format, ext := imaging.PNG, ".png"
	if e := strings.ToLower(filepath.Ext(src)); e == ".jpg" || e == ".jpeg" {
		format, ext = imaging.JPEG, ".jpg"
	}

	tmp, err := os.CreateTemp("", "pdfmerge-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(95)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encoding image %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing temp image: %w", err)
	}

	dst := types.PDFSibling(src)
	if err := pdfops.ImportImage(tmp.Name(), dst, c.dpi); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("converting image %s: %w", src, err)
	}
	return dst, nil
}
