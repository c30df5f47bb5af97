// Package pdf turns PDF inputs into page images the OCR stage can read.
package pdf

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
)

// DefaultDPI is the render resolution for PDF pages.
const DefaultDPI = 200

// Rasterizer renders PDF pages to PNG files in a private temp directory.
type Rasterizer struct {
	dpi     float64
	tempDir string
	logger  *observability.Logger
}

// NewRasterizer creates a rasterizer. dpi <= 0 selects DefaultDPI.
func NewRasterizer(dpi float64, logger *observability.Logger) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Rasterizer{dpi: dpi, logger: logger.WithComponent("pdf")}
}

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Expand replaces every PDF in paths by its page images, in page order.
// Other paths are returned unchanged and in place.
func (r *Rasterizer) Expand(ctx context.Context, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !IsPDF(p) {
			out = append(out, p)
			continue
		}
		pages, err := r.Convert(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, pages...)
	}
	return out, nil
}

// Convert renders each page of the PDF at path and returns the image paths.
func (r *Rasterizer) Convert(ctx context.Context, path string) ([]string, error) {
	if err := ValidatePDFPath(path); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.ImageNotFoundError(path, err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.ValidationError(fmt.Sprintf("PDF has no pages: %s", path), nil)
	}

	if r.tempDir == "" {
		dir, err := os.MkdirTemp("", "question-agent-*")
		if err != nil {
			return nil, domain.IOError("create temp directory", err)
		}
		r.tempDir = dir
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	// one subdirectory per document: same-named PDFs from different folders must not collide
	docDir, err := os.MkdirTemp(r.tempDir, base+"-*")
	if err != nil {
		return nil, domain.IOError("create page directory", err)
	}
	pages := make([]string, 0, pageCount)

	for n := 0; n < pageCount; n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(n, r.dpi)
		if err != nil {
			return nil, domain.ExtractionError(fmt.Sprintf("render page %d of %s", n+1, path), err)
		}

		out := filepath.Join(docDir, fmt.Sprintf("%s_page_%03d.png", base, n+1))
		f, err := os.Create(out)
		if err != nil {
			return nil, domain.IOError(fmt.Sprintf("create image for page %d", n+1), err)
		}
		err = png.Encode(f, img)
		f.Close()
		if err != nil {
			return nil, domain.IOError(fmt.Sprintf("encode page %d", n+1), err)
		}

		pages = append(pages, out)
	}

	r.logger.Info().Str("path", path).Int("pages", pageCount).Msg("pdf rasterized")
	return pages, nil
}

// Cleanup removes the rendered page images.
func (r *Rasterizer) Cleanup() error {
	if r.tempDir == "" {
		return nil
	}
	err := os.RemoveAll(r.tempDir)
	r.tempDir = ""
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	return nil
}
