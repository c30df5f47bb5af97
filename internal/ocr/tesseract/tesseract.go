// Package tesseract provides an ocr.Engine backed by the gosseract client.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/spherical/question-agent/internal/observability"
	"github.com/spherical/question-agent/internal/ocr"
)

// Engine wraps one gosseract client configured for a language set.
// The client is not safe for concurrent use, so calls are serialized.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
	langs  []string
}

// New creates an engine for the given Tesseract language codes.
func New(cfg ocr.EngineConfig) (*Engine, error) {
	c := gosseract.NewClient()
	if len(cfg.Languages) > 0 {
		if err := c.SetLanguage(cfg.Languages...); err != nil {
			c.Close()
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		c.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	return &Engine{client: c, langs: cfg.Languages}, nil
}

// NewFactory returns an ocr.Factory that builds Tesseract engines. Tesseract
// has no GPU path; the accelerator flag is only logged.
func NewFactory(logger *observability.Logger) ocr.Factory {
	if logger == nil {
		logger = observability.Nop()
	}
	return func(cfg ocr.EngineConfig) (ocr.Engine, error) {
		if cfg.UseAccelerator {
			logger.Debug().Msg("accelerator requested; tesseract runs on the CPU")
		}
		return New(cfg)
	}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize returns the paragraphs Tesseract finds in img.
func (e *Engine) Recognize(ctx context.Context, img *image.Gray) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_PARA)
	if err != nil {
		return nil, fmt.Errorf("recognize paragraphs: %w", err)
	}

	paragraphs := make([]string, 0, len(boxes))
	for _, b := range boxes {
		paragraphs = append(paragraphs, b.Word)
	}
	return paragraphs, nil
}

// Close releases the underlying client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
