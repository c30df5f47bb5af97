package ocr

import (
	"context"
	"strings"
	"time"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
	"github.com/spherical/question-agent/internal/preprocess"
)

var _ domain.TextExtractor = (*Extractor)(nil)

// Extractor runs preprocessing and recognition for image paths.
type Extractor struct {
	cache        *Cache
	preprocessor *preprocess.Preprocessor
	logger       *observability.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(cache *Cache, preprocessor *preprocess.Preprocessor, logger *observability.Logger) *Extractor {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Extractor{
		cache:        cache,
		preprocessor: preprocessor,
		logger:       logger.WithComponent("ocr"),
	}
}

// ExtractText returns the paragraphs found in the image at path, trimmed and
// joined by newlines. An image without text yields "" and no error.
func (e *Extractor) ExtractText(ctx context.Context, path string, languages []string, useAccelerator bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()

	prep, err := e.preprocessor.Preprocess(path)
	if err != nil {
		return "", err
	}

	engine, err := e.cache.Get(EngineConfig{
		Languages:      MapLanguages(languages),
		UseAccelerator: useAccelerator,
	})
	if err != nil {
		return "", domain.ExtractionError("ocr engine unavailable", err)
	}

	fragments, err := engine.Recognize(ctx, prep.Binarized)
	if err != nil {
		return "", domain.ExtractionError("recognize "+path, err)
	}

	text := joinFragments(fragments)

	e.logger.Info().
		Str("path", path).
		Int("width", prep.Width).
		Int("height", prep.Height).
		Bool("inverted", prep.Inverted).
		Int("paragraphs", len(fragments)).
		Int("chars", len(text)).
		Dur("duration", time.Since(start)).
		Msg("text extracted")

	return text, nil
}

// ExtractAll extracts each path in order and joins the non-blank results.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string, languages []string, useAccelerator bool) (string, error) {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		text, err := e.ExtractText(ctx, p, languages, useAccelerator)
		if err != nil {
			return "", err
		}
		if !domain.IsBlank(text) {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func joinFragments(fragments []string) string {
	kept := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, "\n")
}
