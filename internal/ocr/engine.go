// Package ocr turns preprocessed question images into text.
//
// Recognition is delegated to an Engine. Engines are expensive to build, so
// the Extractor obtains them from a Cache that builds each distinct
// configuration at most once.
package ocr

import (
	"context"
	"image"
	"sort"
	"strings"
)

// Engine recognizes text in a binarized image. Recognize returns the text
// grouped into paragraphs in reading order.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img *image.Gray) ([]string, error)
	Close() error
}

// EngineConfig identifies one engine configuration.
type EngineConfig struct {
	Languages      []string
	UseAccelerator bool
}

// Key returns the cache key. Language order does not matter.
func (c EngineConfig) Key() string {
	langs := append([]string(nil), c.Languages...)
	sort.Strings(langs)
	key := strings.Join(langs, "+")
	if c.UseAccelerator {
		return key + "|accel"
	}
	return key + "|cpu"
}

// Factory builds an engine for a configuration.
type Factory func(cfg EngineConfig) (Engine, error)
