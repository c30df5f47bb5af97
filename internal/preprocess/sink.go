package preprocess

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spherical/question-agent/internal/observability"
)

// DebugSink receives intermediate buffers. Implementations must not fail the
// caller; errors are theirs to handle.
type DebugSink interface {
	Write(stage string, img *image.Gray)
}

// NopSink discards everything.
type NopSink struct{}

// Write implements DebugSink.
func (NopSink) Write(string, *image.Gray) {}

// DirSink writes each stage as preprocessed-<stage>.png under a directory.
type DirSink struct {
	dir    string
	logger *observability.Logger
}

// NewDirSink creates a DirSink. The directory is created on first write.
func NewDirSink(dir string, logger *observability.Logger) *DirSink {
	if logger == nil {
		logger = observability.Nop()
	}
	return &DirSink{dir: dir, logger: logger.WithComponent("debug-sink")}
}

// Write implements DebugSink. Failures are logged and swallowed.
func (s *DirSink) Write(stage string, img *image.Gray) {
	path, err := s.write(stage, img)
	if err != nil {
		s.logger.Warn().Str("stage", stage).Err(err).Msg("debug image not written")
		return
	}
	s.logger.Debug().Str("stage", stage).Str("path", path).Msg("debug image written")
}

func (s *DirSink) write(stage string, img *image.Gray) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("preprocessed-%s.png", stage))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create debug file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode debug image: %w", err)
	}
	return path, nil
}
