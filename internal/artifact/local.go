package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
)

var _ domain.Publisher = (*LocalPublisher)(nil)

// LocalPublisher stores questions as JSON files. It stands in for Notion when
// remote publishing is disabled.
type LocalPublisher struct {
	dir    string
	clock  Clock
	logger *observability.Logger
}

// NewLocalPublisher creates a publisher writing into dir.
func NewLocalPublisher(dir string, clock Clock, logger *observability.Logger) *LocalPublisher {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &LocalPublisher{dir: dir, clock: clock, logger: logger.WithComponent("local-publisher")}
}

// Publish implements domain.Publisher.
func (p *LocalPublisher) Publish(ctx context.Context, q *domain.StructuredQuestion) (*domain.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.PublishError("publish canceled", err)
	}
	if q == nil {
		return nil, domain.ValidationError("nothing to publish", nil)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, domain.PublishError("create output directory", err)
	}

	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return nil, domain.PublishError("encode question", err)
	}

	stamp := p.clock().UTC().Format(timestampLayout)
	path := filepath.Join(p.dir, fmt.Sprintf("question_%s.json", stamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, domain.PublishError("write question file", err)
	}

	p.logger.Info().Str("path", path).Msg("question saved locally")
	return &domain.Confirmation{Target: "local", Location: path}, nil
}
