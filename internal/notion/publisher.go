package notion

import (
	"context"
	"time"

	"github.com/jomei/notionapi"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
)

var _ domain.Publisher = (*Publisher)(nil)

// Publisher appends questions to a fixed parent page.
type Publisher struct {
	blocks   notionapi.BlockService
	parentID string
	labels   Labels
	logger   *observability.Logger
}

// NewPublisher creates a Publisher that appends through blocks, usually a
// client's Block service. Empty labels fall back to DefaultLabels.
func NewPublisher(blocks notionapi.BlockService, parentID string, labels Labels, logger *observability.Logger) *Publisher {
	def := DefaultLabels()
	if labels.Correct == "" {
		labels.Correct = def.Correct
	}
	if labels.Incorrect == "" {
		labels.Incorrect = def.Incorrect
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Publisher{
		blocks:   blocks,
		parentID: parentID,
		labels:   labels,
		logger:   logger.WithComponent("notion"),
	}
}

// Publish implements domain.Publisher.
func (p *Publisher) Publish(ctx context.Context, q *domain.StructuredQuestion) (*domain.Confirmation, error) {
	if q == nil {
		return nil, domain.ValidationError("nothing to publish", nil)
	}

	start := time.Now()
	resp, err := p.blocks.AppendChildren(ctx, notionapi.BlockID(p.parentID), BuildPayload(q, p.labels))
	if err != nil {
		return nil, domain.PublishError("append blocks to notion page "+p.parentID, err)
	}

	ids := make([]string, 0, len(resp.Results))
	for _, b := range resp.Results {
		ids = append(ids, string(b.GetID()))
	}

	p.logger.Info().
		Str("parent", p.parentID).
		Strs("block_ids", ids).
		Dur("duration", time.Since(start)).
		Msg("question published")

	return &domain.Confirmation{
		Target:   "notion",
		Location: p.parentID,
		BlockIDs: ids,
	}, nil
}
