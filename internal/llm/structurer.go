// Package llm structures raw question text into a graded answer set using a
// language model.
package llm

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/prompts"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
)

var _ domain.QuestionStructurer = (*Structurer)(nil)

// Structurer fills the question prompt, calls the generator and validates the
// reply.
type Structurer struct {
	generator Generator
	prompt    prompts.PromptTemplate
	language  string
	logger    *observability.Logger
}

// NewStructurer creates a Structurer. language is the language explanations
// are written in.
func NewStructurer(generator Generator, language string, logger *observability.Logger) *Structurer {
	if language == "" {
		language = "Spanish"
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Structurer{
		generator: generator,
		prompt:    NewQuestionPrompt(),
		language:  language,
		logger:    logger.WithComponent("llm"),
	}
}

// Structure implements domain.QuestionStructurer.
func (s *Structurer) Structure(ctx context.Context, text string) (*domain.StructuredQuestion, error) {
	if domain.IsBlank(text) {
		return nil, domain.ValidationError("question text is blank", nil)
	}

	prompt, err := buildPrompt(s.prompt, text, s.language)
	if err != nil {
		return nil, domain.StructuringError("build prompt", "", err)
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, domain.StructuringError("text generation failed", "", err)
	}

	q, err := ParseReply(raw)
	if err != nil {
		s.logger.Error().Err(err).Str("raw_reply", raw).Msg("model reply rejected")
		return nil, err
	}

	s.logger.Info().
		Int("options", len(q.Options)).
		Int("correct", len(q.CorrectOptions())).
		Dur("duration", time.Since(start)).
		Msg("question structured")

	return q, nil
}
