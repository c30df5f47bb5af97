package llm

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

// fakeModel is a langchaingo model that answers every prompt with reply.
type fakeModel struct {
	reply string
	seen  []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.seen = messages
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestQuestionPrompt(t *testing.T) {
	out, err := buildPrompt(NewQuestionPrompt(), "What is S3?\nA) Storage\nB) Compute", "Spanish")
	require.NoError(t, err)

	assert.Contains(t, out, "What is S3?\nA) Storage\nB) Compute")
	assert.Contains(t, out, "Provide a short explanation **in Spanish**")
	assert.Contains(t, out, `"isCorrect": true or false`)
	assert.NotContains(t, out, "{{")
}

func TestStructureSuccess(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	s := NewStructurer(gen, "French", nil)

	q, err := s.Structure(context.Background(), "What is S3? A) Storage B) Compute")
	require.NoError(t, err)

	assert.Equal(t, "What is S3?", q.QuestionText)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "What is S3? A) Storage B) Compute")
	assert.Contains(t, gen.prompts[0], "in French")
}

func TestStructureMalformedReplyIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.LogConfig{Level: "info", Format: "json", Output: &buf})
	s := NewStructurer(&fakeGenerator{reply: "Sorry, no JSON today"}, "", logger)

	_, err := s.Structure(context.Background(), "What is S3?")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeStructuring))
	assert.Equal(t, "Sorry, no JSON today", domain.RawReply(err))
	assert.Contains(t, buf.String(), "Sorry, no JSON today")
}

func TestStructureGeneratorFailure(t *testing.T) {
	s := NewStructurer(&fakeGenerator{err: errors.New("connection refused")}, "", nil)

	_, err := s.Structure(context.Background(), "What is S3?")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeStructuring))
	assert.Empty(t, domain.RawReply(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStructureBlankText(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	_, err := NewStructurer(gen, "", nil).Structure(context.Background(), " \n ")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	assert.Empty(t, gen.prompts)
}

func TestModelGenerator(t *testing.T) {
	model := &fakeModel{reply: validReply}
	s := NewStructurer(NewModelGenerator(model), "Spanish", nil)

	q, err := s.Structure(context.Background(), "What is S3?")
	require.NoError(t, err)
	assert.Len(t, q.Options, 2)

	require.Len(t, model.seen, 1)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.seen[0].Role)
}
