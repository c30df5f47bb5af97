package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorMessage(t *testing.T) {
	cause := errors.New("no such file")
	err := ImageNotFoundError("q.png", cause)

	assert.Equal(t, "[image_not_found] image not found: q.png: no such file", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := ValidationError("empty path", nil)
	assert.Equal(t, "[validation] empty path", bare.Error())
}

func TestIsTypeWalksChain(t *testing.T) {
	inner := IOError("write failed", errors.New("disk full"))
	outer := PublishError("publish failed", inner)
	wrapped := &StageError{Stage: StateAwaitingPublish, Err: fmt.Errorf("ctx: %w", outer)}

	assert.True(t, IsType(wrapped, ErrorTypePublish))
	assert.True(t, IsType(wrapped, ErrorTypeIO))
	assert.False(t, IsType(wrapped, ErrorTypeStructuring))
	assert.False(t, IsType(errors.New("plain"), ErrorTypePublish))
	assert.False(t, IsType(nil, ErrorTypePublish))
}

func TestRawReply(t *testing.T) {
	err := &StageError{
		Stage: StateAwaitingStructure,
		Err:   StructuringError("reply is not JSON", "not json at all", nil),
	}

	assert.Equal(t, "not json at all", RawReply(err))
	assert.Empty(t, RawReply(errors.New("plain")))
	assert.Contains(t, err.Error(), "stage awaiting_structure")
}
