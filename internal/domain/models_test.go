package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineRecord(t *testing.T) {
	paths := []string{"a.png", "b.png"}
	rec := NewPipelineRecord(paths...)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, StateAwaitingText, rec.State)
	assert.Equal(t, paths, rec.SourceImagePaths)
	assert.False(t, rec.HasText())
	assert.Nil(t, rec.StructuredQuestion)

	paths[0] = "changed.png"
	assert.Equal(t, "a.png", rec.SourceImagePaths[0])
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \n\t "))
	assert.False(t, IsBlank(" x "))
}

func TestStructuredQuestionWireFormat(t *testing.T) {
	q := StructuredQuestion{
		QuestionText: "What is S3?",
		Options: []AnswerOption{
			{Label: "A) Storage", IsCorrect: true, Explanation: "Es almacenamiento."},
			{Label: "B) Compute", IsCorrect: false, Explanation: "No es computo."},
		},
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"question": "What is S3?",
		"answer": [
			{"option": "A) Storage", "isCorrect": true, "explanation": "Es almacenamiento."},
			{"option": "B) Compute", "isCorrect": false, "explanation": "No es computo."}
		]
	}`, string(data))

	correct := q.CorrectOptions()
	require.Len(t, correct, 1)
	assert.Equal(t, "A) Storage", correct[0].Label)
}
