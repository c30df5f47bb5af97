package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/spherical/question-agent/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "4s", FormatDuration(4200*time.Millisecond))
	assert.Equal(t, "2m 5s", FormatDuration(125*time.Second))
}

func TestBoxPadsLines(t *testing.T) {
	var buf bytes.Buffer
	Box(&buf, "Title", "short\nñandú")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 6)
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}
}

func TestQuestion(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Question(&buf, &domain.StructuredQuestion{
		QuestionText: "What is S3?",
		Options: []domain.AnswerOption{
			{Label: "A) Storage", IsCorrect: true, Explanation: "Almacenamiento."},
			{Label: "B) Compute", IsCorrect: false, Explanation: "No."},
		},
	}, "Correcto", "Incorrecto")

	out := buf.String()
	assert.Contains(t, out, "What is S3?")
	assert.Contains(t, out, "✓ A) Storage")
	assert.Contains(t, out, "Correcto: Almacenamiento.")
	assert.Contains(t, out, "✗ B) Compute")
	assert.Contains(t, out, "Incorrecto: No.")
}
