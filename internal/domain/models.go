package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is a position in the pipeline driver's state machine.
type State string

const (
	StateAwaitingText      State = "awaiting_text"
	StateAwaitingStructure State = "awaiting_structure"
	StateAwaitingPublish   State = "awaiting_publish"
	StateDone              State = "done"
)

// AnswerOption is one graded option of a multiple-choice question.
type AnswerOption struct {
	Label       string `json:"option"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}

// StructuredQuestion is the question-plus-graded-options record produced by the
// language model stage.
type StructuredQuestion struct {
	QuestionText string         `json:"question"`
	Options      []AnswerOption `json:"answer"`
}

// CorrectOptions returns the options flagged as correct, in order.
func (q *StructuredQuestion) CorrectOptions() []AnswerOption {
	var out []AnswerOption
	for _, opt := range q.Options {
		if opt.IsCorrect {
			out = append(out, opt)
		}
	}
	return out
}

// PipelineRecord is the single mutable unit threaded through all stages.
type PipelineRecord struct {
	ID                 uuid.UUID           `json:"id"`
	SourceImagePaths   []string            `json:"source_image_paths"`
	ExtractedText      string              `json:"extracted_text,omitempty"`
	StructuredQuestion *StructuredQuestion `json:"structured_question,omitempty"`
	State              State               `json:"state"`
	CreatedAt          time.Time           `json:"created_at"`
}

// NewPipelineRecord creates a record for one question's image set.
func NewPipelineRecord(paths ...string) *PipelineRecord {
	return &PipelineRecord{
		ID:               uuid.New(),
		SourceImagePaths: append([]string(nil), paths...),
		State:            StateAwaitingText,
		CreatedAt:        time.Now().UTC(),
	}
}

// HasText reports whether the extracted text is non-blank.
func (r *PipelineRecord) HasText() bool {
	return !IsBlank(r.ExtractedText)
}

// IsBlank treats empty and whitespace-only strings as "no text".
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Confirmation is what a publisher reports back on success. The driver does not
// interpret it beyond logging.
type Confirmation struct {
	Target   string   `json:"target"`
	Location string   `json:"location,omitempty"`
	BlockIDs []string `json:"block_ids,omitempty"`
}

// Outcome summarizes a finished pipeline run.
type Outcome struct {
	RecordID     uuid.UUID
	NoText       bool
	MirrorPath   string
	Confirmation *Confirmation
	Duration     time.Duration
}
