package domain

import "context"

// TextExtractor turns an ordered set of images into one text blob. A blank
// result means no text was found and is not an error.
type TextExtractor interface {
	ExtractAll(ctx context.Context, paths []string, languages []string, useAccelerator bool) (string, error)
}

// QuestionStructurer turns non-blank question text into a structured record
// or fails explicitly.
type QuestionStructurer interface {
	Structure(ctx context.Context, text string) (*StructuredQuestion, error)
}

// Publisher durably records a structured question somewhere.
type Publisher interface {
	Publish(ctx context.Context, question *StructuredQuestion) (*Confirmation, error)
}

// Mirror writes a convenience copy of a finished record.
type Mirror interface {
	WriteMirror(record *PipelineRecord) (string, error)
}

// Preserver keeps a record whose publication failed so the analysis is not lost.
type Preserver interface {
	SavePending(record *PipelineRecord, cause error) (string, error)
}
