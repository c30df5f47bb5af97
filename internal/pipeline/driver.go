// Package pipeline drives one question through text extraction, structuring
// and publishing.
package pipeline

import (
	"context"
	"time"

	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/observability"
)

// Driver advances a PipelineRecord through its states:
//
//	awaiting_text -> awaiting_structure -> awaiting_publish -> done
//
// Blank extracted text jumps straight to done. Any stage failure stops the
// run and is returned as a *domain.StageError.
type Driver struct {
	extractor      domain.TextExtractor
	structurer     domain.QuestionStructurer
	publisher      domain.Publisher
	mirror         domain.Mirror
	preserver      domain.Preserver
	expander       InputExpander
	languages      []string
	useAccelerator bool
	logger         *observability.Logger
}

// InputExpander rewrites the source paths before extraction, e.g. PDFs into page images.
type InputExpander interface {
	Expand(ctx context.Context, paths []string) ([]string, error)
}

// Option configures a Driver.
type Option func(*Driver)

// WithLanguages sets the OCR languages.
func WithLanguages(langs ...string) Option {
	return func(d *Driver) { d.languages = langs }
}

// WithAccelerator sets the OCR accelerator preference.
func WithAccelerator(use bool) Option {
	return func(d *Driver) { d.useAccelerator = use }
}

// WithMirror writes a mirror of the record before publishing.
func WithMirror(m domain.Mirror) Option {
	return func(d *Driver) { d.mirror = m }
}

// WithPreserver saves the record when publishing fails.
func WithPreserver(p domain.Preserver) Option {
	return func(d *Driver) { d.preserver = p }
}

// WithInputExpander expands the record's source paths at the start of the text stage.
// The record keeps the paths it was created with.
func WithInputExpander(e InputExpander) Option {
	return func(d *Driver) { d.expander = e }
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDriver creates a Driver.
func NewDriver(extractor domain.TextExtractor, structurer domain.QuestionStructurer, publisher domain.Publisher, opts ...Option) *Driver {
	d := &Driver{
		extractor:      extractor,
		structurer:     structurer,
		publisher:      publisher,
		languages:      []string{"en"},
		useAccelerator: true,
		logger:         observability.Nop(),
	}
	for _, o := range opts {
		o(d)
	}
	d.logger = d.logger.WithComponent("pipeline")
	return d
}

// Run processes record from its current state until done or a failure.
func (d *Driver) Run(ctx context.Context, record *domain.PipelineRecord) (*domain.Outcome, error) {
	if record == nil {
		return nil, domain.ValidationError("no record", nil)
	}
	if record.State == domain.StateAwaitingText && len(record.SourceImagePaths) == 0 {
		return nil, domain.ValidationError("record has no source images", nil)
	}

	start := time.Now()
	log := d.logger.WithRecord(record.ID.String())
	out := &domain.Outcome{RecordID: record.ID}

	for record.State != domain.StateDone {
		if err := ctx.Err(); err != nil {
			return out, &domain.StageError{Stage: record.State, Err: err}
		}

		stage := record.State
		stageStart := time.Now()
		log.Info().Str("stage", string(stage)).Msg("stage started")

		if err := d.step(ctx, record, out, log); err != nil {
			log.Error().Str("stage", string(stage)).Err(err).Msg("stage failed")
			return out, &domain.StageError{Stage: stage, Err: err}
		}

		log.Info().
			Str("stage", string(stage)).
			Str("next", string(record.State)).
			Dur("duration", time.Since(stageStart)).
			Msg("stage finished")
	}

	out.Duration = time.Since(start)
	return out, nil
}

// step runs the current state's work and advances record.State on success.
func (d *Driver) step(ctx context.Context, record *domain.PipelineRecord, out *domain.Outcome, log *observability.Logger) error {
	switch record.State {
	case domain.StateAwaitingText:
		paths := record.SourceImagePaths
		if d.expander != nil {
			expanded, err := d.expander.Expand(ctx, paths)
			if err != nil {
				return err
			}
			paths = expanded
		}
		text, err := d.extractor.ExtractAll(ctx, paths, d.languages, d.useAccelerator)
		if err != nil {
			return err
		}
		record.ExtractedText = text
		if !record.HasText() {
			log.Warn().Strs("paths", record.SourceImagePaths).Msg("no text extracted from image")
			out.NoText = true
			record.State = domain.StateDone
			return nil
		}
		log.Debug().Str("preview", preview(text, 500)).Msg("question text extracted")
		record.State = domain.StateAwaitingStructure

	case domain.StateAwaitingStructure:
		q, err := d.structurer.Structure(ctx, record.ExtractedText)
		if err != nil {
			return err
		}
		record.StructuredQuestion = q
		record.State = domain.StateAwaitingPublish

	case domain.StateAwaitingPublish:
		if record.StructuredQuestion == nil {
			return domain.ValidationError("record has no structured question", nil)
		}
		if d.mirror != nil {
			path, err := d.mirror.WriteMirror(record)
			if err != nil {
				log.Warn().Err(err).Msg("markdown mirror not written")
			} else {
				out.MirrorPath = path
				log.Info().Str("path", path).Msg("markdown mirror written")
			}
		}

		conf, err := d.publisher.Publish(ctx, record.StructuredQuestion)
		if err != nil {
			d.preserve(record, err, log)
			return err
		}
		if conf == nil {
			conf = &domain.Confirmation{}
		}
		out.Confirmation = conf
		log.Info().Str("target", conf.Target).Str("location", conf.Location).Msg("question published")
		record.State = domain.StateDone

	default:
		return domain.ValidationError("unknown state "+string(record.State), nil)
	}
	return nil
}

func (d *Driver) preserve(record *domain.PipelineRecord, cause error, log *observability.Logger) {
	if d.preserver == nil {
		return
	}
	path, err := d.preserver.SavePending(record, cause)
	if err != nil {
		log.Error().Err(err).Msg("pending record not saved")
		return
	}
	log.Warn().Str("path", path).Msg("record saved for republishing")
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
