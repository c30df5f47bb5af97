package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical/question-agent/cmd/question-agent/ui"
	"github.com/spherical/question-agent/internal/artifact"
	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/llm"
	"github.com/spherical/question-agent/internal/pdf"
	"github.com/spherical/question-agent/internal/pipeline"
)

func runAnswer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	ui.InitUI(noColor, verbose)

	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	publisher, err := buildPublisher(cfg, logger)
	if err != nil {
		return err
	}

	generator, err := llm.NewGenerator(cfg.LLM)
	if err != nil {
		return domain.ConfigError("create language model client", err)
	}
	structurer := llm.NewStructurer(generator, cfg.LLM.ExplanationLanguage, logger)

	rasterizer := pdf.NewRasterizer(0, logger)
	defer rasterizer.Cleanup()

	extractor, cache := buildExtractor(cfg, logger)
	defer cache.Close()

	driver := pipeline.NewDriver(extractor, structurer, publisher,
		pipeline.WithLanguages(cfg.OCR.Languages...),
		pipeline.WithAccelerator(cfg.OCR.UseAccelerator),
		pipeline.WithMirror(newMirror(cfg, logger)),
		pipeline.WithPreserver(artifact.NewPendingStore(cfg.Output.Dir, nil)),
		pipeline.WithInputExpander(rasterizer),
		pipeline.WithLogger(logger),
	)

	record := domain.NewPipelineRecord(args...)

	spinner := ui.NewSpinner("Reading and answering the question...")
	spinner.Start()
	out, err := driver.Run(ctx, record)
	spinner.Stop()

	if err != nil {
		if raw := domain.RawReply(err); raw != "" {
			ui.ErrorBox("Unusable model reply", raw)
		}
		return err
	}

	if out.NoText {
		ui.Warning("No text extracted from image.")
		return nil
	}

	ui.Section("Answer")
	ui.Question(os.Stdout, record.StructuredQuestion, cfg.Notion.CorrectLabel, cfg.Notion.IncorrectLabel)
	ui.Newline()

	if out.MirrorPath != "" {
		ui.KeyValue("Markdown", out.MirrorPath)
	}
	ui.KeyValue("Duration", ui.FormatDuration(out.Duration))
	if c := out.Confirmation; c != nil {
		ui.Success("Published to %s: %s", c.Target, c.Location)
	}
	return nil
}
