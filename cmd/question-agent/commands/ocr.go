package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spherical/question-agent/cmd/question-agent/ui"
	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/pdf"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <image-or-pdf>...",
	Short: "Print the text recognized in the given images",
	Long:  "Run preprocessing and OCR only. Useful with --debug-dir to tune preprocessing.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	ui.InitUI(noColor, verbose)

	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	rasterizer := pdf.NewRasterizer(0, logger)
	defer rasterizer.Cleanup()

	paths, err := rasterizer.Expand(ctx, args)
	if err != nil {
		return &domain.StageError{Stage: domain.StateAwaitingText, Err: err}
	}

	extractor, cache := buildExtractor(cfg, logger)
	defer cache.Close()

	text, err := extractor.ExtractAll(ctx, paths, cfg.OCR.Languages, cfg.OCR.UseAccelerator)
	if err != nil {
		return &domain.StageError{Stage: domain.StateAwaitingText, Err: err}
	}

	if domain.IsBlank(text) {
		ui.Warning("No text extracted from image.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
