package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical/question-agent/internal/artifact"
	"github.com/spherical/question-agent/internal/config"
	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/notion"
	"github.com/spherical/question-agent/internal/observability"
	"github.com/spherical/question-agent/internal/ocr"
	"github.com/spherical/question-agent/internal/ocr/tesseract"
	"github.com/spherical/question-agent/internal/preprocess"
)

// loadConfig loads the config file and environment, then applies the flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command, needNotion bool) (*config.Config, error) {
	flags := cmd.Flags()

	cfg, err := config.Load(cfgFile, func(c *config.Config) {
		if flags.Changed("lang") {
			c.OCR.Languages = strings.Split(lang, ",")
		}
		if noGPU {
			c.OCR.UseAccelerator = false
		}
		if noNotion || !needNotion {
			c.DisableNotion()
		}
		if flags.Changed("output-dir") {
			c.Output.Dir = outputDir
		}
		if flags.Changed("debug-dir") {
			c.Output.DebugDir = debugDir
		}
		if flags.Changed("html") {
			c.Output.HTML = writeHTML
		}
		if verbose {
			c.Observability.LogLevel = "debug"
		}
	})
	if err != nil {
		return nil, domain.ConfigError("load configuration", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "question-agent",
	})
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildExtractor wires preprocessing, the Tesseract engine cache and the
// extractor. The caller must Close the cache.
func buildExtractor(cfg *config.Config, logger *observability.Logger) (*ocr.Extractor, *ocr.Cache) {
	p := cfg.Preprocess
	opts := []preprocess.Option{preprocess.WithLogger(logger)}
	if cfg.Output.DebugDir != "" {
		opts = append(opts, preprocess.WithDebugSink(preprocess.NewDirSink(cfg.Output.DebugDir, logger)))
	}

	pre := preprocess.New(preprocess.Options{
		TargetWidth:         p.TargetWidth,
		DarkMeanThreshold:   p.DarkMeanThreshold,
		BilateralDiameter:   p.BilateralDiameter,
		BilateralSigmaColor: p.BilateralSigmaColor,
		BilateralSigmaSpace: p.BilateralSigmaSpace,
		ThresholdBlockSize:  p.ThresholdBlockSize,
		ThresholdBias:       p.ThresholdBias,
	}, opts...)

	cache := ocr.NewCache(tesseract.NewFactory(logger), logger)
	return ocr.NewExtractor(cache, pre, logger), cache
}

// buildPublisher returns the Notion publisher, or the local one when Notion
// is disabled.
func buildPublisher(cfg *config.Config, logger *observability.Logger) (domain.Publisher, error) {
	if !cfg.Notion.Enabled {
		return artifact.NewLocalPublisher(cfg.Output.Dir, nil, logger), nil
	}
	if cfg.Notion.Token == "" {
		return nil, domain.ConfigError("NOTION_TOKEN is required to publish to Notion (or pass --no-notion)", nil)
	}

	client, err := notion.NewClient(cfg.Notion.Token, cfg.Notion.BaseURL, cfg.Notion.Version, newHTTPClient(cfg.Notion.Timeout))
	if err != nil {
		return nil, domain.ConfigError("invalid notion.base_url", err)
	}
	labels := notion.Labels{Correct: cfg.Notion.CorrectLabel, Incorrect: cfg.Notion.IncorrectLabel}
	return notion.NewPublisher(client.Block, cfg.Notion.ParentPageID, labels, logger), nil
}

func newMirror(cfg *config.Config, logger *observability.Logger) *artifact.MarkdownMirror {
	return artifact.NewMarkdownMirror(artifact.MirrorOptions{
		Dir:            cfg.Output.Dir,
		HTML:           cfg.Output.HTML,
		CorrectLabel:   cfg.Notion.CorrectLabel,
		IncorrectLabel: cfg.Notion.IncorrectLabel,
	}, logger)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
