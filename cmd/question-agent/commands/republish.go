package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical/question-agent/cmd/question-agent/ui"
	"github.com/spherical/question-agent/internal/artifact"
	"github.com/spherical/question-agent/internal/domain"
	"github.com/spherical/question-agent/internal/pipeline"
)

var republishCmd = &cobra.Command{
	Use:   "republish <pending.json>",
	Short: "Publish a record saved after a failed publish",
	Long: `Records whose publication failed are saved under <output-dir>/pending.
republish sends one of them again and removes the file on success.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepublish,
}

func init() {
	rootCmd.AddCommand(republishCmd)
}

func runRepublish(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	ui.InitUI(noColor, verbose)

	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	entry, err := artifact.LoadPending(args[0])
	if err != nil {
		return err
	}
	ui.Info("Republishing record %s (failed earlier: %s)", entry.Record.ID, entry.Cause)

	publisher, err := buildPublisher(cfg, logger)
	if err != nil {
		return err
	}

	record := entry.Record
	record.State = domain.StateAwaitingPublish

	// only the publish stage runs, so no extractor or structurer is needed
	driver := pipeline.NewDriver(nil, nil, publisher,
		pipeline.WithPreserver(artifact.NewPendingStore(cfg.Output.Dir, nil)),
		pipeline.WithLogger(logger),
	)

	out, err := driver.Run(ctx, record)
	if err != nil {
		return err
	}

	if err := os.Remove(args[0]); err != nil {
		ui.Warning("Published, but could not remove %s: %v", args[0], err)
	}
	if conf := out.Confirmation; conf != nil && conf.Target != "" {
		ui.Success("Published to %s: %s", conf.Target, conf.Location)
	} else {
		ui.Success("Published record %s", record.ID)
	}
	return nil
}
