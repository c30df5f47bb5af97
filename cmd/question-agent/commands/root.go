package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	lang      string
	noGPU     bool
	noNotion  bool
	outputDir string
	debugDir  string
	writeHTML bool
)

var rootCmd = &cobra.Command{
	Use:   "question-agent [flags] <image-or-pdf>...",
	Short: "Answer a multiple-choice exam question from a screenshot",
	Long: `question-agent reads the text of an exam question from one or more images
(or the pages of a PDF), asks a language model to grade every option with a short
explanation, and appends the result to a Notion page.

All images given in one call are treated as a single question.`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runAnswer,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "en", "OCR language codes, comma separated")
	rootCmd.PersistentFlags().BoolVar(&noGPU, "no-gpu", false, "do not request an accelerated OCR engine")
	rootCmd.PersistentFlags().StringVar(&debugDir, "debug-dir", "", "write intermediate preprocessing images here")
	rootCmd.PersistentFlags().BoolVar(&noNotion, "no-notion", false, "save the answer locally instead of publishing to Notion")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "outputs", "directory for markdown mirrors and pending records")

	rootCmd.Flags().BoolVar(&writeHTML, "html", false, "also render the markdown mirror to HTML")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
