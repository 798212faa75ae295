// Package cli is the go-bmp command line: thin glue over the session,
// histogram and preview packages.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/anas-shakeel/go-bmp/internal/logging"
)

// Execute runs the command line with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "go-bmp",
		Short:        "Inspect and filter 8-bit and 24-bit BMP images",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log decoding and filter details to stderr")

	root.AddCommand(
		newInfoCommand(),
		newApplyCommand(),
		newHistogramCommand(),
		newPreviewCommand(),
		newFiltersCommand(),
	)
	return root
}
