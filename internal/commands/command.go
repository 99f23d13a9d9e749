// Package commands assembles the scopekit command tree.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/specvital/scopekit/internal/command"
	"github.com/specvital/scopekit/internal/commands/demo"
	"github.com/specvital/scopekit/internal/commands/outline"
)

func RootCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:          "scopekit",
		Short:        command.FormatDescription(true, description...),
		Long:         command.FormatDescription(false, description...),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.AddCommand(
		demo.Command(),
		outline.Command(),
	)
	return cmd
}
