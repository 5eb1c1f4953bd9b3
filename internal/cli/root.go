// Package cli implements the tasksync command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tasksync",
	Short: "One-way sync from TASKS.md to a GitHub Projects v2 board",
	Long: `tasksync reconciles a human-edited TASKS.md file against a GitHub
Projects v2 board. The file is the source of truth: the board is updated to
match it, never the reverse. Newly assigned board item IDs can be written
back into the file so future runs match by stable identifier.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
