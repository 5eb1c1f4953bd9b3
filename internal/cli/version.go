package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the tool version, overridable at build time with
// -ldflags "-X github.com/harmoniqs/tasksmd-sync/internal/cli.Version=...".
var Version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tasksync %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
