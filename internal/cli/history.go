package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harmoniqs/tasksmd-sync/internal/config"
	"github.com/harmoniqs/tasksmd-sync/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs from the local journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	entries, err := j.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, e := range entries {
		mode := ""
		if e.DryRun {
			mode = " dry-run"
		}
		fmt.Printf("%s  %s/#%d%s  +%d ~%d ^%d -%d =%d",
			e.StartedAt.Local().Format(time.RFC3339),
			e.Org, e.Project, mode,
			e.Created, e.Updated, e.Unarchived, e.Archived, e.Unchanged)
		if len(e.Errors) > 0 {
			fmt.Printf("  (%d errors)", len(e.Errors))
		}
		fmt.Println()
	}
	return nil
}
