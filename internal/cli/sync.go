package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harmoniqs/tasksmd-sync/internal/config"
	"github.com/harmoniqs/tasksmd-sync/internal/github"
	"github.com/harmoniqs/tasksmd-sync/internal/journal"
	"github.com/harmoniqs/tasksmd-sync/internal/parser"
	"github.com/harmoniqs/tasksmd-sync/internal/sync"
	"github.com/harmoniqs/tasksmd-sync/internal/writeback"
)

var syncCmd = &cobra.Command{
	Use:   "sync [tasks-file]",
	Short: "Sync the tasks file to the project board",
	Long: `Reads the tasks file, lists the current board state, computes a plan
(create / update / unarchive / archive / unchanged), and executes it.

Examples:
  tasksync sync --org myorg --project-number 3
  tasksync sync TASKS.md --org myorg --project-number 3 --repo myorg/backend
  tasksync sync --org myorg --project-number 3 --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

var (
	syncToken       string
	syncOrg         string
	syncProject     int
	syncRepo        string
	syncRepoLabel   string
	syncDryRun      bool
	syncWriteback   bool
	syncArchiveDone bool
	syncOutputJSON  bool
)

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&syncToken, "token", "", "GitHub token (default: resolved from env, token file, gh, or git)")
	syncCmd.Flags().StringVar(&syncOrg, "org", "", "GitHub organization login")
	syncCmd.Flags().IntVar(&syncProject, "project-number", 0, "Project board number")
	syncCmd.Flags().StringVar(&syncRepo, "repo", "", "Repository as owner/name; enables full-issue creation and draft conversion")
	syncCmd.Flags().StringVar(&syncRepoLabel, "repo-label", "", "Only archive board items carrying this label")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Log the plan without mutating the board")
	syncCmd.Flags().BoolVar(&syncWriteback, "writeback", false, "Write assigned board item IDs back into the tasks file")
	syncCmd.Flags().BoolVar(&syncArchiveDone, "archive-done", false, "After a successful sync, remove Done tasks from the tasks file")
	syncCmd.Flags().BoolVar(&syncOutputJSON, "output-json", false, "Print the run summary as JSON")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if syncOrg != "" {
		cfg.Org = syncOrg
	}
	if syncProject != 0 {
		cfg.ProjectNumber = syncProject
	}
	if syncRepo != "" {
		owner, name, ok := strings.Cut(syncRepo, "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("invalid --repo %q: expected owner/name", syncRepo)
		}
		cfg.RepoOwner = owner
		cfg.RepoName = name
	}
	if syncRepoLabel != "" {
		cfg.RepoLabel = syncRepoLabel
	}
	if len(args) > 0 {
		cfg.TasksFile = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	token := syncToken
	if token == "" {
		token, err = github.ResolveToken()
		if err != nil {
			return err
		}
	}

	taskFile, err := parser.ParseFile(cfg.TasksFile)
	if err != nil {
		return err
	}
	slog.Info("Parsed tasks file", "path", cfg.TasksFile, "tasks", len(taskFile.Tasks))

	client := github.NewClient(token, cfg.Org, cfg.ProjectNumber)
	scope := sync.Scope{
		RepoOwner: cfg.RepoOwner,
		RepoName:  cfg.RepoName,
		RepoLabel: cfg.RepoLabel,
	}

	ctx := cmd.Context()
	result, err := sync.Execute(ctx, client, taskFile, scope, syncDryRun)
	if err != nil {
		return err
	}

	recordRun(ctx, cfg, result)

	if syncWriteback && !syncDryRun {
		idMap := make(map[string]string, len(result.MatchedIDs)+len(result.CreatedIDs))
		for title, id := range result.MatchedIDs {
			idMap[title] = id
		}
		for title, id := range result.CreatedIDs {
			idMap[title] = id
		}
		modified, err := writeback.WriteIDs(cfg.TasksFile, idMap)
		if err != nil {
			return fmt.Errorf("writeback: %w", err)
		}
		if modified {
			slog.Info("Wrote board item IDs back to tasks file", "path", cfg.TasksFile)
		}
	}

	if syncArchiveDone && !syncDryRun && !result.Failed() {
		modified, err := writeback.RemoveDoneTasks(cfg.TasksFile)
		if err != nil {
			return fmt.Errorf("remove done tasks: %w", err)
		}
		if modified {
			slog.Info("Removed Done tasks from tasks file", "path", cfg.TasksFile)
		}
	}

	printSummary(result)

	if result.Failed() {
		return fmt.Errorf("sync completed with %d errors", len(result.Errors))
	}
	return nil
}

// recordRun appends the run to the local journal. Journal failures never
// fail the sync.
func recordRun(ctx context.Context, cfg *config.Config, result *sync.Result) {
	if err := config.EnsureDataDir(cfg); err != nil {
		slog.Warn("Could not create data dir for journal", "error", err)
		return
	}
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		slog.Warn("Could not open run journal", "error", err)
		return
	}
	defer j.Close()

	entry := &journal.Entry{
		TasksFile:  cfg.TasksFile,
		Org:        cfg.Org,
		Project:    cfg.ProjectNumber,
		DryRun:     syncDryRun,
		Created:    result.Created,
		Updated:    result.Updated,
		Unarchived: result.Unarchived,
		Archived:   result.Archived,
		Unchanged:  result.Unchanged,
		Errors:     result.Errors,
	}
	if err := j.Record(ctx, entry); err != nil {
		slog.Warn("Could not record run in journal", "error", err)
	}
}

type runSummary struct {
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Unarchived int      `json:"unarchived"`
	Archived   int      `json:"archived"`
	Unchanged  int      `json:"unchanged"`
	Errors     []string `json:"errors"`
	DryRun     bool     `json:"dry_run"`
}

func printSummary(result *sync.Result) {
	if syncOutputJSON {
		summary := runSummary{
			Created:    result.Created,
			Updated:    result.Updated,
			Unarchived: result.Unarchived,
			Archived:   result.Archived,
			Unchanged:  result.Unchanged,
			Errors:     result.Errors,
			DryRun:     syncDryRun,
		}
		if summary.Errors == nil {
			summary.Errors = []string{}
		}
		data, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(data))
		return
	}

	mode := ""
	if syncDryRun {
		mode = " (dry run)"
	}
	fmt.Printf("Sync complete%s: %d created, %d updated, %d unarchived, %d archived, %d unchanged\n",
		mode, result.Created, result.Updated, result.Unarchived, result.Archived, result.Unchanged)
	for _, msg := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
}
