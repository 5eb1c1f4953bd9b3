package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/harmoniqs/tasksmd-sync/internal/github"
	"github.com/harmoniqs/tasksmd-sync/internal/model"
)

// Result summarizes one sync run.
type Result struct {
	Created    int
	Updated    int
	Unarchived int
	Archived   int
	Unchanged  int

	// Errors holds one message per failed item, in execution order.
	Errors []string

	// CreatedIDs maps task title to the board item ID of a newly created
	// (or draft-converted) item. MatchedIDs maps task title to the item ID
	// resolved during planning. Both feed writeback.
	CreatedIDs map[string]string
	MatchedIDs map[string]string
}

// NewResult returns an empty Result with initialized maps.
func NewResult() *Result {
	return &Result{
		CreatedIDs: make(map[string]string),
		MatchedIDs: make(map[string]string),
	}
}

// Failed reports whether any per-item operation failed.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

func (r *Result) fail(verb, title string, err error) {
	msg := fmt.Sprintf("Failed to %s '%s': %v", verb, title, err)
	slog.Error(msg)
	r.Errors = append(r.Errors, msg)
}

// Execute runs a full sync of the task file against the board. Only the
// initial listing (and field discovery) can fail the run; every mutation
// failure is captured per item and execution continues.
func Execute(
	ctx context.Context,
	client github.Client,
	taskFile *model.TaskFile,
	scope Scope,
	dryRun bool,
) (*Result, error) {
	result := NewResult()

	slog.Info("Fetching current board state")
	items, err := client.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list board items: %w", err)
	}
	slog.Info("Fetched board items", "count", len(items))

	plan := BuildPlan(taskFile, items, scope)
	slog.Info("Sync plan",
		"create", len(plan.Create),
		"update", len(plan.Update),
		"unarchive", len(plan.Unarchive),
		"archive", len(plan.Archive),
		"unchanged", len(plan.Unchanged))

	for _, p := range plan.Update {
		result.MatchedIDs[p.Task.Title] = p.Item.ItemID
	}
	for _, p := range plan.Unchanged {
		result.MatchedIDs[p.Task.Title] = p.Item.ItemID
	}

	if dryRun {
		logDryRun(plan)
		result.Created = len(plan.Create)
		result.Updated = len(plan.Update)
		result.Unarchived = len(plan.Unarchive)
		result.Archived = len(plan.Archive)
		result.Unchanged = len(plan.Unchanged)
		return result, nil
	}

	fields, err := client.GetFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project fields: %w", err)
	}

	// Unarchive before anything else so restored identifiers are live again,
	// and archive last so nothing is destroyed before being materialized.
	for _, task := range plan.Unarchive {
		item, err := client.UnarchiveItem(ctx, task.BoardItemID)
		if err != nil {
			result.fail("unarchive", task.Title, err)
			continue
		}
		if item.ContentKind == github.ContentIssue && item.ContentID != "" {
			// Issue open/closed state is independent of board archival.
			if err := client.ReopenIssue(ctx, item.ContentID); err != nil {
				slog.Warn("Could not reopen issue after unarchive", "title", task.Title, "error", err)
			}
		}
		slog.Info("Unarchived board item", "title", task.Title, "item", task.BoardItemID)
		result.Unarchived++
		result.MatchedIDs[task.Title] = task.BoardItemID
	}

	for _, task := range plan.Create {
		item, err := createItem(ctx, client, task, scope)
		if err != nil {
			result.fail("create", task.Title, err)
			continue
		}
		if err := applyTaskFields(ctx, client, item, task, fields, scope); err != nil {
			result.fail("create", task.Title, err)
			continue
		}
		slog.Info("Created board item", "title", task.Title, "item", item.ItemID)
		result.Created++
		result.CreatedIDs[task.Title] = item.ItemID
	}

	for _, pair := range plan.Update {
		if err := updateItem(ctx, client, pair, scope, fields, result); err != nil {
			result.fail("update", pair.Task.Title, err)
			continue
		}
		slog.Info("Updated board item", "title", pair.Task.Title, "item", pair.Task.BoardItemID)
		result.Updated++
	}

	for _, item := range plan.Archive {
		if err := client.ArchiveItem(ctx, item.ItemID); err != nil {
			result.fail("archive", item.Title, err)
			continue
		}
		slog.Info("Archived board item", "title", item.Title, "item", item.ItemID)
		result.Archived++
	}

	result.Unchanged = len(plan.Unchanged)
	return result, nil
}

// createItem creates a board item for a task: a full issue attached to the
// board when a repository scope exists, a draft otherwise.
func createItem(ctx context.Context, client github.Client, task *model.Task, scope Scope) (*github.ProjectItem, error) {
	if scope.HasRepo() {
		contentID, err := client.CreateIssue(ctx, scope.RepoOwner, scope.RepoName, task.Title, task.Description)
		if err != nil {
			return nil, err
		}
		itemID, err := client.AddItemToProject(ctx, contentID)
		if err != nil {
			return nil, err
		}
		return &github.ProjectItem{
			ItemID:      itemID,
			ContentID:   contentID,
			ContentKind: github.ContentIssue,
			Title:       task.Title,
			Description: task.Description,
			RepoOwner:   scope.RepoOwner,
			RepoName:    scope.RepoName,
		}, nil
	}

	itemID, err := client.AddDraftItem(ctx, task.Title, task.Description)
	if err != nil {
		return nil, err
	}
	return &github.ProjectItem{
		ItemID:      itemID,
		ContentKind: github.ContentDraft,
		Title:       task.Title,
		Description: task.Description,
	}, nil
}

// updateItem converges one matched pair. A draft item under a repository
// scope is first converted to a full issue; afterwards fields and content
// are applied to whichever item now backs the task.
func updateItem(
	ctx context.Context,
	client github.Client,
	pair Pair,
	scope Scope,
	fields map[string]github.ProjectField,
	result *Result,
) error {
	task, item := pair.Task, pair.Item
	target := item

	if item.ContentKind == github.ContentDraft && scope.HasRepo() {
		converted, err := convertDraft(ctx, client, task, item, scope)
		if err != nil {
			return err
		}
		target = converted
		task.BoardItemID = converted.ItemID
		// The old identifier in the file is now stale; route the new one
		// through the created map so writeback repairs it.
		delete(result.MatchedIDs, task.Title)
		result.CreatedIDs[task.Title] = converted.ItemID
	}

	if err := applyTaskFields(ctx, client, target, task, fields, scope); err != nil {
		return err
	}

	// Only touch content when title or description actually changed.
	if task.Title != target.Title || strings.TrimSpace(task.Description) != strings.TrimSpace(target.Description) {
		switch target.ContentKind {
		case github.ContentDraft:
			if target.ContentID != "" {
				if err := client.UpdateDraftItem(ctx, target.ContentID, task.Title, task.Description); err != nil {
					return fmt.Errorf("update draft content: %w", err)
				}
			}
		case github.ContentIssue:
			if target.ContentID != "" {
				if err := client.UpdateIssue(ctx, target.ContentID, task.Title, task.Description); err != nil {
					return fmt.Errorf("update issue content: %w", err)
				}
			}
		default:
			// Pull requests and redacted content have no title/body mutation path.
			slog.Debug("Skipping content update for non-editable item", "title", task.Title, "kind", string(target.ContentKind))
		}
	}

	return nil
}

// convertDraft replaces a draft board item with a full issue in the scoped
// repository: create the issue, attach it, archive the old draft.
func convertDraft(
	ctx context.Context,
	client github.Client,
	task *model.Task,
	item *github.ProjectItem,
	scope Scope,
) (*github.ProjectItem, error) {
	contentID, err := client.CreateIssue(ctx, scope.RepoOwner, scope.RepoName, task.Title, task.Description)
	if err != nil {
		return nil, fmt.Errorf("convert draft: create issue: %w", err)
	}
	itemID, err := client.AddItemToProject(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("convert draft: attach issue: %w", err)
	}
	if err := client.ArchiveItem(ctx, item.ItemID); err != nil {
		return nil, fmt.Errorf("convert draft: archive old draft: %w", err)
	}
	slog.Info("Converted draft to issue", "title", task.Title, "old", item.ItemID, "new", itemID)
	return &github.ProjectItem{
		ItemID:      itemID,
		ContentID:   contentID,
		ContentKind: github.ContentIssue,
		Title:       task.Title,
		Description: task.Description,
		RepoOwner:   scope.RepoOwner,
		RepoName:    scope.RepoName,
	}, nil
}

func logDryRun(plan *Plan) {
	for _, task := range plan.Create {
		slog.Info("[dry-run] Would create", "title", task.Title, "status", task.Status)
	}
	for _, task := range plan.Unarchive {
		slog.Info("[dry-run] Would unarchive", "title", task.Title, "item", task.BoardItemID)
	}
	for _, p := range plan.Update {
		slog.Info("[dry-run] Would update",
			"title", p.Task.Title,
			"item", p.Item.ItemID,
			"titleMatched", plan.TitleMatched[p.Task.Title])
		if diff := descriptionDiff(p.Item.Description, p.Task.Description); diff != "" {
			slog.Info("[dry-run] Description diff", "title", p.Task.Title, "diff", "\n"+diff)
		}
	}
	for _, item := range plan.Archive {
		slog.Info("[dry-run] Would archive", "title", item.Title, "item", item.ItemID)
	}
}

// descriptionDiff renders a unified diff between the board's description and
// the task's, or "" when trimmed contents match.
func descriptionDiff(current, desired string) string {
	if strings.TrimSpace(current) == strings.TrimSpace(desired) {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(desired),
		FromFile: "board",
		ToFile:   "tasks",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}
