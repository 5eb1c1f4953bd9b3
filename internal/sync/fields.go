package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harmoniqs/tasksmd-sync/internal/github"
	"github.com/harmoniqs/tasksmd-sync/internal/model"
)

// applyTaskFields applies a task's metadata to a board item: status and due
// date through project fields, assignee and labels through the underlying
// issue when the item has Issue content. Assignee and label writes are
// skipped when the item already carries the desired value. Unresolvable
// references (unknown
// status option, unknown login, unknown label names) degrade to warnings;
// only transport failures return an error.
func applyTaskFields(
	ctx context.Context,
	client github.Client,
	item *github.ProjectItem,
	task *model.Task,
	fields map[string]github.ProjectField,
	scope Scope,
) error {
	if task.Status != "" {
		if f, ok := fields["Status"]; ok {
			if optionID := matchStatusOption(task.Status, f.Options); optionID != "" {
				if err := client.UpdateItemFieldSingleSelect(ctx, item.ItemID, f.ID, optionID); err != nil {
					return fmt.Errorf("set status: %w", err)
				}
			} else {
				slog.Warn("Status has no matching project option; skipping",
					"status", task.Status, "title", task.Title)
			}
		}
	}

	if task.DueDate != "" {
		f, ok := fields["End date"]
		if !ok {
			f, ok = fields["Due"]
		}
		if ok {
			if err := client.UpdateItemFieldDate(ctx, item.ItemID, f.ID, task.DueDate); err != nil {
				return fmt.Errorf("set due date: %w", err)
			}
		}
	}

	// Assignee and labels live on the issue content, not on project fields.
	if item.ContentKind != github.ContentIssue || item.ContentID == "" {
		return nil
	}

	if task.Assignee != "" && task.Assignee != item.Assignee {
		userID, err := client.ResolveUserID(ctx, task.Assignee)
		if err != nil {
			return fmt.Errorf("resolve assignee %q: %w", task.Assignee, err)
		}
		if userID == "" {
			slog.Warn("Assignee login not found; skipping", "login", task.Assignee, "title", task.Title)
		} else if err := client.SetIssueAssignees(ctx, item.ContentID, []string{userID}); err != nil {
			return fmt.Errorf("set assignees: %w", err)
		}
	}

	if len(task.Labels) > 0 && !labelsEqual(task.Labels, item.Labels) {
		owner, repo := labelRepo(item, scope, client)
		if repo == "" {
			slog.Warn("No repository context for label resolution; skipping labels", "title", task.Title)
			return nil
		}
		labelIDs, err := client.ResolveLabelIDs(ctx, owner, repo, task.Labels)
		if err != nil {
			return fmt.Errorf("resolve labels: %w", err)
		}
		if len(labelIDs) < len(task.Labels) {
			slog.Warn("Some labels could not be resolved", "title", task.Title,
				"requested", len(task.Labels), "resolved", len(labelIDs))
		}
		if len(labelIDs) > 0 {
			if err := client.SetIssueLabels(ctx, item.ContentID, labelIDs); err != nil {
				return fmt.Errorf("set labels: %w", err)
			}
		}
	}

	return nil
}

// labelRepo picks the repository used for label resolution: the item's own
// repository when known, then the run scope, then the client's org with no
// repository name (which disables resolution).
func labelRepo(item *github.ProjectItem, scope Scope, client github.Client) (owner, repo string) {
	if item.RepoOwner != "" && item.RepoName != "" {
		return item.RepoOwner, item.RepoName
	}
	if scope.HasRepo() {
		return scope.RepoOwner, scope.RepoName
	}
	return client.Org(), ""
}

// matchStatusOption matches a status string to a board option ID, trying an
// exact name match first and a case-insensitive match second. Returns "" when
// no option matches.
func matchStatusOption(status string, options map[string]string) string {
	if id, ok := options[status]; ok {
		return id
	}
	for name, id := range options {
		if strings.EqualFold(name, status) {
			return id
		}
	}
	return ""
}
