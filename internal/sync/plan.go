package sync

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/harmoniqs/tasksmd-sync/internal/github"
	"github.com/harmoniqs/tasksmd-sync/internal/model"
)

// Scope bounds a run. A repository owner/name pair enables full-issue
// creation and draft conversion, and restricts archival to items backed by
// that repository. A label restricts archival to items carrying it. With no
// scope, every unclaimed item is an archive candidate.
type Scope struct {
	RepoOwner string
	RepoName  string
	RepoLabel string
}

// HasRepo reports whether a repository owner/name pair was supplied.
func (s Scope) HasRepo() bool {
	return s.RepoOwner != "" && s.RepoName != ""
}

// Pair couples a desired task with the board item it claimed.
type Pair struct {
	Task *model.Task
	Item *github.ProjectItem
}

// Plan is the set of operations that will converge the board onto the task
// file. Every task lands in exactly one bucket; every claimed item appears
// in at most one pair.
type Plan struct {
	Create    []*model.Task
	Update    []Pair
	Unarchive []*model.Task
	Archive   []*github.ProjectItem
	Unchanged []Pair

	// TitleMatched records task titles whose item was resolved by title
	// fallback rather than a stored identifier.
	TitleMatched map[string]bool
}

// BuildPlan matches desired tasks against observed board items and produces
// a Plan. It has no remote side effects. Tasks claim items in file order;
// an item, once claimed, is unavailable to later tasks.
func BuildPlan(taskFile *model.TaskFile, items []*github.ProjectItem, scope Scope) *Plan {
	plan := &Plan{TitleMatched: make(map[string]bool)}

	byID := make(map[string]*github.ProjectItem, len(items))
	for _, item := range items {
		byID[item.ItemID] = item
	}
	claimed := make(map[string]bool)

	warnDuplicateItemTitles(items)

	for _, task := range taskFile.Tasks {
		if task.HasBoardID() {
			if item, ok := byID[task.BoardItemID]; ok && !claimed[item.ItemID] {
				claimed[item.ItemID] = true
				plan.route(task, item, scope)
				continue
			}

			// Stale identifier. Try to recover the item by title before
			// assuming it was archived out-of-band; a recovered match goes
			// straight to update so the repaired identifier reaches writeback.
			if item := titleMatch(task.Title, items, claimed); item != nil {
				claimed[item.ItemID] = true
				task.BoardItemID = item.ItemID
				plan.TitleMatched[task.Title] = true
				plan.Update = append(plan.Update, Pair{Task: task, Item: item})
				continue
			}

			plan.Unarchive = append(plan.Unarchive, task)
			continue
		}

		if item := titleMatch(task.Title, items, claimed); item != nil {
			claimed[item.ItemID] = true
			task.BoardItemID = item.ItemID
			plan.TitleMatched[task.Title] = true
			plan.route(task, item, scope)
			continue
		}

		plan.Create = append(plan.Create, task)
	}

	for _, item := range items {
		if claimed[item.ItemID] {
			continue
		}
		if archivable(item, scope) {
			plan.Archive = append(plan.Archive, item)
		}
	}

	return plan
}

// route places a claimed pair in update or unchanged.
func (p *Plan) route(task *model.Task, item *github.ProjectItem, scope Scope) {
	// With repository context the run converts drafts into full issues, so a
	// Draft-backed pair always updates even with no field diffs.
	if scope.HasRepo() && item.ContentKind == github.ContentDraft {
		p.Update = append(p.Update, Pair{Task: task, Item: item})
		return
	}
	if needsUpdate(task, item) {
		p.Update = append(p.Update, Pair{Task: task, Item: item})
	} else {
		p.Unchanged = append(p.Unchanged, Pair{Task: task, Item: item})
	}
}

// needsUpdate reports whether any field of the task differs from the item.
func needsUpdate(task *model.Task, item *github.ProjectItem) bool {
	if task.Title != item.Title {
		return true
	}
	// Empty task status means "don't care".
	if task.Status != "" && !strings.EqualFold(task.Status, item.Status) {
		return true
	}
	if strings.TrimSpace(task.Description) != strings.TrimSpace(item.Description) {
		return true
	}
	if task.DueDate != "" && task.DueDate != item.DueDate {
		return true
	}

	// Assignee and labels only exist on Issue content. Drafts and PRs have
	// no mutation path for them, so comparing would pin a permanent diff.
	if item.ContentKind == github.ContentIssue {
		if task.Assignee != "" && task.Assignee != item.Assignee {
			return true
		}
		if len(task.Labels) > 0 && !labelsEqual(task.Labels, item.Labels) {
			return true
		}
	}

	return false
}

// titleMatch finds the first unclaimed item with an exactly equal title.
func titleMatch(title string, items []*github.ProjectItem, claimed map[string]bool) *github.ProjectItem {
	for _, item := range items {
		if !claimed[item.ItemID] && item.Title == title {
			return item
		}
	}
	return nil
}

// archivable applies the run scope to an unclaimed item.
func archivable(item *github.ProjectItem, scope Scope) bool {
	if scope.HasRepo() {
		return item.ContentKind == github.ContentIssue &&
			item.RepoOwner == scope.RepoOwner &&
			item.RepoName == scope.RepoName
	}
	if scope.RepoLabel != "" {
		return item.HasLabel(scope.RepoLabel)
	}
	return true
}

func labelsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func warnDuplicateItemTitles(items []*github.ProjectItem) {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Title == "" {
			continue
		}
		if seen[it.Title] {
			slog.Warn("Multiple board items share a title; matches resolved in listing order", "title", it.Title)
		}
		seen[it.Title] = true
	}
}
