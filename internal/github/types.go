package github

import "sort"

// ContentKind identifies what a board item wraps. The kind gates which
// mutations are legal: only Issue content supports assignee and label
// mutations; Draft content has no such concept at all.
type ContentKind string

const (
	// ContentNone means the item's content was redacted or is missing.
	ContentNone ContentKind = ""
	// ContentDraft is a lightweight board-only draft issue.
	ContentDraft ContentKind = "DraftIssue"
	// ContentIssue is a full issue in a repository.
	ContentIssue ContentKind = "Issue"
	// ContentPullRequest is a pull request attached to the board.
	ContentPullRequest ContentKind = "PullRequest"
)

// ProjectField is a custom field on a Projects v2 board.
type ProjectField struct {
	ID       string
	Name     string
	DataType string            // e.g. "SINGLE_SELECT", "TEXT", "DATE"
	Options  map[string]string // option name -> option ID (single-select only)
}

// ProjectItem is the observed state of one item on the project board.
// ItemID is the board-level identifier (PVTI_...), stable only until the
// item is archived. ContentID is the underlying Issue/DraftIssue/PR node.
// RepoOwner/RepoName are set only when the content is an Issue; they scope
// archive detection.
type ProjectItem struct {
	ItemID      string
	ContentID   string
	ContentKind ContentKind
	Title       string
	Status      string
	Assignee    string
	Labels      []string
	DueDate     string // ISO date (YYYY-MM-DD), empty if unset
	Description string
	RepoOwner   string
	RepoName    string
}

// HasLabel reports whether the item carries the given label (case-sensitive).
func (p *ProjectItem) HasLabel(name string) bool {
	for _, l := range p.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// SortedLabels returns a sorted copy of the item's label set.
func (p *ProjectItem) SortedLabels() []string {
	out := append([]string(nil), p.Labels...)
	sort.Strings(out)
	return out
}
