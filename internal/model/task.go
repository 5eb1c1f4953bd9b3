package model

import "strings"

// Task is a single task parsed from a TASKS.md file. It describes the
// desired state of one board item; BoardItemID links it to an existing
// item once the board has created one.
type Task struct {
	Title       string
	Status      string
	Description string
	BoardItemID string
	Assignee    string
	Labels      []string
	DueDate     string // ISO date (YYYY-MM-DD), empty if unset
}

// HasBoardID reports whether the task is linked to a board item.
func (t *Task) HasBoardID() bool {
	return t.BoardItemID != ""
}

// TaskFile is a complete parsed TASKS.md file. Task order follows file order.
type TaskFile struct {
	Tasks      []*Task
	SourcePath string
}

// ByBoardID indexes the linked tasks by their board item ID.
func (f *TaskFile) ByBoardID() map[string]*Task {
	m := make(map[string]*Task)
	for _, t := range f.Tasks {
		if t.HasBoardID() {
			m[t.BoardItemID] = t
		}
	}
	return m
}

// Unlinked returns the tasks that have no board item ID yet.
func (f *TaskFile) Unlinked() []*Task {
	var out []*Task
	for _, t := range f.Tasks {
		if !t.HasBoardID() {
			out = append(out, t)
		}
	}
	return out
}

// statusAliases maps lowercase status spellings to their canonical form.
var statusAliases = map[string]string{
	"todo":        "Todo",
	"to do":       "Todo",
	"to-do":       "Todo",
	"in progress": "In Progress",
	"in-progress": "In Progress",
	"inprogress":  "In Progress",
	"done":        "Done",
	"completed":   "Done",
	"closed":      "Done",
}

// NormalizeStatus maps common status spellings to the canonical
// Todo / In Progress / Done set. Unrecognized values pass through trimmed.
func NormalizeStatus(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := statusAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}
