// Package parser reads TASKS.md files into the task model.
//
// The grammar is line oriented. A "## Heading" opens a status section, a
// "### Title" opens a task block, and the lines that follow a task heading
// split into a metadata zone (board ID comment, assignee, labels, due date)
// followed by free-form description text. The first non-blank line that
// matches no metadata pattern ends the metadata zone for that task.
package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/harmoniqs/tasksmd-sync/internal/model"
)

var (
	reStatusHeading = regexp.MustCompile(`^##\s+(.+)$`)
	reTaskHeading   = regexp.MustCompile(`^###\s+(.+)$`)
	reBoardID       = regexp.MustCompile(`^<!--\s*id:\s*(\S+)\s*-->$`)
	reAssignee      = regexp.MustCompile(`^-\s+\*\*Assignee:\*\*\s*@?(\S+)\s*$`)
	reLabels        = regexp.MustCompile(`^-\s+\*\*Labels:\*\*\s*(.+)$`)
	reDue           = regexp.MustCompile(`^-\s+\*\*Due:\*\*\s*(\d{4}-\d{2}-\d{2})\s*$`)
)

// Parse parses TASKS.md content into a TaskFile.
func Parse(content, sourcePath string) *model.TaskFile {
	var (
		tasks   []*model.Task
		status  string
		current *taskBuilder
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if m := reStatusHeading.FindStringSubmatch(line); m != nil {
			if current != nil {
				tasks = append(tasks, current.build())
				current = nil
			}
			status = model.NormalizeStatus(strings.TrimSpace(m[1]))
			continue
		}

		if m := reTaskHeading.FindStringSubmatch(line); m != nil {
			if current != nil {
				tasks = append(tasks, current.build())
			}
			if status == "" {
				status = "Todo"
			}
			current = newTaskBuilder(strings.TrimSpace(m[1]), status)
			continue
		}

		if current != nil {
			current.feed(line)
		}
	}

	if current != nil {
		tasks = append(tasks, current.build())
	}

	return &model.TaskFile{Tasks: tasks, SourcePath: sourcePath}
}

// ParseFile parses a TASKS.md file from disk.
func ParseFile(path string) (*model.TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	return Parse(string(data), path), nil
}

// taskBuilder accumulates lines for a single task block.
type taskBuilder struct {
	task       *model.Task
	descLines  []string
	inMetadata bool
}

func newTaskBuilder(title, status string) *taskBuilder {
	return &taskBuilder{
		task:       &model.Task{Title: title, Status: status},
		inMetadata: true,
	}
}

func (b *taskBuilder) feed(line string) {
	if b.inMetadata {
		if m := reBoardID.FindStringSubmatch(line); m != nil {
			b.task.BoardItemID = m[1]
			return
		}
		if m := reAssignee.FindStringSubmatch(line); m != nil {
			b.task.Assignee = m[1]
			return
		}
		if m := reLabels.FindStringSubmatch(line); m != nil {
			b.task.Labels = splitLabels(m[1])
			return
		}
		if m := reDue.FindStringSubmatch(line); m != nil {
			b.task.DueDate = m[1]
			return
		}

		// Blank lines in the metadata zone are skipped; the first other
		// line starts the description.
		if strings.TrimSpace(line) == "" {
			return
		}
		b.inMetadata = false
	}
	b.descLines = append(b.descLines, line)
}

func (b *taskBuilder) build() *model.Task {
	b.task.Description = strings.TrimSpace(strings.Join(b.descLines, "\n"))
	return b.task
}

func splitLabels(raw string) []string {
	var labels []string
	for _, part := range strings.Split(raw, ",") {
		if l := strings.TrimSpace(part); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
