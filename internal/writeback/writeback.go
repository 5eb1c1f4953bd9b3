// Package writeback rewrites board identifier markers in a TASKS.md file
// after a sync run, so future runs match by stable ID instead of title.
package writeback

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/harmoniqs/tasksmd-sync/internal/model"
)

var (
	reStatusHeading = regexp.MustCompile(`^##\s+(.+)$`)
	reTaskHeading   = regexp.MustCompile(`^###\s+(.+)$`)
	reBoardID       = regexp.MustCompile(`^<!--\s*id:\s*(\S+)\s*-->$`)
)

// WriteIDs injects or repairs board item ID comments in the tasks file.
// For a task with no ID marker, a new marker is injected immediately after
// the heading; a stale marker is replaced in place; a correct marker is left
// untouched. Returns whether the file was modified.
func WriteIDs(path string, idMap map[string]string) (bool, error) {
	if len(idMap) == 0 {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read tasks file: %w", err)
	}

	lines := splitKeepEnds(string(data))
	eol := "\n"
	if len(lines) > 0 && strings.HasSuffix(lines[0], "\r\n") {
		eol = "\r\n"
	}

	var out []string
	modified := false

	for i := 0; i < len(lines); {
		line := lines[i]
		stripped := strings.TrimRight(line, "\r\n")

		m := reTaskHeading.FindStringSubmatch(stripped)
		if m == nil {
			out = append(out, line)
			i++
			continue
		}

		title := strings.TrimSpace(m[1])
		out = append(out, line)
		i++

		// Scan past blank lines for an existing ID marker.
		var blanks []string
		existingID := ""
		hasID := false
		for i < len(lines) {
			next := strings.TrimSpace(strings.TrimRight(lines[i], "\r\n"))
			if next == "" {
				blanks = append(blanks, lines[i])
				i++
				continue
			}
			if idm := reBoardID.FindStringSubmatch(next); idm != nil {
				hasID = true
				existingID = idm[1]
			}
			break
		}

		newID, want := idMap[title]
		switch {
		case !want:
			out = append(out, blanks...)
		case hasID && existingID == newID:
			out = append(out, blanks...)
		case hasID:
			out = append(out, blanks...)
			out = append(out, fmt.Sprintf("<!-- id: %s -->%s", newID, eol))
			i++ // skip the stale marker line
			modified = true
			slog.Debug("Replaced stale board ID", "title", title, "old", existingID, "new", newID)
		default:
			out = append(out, fmt.Sprintf("<!-- id: %s -->%s", newID, eol))
			out = append(out, blanks...)
			modified = true
			slog.Debug("Injected board ID", "title", title, "id", newID)
		}
	}

	if !modified {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(strings.Join(out, "")), 0644); err != nil {
		return false, fmt.Errorf("write tasks file: %w", err)
	}
	return true, nil
}

// RemoveDoneTasks strips every task block under a heading that normalizes to
// "Done" and collapses any doubled blank lines left behind. Returns whether
// the file was modified.
func RemoveDoneTasks(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read tasks file: %w", err)
	}

	lines := splitKeepEnds(string(data))
	var out []string
	modified := false
	status := ""

	for i := 0; i < len(lines); {
		line := lines[i]
		stripped := strings.TrimRight(line, "\r\n")

		if m := reStatusHeading.FindStringSubmatch(stripped); m != nil {
			status = model.NormalizeStatus(strings.TrimSpace(m[1]))
			out = append(out, line)
			i++
			continue
		}

		if reTaskHeading.MatchString(stripped) {
			if status == "Done" {
				modified = true
				i++
				for i < len(lines) {
					next := strings.TrimRight(lines[i], "\r\n")
					if reStatusHeading.MatchString(next) || reTaskHeading.MatchString(next) {
						break
					}
					i++
				}
				continue
			}
			out = append(out, line)
			i++
			continue
		}

		out = append(out, line)
		i++
	}

	if !modified {
		return false, nil
	}

	// Removals can leave consecutive blank lines behind.
	var final []string
	lastBlank := false
	for _, line := range out {
		blank := strings.TrimSpace(line) == ""
		if blank && lastBlank {
			continue
		}
		final = append(final, line)
		lastBlank = blank
	}

	if err := os.WriteFile(path, []byte(strings.Join(final, "")), 0644); err != nil {
		return false, fmt.Errorf("write tasks file: %w", err)
	}
	return true, nil
}

// splitKeepEnds splits content into lines, each retaining its trailing
// newline (like Python's splitlines(keepends=True) for \n and \r\n).
func splitKeepEnds(content string) []string {
	if content == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i+1])
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}
