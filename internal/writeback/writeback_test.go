package writeback

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "TASKS.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readBack(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestWriteIDs_InjectsNewMarker(t *testing.T) {
	path := writeTemp(t, `## Todo

### New task

Some description.
`)

	modified, err := WriteIDs(path, map[string]string{"New task": "ITEM_7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !modified {
		t.Fatal("expected file modified")
	}

	got := readBack(t, path)
	want := `## Todo

### New task
<!-- id: ITEM_7 -->

Some description.
`
	if got != want {
		t.Errorf("unexpected content:\n%s", got)
	}
}

func TestWriteIDs_ReplacesStaleMarker(t *testing.T) {
	path := writeTemp(t, `### Renumbered
<!-- id: OLD -->
Body.
`)

	modified, err := WriteIDs(path, map[string]string{"Renumbered": "NEW"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !modified {
		t.Fatal("expected file modified")
	}

	got := readBack(t, path)
	if !strings.Contains(got, "<!-- id: NEW -->") {
		t.Errorf("expected new marker, got:\n%s", got)
	}
	if strings.Contains(got, "OLD") {
		t.Errorf("expected stale marker removed, got:\n%s", got)
	}
	if strings.Count(got, "<!-- id:") != 1 {
		t.Errorf("expected exactly one marker, got:\n%s", got)
	}
}

func TestWriteIDs_NoOpWhenCorrect(t *testing.T) {
	content := `### Stable
<!-- id: ITEM_1 -->
Body.
`
	path := writeTemp(t, content)

	modified, err := WriteIDs(path, map[string]string{"Stable": "ITEM_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modified {
		t.Error("expected no modification")
	}
	if got := readBack(t, path); got != content {
		t.Errorf("file changed unexpectedly:\n%s", got)
	}
}

func TestWriteIDs_EmptyMapIsNoOp(t *testing.T) {
	path := writeTemp(t, "### T\n")
	modified, err := WriteIDs(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modified {
		t.Error("expected no modification for empty map")
	}
}

func TestWriteIDs_UnrelatedTasksUntouched(t *testing.T) {
	path := writeTemp(t, `### Known
<!-- id: K1 -->

### Unknown

Body of unknown.
`)

	modified, err := WriteIDs(path, map[string]string{"Known": "K1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modified {
		t.Error("expected no modification")
	}
	got := readBack(t, path)
	if !strings.Contains(got, "Body of unknown.") {
		t.Errorf("unrelated text disturbed:\n%s", got)
	}
}

func TestWriteIDs_PreservesCRLF(t *testing.T) {
	path := writeTemp(t, "### Win task\r\nBody.\r\n")

	modified, err := WriteIDs(path, map[string]string{"Win task": "W1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !modified {
		t.Fatal("expected file modified")
	}
	if got := readBack(t, path); !strings.Contains(got, "<!-- id: W1 -->\r\n") {
		t.Errorf("expected CRLF marker line, got %q", got)
	}
}

func TestRemoveDoneTasks_StripsDoneSection(t *testing.T) {
	path := writeTemp(t, `## Todo

### Keep me
Body.

## Done

### Finished one
<!-- id: F1 -->
Old body.

### Finished two

## In Progress

### Also keep
`)

	modified, err := RemoveDoneTasks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !modified {
		t.Fatal("expected file modified")
	}

	got := readBack(t, path)
	if strings.Contains(got, "Finished") {
		t.Errorf("expected Done tasks removed:\n%s", got)
	}
	if !strings.Contains(got, "### Keep me") || !strings.Contains(got, "### Also keep") {
		t.Errorf("expected other tasks kept:\n%s", got)
	}
	if !strings.Contains(got, "## Done") {
		t.Errorf("expected the Done heading itself kept:\n%s", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("expected doubled blank lines collapsed:\n%s", got)
	}
}

func TestRemoveDoneTasks_NormalizedHeadings(t *testing.T) {
	path := writeTemp(t, `## Completed

### Old thing
`)

	modified, err := RemoveDoneTasks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !modified {
		t.Fatal("expected 'Completed' heading treated as Done")
	}
	if got := readBack(t, path); strings.Contains(got, "Old thing") {
		t.Errorf("expected task removed:\n%s", got)
	}
}

func TestRemoveDoneTasks_NoOpWithoutDoneTasks(t *testing.T) {
	content := `## Todo

### Active
`
	path := writeTemp(t, content)

	modified, err := RemoveDoneTasks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modified {
		t.Error("expected no modification")
	}
	if got := readBack(t, path); got != content {
		t.Errorf("file changed unexpectedly:\n%s", got)
	}
}
