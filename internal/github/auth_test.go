package github

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTokenFilePath(t *testing.T) {
	path, err := TokenFilePath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(".tasksmd-sync", "token")) {
		t.Errorf("expected path to end with .tasksmd-sync/token, got %s", path)
	}
}

func TestSaveAndResolveFromTokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SaveToken("ghp_test_save_token_123"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	path, _ := TokenFilePath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %04o", perm)
	}

	token, err := resolveFromTokenFile()
	if err != nil {
		t.Fatalf("resolveFromTokenFile: %v", err)
	}
	if token != "ghp_test_save_token_123" {
		t.Errorf("expected 'ghp_test_save_token_123', got %q", token)
	}
}

func TestResolveToken_EnvVar(t *testing.T) {
	t.Setenv("TASKSMD_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "ghp_env_token_456")

	token, err := ResolveToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "ghp_env_token_456" {
		t.Fatalf("expected 'ghp_env_token_456', got %q", token)
	}
}

func TestResolveToken_ProjectEnvVarWins(t *testing.T) {
	t.Setenv("TASKSMD_GITHUB_TOKEN", "ghp_project_token")
	t.Setenv("GITHUB_TOKEN", "ghp_generic_token")

	token, err := ResolveToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "ghp_project_token" {
		t.Fatalf("expected project token to win, got %q", token)
	}
}

func TestResolveToken_TrimsWhitespace(t *testing.T) {
	t.Setenv("TASKSMD_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "  ghp_trimmed_token  \n")

	token, err := ResolveToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "ghp_trimmed_token" {
		t.Fatalf("expected trimmed token, got %q", token)
	}
}

func TestResolveToken_TokenFileFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TASKSMD_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	if err := SaveToken("ghp_from_file"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	token, err := ResolveToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "ghp_from_file" {
		t.Fatalf("expected 'ghp_from_file', got %q", token)
	}
}
