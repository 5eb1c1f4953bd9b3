// Package config loads tool configuration in layers: built-in defaults, a
// .env.local discovered by walking up from the working directory, a YAML
// config file under ~/.config/tasksmd-sync, and finally TASKSMD_* environment
// variables. Later layers win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the sync tool configuration.
type Config struct {
	Org           string `yaml:"org"`
	ProjectNumber int    `yaml:"project_number"`
	TasksFile     string `yaml:"tasks_file"`
	RepoOwner     string `yaml:"repo_owner"`
	RepoName      string `yaml:"repo_name"`
	RepoLabel     string `yaml:"repo_label"`
	DataDir       string `yaml:"data_dir"`
	JournalPath   string `yaml:"journal_path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".tasksmd-sync")
	return &Config{
		TasksFile:   "TASKS.md",
		DataDir:     dataDir,
		JournalPath: filepath.Join(dataDir, "runs.db"),
	}
}

// configPath returns the path to the YAML config file.
func configPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tasksmd-sync", "config.yaml")
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Load builds the effective configuration from all layers.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	loadDotEnv()

	data, err := os.ReadFile(configPath())
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(cfg)

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.TasksFile = expandHome(cfg.TasksFile)
	cfg.JournalPath = expandHome(cfg.JournalPath)
	if cfg.JournalPath == "" {
		cfg.JournalPath = filepath.Join(cfg.DataDir, "runs.db")
	}

	return cfg, nil
}

// loadDotEnv walks up from the working directory looking for a .env.local
// and loads the first one found without overriding existing variables.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		candidate := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKSMD_ORG"); v != "" {
		cfg.Org = v
	}
	if v := os.Getenv("TASKSMD_PROJECT_NUMBER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ProjectNumber = n
		}
	}
	if v := os.Getenv("TASKSMD_TASKS_FILE"); v != "" {
		cfg.TasksFile = v
	}
	if v := os.Getenv("TASKSMD_REPO"); v != "" {
		// "owner/name" form.
		if owner, name, ok := strings.Cut(v, "/"); ok {
			cfg.RepoOwner = owner
			cfg.RepoName = name
		}
	}
	if v := os.Getenv("TASKSMD_REPO_LABEL"); v != "" {
		cfg.RepoLabel = v
	}
	if v := os.Getenv("TASKSMD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TASKSMD_JOURNAL_PATH"); v != "" {
		cfg.JournalPath = v
	}
}

// Validate checks that the configuration is sufficient to run a sync.
func (c *Config) Validate() error {
	if c.Org == "" {
		return fmt.Errorf("org must not be empty (set --org or TASKSMD_ORG)")
	}
	if c.ProjectNumber <= 0 {
		return fmt.Errorf("project number must be positive (set --project-number or TASKSMD_PROJECT_NUMBER)")
	}
	if c.TasksFile == "" {
		return fmt.Errorf("tasks file must not be empty")
	}
	if (c.RepoOwner == "") != (c.RepoName == "") {
		return fmt.Errorf("repo owner and name must be set together (use owner/name)")
	}
	return nil
}

// EnsureDataDir creates the data directory if it does not exist.
func EnsureDataDir(cfg *Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
	}
	return nil
}
