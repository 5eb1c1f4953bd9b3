// Package journal records sync run history in a local SQLite database.
// The journal is reporting-only: it never feeds back into planning, which
// always re-lists the board as its ground truth.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DBSchemaVersion is the current database schema version.
// Bump this when adding migrations that change the schema.
const DBSchemaVersion = 1

// Entry is one recorded sync run.
type Entry struct {
	RunID      string
	StartedAt  time.Time
	TasksFile  string
	Org        string
	Project    int
	DryRun     bool
	Created    int
	Updated    int
	Unarchived int
	Archived   int
	Unchanged  int
	Errors     []string
}

// Journal persists run entries.
type Journal struct {
	db *sql.DB
}

// migrations is an ordered list of SQL statements applied to the database.
// Each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      TEXT NOT NULL UNIQUE,
		started_at  TEXT NOT NULL,
		tasks_file  TEXT NOT NULL DEFAULT '',
		org         TEXT NOT NULL DEFAULT '',
		project     INTEGER NOT NULL DEFAULT 0,
		dry_run     INTEGER NOT NULL DEFAULT 0,
		created     INTEGER NOT NULL DEFAULT 0,
		updated     INTEGER NOT NULL DEFAULT 0,
		unarchived  INTEGER NOT NULL DEFAULT 0,
		archived    INTEGER NOT NULL DEFAULT 0,
		unchanged   INTEGER NOT NULL DEFAULT 0,
		errors      TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
}

// Open opens (or creates) the journal database at dbPath and runs
// migrations. Use ":memory:" for an in-memory database.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %s: %w", pragma, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record inserts a run entry. A missing RunID or StartedAt is filled in.
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	if e.RunID == "" {
		e.RunID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now().UTC()
	}

	errsJSON, err := json.Marshal(e.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}
	dryInt := 0
	if e.DryRun {
		dryInt = 1
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, tasks_file, org, project, dry_run,
		                   created, updated, unarchived, archived, unchanged, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.StartedAt.Format(time.RFC3339), e.TasksFile, e.Org, e.Project, dryInt,
		e.Created, e.Updated, e.Unarchived, e.Archived, e.Unchanged, string(errsJSON))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the most recent run entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, started_at, tasks_file, org, project, dry_run,
		        created, updated, unarchived, archived, unchanged, errors
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e         Entry
			startedAt string
			dryInt    int
			errsJSON  string
		)
		if err := rows.Scan(&e.RunID, &startedAt, &e.TasksFile, &e.Org, &e.Project, &dryInt,
			&e.Created, &e.Updated, &e.Unarchived, &e.Archived, &e.Unchanged, &errsJSON); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			e.StartedAt = t
		}
		e.DryRun = dryInt != 0
		if err := json.Unmarshal([]byte(errsJSON), &e.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal errors for run %s: %w", e.RunID, err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func runMigrations(db *sql.DB) error {
	var dbVersion int
	if err := db.QueryRow("PRAGMA user_version").Scan(&dbVersion); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dbVersion > DBSchemaVersion {
		return fmt.Errorf(
			"database schema version %d is newer than this binary supports (max %d)",
			dbVersion, DBSchemaVersion)
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	if dbVersion < DBSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", DBSchemaVersion)); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}

	return nil
}
