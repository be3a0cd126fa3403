// Package export writes task snapshots to SQLite for external tooling.
//
// The in-memory store is the source of truth; an exported database is a
// point-in-time copy, rebuilt from scratch on every export.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/sqlutil"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

const schemaSQL = `
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS export_meta;

CREATE TABLE tasks (
    id             TEXT PRIMARY KEY,
    file_path      TEXT NOT NULL,
    line_number    INTEGER NOT NULL,
    description    TEXT NOT NULL,
    status         TEXT NOT NULL,
    completed      INTEGER NOT NULL,
    cancelled      INTEGER NOT NULL,
    priority       TEXT,
    format         TEXT,
    tags           TEXT,
    created_date   TEXT,
    start_date     TEXT,
    scheduled_date TEXT,
    due_date       TEXT,
    done_date      TEXT,
    cancelled_date TEXT,
    content        TEXT
);

CREATE INDEX idx_tasks_file_path ON tasks(file_path);
CREATE INDEX idx_tasks_status ON tasks(status);
CREATE INDEX idx_tasks_due_date ON tasks(due_date);

CREATE TABLE export_meta (
    exported_at TEXT NOT NULL,
    task_count  INTEGER NOT NULL
);
`

// Snapshot writes tasks to a SQLite database at dbPath, replacing any
// previous export.
func Snapshot(ctx context.Context, dbPath string, tasks []task.Task) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open export database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create export schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (
			id, file_path, line_number, description, status, completed,
			cancelled, priority, format, tags, created_date, start_date,
			scheduled_date, due_date, done_date, cancelled_date, content
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range tasks {
		t := &tasks[i]

		tags, err := json.Marshal(t.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags for %s: %w", t.ID(), err)
		}

		_, err = stmt.ExecContext(ctx,
			t.ID(), t.FilePath, t.LineNumber, t.Description, t.Status,
			boolInt(t.Completed), boolInt(t.Cancelled),
			string(t.Priority), string(t.Format), string(tags),
			dateString(t.CreatedDate), dateString(t.StartDate),
			dateString(t.ScheduledDate), dateString(t.DueDate),
			dateString(t.DoneDate), dateString(t.CancelledDate),
			t.Content,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task %s: %w", t.ID(), err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO export_meta (exported_at, task_count) VALUES (?, ?)",
		time.Now().UTC().Format(time.RFC3339), len(tasks))
	if err != nil {
		return fmt.Errorf("failed to write export metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}

// Tasks reads tasks back from an exported database, optionally restricted to
// the given status keys. Used by downstream tooling and tests.
func Tasks(ctx context.Context, dbPath string, statuses ...string) ([]task.Task, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open export database: %w", err)
	}
	defer db.Close()

	query := `
		SELECT file_path, line_number, description, status, completed,
		       cancelled, priority, format, tags, created_date, start_date,
		       scheduled_date, due_date, done_date, cancelled_date, content
		FROM tasks`
	var args []any
	if len(statuses) > 0 {
		placeholders, inArgs := sqlutil.InClauseArgs(statuses)
		query += " WHERE status IN (" + placeholders + ")"
		args = inArgs
	}
	query += " ORDER BY file_path, line_number"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	return sqlutil.ScanRows(rows, scanTask)
}

func scanTask(rows *sql.Rows) (task.Task, error) {
	var (
		t         task.Task
		completed int
		cancelled int
		priority  string
		format    string
		tags      string
		created   sql.NullString
		start     sql.NullString
		scheduled sql.NullString
		due       sql.NullString
		done      sql.NullString
		cancelDt  sql.NullString
	)

	err := rows.Scan(
		&t.FilePath, &t.LineNumber, &t.Description, &t.Status,
		&completed, &cancelled, &priority, &format, &tags,
		&created, &start, &scheduled, &due, &done, &cancelDt,
		&t.Content,
	)
	if err != nil {
		return task.Task{}, err
	}

	t.Completed = completed != 0
	t.Cancelled = cancelled != 0
	t.Priority = task.Priority(priority)
	t.Format = task.Format(format)

	if tags != "" && tags != "null" {
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return task.Task{}, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	t.CreatedDate = parseDate(created)
	t.StartDate = parseDate(start)
	t.ScheduledDate = parseDate(scheduled)
	t.DueDate = parseDate(due)
	t.DoneDate = parseDate(done)
	t.CancelledDate = parseDate(cancelDt)

	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func dateString(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format("2006-01-02")
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", s.String)
	if err != nil {
		return nil
	}
	return &d
}
