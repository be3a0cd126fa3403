// Package task defines the task record model shared by the scanner, the
// central store, and the CLI.
package task

import (
	"fmt"
	"path/filepath"
	"time"
)

// Format identifies which source syntax produced a task.
type Format string

const (
	// FormatTasks is the emoji-based syntax ("- [ ] Buy milk 📅 2024-01-01").
	FormatTasks Format = "tasks"
	// FormatDataview is the inline-field syntax ("- [ ] Buy milk [due:: 2024-01-01]").
	FormatDataview Format = "dataview"
)

// Priority is the enumerated task priority.
type Priority string

const (
	PriorityNone    Priority = ""
	PriorityLowest  Priority = "lowest"
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityHighest Priority = "highest"
)

// Task represents one parsed actionable list item.
//
// Identity is the (FilePath, LineNumber) pair; LineNumber is 0-based
// everywhere in this codebase.
type Task struct {
	FilePath   string `json:"file_path"`
	LineNumber int    `json:"line_number"`

	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	Cancelled   bool     `json:"cancelled"`
	Status      string   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	CreatedDate   *time.Time `json:"created_date,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	DoneDate      *time.Time `json:"done_date,omitempty"`
	CancelledDate *time.Time `json:"cancelled_date,omitempty"`

	Format  Format `json:"format,omitempty"`
	Content string `json:"content,omitempty"`
}

// ID derives the identity string for a (file path, line number) pair.
func ID(filePath string, lineNumber int) string {
	return fmt.Sprintf("%s:%d", filePath, lineNumber)
}

// ID returns the task's identity string.
func (t *Task) ID() string {
	return ID(t.FilePath, t.LineNumber)
}

// FileName returns the base name of the owning file.
func (t *Task) FileName() string {
	return filepath.Base(t.FilePath)
}

// Tombstone synthesizes a minimal placeholder for a deleted task. Only the
// identity fields are meaningful; consumers must not treat the rest as data.
func Tombstone(filePath string, lineNumber int) Task {
	return Task{FilePath: filePath, LineNumber: lineNumber}
}
