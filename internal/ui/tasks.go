package ui

import (
	"fmt"
	"strings"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

// checkbox characters per status key; unknown statuses show their first rune.
var statusCheckbox = map[string]string{
	"todo":        " ",
	"done":        "x",
	"cancelled":   "-",
	"in_progress": "/",
}

// Checkbox renders the bracketed checkbox for a status key.
func Checkbox(status string) string {
	char, ok := statusCheckbox[status]
	if !ok {
		char = "?"
		if status != "" {
			char = string([]rune(status)[0])
		}
	}
	return fmt.Sprintf("[%s]", char)
}

// TaskLine renders one task for terminal display: checkbox, description,
// muted date markers, and the accent-styled location.
func TaskLine(t task.Task) string {
	var sb strings.Builder

	sb.WriteString(Checkbox(t.Status))
	sb.WriteString(" ")
	if t.Completed || t.Cancelled {
		sb.WriteString(Muted.Render(t.Description))
	} else {
		sb.WriteString(t.Description)
	}

	if dates := taskDates(t); dates != "" {
		sb.WriteString("  ")
		sb.WriteString(Muted.Render(dates))
	}

	sb.WriteString("  ")
	sb.WriteString(Accent.Render(fmt.Sprintf("%s:%d", t.FilePath, t.LineNumber)))

	return sb.String()
}

// TaskTable renders tasks as an aligned three-column table:
// location, checkbox + description, dates.
func TaskTable(tasks []task.Task) string {
	table := NewTable(3)
	for _, t := range tasks {
		table.AddRow(
			fmt.Sprintf("%s:%d", t.FilePath, t.LineNumber),
			fmt.Sprintf("%s %s", Checkbox(t.Status), t.Description),
			taskDates(t),
		)
	}
	return table.String()
}

// taskDates formats the date fields a task actually carries, in the stable
// field order.
func taskDates(t task.Task) string {
	var parts []string
	for _, field := range task.DateFields() {
		if d, ok := t.Date(field); ok {
			parts = append(parts, fmt.Sprintf("%s %s", field, d.Format("2006-01-02")))
		}
	}
	return strings.Join(parts, "  ")
}
