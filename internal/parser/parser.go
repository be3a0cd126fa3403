// Package parser turns raw markdown into task records.
//
// goldmark supplies the structural list-item metadata; the checkbox and the
// per-format fields (dates, priority, tags) are matched against the raw
// source line so the original text survives round-trips untouched.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

// Options configures a parse. The zero value enables both formats with no
// global filter and the default status vocabulary.
type Options struct {
	// Formats lists the enabled source syntaxes. Empty means all.
	Formats []task.Format

	// GlobalFilter, when set (e.g. "#task"), restricts parsing to lines
	// containing it; the filter token is stripped from the description.
	GlobalFilter string

	// Statuses maps a checkbox character to a status key. Nil uses
	// DefaultStatuses.
	Statuses map[string]string
}

// DefaultStatuses is the built-in checkbox-character vocabulary.
func DefaultStatuses() map[string]string {
	return map[string]string{
		" ": "todo",
		"x": "done",
		"X": "done",
		"-": "cancelled",
		"/": "in_progress",
	}
}

var checkboxRe = regexp.MustCompile(`^\s*[-*+]\s+\[(.)\]\s+(.*)$`)

// tagRe matches inline #tags (unicode letters, digits, and the nested-tag
// separators Obsidian allows).
var tagRe = regexp.MustCompile(`#[\p{L}\p{N}_/-]+`)

// FileTasks is the result of parsing one file: the tasks found plus the
// number of structural list items the file contains. A file with zero list
// items is not a task file at all; callers treat it as unindexable rather
// than as an empty index entry.
type FileTasks struct {
	Tasks     []task.Task
	ListItems int
}

// ParseTasks parses all task lines in content. filePath is recorded on each
// task verbatim (vault-relative).
func ParseTasks(content, filePath string, opts Options) ([]task.Task, error) {
	ft, err := ParseFile(content, filePath, opts)
	if err != nil {
		return nil, err
	}
	return ft.Tasks, nil
}

// ParseFile parses all task lines in content and reports list-item
// structure. Returns an error only for input the parser cannot work with at
// all; per-line oddities simply produce no task.
func ParseFile(content, filePath string, opts Options) (*FileTasks, error) {
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("%s: content is not valid UTF-8", filePath)
	}

	statuses := opts.Statuses
	if statuses == nil {
		statuses = DefaultStatuses()
	}

	lines := strings.Split(content, "\n")
	items := ExtractListItems(content)
	var tasks []task.Task

	for _, item := range items {
		if item.Line >= len(lines) {
			continue
		}
		raw := lines[item.Line]

		m := checkboxRe.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		statusChar, body := m[1], m[2]

		if opts.GlobalFilter != "" && !strings.Contains(body, opts.GlobalFilter) {
			continue
		}

		t := task.Task{
			FilePath:   filePath,
			LineNumber: item.Line,
			Content:    raw,
		}

		status, known := statuses[statusChar]
		if !known {
			// Unknown checkbox characters still count as tasks; they just
			// carry the raw character as their status key.
			status = statusChar
		}
		t.Status = status
		t.Completed = status == "done"
		t.Cancelled = status == "cancelled"

		desc := body
		if opts.GlobalFilter != "" {
			desc = strings.TrimSpace(strings.ReplaceAll(desc, opts.GlobalFilter, " "))
		}

		t.Tags = extractTags(desc)

		if formatEnabled(opts.Formats, task.FormatDataview) && hasDataviewFields(desc) {
			desc = extractDataviewFields(desc, &t)
			t.Format = task.FormatDataview
		}
		if formatEnabled(opts.Formats, task.FormatTasks) {
			stripped := extractEmojiFields(desc, &t)
			if stripped != desc {
				t.Format = task.FormatTasks
			}
			desc = stripped
		}
		if t.Format == "" {
			t.Format = task.FormatTasks
		}

		t.Description = collapseSpaces(desc)
		tasks = append(tasks, t)
	}

	return &FileTasks{Tasks: tasks, ListItems: len(items)}, nil
}

func formatEnabled(formats []task.Format, f task.Format) bool {
	if len(formats) == 0 {
		return true
	}
	for _, enabled := range formats {
		if enabled == f {
			return true
		}
	}
	return false
}

func extractTags(s string) []string {
	matches := tagRe.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var tags []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			tags = append(tags, m)
		}
	}
	return tags
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
