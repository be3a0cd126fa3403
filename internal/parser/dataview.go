package parser

import (
	"regexp"
	"strings"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/dates"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

// dataviewFieldRe matches inline fields like [due:: 2024-01-01] or
// (priority:: high).
var dataviewFieldRe = regexp.MustCompile(`[\[(]([A-Za-z]+)::\s*([^\])]*)[\])]`)

var dataviewDateKeys = map[string]task.DateField{
	"created":      task.DateCreated,
	"start":        task.DateStart,
	"scheduled":    task.DateScheduled,
	"due":          task.DateDue,
	"completion":   task.DateDone,
	"done":         task.DateDone,
	"cancelled":    task.DateCancelled,
	"cancellation": task.DateCancelled,
}

func hasDataviewFields(s string) bool {
	return dataviewFieldRe.MatchString(s)
}

// extractDataviewFields pulls inline fields out of desc into t and returns
// the description with the fields removed. Unknown keys are removed but
// ignored; malformed date values leave the field in place.
func extractDataviewFields(desc string, t *task.Task) string {
	return dataviewFieldRe.ReplaceAllStringFunc(desc, func(m string) string {
		sub := dataviewFieldRe.FindStringSubmatch(m)
		key := strings.ToLower(sub[1])
		value := strings.TrimSpace(sub[2])

		if field, ok := dataviewDateKeys[key]; ok {
			parsed, err := dates.Parse(value)
			if err != nil {
				return m
			}
			setDateField(t, field, parsed)
			return ""
		}

		if key == "priority" {
			switch strings.ToLower(value) {
			case "highest":
				t.Priority = task.PriorityHighest
			case "high":
				t.Priority = task.PriorityHigh
			case "medium":
				t.Priority = task.PriorityMedium
			case "low":
				t.Priority = task.PriorityLow
			case "lowest":
				t.Priority = task.PriorityLowest
			default:
				return m
			}
			return ""
		}

		return ""
	})
}
