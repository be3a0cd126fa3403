package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/dates"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

// Emoji markers of the "tasks" syntax. Each date marker is followed by a
// YYYY-MM-DD date; priority markers stand alone.
var emojiDateMarkers = []struct {
	marker string
	field  task.DateField
}{
	{"➕", task.DateCreated},
	{"🛫", task.DateStart},
	{"⏳", task.DateScheduled},
	{"⌛", task.DateScheduled},
	{"📅", task.DateDue},
	{"🗓", task.DateDue},
	{"✅", task.DateDone},
	{"❌", task.DateCancelled},
}

var emojiPriorities = []struct {
	marker   string
	priority task.Priority
}{
	{"🔺", task.PriorityHighest},
	{"⏫", task.PriorityHigh},
	{"🔼", task.PriorityMedium},
	{"🔽", task.PriorityLow},
	{"⏬", task.PriorityLowest},
}

var emojiDateValueRe = regexp.MustCompile(`^\s*(\d{4}-\d{2}-\d{2})`)

// extractEmojiFields pulls emoji-marked dates and priority out of desc into
// t and returns the description with the markers removed. Malformed dates
// leave the marker in place untouched.
func extractEmojiFields(desc string, t *task.Task) string {
	for _, pm := range emojiPriorities {
		if strings.Contains(desc, pm.marker) {
			t.Priority = pm.priority
			desc = strings.Replace(desc, pm.marker, " ", 1)
			break
		}
	}

	for _, dm := range emojiDateMarkers {
		idx := strings.Index(desc, dm.marker)
		if idx < 0 {
			continue
		}
		rest := desc[idx+len(dm.marker):]
		m := emojiDateValueRe.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		parsed, err := dates.Parse(m[1])
		if err != nil {
			continue
		}
		setDateField(t, dm.field, parsed)
		desc = desc[:idx] + " " + rest[len(m[0]):]
	}

	return desc
}

func setDateField(t *task.Task, field task.DateField, v time.Time) {
	d := v
	switch field {
	case task.DateCreated:
		t.CreatedDate = &d
	case task.DateStart:
		t.StartDate = &d
	case task.DateScheduled:
		t.ScheduledDate = &d
	case task.DateDue:
		t.DueDate = &d
	case task.DateDone:
		t.DoneDate = &d
	case task.DateCancelled:
		t.CancelledDate = &d
	}
}
