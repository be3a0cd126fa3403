package task

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// TagMode is the boolean combinator for tag filters.
type TagMode string

const (
	// TagModeAll requires every selected tag to be present.
	TagModeAll TagMode = "all"
	// TagModeAny requires at least one selected tag to be present.
	TagModeAny TagMode = "any"
)

// Filter is per-consumer selection state. The store exposes raw task
// collections; each consumer filters its own copy.
type Filter struct {
	Statuses []string
	Tags     []string
	TagMode  TagMode

	// Date window over DateField; nil bounds are open.
	DateField DateField
	From      *time.Time
	To        *time.Time
}

// tagKey normalizes a tag for case-insensitive matching. Tags keep their
// original case on the Task; only the comparison key is normalized.
func tagKey(tag string) string {
	return slug.Make(strings.TrimPrefix(tag, "#"))
}

// Match reports whether the task passes the filter.
func (f Filter) Match(t *Task) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if strings.EqualFold(s, t.Status) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.Tags) > 0 {
		have := make(map[string]bool, len(t.Tags))
		for _, tag := range t.Tags {
			have[tagKey(tag)] = true
		}
		switch f.TagMode {
		case TagModeAny:
			found := false
			for _, tag := range f.Tags {
				if have[tagKey(tag)] {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default: // TagModeAll
			for _, tag := range f.Tags {
				if !have[tagKey(tag)] {
					return false
				}
			}
		}
	}

	if f.From != nil || f.To != nil {
		field := f.DateField
		if field == "" {
			field = DateDue
		}
		d, ok := t.Date(field)
		if !ok {
			return false
		}
		if f.From != nil && d.Before(*f.From) {
			return false
		}
		if f.To != nil && d.After(*f.To) {
			return false
		}
	}

	return true
}

// Apply returns the tasks that pass the filter, preserving input order.
func Apply(tasks []Task, f Filter) []Task {
	var out []Task
	for i := range tasks {
		if f.Match(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}
