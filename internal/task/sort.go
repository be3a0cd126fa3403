package task

import (
	"sort"
	"strings"
)

// SortField selects the attribute tasks are ordered by.
type SortField string

const (
	SortByDue         SortField = "due"
	SortByStart       SortField = "start"
	SortByScheduled   SortField = "scheduled"
	SortByCreated     SortField = "created"
	SortByDone        SortField = "done"
	SortByPriority    SortField = "priority"
	SortByDescription SortField = "description"
	SortByFile        SortField = "file"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortField validates a user-supplied sort field name.
func ParseSortField(s string) (SortField, bool) {
	switch SortField(s) {
	case SortByDue, SortByStart, SortByScheduled, SortByCreated, SortByDone,
		SortByPriority, SortByDescription, SortByFile:
		return SortField(s), true
	}
	return "", false
}

var priorityRank = map[Priority]int{
	PriorityHighest: 5,
	PriorityHigh:    4,
	PriorityMedium:  3,
	PriorityNone:    2,
	PriorityLow:     1,
	PriorityLowest:  0,
}

// Sort orders tasks in place by the given field and order. Tasks missing the
// sort attribute (e.g. no due date) sort after those that have it, regardless
// of order. Ties fall back to file path then line number for stable output.
func Sort(tasks []Task, field SortField, order SortOrder) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := &tasks[i], &tasks[j]
		c, aOK, bOK := compare(a, b, field)
		if aOK != bOK {
			return aOK // present sorts before missing
		}
		if c != 0 {
			if order == SortDesc {
				return c > 0
			}
			return c < 0
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.LineNumber < b.LineNumber
	})
}

// compare returns (cmp, aHasValue, bHasValue) for the sort field.
func compare(a, b *Task, field SortField) (int, bool, bool) {
	switch field {
	case SortByPriority:
		ra, rb := priorityRank[a.Priority], priorityRank[b.Priority]
		// Priority is always comparable; "none" ranks between low and medium.
		switch {
		case ra > rb:
			return -1, true, true
		case ra < rb:
			return 1, true, true
		}
		return 0, true, true
	case SortByDescription:
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description)), true, true
	case SortByFile:
		return strings.Compare(a.FilePath, b.FilePath), true, true
	default:
		da, aOK := a.Date(DateField(field))
		db, bOK := b.Date(DateField(field))
		if !aOK || !bOK {
			return 0, aOK, bOK
		}
		switch {
		case da.Before(db):
			return -1, true, true
		case da.After(db):
			return 1, true, true
		}
		return 0, true, true
	}
}
