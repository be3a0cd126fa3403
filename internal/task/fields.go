package task

import "time"

// DateField identifies one of the task's optional date fields. It is a
// closed enum so callers can pick a date field at runtime without resorting
// to reflection or string indexing.
type DateField string

const (
	DateCreated   DateField = "created"
	DateStart     DateField = "start"
	DateScheduled DateField = "scheduled"
	DateDue       DateField = "due"
	DateDone      DateField = "done"
	DateCancelled DateField = "cancelled"
)

// dateGetters maps each field identifier to a strongly-typed accessor.
var dateGetters = map[DateField]func(*Task) *time.Time{
	DateCreated:   func(t *Task) *time.Time { return t.CreatedDate },
	DateStart:     func(t *Task) *time.Time { return t.StartDate },
	DateScheduled: func(t *Task) *time.Time { return t.ScheduledDate },
	DateDue:       func(t *Task) *time.Time { return t.DueDate },
	DateDone:      func(t *Task) *time.Time { return t.DoneDate },
	DateCancelled: func(t *Task) *time.Time { return t.CancelledDate },
}

// Date returns the value of the given date field, if set.
func (t *Task) Date(field DateField) (time.Time, bool) {
	getter, ok := dateGetters[field]
	if !ok {
		return time.Time{}, false
	}
	v := getter(t)
	if v == nil {
		return time.Time{}, false
	}
	return *v, true
}

// ParseDateField validates a user-supplied field name.
func ParseDateField(s string) (DateField, bool) {
	f := DateField(s)
	_, ok := dateGetters[f]
	return f, ok
}

// DateFields lists all date field identifiers in display order.
func DateFields() []DateField {
	return []DateField{DateCreated, DateStart, DateScheduled, DateDue, DateDone, DateCancelled}
}
