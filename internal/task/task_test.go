package task

import (
	"testing"
	"time"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestID(t *testing.T) {
	if got := ID("notes/a.md", 3); got != "notes/a.md:3" {
		t.Fatalf("expected notes/a.md:3, got %q", got)
	}

	task := Task{FilePath: "b.md", LineNumber: 0}
	if task.ID() != "b.md:0" {
		t.Fatalf("expected b.md:0, got %q", task.ID())
	}
}

func TestFileName(t *testing.T) {
	task := Task{FilePath: "projects/2024/plan.md"}
	if task.FileName() != "plan.md" {
		t.Fatalf("expected plan.md, got %q", task.FileName())
	}
}

func TestDateAccessor(t *testing.T) {
	task := Task{
		DueDate:   datePtr(2024, time.January, 1),
		StartDate: datePtr(2023, time.December, 25),
	}

	due, ok := task.Date(DateDue)
	if !ok || due.Day() != 1 {
		t.Fatalf("expected due date, got %v ok=%v", due, ok)
	}

	if _, ok := task.Date(DateScheduled); ok {
		t.Fatalf("expected scheduled date to be absent")
	}

	if _, ok := task.Date(DateField("bogus")); ok {
		t.Fatalf("unknown field should not resolve")
	}
}

func TestParseDateField(t *testing.T) {
	for _, name := range []string{"created", "start", "scheduled", "due", "done", "cancelled"} {
		if _, ok := ParseDateField(name); !ok {
			t.Errorf("expected %q to be a valid date field", name)
		}
	}
	if _, ok := ParseDateField("priority"); ok {
		t.Errorf("priority is not a date field")
	}
}

func TestTombstone(t *testing.T) {
	tomb := Tombstone("a.md", 7)
	if tomb.ID() != "a.md:7" {
		t.Fatalf("tombstone identity mismatch: %q", tomb.ID())
	}
	if tomb.Description != "" || tomb.Completed {
		t.Fatalf("tombstone should carry only identity fields")
	}
}

func TestSortByDue(t *testing.T) {
	tasks := []Task{
		{FilePath: "a.md", LineNumber: 1, Description: "no due"},
		{FilePath: "a.md", LineNumber: 2, DueDate: datePtr(2024, 3, 1)},
		{FilePath: "a.md", LineNumber: 3, DueDate: datePtr(2024, 1, 1)},
	}

	Sort(tasks, SortByDue, SortAsc)
	if tasks[0].LineNumber != 3 || tasks[1].LineNumber != 2 {
		t.Fatalf("ascending due sort wrong: %+v", tasks)
	}
	// Missing due date sorts last in either order.
	if tasks[2].LineNumber != 1 {
		t.Fatalf("task without due date should sort last: %+v", tasks)
	}

	Sort(tasks, SortByDue, SortDesc)
	if tasks[0].LineNumber != 2 || tasks[1].LineNumber != 3 || tasks[2].LineNumber != 1 {
		t.Fatalf("descending due sort wrong: %+v", tasks)
	}
}

func TestSortByPriority(t *testing.T) {
	tasks := []Task{
		{FilePath: "a.md", LineNumber: 1, Priority: PriorityLow},
		{FilePath: "a.md", LineNumber: 2, Priority: PriorityHighest},
		{FilePath: "a.md", LineNumber: 3},
		{FilePath: "a.md", LineNumber: 4, Priority: PriorityHigh},
	}

	Sort(tasks, SortByPriority, SortAsc)
	want := []int{2, 4, 3, 1}
	for i, line := range want {
		if tasks[i].LineNumber != line {
			t.Fatalf("priority sort wrong at %d: %+v", i, tasks)
		}
	}
}

func TestSortStableTieBreak(t *testing.T) {
	tasks := []Task{
		{FilePath: "b.md", LineNumber: 5, DueDate: datePtr(2024, 1, 1)},
		{FilePath: "a.md", LineNumber: 9, DueDate: datePtr(2024, 1, 1)},
		{FilePath: "a.md", LineNumber: 2, DueDate: datePtr(2024, 1, 1)},
	}

	Sort(tasks, SortByDue, SortAsc)
	if tasks[0].FilePath != "a.md" || tasks[0].LineNumber != 2 {
		t.Fatalf("tie break should order by path then line: %+v", tasks)
	}
	if tasks[2].FilePath != "b.md" {
		t.Fatalf("tie break should order by path then line: %+v", tasks)
	}
}

func TestFilterStatuses(t *testing.T) {
	tasks := []Task{
		{FilePath: "a.md", LineNumber: 1, Status: "todo"},
		{FilePath: "a.md", LineNumber: 2, Status: "done"},
		{FilePath: "a.md", LineNumber: 3, Status: "in_progress"},
	}

	got := Apply(tasks, Filter{Statuses: []string{"todo", "in_progress"}})
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}

	// Case-insensitive status matching.
	got = Apply(tasks, Filter{Statuses: []string{"DONE"}})
	if len(got) != 1 || got[0].LineNumber != 2 {
		t.Fatalf("expected the done task, got %+v", got)
	}
}

func TestFilterTags(t *testing.T) {
	tasks := []Task{
		{FilePath: "a.md", LineNumber: 1, Tags: []string{"#Work", "#urgent"}},
		{FilePath: "a.md", LineNumber: 2, Tags: []string{"#work"}},
		{FilePath: "a.md", LineNumber: 3, Tags: []string{"#home"}},
	}

	all := Apply(tasks, Filter{Tags: []string{"work", "urgent"}, TagMode: TagModeAll})
	if len(all) != 1 || all[0].LineNumber != 1 {
		t.Fatalf("all-mode filter wrong: %+v", all)
	}

	any := Apply(tasks, Filter{Tags: []string{"WORK", "home"}, TagMode: TagModeAny})
	if len(any) != 3 {
		t.Fatalf("any-mode filter should match all three, got %+v", any)
	}
}

func TestFilterDateWindow(t *testing.T) {
	tasks := []Task{
		{FilePath: "a.md", LineNumber: 1, DueDate: datePtr(2024, 1, 10)},
		{FilePath: "a.md", LineNumber: 2, DueDate: datePtr(2024, 2, 10)},
		{FilePath: "a.md", LineNumber: 3},
	}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	got := Apply(tasks, Filter{DateField: DateDue, From: &from, To: &to})
	if len(got) != 1 || got[0].LineNumber != 1 {
		t.Fatalf("date window filter wrong: %+v", got)
	}

	// Tasks without the windowed field never match a bounded window.
	got = Apply(tasks, Filter{From: &from})
	if len(got) != 2 {
		t.Fatalf("open-ended window should match both dated tasks, got %+v", got)
	}
}
