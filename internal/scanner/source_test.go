package scanner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/store"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/testutil"
)

// fakeEvents is an in-test implementation of the file-event boundary.
type fakeEvents struct {
	mu      sync.Mutex
	subs    int
	handler EventHandler
}

func (f *fakeEvents) Subscribe(h EventHandler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs++
	f.handler = h
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handler = EventHandler{}
	}
}

func (f *fakeEvents) modify(path string) {
	f.mu.Lock()
	h := f.handler.OnModified
	f.mu.Unlock()
	if h != nil {
		h(path)
	}
}

func (f *fakeEvents) remove(path string) {
	f.mu.Lock()
	h := f.handler.OnDeleted
	f.mu.Unlock()
	if h != nil {
		h(path)
	}
}

func (f *fakeEvents) rename(oldPath, newPath string) {
	f.mu.Lock()
	h := f.handler.OnRenamed
	f.mu.Unlock()
	if h != nil {
		h(oldPath, newPath)
	}
}

func newTestSource(t *testing.T, vault *testutil.TestVault, cfg Config) *MarkdownSource {
	t.Helper()
	cfg.VaultPath = vault.Path
	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = 10 * time.Millisecond
	}
	cfg.Debug = true
	cfg.Logf = func(string, ...any) {}
	src, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	return src
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestScanFile(t *testing.T) {
	vault := testutil.NewTestVault(t).
		WithFile("a.md", "# Plan\n\n- [ ] one\n- [x] two\n").
		WithFile("prose.md", "no lists here\n").
		WithFile("notes.txt", "- [ ] not markdown\n").
		Build()

	src := newTestSource(t, vault, Config{})

	scan, err := src.ScanFile("a.md")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if scan == nil || len(scan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %+v", scan)
	}
	if scan.Entry.TaskCount != 2 || len(scan.Entry.TaskIDs) != 2 {
		t.Fatalf("entry wrong: %+v", scan.Entry)
	}
	if scan.Entry.TaskIDs[0] != "a.md:2" || scan.Entry.TaskIDs[1] != "a.md:3" {
		t.Fatalf("task ids wrong: %v", scan.Entry.TaskIDs)
	}
	if scan.Entry.LastModified <= 0 {
		t.Fatalf("expected a modification timestamp, got %d", scan.Entry.LastModified)
	}

	// Files without list items are unscannable, not errors.
	if scan, err := src.ScanFile("prose.md"); err != nil || scan != nil {
		t.Fatalf("prose file should scan to nil, got %+v err=%v", scan, err)
	}
	// So are non-markdown and missing files.
	if scan, err := src.ScanFile("notes.txt"); err != nil || scan != nil {
		t.Fatalf("non-markdown should scan to nil, got %+v err=%v", scan, err)
	}
	if scan, err := src.ScanFile("missing.md"); err != nil || scan != nil {
		t.Fatalf("missing file should scan to nil, got %+v err=%v", scan, err)
	}
}

func TestScanFileIdempotent(t *testing.T) {
	vault := testutil.NewTestVault(t).
		WithFile("a.md", "- [ ] one\n- [ ] two\n").
		Build()
	src := newTestSource(t, vault, Config{})

	first, err := src.ScanFile("a.md")
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := src.ScanFile("a.md")
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}

	if len(first.Entry.TaskIDs) != len(second.Entry.TaskIDs) {
		t.Fatalf("identity lists differ: %v vs %v", first.Entry.TaskIDs, second.Entry.TaskIDs)
	}
	for i := range first.Entry.TaskIDs {
		if first.Entry.TaskIDs[i] != second.Entry.TaskIDs[i] {
			t.Fatalf("identity lists differ: %v vs %v", first.Entry.TaskIDs, second.Entry.TaskIDs)
		}
	}

	// A re-scan of an unchanged file creates and deletes nothing.
	batch := Diff("md", first.Entry.TaskIDs, second.Tasks)
	if batch == nil {
		t.Fatalf("surviving identities still report as updated")
	}
	if len(batch.Created) != 0 || len(batch.Deleted) != 0 {
		t.Fatalf("unchanged rescan must not create or delete: %+v", batch)
	}
}

func TestScanAll(t *testing.T) {
	vault := testutil.NewTestVault(t).
		WithFile("a.md", "- [ ] a1\n- [ ] a2\n").
		WithFile("sub/b.md", "- [x] b1\n").
		WithFile("c.md", "- [ ] c1\n").
		WithFile(".obsidian/workspace.md", "- [ ] hidden\n").
		WithFile("broken.md", "- [ ] bad \xff\xfe\n").
		Build()

	// BatchSize 2 forces multiple batches over the five files.
	src := newTestSource(t, vault, Config{BatchSize: 2})

	tasks, err := src.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("scan all: %v", err)
	}
	// broken.md is skipped, .obsidian is ignored; the rest contribute 4.
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d: %+v", len(tasks), tasks)
	}

	if _, ok := src.IndexEntry("sub/b.md"); !ok {
		t.Fatalf("expected index entry for sub/b.md")
	}
	if _, ok := src.IndexEntry("broken.md"); ok {
		t.Fatalf("broken file must not be indexed")
	}
}

func TestScanAllCancellation(t *testing.T) {
	vault := testutil.NewTestVault(t).WithFile("a.md", "- [ ] a\n").Build()
	src := newTestSource(t, vault, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.ScanAll(ctx); err == nil {
		t.Fatalf("expected context cancellation error")
	}
}

func TestInitializeRegistersWatcherOnce(t *testing.T) {
	vault := testutil.NewTestVault(t).WithFile("a.md", "- [ ] a\n").Build()
	events := &fakeEvents{}
	src := newTestSource(t, vault, Config{Events: events})

	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	if events.subs != 1 {
		t.Fatalf("watcher must be registered exactly once, got %d", events.subs)
	}
	if len(src.Tasks()) != 1 {
		t.Fatalf("expected seeded task")
	}
}

func TestEndToEndModifyFlow(t *testing.T) {
	// The scenario from the calendar plugin this replaces: a task edited
	// from open to done must surface as a single update after the debounce.
	vault := testutil.NewTestVault(t).
		WithFile("a.md", "# Inbox\n\nintro\n- [ ] Buy milk 📅 2024-01-01\n").
		Build()
	events := &fakeEvents{}
	src := newTestSource(t, vault, Config{Events: events})

	st := store.New(store.Options{Logf: func(string, ...any) {}})
	if err := st.RegisterSource(src); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := st.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	tasks := st.AllTasks()
	if len(tasks) != 1 || tasks[0].ID() != "a.md:3" || tasks[0].Completed {
		t.Fatalf("initial state wrong: %+v", tasks)
	}

	vault.WriteFile("a.md", "# Inbox\n\nintro\n- [x] Buy milk 📅 2024-01-01\n")
	events.modify("a.md")

	waitFor(t, func() bool {
		tasks := st.AllTasks()
		return len(tasks) == 1 && tasks[0].Completed
	}, "updated task to land in the store")

	got := st.AllTasks()
	if got[0].ID() != "a.md:3" {
		t.Fatalf("identity must be stable across the edit: %+v", got)
	}
	if d, ok := got[0].Date("due"); !ok || d.Year() != 2024 {
		t.Fatalf("due date lost in update: %+v", got[0])
	}
}

func TestDebounceCoalescesRapidEdits(t *testing.T) {
	vault := testutil.NewTestVault(t).
		WithFile("a.md", "- [ ] v0\n").
		Build()
	events := &fakeEvents{}

	var mu sync.Mutex
	var scans int
	src := newTestSource(t, vault, Config{
		Events:        events,
		DebounceDelay: 30 * time.Millisecond,
		OnScan: func(string, error) {
			mu.Lock()
			scans++
			mu.Unlock()
		},
	})
	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	// A burst of edits inside the debounce window collapses into one scan
	// reflecting the final content.
	for i := 0; i < 5; i++ {
		vault.WriteFile("a.md", "- [ ] edit\n- [ ] extra\n")
		events.modify("a.md")
		time.Sleep(2 * time.Millisecond)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return scans >= 1
	}, "debounced scan to run")

	// Give any stray timers a chance to fire, then confirm the burst
	// produced exactly one scan.
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	got := scans
	mu.Unlock()
	if got != 1 {
		t.Fatalf("expected 1 coalesced scan, got %d", got)
	}

	entry, ok := src.IndexEntry("a.md")
	if !ok || entry.TaskCount != 2 {
		t.Fatalf("index must reflect the final content: %+v", entry)
	}
}

func TestPendingRecheckCatchesMidScanEdit(t *testing.T) {
	vault := testutil.NewTestVault(t).
		WithFile("a.md", "- [ ] v1\n").
		Build()

	var mu sync.Mutex
	var scans int
	var src *MarkdownSource
	src = newTestSource(t, vault, Config{
		OnScan: func(path string, err error) {
			mu.Lock()
			scans++
			first := scans == 1
			mu.Unlock()
			if first {
				// Simulate an edit landing while this scan is still holding
				// the per-file guard: the request must become a pending
				// recheck, not a concurrent scan and not a dropped edit.
				vault.WriteFile("a.md", "- [x] v2\n")
				src.RefreshFile("a.md")
			}
		},
	})

	src.RefreshFile("a.md")

	mu.Lock()
	got := scans
	mu.Unlock()
	if got != 2 {
		t.Fatalf("expected the pending recheck to run a second scan, got %d", got)
	}

	entry, ok := src.IndexEntry("a.md")
	if !ok || entry.TaskCount != 1 {
		t.Fatalf("index should reflect v2: %+v", entry)
	}
}

func TestDeleteAndRename(t *testing.T) {
	vault := testutil.NewTestVault(t).
		WithFile("old.md", "- [ ] move me\n").
		Build()
	events := &fakeEvents{}
	src := newTestSource(t, vault, Config{Events: events})

	st := store.New(store.Options{Logf: func(string, ...any) {}})
	if err := st.RegisterSource(src); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := st.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if st.TaskCount() != 1 {
		t.Fatalf("expected 1 seeded task")
	}

	// Rename: the old path's tasks purge, the new path's appear.
	vault.WriteFile("new.md", "- [ ] move me\n")
	vault.RemoveFile("old.md")
	events.rename("old.md", "new.md")

	waitFor(t, func() bool {
		tasks := st.AllTasks()
		return len(tasks) == 1 && tasks[0].FilePath == "new.md"
	}, "rename to move the task")

	if _, ok := src.IndexEntry("old.md"); ok {
		t.Fatalf("old path must leave the index on rename")
	}

	// Delete: complete purge by file path.
	vault.RemoveFile("new.md")
	events.remove("new.md")

	waitFor(t, func() bool { return st.TaskCount() == 0 }, "delete to purge the store")
	for _, remaining := range st.AllTasks() {
		if remaining.FilePath == "new.md" {
			t.Fatalf("purge incomplete: %+v", remaining)
		}
	}
}

func TestDestroyStopsEvents(t *testing.T) {
	vault := testutil.NewTestVault(t).WithFile("a.md", "- [ ] a\n").Build()
	events := &fakeEvents{}
	src := newTestSource(t, vault, Config{Events: events})

	if err := src.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := src.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	// The subscription was disposed; events after Destroy go nowhere.
	events.modify("a.md")
	time.Sleep(50 * time.Millisecond)
	if len(src.timers) != 0 {
		t.Fatalf("destroyed source must not schedule scans")
	}
}
