package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/scanner"
)

func TestNewRequiresVaultPath(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for missing vault path")
	}
}

func TestSubscribeDispose(t *testing.T) {
	w, err := New(Config{VaultPath: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var calls int
	dispose := w.Subscribe(scanner.EventHandler{
		OnModified: func(string) { calls++ },
	})

	w.each(func(h scanner.EventHandler) { h.OnModified("a.md") })
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}

	dispose()
	dispose() // idempotent
	w.each(func(h scanner.EventHandler) { h.OnModified("a.md") })
	if calls != 1 {
		t.Fatalf("disposed handler still called, calls=%d", calls)
	}
}

func TestShouldIgnore(t *testing.T) {
	w, err := New(Config{VaultPath: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cases := []struct {
		rel  string
		want bool
	}{
		{"notes/a.md", false},
		{".obsidian/workspace.md", true},
		{".git/config.md", true},
		{"deep/.trash/x.md", true},
		{"node_modules/pkg/readme.md", true},
	}
	for _, c := range cases {
		if got := w.shouldIgnore(c.rel); got != c.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", c.rel, got, c.want)
		}
	}
}

func TestAnnounceTree(t *testing.T) {
	vault := t.TempDir()
	mustWrite := func(rel, content string) {
		full := filepath.Join(vault, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	mustWrite("inbox/a.md", "- [ ] a\n")
	mustWrite("inbox/deep/b.md", "- [ ] b\n")
	mustWrite("inbox/notes.txt", "not markdown\n")
	mustWrite("inbox/.obsidian/c.md", "- [ ] hidden\n")

	w, err := New(Config{VaultPath: vault})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var created []string
	w.Subscribe(scanner.EventHandler{
		OnCreated: func(path string) { created = append(created, path) },
	})

	w.announceTree(filepath.Join(vault, "inbox"))

	sort.Strings(created)
	want := []string{"inbox/a.md", "inbox/deep/b.md"}
	if len(created) != len(want) {
		t.Fatalf("announced %v, want %v", created, want)
	}
	for i := range want {
		if created[i] != want[i] {
			t.Fatalf("announced %v, want %v", created, want)
		}
	}
}

func TestCustomIgnoreDirs(t *testing.T) {
	w, err := New(Config{VaultPath: t.TempDir(), IgnoreDirs: []string{"archive"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !w.shouldIgnore("archive/a.md") {
		t.Errorf("custom ignore dir not honored")
	}
	if w.shouldIgnore(".obsidian/a.md") {
		t.Errorf("defaults should be replaced, not merged")
	}
}
