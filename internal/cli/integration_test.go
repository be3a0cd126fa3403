package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/testutil"
)

// runCommand executes the root command with args and returns captured stdout.
func runCommand(t *testing.T, args ...string) string {
	t.Helper()

	// Isolate from the developer's real config.
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)

	// Flag values persist between executions; reset everything we touched.
	resetCommandFlags(rootCmd)
	jsonOutput = false
	vaultPathFlag = ""

	if execErr != nil {
		t.Fatalf("command %v failed: %v\noutput: %s", args, execErr, out)
	}
	return string(out)
}

// resetCommandFlags restores every changed flag to its default so one test's
// flags cannot leak into the next execution.
func resetCommandFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCommandFlags(sub)
	}
}

func decodeResponse(t *testing.T, out string) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if !resp.OK {
		t.Fatalf("expected ok response, got %+v", resp)
	}
	return resp
}

func taskVault(t *testing.T) *testutil.TestVault {
	t.Helper()
	return testutil.NewTestVault(t).
		WithFile("groceries.md", "# Groceries\n\n- [ ] Buy milk 📅 2024-01-01 #errand\n- [x] Buy bread ✅ 2024-01-02\n").
		WithFile("notes/work.md", "- [ ] Ship release ⏫ #work\n").
		Build()
}

func TestScanCommand(t *testing.T) {
	vault := taskVault(t)

	out := runCommand(t, "scan", "--vault-path", vault.Path, "--json")
	resp := decodeResponse(t, out)

	if resp.Meta == nil || resp.Meta.Count != 3 {
		t.Fatalf("expected 3 tasks, got meta %+v", resp.Meta)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", resp.Data)
	}
	if data["task_count"].(float64) != 3 {
		t.Errorf("expected task_count 3, got %v", data["task_count"])
	}
	if data["file_count"].(float64) != 2 {
		t.Errorf("expected file_count 2, got %v", data["file_count"])
	}
}

func TestListCommandStatusFilter(t *testing.T) {
	vault := taskVault(t)

	out := runCommand(t, "list", "--vault-path", vault.Path, "--status", "done", "--json")
	resp := decodeResponse(t, out)

	if resp.Meta == nil || resp.Meta.Count != 1 {
		t.Fatalf("expected 1 done task, got meta %+v", resp.Meta)
	}

	tasks, ok := resp.Data.([]interface{})
	if !ok || len(tasks) != 1 {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
	entry := tasks[0].(map[string]interface{})
	if entry["description"] != "Buy bread" {
		t.Errorf("expected 'Buy bread', got %v", entry["description"])
	}
}

func TestListCommandTextOutput(t *testing.T) {
	vault := taskVault(t)

	out := runCommand(t, "list", "--vault-path", vault.Path, "--sort", "file")
	if !strings.Contains(out, "Buy milk") || !strings.Contains(out, "Ship release") {
		t.Fatalf("expected task lines, got:\n%s", out)
	}
	if !strings.Contains(out, "groceries.md:2") {
		t.Fatalf("expected file locations, got:\n%s", out)
	}
}

func TestShowCommandTasksOnly(t *testing.T) {
	vault := taskVault(t)

	out := runCommand(t, "show", "groceries.md", "--vault-path", vault.Path, "--tasks-only")
	if !strings.Contains(out, "Buy milk") {
		t.Fatalf("expected task summary, got:\n%s", out)
	}
}

func TestExportCommand(t *testing.T) {
	vault := taskVault(t)
	dbPath := filepath.Join(t.TempDir(), "tasks.db")

	out := runCommand(t, "export", "--vault-path", vault.Path, "--output", dbPath, "--json")
	resp := decodeResponse(t, out)

	if resp.Meta == nil || resp.Meta.Count != 3 {
		t.Fatalf("expected 3 exported tasks, got meta %+v", resp.Meta)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out := runCommand(t, "version")
	if !strings.Contains(out, "gtc ") {
		t.Fatalf("expected version banner, got:\n%s", out)
	}
}
