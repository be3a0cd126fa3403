package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/export"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a task snapshot to SQLite",
	Long: `Scan the vault and write the full task set to a SQLite database.

The database is a point-in-time snapshot for external tooling (dashboards,
calendar views, ad-hoc SQL). It is rebuilt from scratch on every export;
the markdown files remain the source of truth.

Examples:
  # Default location: <vault>/.gtc/tasks.db
  gtc export

  # Explicit output path
  gtc export --output /tmp/tasks.db`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Output database path (default <vault>/.gtc/tasks.db)")
	exportCmd.Flags().Bool("debug", false, "Enable debug logging")
}

func runExport(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")

	dbPath, _ := cmd.Flags().GetString("output")
	if dbPath == "" {
		dbDir := filepath.Join(getVaultPath(), ".gtc")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("failed to create .gtc directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "tasks.db")
	}

	var spinner *ui.Spinner
	if !isJSONOutput() {
		spinner = ui.NewSpinner("Scanning vault")
		spinner.Start()
	}
	tasks, err := collectTasks(cmd.Context(), debug)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return handleError("scan_failed", err, "")
	}

	if err := export.Snapshot(cmd.Context(), dbPath, tasks); err != nil {
		return handleError("export_failed", err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{
			"database":   dbPath,
			"task_count": len(tasks),
		}, &Meta{Count: len(tasks)})
		return nil
	}

	fmt.Println(ui.Successf("exported %d tasks to %s", len(tasks), dbPath))
	return nil
}
