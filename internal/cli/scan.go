package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/ui"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the vault and report task counts",
	Long: `Scan every markdown file in the vault for tasks and print a summary.

This is a one-shot scan; use 'gtc watch' to keep reacting to edits.

Examples:
  # Scan the default vault
  gtc scan

  # Per-file breakdown
  gtc scan --files

  # Machine-readable output
  gtc scan --json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Bool("files", false, "Show per-file task counts")
	scanCmd.Flags().Bool("debug", false, "Enable debug logging")
}

type scanSummary struct {
	Vault     string         `json:"vault"`
	TaskCount int            `json:"task_count"`
	FileCount int            `json:"file_count"`
	Files     map[string]int `json:"files,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	showFiles, _ := cmd.Flags().GetBool("files")
	debug, _ := cmd.Flags().GetBool("debug")

	tasks, err := collectTasks(cmd.Context(), debug)
	if err != nil {
		return handleError("scan_failed", err, "")
	}

	summary := scanSummary{
		Vault:     getVaultPath(),
		TaskCount: len(tasks),
	}
	perFile := make(map[string]int)
	for _, t := range tasks {
		perFile[t.FilePath]++
	}
	summary.FileCount = len(perFile)
	if showFiles {
		summary.Files = perFile
	}

	if isJSONOutput() {
		outputSuccess(summary, &Meta{Count: len(tasks)})
		return nil
	}

	fmt.Println(ui.Successf("%d tasks across %d files", summary.TaskCount, summary.FileCount))
	if showFiles {
		paths := make([]string, 0, len(perFile))
		for path := range perFile {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		table := ui.NewTable(2)
		for _, path := range paths {
			table.AddRow(path, fmt.Sprintf("%d", perFile[path]))
		}
		fmt.Print(table.String())
	}
	return nil
}
