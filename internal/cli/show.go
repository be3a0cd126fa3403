package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/config"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/parser"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Render a vault file with its tasks highlighted",
	Long: `Render a markdown file from the vault for terminal display, followed
by a summary of the tasks it contains.

The file path is relative to the vault root.

Examples:
  gtc show notes/groceries.md

  # Raw markdown, no rendering
  gtc show notes/groceries.md --raw`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("raw", false, "Print raw markdown instead of rendering")
	showCmd.Flags().Bool("tasks-only", false, "Skip the rendered body, list tasks only")
}

func runShow(cmd *cobra.Command, args []string) error {
	relPath := filepath.ToSlash(args[0])
	if !strings.HasSuffix(relPath, ".md") {
		relPath += ".md"
	}

	fullPath := filepath.Join(getVaultPath(), filepath.FromSlash(relPath))
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return handleError("read_failed", fmt.Errorf("failed to read %s: %w", relPath, err), "")
	}

	vaultCfg, err := config.LoadVaultConfig(getVaultPath())
	if err != nil {
		return handleError("bad_vault_config", err, "")
	}

	parsed, err := parser.ParseFile(string(content), relPath, vaultCfg.ParserOptions())
	if err != nil {
		return handleError("parse_failed", err, "")
	}

	if isJSONOutput() {
		outputSuccess(parsed.Tasks, &Meta{Count: len(parsed.Tasks)})
		return nil
	}

	raw, _ := cmd.Flags().GetBool("raw")
	tasksOnly, _ := cmd.Flags().GetBool("tasks-only")

	if !tasksOnly {
		if raw {
			fmt.Print(string(content))
		} else {
			display := ui.NewDisplayContext()
			rendered, err := ui.RenderMarkdown(string(content), display.AvailableWidth(ui.MarkdownRenderMargin))
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", relPath, err)
			}
			fmt.Print(rendered)
		}
	}

	if len(parsed.Tasks) > 0 {
		fmt.Println(ui.Header(fmt.Sprintf("Tasks %s", ui.Count(len(parsed.Tasks), "task", "tasks"))))
		for _, t := range parsed.Tasks {
			fmt.Println("  " + ui.TaskLine(t))
		}
	} else if tasksOnly {
		fmt.Println(ui.Hint("no tasks in this file"))
	}
	return nil
}
