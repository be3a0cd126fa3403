package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/dates"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with filtering and sorting",
	Long: `Scan the vault and list tasks, optionally filtered and sorted.

Date filters accept YYYY-MM-DD or the keywords today/yesterday/tomorrow.

Examples:
  # Everything still open
  gtc list --status todo

  # Overdue errands
  gtc list --status todo --tag errand --to yesterday

  # Tasks due this week, most urgent first
  gtc list --from today --to 2024-01-07 --sort due

  # Anything tagged work or home
  gtc list --tag work --tag home --any-tag`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringSlice("status", nil, "Filter by status key (todo, done, cancelled, in_progress, ...)")
	listCmd.Flags().StringSlice("tag", nil, "Filter by tag (repeatable; all must match unless --any-tag)")
	listCmd.Flags().Bool("any-tag", false, "Match tasks carrying any of the given tags")
	listCmd.Flags().String("field", "due", "Date field for --from/--to (created, start, scheduled, due, done, cancelled)")
	listCmd.Flags().String("from", "", "Earliest date (inclusive)")
	listCmd.Flags().String("to", "", "Latest date (inclusive)")
	listCmd.Flags().String("sort", "", "Sort by field (due, start, scheduled, created, done, priority, description, file)")
	listCmd.Flags().String("order", "asc", "Sort order (asc, desc)")
	listCmd.Flags().Bool("table", false, "Aligned table output")
	listCmd.Flags().Bool("debug", false, "Enable debug logging")
}

func runList(cmd *cobra.Command, args []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return handleError("bad_filter", err, "")
	}

	debug, _ := cmd.Flags().GetBool("debug")
	tasks, err := collectTasks(cmd.Context(), debug)
	if err != nil {
		return handleError("scan_failed", err, "")
	}

	tasks = task.Apply(tasks, filter)

	if sortFlag, _ := cmd.Flags().GetString("sort"); sortFlag != "" {
		field, ok := task.ParseSortField(sortFlag)
		if !ok {
			return handleError("bad_sort", fmt.Errorf("unknown sort field %q", sortFlag), "")
		}
		order := task.SortAsc
		if orderFlag, _ := cmd.Flags().GetString("order"); orderFlag == string(task.SortDesc) {
			order = task.SortDesc
		}
		task.Sort(tasks, field, order)
	}

	if isJSONOutput() {
		outputSuccess(tasks, &Meta{Count: len(tasks)})
		return nil
	}

	if len(tasks) == 0 {
		fmt.Println(ui.Hint("no matching tasks"))
		return nil
	}

	if asTable, _ := cmd.Flags().GetBool("table"); asTable {
		fmt.Print(ui.TaskTable(tasks))
		return nil
	}
	for _, t := range tasks {
		fmt.Println(ui.TaskLine(t))
	}
	return nil
}

func filterFromFlags(cmd *cobra.Command) (task.Filter, error) {
	var filter task.Filter

	filter.Statuses, _ = cmd.Flags().GetStringSlice("status")
	filter.Tags, _ = cmd.Flags().GetStringSlice("tag")
	if anyTag, _ := cmd.Flags().GetBool("any-tag"); anyTag {
		filter.TagMode = task.TagModeAny
	}

	fieldFlag, _ := cmd.Flags().GetString("field")
	field, ok := task.ParseDateField(fieldFlag)
	if !ok {
		return filter, fmt.Errorf("unknown date field %q", fieldFlag)
	}
	filter.DateField = field

	// Task dates are plain UTC days; keep the window in the same frame.
	now := time.Now().UTC()
	if fromFlag, _ := cmd.Flags().GetString("from"); fromFlag != "" {
		from, err := dates.ParseArg(fromFlag, now)
		if err != nil {
			return filter, err
		}
		from = startOfDay(from)
		filter.From = &from
	}
	if toFlag, _ := cmd.Flags().GetString("to"); toFlag != "" {
		to, err := dates.ParseArg(toFlag, now)
		if err != nil {
			return filter, err
		}
		to = endOfDay(to)
		filter.To = &to
	}

	return filter, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
