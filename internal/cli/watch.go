package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/config"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/store"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/ui"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and track task changes live",
	Long: `Watch the vault directory for file changes and keep the task index
updated as files are saved.

This runs in the foreground. Each settled batch of edits prints the
resulting created/updated/deleted counts.

The watcher:
- Monitors all .md files in the vault
- Debounces rapid changes per file before re-scanning
- Ignores .git/, .obsidian/, .trash/, node_modules/ directories
- Re-scans a single file at a time

Examples:
  # Watch the default vault
  gtc watch

  # Watch with debug output
  gtc watch --debug

  # Watch a specific vault
  gtc watch --vault-path /path/to/vault`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("debug", false, "Enable debug logging")
	watchCmd.Flags().Bool("quiet", false, "Only report errors, not change batches")
}

func runWatch(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	quiet, _ := cmd.Flags().GetBool("quiet")
	vaultPath := getVaultPath()

	vaultCfg, err := config.LoadVaultConfig(vaultPath)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{
		VaultPath:  vaultPath,
		IgnoreDirs: vaultCfg.IgnoreDirs,
		Debug:      debug,
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	st, _, err := buildStore(cmd.Context(), debug, w, func(path string, scanErr error) {
		if scanErr != nil {
			fmt.Fprintln(os.Stderr, ui.Errorf("re-scan %s: %v", path, scanErr))
		}
	})
	if err != nil {
		return err
	}
	defer st.Close()

	if !quiet {
		offUpdates := st.OnUpdate(func(batch store.ChangeBatch) {
			if len(batch.DeletedFilePaths) > 0 {
				fmt.Println(ui.Infof("removed %d file(s), %d tasks total",
					len(batch.DeletedFilePaths), st.TaskCount()))
				return
			}
			fmt.Println(ui.Infof("%d created, %d updated, %d deleted, %d tasks total",
				len(batch.Created), len(batch.Updated), len(batch.Deleted), st.TaskCount()))
		})
		defer offUpdates()
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down watcher...")
		cancel()
	}()

	fmt.Println(ui.Infof("watching vault: %s (%d tasks)", vaultPath, st.TaskCount()))
	fmt.Println(ui.Hint("Press Ctrl+C to stop"))

	if err := w.Start(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
