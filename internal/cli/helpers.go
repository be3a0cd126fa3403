package cli

import (
	"context"
	"fmt"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/config"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/scanner"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/store"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

// buildStore wires the markdown source into a fresh store and runs the
// initial scan. events is optional; pass nil for one-shot commands.
func buildStore(ctx context.Context, debug bool, events scanner.FileEvents, onScan func(path string, err error)) (*store.Store, *scanner.MarkdownSource, error) {
	vaultPath := getVaultPath()
	if vaultPath == "" {
		return nil, nil, fmt.Errorf("no vault specified")
	}

	vaultCfg, err := config.LoadVaultConfig(vaultPath)
	if err != nil {
		return nil, nil, err
	}

	src, err := scanner.New(scanner.Config{
		VaultPath:     vaultPath,
		Parse:         vaultCfg.ParserOptions(),
		Events:        events,
		DebounceDelay: vaultCfg.DebounceDelay(),
		BatchSize:     vaultCfg.BatchSize,
		IgnoreDirs:    vaultCfg.IgnoreDirs,
		Debug:         debug,
		OnScan:        onScan,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	st := store.New(store.Options{Debug: debug})
	if err := st.RegisterSource(src); err != nil {
		return nil, nil, err
	}
	if err := st.Initialize(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to scan vault: %w", err)
	}

	return st, src, nil
}

// collectTasks runs a one-shot scan and returns the merged task set.
func collectTasks(ctx context.Context, debug bool) ([]task.Task, error) {
	st, _, err := buildStore(ctx, debug, nil, nil)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.AllTasks(), nil
}
