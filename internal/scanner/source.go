// Package scanner maintains the per-file task index for a markdown vault
// and turns raw file-change notifications into minimal change batches.
//
// The MarkdownSource is the vault-backed store.DataSource: it scans files
// for task lines, diffs each re-scan against the previous identity list,
// and coalesces bursts of file events through a per-file debounce and
// in-flight guard so no edit is ever dropped and no file is ever scanned
// concurrently with itself.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/parser"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/store"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

const (
	// DefaultDebounceDelay is how long a file's events must settle before a
	// re-scan runs.
	DefaultDebounceDelay = 50 * time.Millisecond
	// DefaultBatchSize bounds how many files a bulk scan processes between
	// yield points.
	DefaultBatchSize = 50
)

// Config holds configuration options for a MarkdownSource. Everything the
// scanner needs is injected here; there is no shared mutable configuration.
type Config struct {
	VaultPath string
	// SourceID namespaces task identities in the store. Default: "markdown".
	SourceID string
	// Parse configures the task parser (enabled formats, global filter,
	// status vocabulary).
	Parse parser.Options
	// Events is the file-watch boundary. Optional; without it the source
	// only ever performs explicit scans.
	Events FileEvents
	// DebounceDelay defaults to DefaultDebounceDelay.
	DebounceDelay time.Duration
	// BatchSize defaults to DefaultBatchSize.
	BatchSize int
	// IgnoreDirs replaces the default ignored directory names when set.
	IgnoreDirs []string
	Debug      bool
	// Logf overrides the debug log destination (used by tests).
	Logf func(format string, args ...any)
	// OnScan is called after every event-triggered re-scan. Optional.
	OnScan func(path string, err error)
}

// FileScan is the result of scanning one file.
type FileScan struct {
	Tasks []task.Task
	Entry *FileIndexEntry
}

// MarkdownSource scans a vault directory for task lines and emits change
// batches as files mutate.
type MarkdownSource struct {
	vaultPath  string
	sourceID   string
	parseOpts  parser.Options
	events     FileEvents
	debounce   time.Duration
	batchSize  int
	ignoreDirs map[string]bool
	onScan     func(path string, err error)

	mu         sync.Mutex
	index      map[string]*FileIndexEntry
	timers     map[string]*time.Timer
	processing map[string]bool
	pending    map[string]bool
	seed       []task.Task
	watchOff   func()
	handlers   map[uint64]func(store.ChangeBatch)
	nextHandle uint64
	destroyed  bool

	debug bool
	logf  func(format string, args ...any)
}

// New creates a MarkdownSource for the given vault.
func New(cfg Config) (*MarkdownSource, error) {
	if cfg.VaultPath == "" {
		return nil, fmt.Errorf("vault path is required")
	}

	sourceID := cfg.SourceID
	if sourceID == "" {
		sourceID = "markdown"
	}
	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = DefaultDebounceDelay
	}
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	ignore := cfg.IgnoreDirs
	if ignore == nil {
		ignore = defaultIgnoreDirs
	}
	ignoreSet := make(map[string]bool, len(ignore))
	for _, dir := range ignore {
		ignoreSet[dir] = true
	}
	logf := cfg.Logf
	if logf == nil {
		logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "[gtc-scanner] "+format+"\n", args...)
		}
	}

	return &MarkdownSource{
		vaultPath:  cfg.VaultPath,
		sourceID:   sourceID,
		parseOpts:  cfg.Parse,
		events:     cfg.Events,
		debounce:   debounce,
		batchSize:  batchSize,
		ignoreDirs: ignoreSet,
		onScan:     cfg.OnScan,
		index:      make(map[string]*FileIndexEntry),
		timers:     make(map[string]*time.Timer),
		processing: make(map[string]bool),
		pending:    make(map[string]bool),
		handlers:   make(map[uint64]func(store.ChangeBatch)),
		debug:      cfg.Debug,
		logf:       logf,
	}, nil
}

// SourceID implements store.DataSource.
func (s *MarkdownSource) SourceID() string { return s.sourceID }

// Initialize performs the initial full scan and only then attaches to the
// file-event boundary, so no event can fire for a file the index has not
// seen yet. Calling Initialize again re-scans but never registers the
// watcher twice.
func (s *MarkdownSource) Initialize(ctx context.Context) error {
	tasks, err := s.ScanAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.seed = tasks
	alreadyWatching := s.watchOff != nil
	s.mu.Unlock()

	if s.events != nil && !alreadyWatching {
		off := s.events.Subscribe(EventHandler{
			OnModified: s.handleChanged,
			OnCreated:  s.handleChanged,
			OnDeleted:  s.handleDeleted,
			OnRenamed:  s.handleRenamed,
		})
		s.mu.Lock()
		if s.watchOff != nil {
			// Lost the race to another Initialize; keep the first.
			s.mu.Unlock()
			off()
		} else {
			s.watchOff = off
			s.mu.Unlock()
		}
	}

	s.logDebug("initialized: %d tasks across %d files", len(tasks), s.fileCount())
	return nil
}

// Tasks implements store.DataSource. It returns the snapshot assembled by
// the most recent full scan; incremental truth flows to the store through
// change batches, not through this method.
func (s *MarkdownSource) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.Task(nil), s.seed...)
}

// OnChange implements store.DataSource.
func (s *MarkdownSource) OnChange(handler func(store.ChangeBatch)) (dispose func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextHandle
	s.nextHandle++
	s.handlers[id] = handler

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

// Destroy implements store.DataSource. It detaches from the file-event
// boundary and cancels all pending debounce timers.
func (s *MarkdownSource) Destroy() error {
	s.mu.Lock()
	off := s.watchOff
	s.watchOff = nil
	s.destroyed = true
	for path, timer := range s.timers {
		timer.Stop()
		delete(s.timers, path)
	}
	s.pending = make(map[string]bool)
	s.mu.Unlock()

	if off != nil {
		off()
	}
	return nil
}

// ScanFile scans one file and returns its tasks plus a fresh index entry.
// Returns (nil, nil) when the file is not scannable: not markdown, ignored,
// missing, or containing no list items at all. The file index entry is
// updated as a side effect.
func (s *MarkdownSource) ScanFile(relPath string) (*FileScan, error) {
	relPath = filepath.ToSlash(relPath)
	if !strings.HasSuffix(relPath, ".md") || s.shouldIgnore(relPath) {
		return nil, nil
	}

	fullPath := filepath.Join(s.vaultPath, filepath.FromSlash(relPath))
	stat, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", relPath, err)
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", relPath, err)
	}

	parsed, err := parser.ParseFile(string(content), relPath, s.parseOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", relPath, err)
	}
	if parsed.ListItems == 0 {
		return nil, nil
	}

	entry := &FileIndexEntry{
		TaskIDs:      make([]string, 0, len(parsed.Tasks)),
		LastModified: stat.ModTime().UnixMilli(),
		TaskCount:    len(parsed.Tasks),
	}
	for _, t := range parsed.Tasks {
		entry.TaskIDs = append(entry.TaskIDs, t.ID())
	}

	s.mu.Lock()
	s.index[relPath] = entry
	s.mu.Unlock()

	return &FileScan{Tasks: parsed.Tasks, Entry: entry.clone()}, nil
}

// ScanAll scans every markdown file in the vault in bounded batches with a
// yield point between batches. One file failing is logged and skipped, never
// aborting the rest.
func (s *MarkdownSource) ScanAll(ctx context.Context) ([]task.Task, error) {
	paths, err := s.listMarkdownFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to walk vault: %w", err)
	}

	var all []task.Task
	for start := 0; start < len(paths); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + s.batchSize
		if end > len(paths) {
			end = len(paths)
		}
		for _, relPath := range paths[start:end] {
			scan, err := s.ScanFile(relPath)
			if err != nil {
				s.logDebug("skipping %s: %v", relPath, err)
				continue
			}
			if scan != nil {
				all = append(all, scan.Tasks...)
			}
		}

		// Yield between batches so a large vault scan does not monopolize
		// the scheduler.
		runtime.Gosched()
	}

	return all, nil
}

// RefreshFile re-scans a single file immediately, bypassing the debounce
// but still honoring the in-flight guard.
func (s *MarkdownSource) RefreshFile(relPath string) {
	s.runGuarded(filepath.ToSlash(relPath))
}

// IndexEntry returns a copy of a file's index entry.
func (s *MarkdownSource) IndexEntry(relPath string) (*FileIndexEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.index[filepath.ToSlash(relPath)]
	if !ok {
		return nil, false
	}
	return entry.clone(), true
}

func (s *MarkdownSource) fileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

func (s *MarkdownSource) logDebug(format string, args ...any) {
	if s.debug {
		s.logf(format, args...)
	}
}
