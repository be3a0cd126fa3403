// Package watcher adapts fsnotify to the scanner's file-event boundary.
//
// It watches a vault directory tree and forwards change notifications as
// vault-relative paths. Debouncing and re-scan serialization belong to the
// scanner; this package only translates transport events.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/scanner"
)

// Config holds configuration options for the Watcher.
type Config struct {
	VaultPath string
	// IgnoreDirs replaces the default ignored directory names when set.
	IgnoreDirs []string
	Debug      bool
}

// Watcher monitors a vault directory and fans events out to subscribers.
type Watcher struct {
	vaultPath  string
	ignoreDirs map[string]bool
	debug      bool

	fsWatcher *fsnotify.Watcher

	mu       sync.Mutex
	handlers map[uint64]scanner.EventHandler
	next     uint64
}

var defaultIgnoreDirs = []string{".git", ".obsidian", ".trash", "node_modules"}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.VaultPath == "" {
		return nil, fmt.Errorf("vault path is required")
	}

	ignore := cfg.IgnoreDirs
	if ignore == nil {
		ignore = defaultIgnoreDirs
	}
	ignoreSet := make(map[string]bool, len(ignore))
	for _, dir := range ignore {
		ignoreSet[dir] = true
	}

	return &Watcher{
		vaultPath:  cfg.VaultPath,
		ignoreDirs: ignoreSet,
		debug:      cfg.Debug,
		handlers:   make(map[uint64]scanner.EventHandler),
	}, nil
}

// Subscribe registers an event handler. The returned disposer unregisters
// it and is safe to call more than once.
func (w *Watcher) Subscribe(h scanner.EventHandler) (dispose func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.next
	w.next++
	w.handlers[id] = h

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.handlers, id)
	}
}

// Start begins watching the vault for file changes.
// It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	// Add vault directory and subdirectories
	if err := w.addWatchRecursive(w.vaultPath); err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}

	w.logDebug("watching vault: %s", w.vaultPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logDebug("watcher error: %v", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// Skip non-markdown files
	if !strings.HasSuffix(path, ".md") {
		// But watch new directories
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				if !w.ignoreDirs[filepath.Base(path)] {
					w.addWatchRecursive(path)
					w.announceTree(path)
				}
			}
		}
		return
	}

	rel, err := filepath.Rel(w.vaultPath, path)
	if err != nil || w.shouldIgnore(rel) {
		return
	}
	rel = filepath.ToSlash(rel)

	w.logDebug("event: %s %s", event.Op, rel)

	switch {
	case event.Op&fsnotify.Create != 0:
		w.each(func(h scanner.EventHandler) {
			if h.OnCreated != nil {
				h.OnCreated(rel)
			}
		})
	case event.Op&fsnotify.Write != 0:
		w.each(func(h scanner.EventHandler) {
			if h.OnModified != nil {
				h.OnModified(rel)
			}
		})
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// fsnotify reports a rename as Rename(old) followed by Create(new),
		// so only the delete side maps here.
		w.each(func(h scanner.EventHandler) {
			if h.OnDeleted != nil {
				h.OnDeleted(rel)
			}
		})
	}
}

func (w *Watcher) each(fn func(scanner.EventHandler)) {
	w.mu.Lock()
	handlers := make([]scanner.EventHandler, 0, len(w.handlers))
	for _, h := range w.handlers {
		handlers = append(handlers, h)
	}
	w.mu.Unlock()

	for _, h := range handlers {
		fn(h)
	}
}

// announceTree reports every markdown file already under root as created.
// A directory moved into the vault arrives as one Create event for the
// directory itself; the files inside it never get their own events.
func (w *Watcher) announceTree(root string) {
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if w.ignoreDirs[filepath.Base(path)] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(w.vaultPath, path)
		if relErr != nil || w.shouldIgnore(rel) {
			return nil
		}
		rel = filepath.ToSlash(rel)
		w.logDebug("announcing existing file: %s", rel)
		w.each(func(h scanner.EventHandler) {
			if h.OnCreated != nil {
				h.OnCreated(rel)
			}
		})
		return nil
	})
}

// addWatchRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if w.ignoreDirs[filepath.Base(path)] {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logDebug("failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

// shouldIgnore returns true if the vault-relative path should be ignored.
func (w *Watcher) shouldIgnore(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.ignoreDirs[part] {
			return true
		}
	}
	return false
}

// logDebug logs a debug message if debug mode is enabled.
func (w *Watcher) logDebug(format string, args ...interface{}) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[gtc-watcher] "+format+"\n", args...)
	}
}
