package scanner

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/store"
)

// The debounce and concurrency guard. Each file path has an independent
// debounce timer; a new event for the same path restarts it. When a timer
// fires while that file is already mid-scan, the request is recorded as a
// pending recheck instead of running concurrently or being dropped. The
// recheck runs as an explicit loop, not recursion, so a pathological edit
// storm cannot grow the stack.

func (s *MarkdownSource) handleChanged(path string) {
	path = filepath.ToSlash(path)
	if !strings.HasSuffix(path, ".md") || s.shouldIgnore(path) {
		return
	}
	s.scheduleScan(path)
}

func (s *MarkdownSource) handleDeleted(path string) {
	path = filepath.ToSlash(path)

	s.mu.Lock()
	if timer, ok := s.timers[path]; ok {
		timer.Stop()
		delete(s.timers, path)
	}
	delete(s.pending, path)
	_, hadEntry := s.index[path]
	delete(s.index, path)
	s.mu.Unlock()

	if !hadEntry {
		return
	}

	s.logDebug("file deleted: %s", path)
	s.emit(store.ChangeBatch{
		SourceID:         s.sourceID,
		DeletedFilePaths: []string{path},
	})
}

func (s *MarkdownSource) handleRenamed(oldPath, newPath string) {
	s.handleDeleted(oldPath)
	s.handleChanged(newPath)
}

// scheduleScan starts or restarts the file's debounce timer.
func (s *MarkdownSource) scheduleScan(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	if timer, ok := s.timers[path]; ok {
		timer.Stop()
	}
	s.timers[path] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, path)
		s.mu.Unlock()
		s.runGuarded(path)
	})
}

// runGuarded re-scans one file, serialized per path. If the file is already
// being processed, the request becomes a pending recheck; the active scan
// picks it up before releasing the guard, so the index always converges on
// the latest on-disk state.
func (s *MarkdownSource) runGuarded(path string) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	if s.processing[path] {
		s.pending[path] = true
		s.mu.Unlock()
		return
	}
	s.processing[path] = true
	s.mu.Unlock()

	for {
		err := s.rescan(path)
		if s.onScan != nil {
			s.onScan(path, err)
		}

		s.mu.Lock()
		if s.pending[path] {
			delete(s.pending, path)
			s.mu.Unlock()
			continue
		}
		delete(s.processing, path)
		s.mu.Unlock()
		return
	}
}

// rescan scans the file, diffs against the previous identity list, updates
// the index entry, and emits the resulting batch. A scan failure leaves the
// previous index state untouched.
func (s *MarkdownSource) rescan(path string) error {
	s.mu.Lock()
	var oldIDs []string
	if entry, ok := s.index[path]; ok {
		oldIDs = append(oldIDs, entry.TaskIDs...)
	}
	s.mu.Unlock()

	scan, err := s.ScanFile(path)
	if err != nil {
		s.logDebug("rescan failed for %s: %v", path, err)
		return err
	}

	var batch *store.ChangeBatch
	if scan == nil {
		// File vanished or stopped being a task file; its entry goes away
		// and its surviving identities become deletions.
		s.mu.Lock()
		delete(s.index, path)
		s.mu.Unlock()
		batch = Diff(s.sourceID, oldIDs, nil)
	} else {
		batch = Diff(s.sourceID, oldIDs, scan.Tasks)
	}

	if batch != nil {
		s.logDebug("rescan %s: %d created, %d updated, %d deleted",
			path, len(batch.Created), len(batch.Updated), len(batch.Deleted))
		s.emit(*batch)
	}
	return nil
}

// emit delivers a batch to every registered change handler.
func (s *MarkdownSource) emit(batch store.ChangeBatch) {
	s.mu.Lock()
	handlers := make([]func(store.ChangeBatch), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(batch)
	}
}
