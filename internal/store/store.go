// Package store aggregates change batches from one or more task data
// sources into a single in-memory task set and fans change notifications
// out to subscribers.
package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

// Options configures a Store.
type Options struct {
	// Debug enables verbose logging to stderr.
	Debug bool
	// Logf overrides the debug log destination (used by tests).
	Logf func(format string, args ...any)
}

// Store is the single source of truth for the merged task collection.
// Task identities are namespaced per source, so two sources may both hold
// "a.md:3" without colliding.
type Store struct {
	mu      sync.RWMutex
	tasks   map[string]map[string]task.Task // sourceID -> taskID -> task
	sources map[string]DataSource
	dispose map[string]func()

	subs    *subscribers
	ready   chan struct{}
	readyMu sync.Mutex
	isReady bool

	debug bool
	logf  func(format string, args ...any)
}

// New creates an empty store.
func New(opts Options) *Store {
	logf := opts.Logf
	if logf == nil {
		logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "[gtc-store] "+format+"\n", args...)
		}
	}
	return &Store{
		tasks:   make(map[string]map[string]task.Task),
		sources: make(map[string]DataSource),
		dispose: make(map[string]func()),
		subs:    newSubscribers(),
		ready:   make(chan struct{}),
		debug:   opts.Debug,
		logf:    logf,
	}
}

// RegisterSource adds a data source and subscribes to its change batches.
// Registration does not initialize the source; call Initialize.
func (s *Store) RegisterSource(src DataSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := src.SourceID()
	if _, exists := s.sources[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, id)
	}

	s.sources[id] = src
	s.tasks[id] = make(map[string]task.Task)
	s.dispose[id] = src.OnChange(s.ApplyBatch)
	return nil
}

// Initialize runs every registered source's initial load and seeds the task
// set from it, then marks the store ready. A source that fails to
// initialize contributes no tasks but does not stop the others.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.RLock()
	sources := make([]DataSource, 0, len(s.sources))
	for _, src := range s.sources {
		sources = append(sources, src)
	}
	s.mu.RUnlock()

	var firstErr error
	for _, src := range sources {
		if err := src.Initialize(ctx); err != nil {
			s.logDebug("source %s failed to initialize: %v", src.SourceID(), err)
			if firstErr == nil {
				firstErr = fmt.Errorf("source %s: %w", src.SourceID(), err)
			}
			continue
		}
		s.seedSource(src)
	}

	s.markReady()
	return firstErr
}

func (s *Store) seedSource(src DataSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := src.SourceID()
	byID := s.tasks[id]
	if byID == nil {
		byID = make(map[string]task.Task)
		s.tasks[id] = byID
	}
	// A source may start emitting batches inside its own Initialize; those
	// are newer than the seed snapshot, so the seed only fills gaps.
	for _, t := range src.Tasks() {
		if _, exists := byID[t.ID()]; !exists {
			byID[t.ID()] = t
		}
	}
}

// ApplyBatch merges one source's change batch into the store and notifies
// subscribers once. A failure applying one batch never affects other
// sources: the batch touches only its own source's namespace, and panics
// are contained here.
func (s *Store) ApplyBatch(batch ChangeBatch) {
	if batch.Empty() {
		return
	}

	applied := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				s.logDebug("failed to apply batch from %s: %v", batch.SourceID, r)
				ok = false
			}
		}()
		s.applyLocked(batch)
		return true
	}()

	if applied {
		s.subs.notify(batch, s.logDebug)
	}
}

func (s *Store) applyLocked(batch ChangeBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.tasks[batch.SourceID]
	if !ok {
		// Batches from unregistered sources are tolerated; this happens when
		// a destroyed source's last batch races its removal.
		byID = make(map[string]task.Task)
		s.tasks[batch.SourceID] = byID
	}

	for _, t := range batch.Created {
		id := t.ID()
		if _, exists := byID[id]; exists {
			s.logDebug("duplicate create for %s from %s, replacing", id, batch.SourceID)
		}
		byID[id] = t
	}

	// Updates are tolerant upserts: an update for an unknown identity
	// inserts it rather than being dropped.
	for _, u := range batch.Updated {
		byID[u.ID] = u.Task
	}

	for _, t := range batch.Deleted {
		delete(byID, t.ID())
	}

	for _, path := range batch.DeletedFilePaths {
		for id, t := range byID {
			if t.FilePath == path {
				delete(byID, id)
			}
		}
	}
}

// AllTasks returns a defensive snapshot of the merged task set, ordered by
// file path then line number for deterministic output.
func (s *Store) AllTasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []task.Task
	for _, byID := range s.tasks {
		for _, t := range byID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		return out[i].LineNumber < out[j].LineNumber
	})
	return out
}

// TaskCount returns the number of tasks currently held.
func (s *Store) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, byID := range s.tasks {
		n += len(byID)
	}
	return n
}

// UpdateTask routes a task edit to its owning source. Sources without the
// write capability reject the edit with ErrReadOnly; the error surfaces to
// this caller only and leaves the store untouched.
func (s *Store) UpdateTask(ctx context.Context, sourceID string, t task.Task) error {
	s.mu.RLock()
	src, ok := s.sources[sourceID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}
	m, ok := src.(Mutator)
	if !ok {
		return fmt.Errorf("%w: %s", ErrReadOnly, sourceID)
	}
	return m.ApplyEdit(ctx, t)
}

// Close destroys all sources and drops their subscriptions.
func (s *Store) Close() error {
	s.mu.Lock()
	sources := s.sources
	dispose := s.dispose
	s.sources = make(map[string]DataSource)
	s.dispose = make(map[string]func())
	s.mu.Unlock()

	var firstErr error
	for id, src := range sources {
		if d := dispose[id]; d != nil {
			d()
		}
		if err := src.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Store) logDebug(format string, args ...any) {
	if s.debug {
		s.logf(format, args...)
	}
}
