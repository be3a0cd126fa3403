package store

import (
	"context"
	"sync"
)

// subscribers is the registry of update handlers. Handlers run synchronously
// in registration order, once per applied batch; a panicking handler is
// logged and does not stop the others.
type subscribers struct {
	mu   sync.Mutex
	subs map[uint64]func(ChangeBatch)
	next uint64
}

func newSubscribers() *subscribers {
	return &subscribers{subs: make(map[uint64]func(ChangeBatch))}
}

func (r *subscribers) add(handler func(ChangeBatch)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.subs[id] = handler

	// The disposer is idempotent: removing an already-removed handler is a
	// no-op.
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

func (r *subscribers) notify(batch ChangeBatch, logf func(string, ...any)) {
	r.mu.Lock()
	handlers := make([]func(ChangeBatch), 0, len(r.subs))
	ids := make([]uint64, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	// Map iteration order is random; keep dispatch order stable.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	for _, id := range ids {
		handlers = append(handlers, r.subs[id])
	}
	r.mu.Unlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logf("update handler panicked: %v", rec)
				}
			}()
			h(batch)
		}()
	}
}

// OnUpdate subscribes a handler to "tasks changed" notifications and returns
// a disposer. The disposer may be called more than once.
func (s *Store) OnUpdate(handler func(ChangeBatch)) (dispose func()) {
	return s.subs.add(handler)
}

// Ready returns a channel closed once the initial full load has completed
// at least once. Late-attaching consumers wait on it before their first
// read instead of rendering against an empty store.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until the store is ready or the context is cancelled.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) markReady() {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	if !s.isReady {
		s.isReady = true
		close(s.ready)
	}
}
