package store

import (
	"context"
	"errors"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

var (
	// ErrReadOnly indicates a mutation was attempted through a data source
	// that does not support writes.
	ErrReadOnly = errors.New("data source is read-only")
	// ErrDuplicateSource indicates a source ID was registered twice.
	ErrDuplicateSource = errors.New("data source already registered")
	// ErrUnknownSource indicates the named source is not registered.
	ErrUnknownSource = errors.New("data source not registered")
)

// DataSource is the capability set the store requires from a task provider.
// Sources push incremental updates through the handler registered with
// OnChange; the store subscribes at registration time.
type DataSource interface {
	// SourceID is a stable identifier; task identities are namespaced by it.
	SourceID() string

	// Initialize performs the source's first full load. It must complete
	// before the source starts emitting change batches.
	Initialize(ctx context.Context) error

	// Tasks returns the source's current task set.
	Tasks() []task.Task

	// OnChange registers a change handler and returns a disposer. The
	// disposer is safe to call more than once.
	OnChange(handler func(ChangeBatch)) (dispose func())

	// Destroy releases the source's resources. The source emits no batches
	// after Destroy returns.
	Destroy() error
}

// Mutator is the optional write capability of a data source. Sources that do
// not implement it are read-only; store mutations against them fail with
// ErrReadOnly.
type Mutator interface {
	ApplyEdit(ctx context.Context, t task.Task) error
}

// TaskUpdate pairs an identity with its full replacement record. The store
// always receives the complete new task, never a field-level diff.
type TaskUpdate struct {
	ID   string
	Task task.Task
}

// ChangeBatch is one source's set of changes, applied atomically by the
// store. Deleted entries are identity-bearing tombstones, not full records.
// DeletedFilePaths bulk-purges every task of a removed file without
// enumerating identities.
type ChangeBatch struct {
	SourceID         string
	Created          []task.Task
	Updated          []TaskUpdate
	Deleted          []task.Task
	DeletedFilePaths []string
}

// Empty reports whether the batch carries no changes at all.
func (b ChangeBatch) Empty() bool {
	return len(b.Created) == 0 && len(b.Updated) == 0 &&
		len(b.Deleted) == 0 && len(b.DeletedFilePaths) == 0
}
