package scanner

import (
	"strconv"
	"strings"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/store"
	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/task"
)

// FileIndexEntry is the per-file cache record. It deliberately holds only
// task identities, not full task objects; the full objects live in the
// central store. The index map is owned exclusively by the MarkdownSource
// and is never handed out by reference.
type FileIndexEntry struct {
	TaskIDs      []string
	LastModified int64 // epoch ms
	TaskCount    int
}

func (e *FileIndexEntry) clone() *FileIndexEntry {
	c := *e
	c.TaskIDs = append([]string(nil), e.TaskIDs...)
	return &c
}

// splitID recovers (filePath, lineNumber) from an identity string. The line
// number is everything after the last colon, so paths containing colons
// survive the round trip.
func splitID(id string) (string, int) {
	i := strings.LastIndex(id, ":")
	if i < 0 {
		return id, 0
	}
	line, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return id, 0
	}
	return id[:i], line
}

// Diff classifies a freshly parsed task list against the previous identity
// list for one file.
//
// Every identity present in both snapshots is reported as updated with the
// full new task attached, even when the content is byte-identical. Consumers
// can always fully replace their cached copy; the cost is over-reporting,
// never a missed update. Deleted entries are synthesized tombstones since
// the old task objects are no longer retained.
//
// Returns nil when nothing changed, so no spurious empty notification fires.
func Diff(sourceID string, oldTaskIDs []string, newTasks []task.Task) *store.ChangeBatch {
	oldSet := make(map[string]bool, len(oldTaskIDs))
	for _, id := range oldTaskIDs {
		oldSet[id] = true
	}

	newByID := make(map[string]task.Task, len(newTasks))
	for _, t := range newTasks {
		newByID[t.ID()] = t
	}

	batch := store.ChangeBatch{SourceID: sourceID}

	for _, t := range newTasks {
		id := t.ID()
		if oldSet[id] {
			batch.Updated = append(batch.Updated, store.TaskUpdate{ID: id, Task: t})
		} else {
			batch.Created = append(batch.Created, t)
		}
	}

	for _, id := range oldTaskIDs {
		if _, stillThere := newByID[id]; !stillThere {
			path, line := splitID(id)
			batch.Deleted = append(batch.Deleted, task.Tombstone(path, line))
		}
	}

	if batch.Empty() {
		return nil
	}
	return &batch
}
