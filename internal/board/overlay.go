package board

import (
	"github.com/dori/lifeos/internal/model"
)

// Overlay holds optimistic patches for moves that have been dispatched
// but not yet confirmed by an authoritative fetch.
type Overlay struct {
	seq     uint64
	entries map[string]overlayEntry
}

type overlayEntry struct {
	seq       uint64
	patch     model.TaskPatch
	confirmed bool
}

// NewOverlay creates an empty overlay
func NewOverlay() *Overlay {
	return &Overlay{entries: make(map[string]overlayEntry)}
}

// Put records a pending patch for a task and returns its sequence
// number. A newer patch replaces an older one for the same task.
func (o *Overlay) Put(taskID string, patch model.TaskPatch) uint64 {
	o.seq++
	o.entries[taskID] = overlayEntry{seq: o.seq, patch: patch}
	return o.seq
}

// Settle marks the patch with the given sequence as confirmed by the
// server. It stays applied until the next Prune, so the board does not
// flicker back while the refetch is in flight. Stale sequences are
// ignored.
func (o *Overlay) Settle(taskID string, seq uint64) {
	e, ok := o.entries[taskID]
	if !ok || e.seq != seq {
		return
	}
	e.confirmed = true
	o.entries[taskID] = e
}

// Revert drops the patch with the given sequence. Returns false if a
// newer patch has replaced it (or nothing was pending).
func (o *Overlay) Revert(taskID string, seq uint64) bool {
	e, ok := o.entries[taskID]
	if !ok || e.seq != seq {
		return false
	}
	delete(o.entries, taskID)
	return true
}

// Prune drops confirmed patches. Call it when a fresh authoritative
// task collection arrives.
func (o *Overlay) Prune() {
	for id, e := range o.entries {
		if e.confirmed {
			delete(o.entries, id)
		}
	}
}

// Pending returns true if the task has an unconfirmed patch
func (o *Overlay) Pending(taskID string) bool {
	e, ok := o.entries[taskID]
	return ok && !e.confirmed
}

// Len returns the number of patches held
func (o *Overlay) Len() int {
	return len(o.entries)
}

// Apply returns a copy of tasks with the held patches applied. Patches
// for tasks missing from the collection are kept; the task may come
// back on the next fetch.
func (o *Overlay) Apply(tasks []model.Task) []model.Task {
	if len(o.entries) == 0 {
		return tasks
	}
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		if e, ok := o.entries[t.ID]; ok {
			t = e.patch.Apply(t)
		}
		out[i] = t
	}
	return out
}
