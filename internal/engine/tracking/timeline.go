package tracking

import (
	"sync"

	"github.com/dshills/patternkit/internal/engine/buffer"
)

// Timeline is an ordered list of buffer snapshots with a cursor.
//
// The cursor points at the snapshot that describes the current content.
// Back and Forward move the cursor without removing anything, so stepping
// back twice and forward twice returns to the newest snapshot.
type Timeline struct {
	mu      sync.Mutex
	entries []*Snapshot
	cursor  int // index of the current entry, -1 when empty
	max     int
}

// NewTimeline creates a timeline holding at most max entries.
// A non-positive max means unbounded.
func NewTimeline(max int) *Timeline {
	return &Timeline{cursor: -1, max: max}
}

// Save records a new snapshot after the cursor.
// Entries ahead of the cursor are discarded first.
func (t *Timeline) Save(name string, state *buffer.Snapshot) *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := NewSnapshot(name, state)
	t.entries = append(t.entries[:t.cursor+1], snap)
	t.cursor = len(t.entries) - 1

	if t.max > 0 && len(t.entries) > t.max {
		excess := len(t.entries) - t.max
		t.entries = t.entries[excess:]
		t.cursor -= excess
	}

	return snap
}

// Back moves the cursor to the previous snapshot and returns it.
// Returns false if the cursor is already at the oldest entry.
func (t *Timeline) Back() (*Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cursor <= 0 {
		return nil, false
	}
	t.cursor--
	return t.entries[t.cursor], true
}

// Forward moves the cursor to the next snapshot and returns it.
// Returns false if the cursor is already at the newest entry.
func (t *Timeline) Forward() (*Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cursor >= len(t.entries)-1 {
		return nil, false
	}
	t.cursor++
	return t.entries[t.cursor], true
}

// Current returns the snapshot at the cursor.
func (t *Timeline) Current() (*Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cursor < 0 {
		return nil, false
	}
	return t.entries[t.cursor], true
}

// CanBack returns true if Back would move the cursor.
func (t *Timeline) CanBack() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor > 0
}

// CanForward returns true if Forward would move the cursor.
func (t *Timeline) CanForward() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor < len(t.entries)-1
}

// Len returns the number of stored snapshots.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Position returns the cursor index, or -1 when the timeline is empty.
func (t *Timeline) Position() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}
