package tracking

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/patternkit/internal/engine/buffer"
)

// Errors returned by snapshot operations.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotID uniquely identifies a stored snapshot.
type SnapshotID = uuid.UUID

// Snapshot represents a named checkpoint of buffer state.
// Snapshots are immutable and can be safely shared across goroutines.
type Snapshot struct {
	// ID uniquely identifies this snapshot.
	ID SnapshotID

	// Name is the human-readable name for this snapshot.
	Name string

	// Timestamp when this snapshot was created.
	Timestamp time.Time

	state *buffer.Snapshot
}

// NewSnapshot wraps a buffer snapshot with an identity and name.
func NewSnapshot(name string, state *buffer.Snapshot) *Snapshot {
	return &Snapshot{
		ID:        uuid.New(),
		Name:      name,
		Timestamp: time.Now(),
		state:     state,
	}
}

// State returns the captured buffer snapshot.
func (s *Snapshot) State() *buffer.Snapshot {
	return s.state
}

// Text returns the full text at this snapshot.
func (s *Snapshot) Text() string {
	if s.state == nil {
		return ""
	}
	return s.state.Text()
}

// Revision returns the buffer revision at the time of the snapshot.
func (s *Snapshot) Revision() buffer.RevisionID {
	if s.state == nil {
		return 0
	}
	return s.state.RevisionID()
}

// Age returns how long ago this snapshot was created.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.Timestamp)
}

// SnapshotManager stores named snapshots in creation order.
// Creating a snapshot under an existing name replaces it.
type SnapshotManager struct {
	mu      sync.RWMutex
	entries []*Snapshot
}

// NewSnapshotManager creates an empty snapshot manager.
func NewSnapshotManager() *SnapshotManager {
	return &SnapshotManager{}
}

// Create stores state under name and returns the new snapshot's ID.
func (sm *SnapshotManager) Create(name string, state *buffer.Snapshot) SnapshotID {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if name != "" {
		sm.removeLocked(func(s *Snapshot) bool { return s.Name == name })
	}
	snap := NewSnapshot(name, state)
	sm.entries = append(sm.entries, snap)
	return snap.ID
}

// Get returns the snapshot with the given ID.
func (sm *SnapshotManager) Get(id SnapshotID) (*Snapshot, bool) {
	return sm.find(func(s *Snapshot) bool { return s.ID == id })
}

// GetByName returns the snapshot stored under name.
func (sm *SnapshotManager) GetByName(name string) (*Snapshot, bool) {
	if name == "" {
		return nil, false
	}
	return sm.find(func(s *Snapshot) bool { return s.Name == name })
}

func (sm *SnapshotManager) find(match func(*Snapshot) bool) (*Snapshot, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, s := range sm.entries {
		if match(s) {
			return s, true
		}
	}
	return nil, false
}

// Delete removes the snapshot with the given ID.
func (sm *SnapshotManager) Delete(id SnapshotID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.removeLocked(func(s *Snapshot) bool { return s.ID == id })
}

// DeleteByName removes the snapshot stored under name.
func (sm *SnapshotManager) DeleteByName(name string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.removeLocked(func(s *Snapshot) bool { return s.Name == name })
}

// removeLocked drops every entry matching drop, keeping order.
func (sm *SnapshotManager) removeLocked(drop func(*Snapshot) bool) int {
	kept := sm.entries[:0]
	for _, s := range sm.entries {
		if !drop(s) {
			kept = append(kept, s)
		}
	}
	removed := len(sm.entries) - len(kept)
	clear(sm.entries[len(kept):])
	sm.entries = kept
	return removed
}

// List returns all snapshots, oldest first.
func (sm *SnapshotManager) List() []*Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.entries)
}

// Count returns the number of stored snapshots.
func (sm *SnapshotManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.entries)
}

// Clear removes all snapshots.
func (sm *SnapshotManager) Clear() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.entries = nil
}

// Names returns the names of all named snapshots, sorted.
func (sm *SnapshotManager) Names() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	names := make([]string, 0, len(sm.entries))
	for _, s := range sm.entries {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	slices.Sort(names)
	return names
}

// Prune removes snapshots older than maxAge and returns how many it removed.
func (sm *SnapshotManager) Prune(maxAge time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	return sm.removeLocked(func(s *Snapshot) bool { return s.Timestamp.Before(cutoff) })
}

// PruneKeepN keeps the n newest snapshots and returns how many it removed.
func (sm *SnapshotManager) PruneKeepN(n int) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if n < 0 {
		n = 0
	}
	excess := len(sm.entries) - n
	if excess <= 0 {
		return 0
	}
	clear(sm.entries[:excess])
	sm.entries = slices.Clone(sm.entries[excess:])
	return excess
}
