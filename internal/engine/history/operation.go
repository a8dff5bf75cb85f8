package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/patternkit/internal/engine/buffer"
)

// Offset is an alias for buffer.Offset for convenience.
type Offset = buffer.Offset

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// undoEntry wraps a command with metadata.
type undoEntry struct {
	id        uuid.UUID
	command   Command
	timestamp time.Time
}

func newUndoEntry(cmd Command) *undoEntry {
	return &undoEntry{
		id:        uuid.New(),
		command:   cmd,
		timestamp: time.Now(),
	}
}

func (e *undoEntry) info() OperationInfo {
	return OperationInfo{
		ID:          e.id,
		Description: e.command.Description(),
		Kind:        e.command.Kind(),
		Timestamp:   e.timestamp,
	}
}

// OperationInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	ID          uuid.UUID // Stable identity of the entry across undo/redo
	Description string    // Human-readable description
	Kind        Kind      // Command variant
	Timestamp   time.Time // When the entry was first recorded
}
