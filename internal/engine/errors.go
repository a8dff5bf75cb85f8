package engine

import (
	"errors"

	"github.com/dshills/patternkit/internal/engine/buffer"
	"github.com/dshills/patternkit/internal/engine/history"
	"github.com/dshills/patternkit/internal/engine/tracking"
)

// Errors returned by engine operations.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the valid buffer range.
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = buffer.ErrRangeInvalid

	// ErrInvalidState indicates a command was undone before it was executed.
	ErrInvalidState = history.ErrInvalidState

	// ErrSnapshotNotFound indicates a snapshot was not found.
	ErrSnapshotNotFound = tracking.ErrSnapshotNotFound

	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)

// IsOutOfRange reports whether err is an out-of-range edit error.
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOffsetOutOfRange) || errors.Is(err, ErrRangeInvalid)
}
