package buffer

import (
	"fmt"
	"sync/atomic"
)

// Offset represents a character (rune) position in the buffer.
type Offset = int

// Point represents a line and column position.
// Both Line and Column are 0-indexed; Column counts runes.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// RevisionID uniquely identifies a buffer revision.
// Every mutation produces a new, larger RevisionID.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}
