package buffer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer holds mutable text content.
// It is the receiver that edit commands operate on.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	content    []rune
	revisionID RevisionID
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		revisionID: NewRevisionID(),
	}
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string) *Buffer {
	b := NewBuffer()
	b.content = []rune(s)
	return b
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.content)
}

// TextRange returns text in the given range.
func (b *Buffer) TextRange(start, end Offset) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkRangeLocked(start, end); err != nil {
		return "", err
	}
	return string(b.content[start:end]), nil
}

// Len returns the length of the buffer in characters.
func (b *Buffer) Len() Offset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.content)
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.content) == 0
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 1
	for _, r := range b.content {
		if r == '\n' {
			n++
		}
	}
	return n
}

// LineText returns the text of a specific line (without newline).
// Returns an empty string if the line does not exist.
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lines := strings.Split(string(b.content), "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}

// OffsetToPoint converts a character offset to line/column.
// Offsets past the end clamp to the end of the buffer.
func (b *Buffer) OffsetToPoint(offset Offset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset > len(b.content) {
		offset = len(b.content)
	}
	var p Point
	for i := 0; i < offset; i++ {
		if b.content[i] == '\n' {
			p.Line++
			p.Column = 0
		} else {
			p.Column++
		}
	}
	return p
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset Offset, text string) (Offset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > len(b.content) {
		return 0, fmt.Errorf("insert at %d (len %d): %w", offset, len(b.content), ErrOffsetOutOfRange)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return offset, nil
	}

	next := make([]rune, 0, len(b.content)+len(runes))
	next = append(next, b.content[:offset]...)
	next = append(next, runes...)
	next = append(next, b.content[offset:]...)
	b.content = next
	b.revisionID = NewRevisionID()

	return offset + len(runes), nil
}

// Delete removes text in the range [start, end) and returns the removed text.
func (b *Buffer) Delete(start, end Offset) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRangeLocked(start, end); err != nil {
		return "", err
	}
	r := NewRange(start, end)
	if r.IsEmpty() {
		return "", nil
	}

	removed := string(b.content[start:end])
	next := make([]rune, 0, len(b.content)-r.Len())
	next = append(next, b.content[:start]...)
	next = append(next, b.content[end:]...)
	b.content = next
	b.revisionID = NewRevisionID()

	return removed, nil
}

// checkRangeLocked validates [start, end) against the current content.
func (b *Buffer) checkRangeLocked(start, end Offset) error {
	r := NewRange(start, end)
	if r.Len() < 0 {
		return fmt.Errorf("range %s: %w", r, ErrRangeInvalid)
	}
	if !r.IsValid() || r.End > len(b.content) {
		return fmt.Errorf("range %s (len %d): %w", r, len(b.content), ErrOffsetOutOfRange)
	}
	return nil
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// Snapshot returns a read-only snapshot of the current buffer state.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	content := make([]rune, len(b.content))
	copy(content, b.content)
	return &Snapshot{
		content:    content,
		revisionID: b.revisionID,
	}
}

// Restore replaces the buffer content with the snapshot's content.
// The buffer receives a new revision ID; a nil snapshot is ignored.
func (b *Buffer) Restore(s *Snapshot) {
	if s == nil {
		return
	}

	content := make([]rune, len(s.content))
	copy(content, s.content)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = content
	b.revisionID = NewRevisionID()
}
