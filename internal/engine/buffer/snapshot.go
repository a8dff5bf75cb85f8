package buffer

import "unicode/utf8"

// Snapshot is a read-only copy of a buffer's content at one revision.
// It never changes, even when the originating buffer is modified.
type Snapshot struct {
	content    []rune
	revisionID RevisionID
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return string(s.content)
}

// Len returns the length of the snapshot in characters.
func (s *Snapshot) Len() Offset {
	return len(s.content)
}

// RevisionID returns the buffer revision the snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// Equal reports whether two snapshots hold the same text.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.content) != len(other.content) {
		return false
	}
	for i := range s.content {
		if s.content[i] != other.content[i] {
			return false
		}
	}
	return true
}

// Size returns the snapshot size in bytes when encoded as UTF-8.
func (s *Snapshot) Size() int {
	n := 0
	for _, r := range s.content {
		n += utf8.RuneLen(r)
	}
	return n
}
