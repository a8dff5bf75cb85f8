// Package buffer provides the thread-safe text buffer that edit commands
// operate on.
//
// Positions are rune offsets rather than byte offsets, so an insertion at
// offset 4 always lands after the fourth character regardless of how many
// bytes the preceding characters occupy in UTF-8.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Hello, World!")
//
//	// Insert text
//	buf.Insert(7, "Beautiful ") // "Hello, Beautiful World!"
//
//	// Delete text, receiving what was removed
//	removed, _ := buf.Delete(0, 7) // removed == "Hello, "
//
//	// Capture and later restore the whole content
//	snap := buf.Snapshot()
//	buf.Restore(snap)
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Read operations acquire a read lock,
// while write operations acquire an exclusive write lock. Snapshots are
// immutable and may be shared freely.
package buffer
