// Package tracking keeps buffer snapshots so content can be returned to
// later, independently of the command history.
//
// Two caretakers are provided:
//
//   - [SnapshotManager] stores named snapshots ("before_refactor", ...).
//   - [Timeline] stores an ordered list of snapshots with a cursor that can
//     move back and forward through them.
//
// # Usage
//
//	sm := tracking.NewSnapshotManager()
//	id := sm.Create("checkpoint_1", buf.Snapshot())
//
//	// Later
//	snap, ok := sm.GetByName("checkpoint_1")
//	if ok {
//	    buf.Restore(snap.State())
//	}
//
// A Timeline never discards the entry it moves away from; Back followed by
// Forward always lands on the same snapshot. Saving after Back drops the
// entries ahead of the cursor, the same way a new edit clears redo.
//
// # Thread Safety
//
// All operations are thread-safe through internal locking.
// Snapshots are immutable and can be freely shared across goroutines.
package tracking
