// Package engine provides the edit engine facade.
//
// The engine combines a text buffer, a command history and a snapshot store
// behind one thread-safe API. Scripts, the Lua bindings and the console all
// drive edits through it.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: the mutable text the commands act on
//   - history: Insert/Delete commands and the undo/redo invoker
//   - tracking: named snapshots of buffer content
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("The quick brown fox."))
//
//	_ = e.Insert("lazy ", 4)        // "The lazy quick brown fox."
//	removed, _ := e.Delete(14, 20) // "The lazy quick fox."
//
//	ok, _ := e.Undo() // ok is false when there is nothing to undo
//	ok, _ = e.Redo()
//
// # Snapshots
//
// Named snapshots capture the whole buffer. Restoring one replaces the
// content and clears undo/redo, because recorded commands no longer line up
// with the restored text.
//
//	e.CreateSnapshot("before")
//	// ... edits ...
//	_ = e.RestoreSnapshot("before")
package engine
