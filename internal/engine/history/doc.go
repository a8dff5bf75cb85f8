// Package history provides undo/redo functionality for the edit engine.
//
// The history system uses the Command pattern to encapsulate edit operations,
// enabling them to be executed, undone, and redone. Key concepts:
//
// # Commands
//
// Command is a closed set of variants; only this package can add one.
// Each variant reports its Kind so callers can switch over them exhaustively:
//   - InsertCommand: Insert text at a position
//   - DeleteCommand: Delete a range, capturing the removed text for undo
//   - CompoundCommand: Group multiple commands as one undo unit
//
// A command stores whatever it needs to reverse itself once executed.
// Undoing a command that has not been executed returns ErrInvalidState.
//
// # History Stack
//
// The History type is the invoker. It owns two stacks:
//
//	history := NewHistory(1000) // Max 1000 undo entries
//
//	// Execute commands
//	history.Execute(NewInsertCommand("lazy ", 4), buf)
//
//	// Undo/redo; ok is false when there is nothing to do
//	ok, err := history.Undo(buf)
//	ok, err = history.Redo(buf)
//
// Executing a new command clears the redo stack, so redo history is linear.
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	history.BeginGroup("Find and Replace")
//	// ... multiple edits ...
//	history.EndGroup()
//
// Now all edits undo together with one call.
package history
