package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/patternkit/internal/engine/buffer"
)

// DefaultMaxEntries is used when a non-positive limit is given.
const DefaultMaxEntries = 1000

// ErrGroupOpen is returned by Undo and Redo while a command group is open.
var ErrGroupOpen = errors.New("command group is open")

// History manages undo/redo state for a buffer.
//
// Undo and Redo report (false, nil) when their stack is empty; that is a
// no-op signal, not a failure, and nothing is mutated.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state. groupMarks holds, per open group level, the length
	// of groupCmds when that level began.
	grouping   bool
	groupName  string
	groupCmds  []Command
	groupMarks []int

	// Configuration
	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// Execute runs a command and adds it to the undo stack.
// A command that fails is not recorded.
func (h *History) Execute(cmd Command, buf *buffer.Buffer) error {
	if err := cmd.Execute(buf); err != nil {
		return err
	}

	h.Push(cmd)
	return nil
}

// Push adds an already executed command to the undo stack.
// Clears the redo stack.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		h.redoStack = nil
		return
	}

	h.pushLocked(cmd)
}

// pushLocked adds a command without acquiring the lock.
func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, newUndoEntry(cmd))

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the most recent command and moves it to the redo stack.
func (h *History) Undo(buf *buffer.Buffer) (bool, error) {
	return h.move(&h.undoStack, &h.redoStack, func(c Command) error {
		return c.Undo(buf)
	})
}

// Redo re-applies the most recently undone command.
func (h *History) Redo(buf *buffer.Buffer) (bool, error) {
	return h.move(&h.redoStack, &h.undoStack, func(c Command) error {
		return c.Execute(buf)
	})
}

// move pops the top of from, applies it and pushes it onto to. The entry
// stays on from when apply fails. apply runs without the history lock.
func (h *History) move(from, to *[]*undoEntry, apply func(Command) error) (bool, error) {
	h.mu.Lock()
	if h.grouping {
		h.mu.Unlock()
		return false, ErrGroupOpen
	}
	n := len(*from)
	if n == 0 {
		h.mu.Unlock()
		return false, nil
	}
	entry := (*from)[n-1]
	*from = (*from)[:n-1]
	h.mu.Unlock()

	err := apply(entry.command)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		*from = append(*from, entry)
		return false, err
	}
	*to = append(*to, entry)
	return true, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a command group.
// Commands pushed while grouping will be combined into a single undo unit.
// Groups nest: an inner group belongs to the outer one, which keeps its name.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		h.grouping = true
		h.groupName = name
		h.groupCmds = nil
	}
	h.groupMarks = append(h.groupMarks, len(h.groupCmds))
}

// EndGroup closes the innermost group. Closing the outermost group records
// every command since it began as one CompoundCommand.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}

	h.groupMarks = h.groupMarks[:len(h.groupMarks)-1]
	if len(h.groupMarks) > 0 {
		return
	}

	cmds := h.groupCmds
	h.resetGroupLocked()
	if len(cmds) > 0 {
		h.pushLocked(NewCompoundCommand(h.groupName, cmds...))
	}
}

// CancelGroup closes the innermost group and undoes, newest first, the
// commands executed since it began, so buf matches the recorded history
// again. The group is closed even when an undo fails.
func (h *History) CancelGroup(buf *buffer.Buffer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return nil
	}

	mark := h.groupMarks[len(h.groupMarks)-1]
	h.groupMarks = h.groupMarks[:len(h.groupMarks)-1]
	cancelled := h.groupCmds[mark:]
	h.groupCmds = h.groupCmds[:mark:mark]
	if len(h.groupMarks) == 0 {
		h.resetGroupLocked()
	}

	for i := len(cancelled) - 1; i >= 0; i-- {
		if err := cancelled[i].Undo(buf); err != nil {
			return fmt.Errorf("cancel group: undo %s: %w", cancelled[i].Description(), err)
		}
	}
	return nil
}

func (h *History) resetGroupLocked() {
	h.grouping = false
	h.groupCmds = nil
	h.groupMarks = nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.resetGroupLocked()
}

// UndoInfo returns info about available undo operations, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return entriesInfo(h.undoStack)
}

// RedoInfo returns info about available redo operations.
// The last element is the next command Redo would apply.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return entriesInfo(h.redoStack)
}

func entriesInfo(entries []*undoEntry) []OperationInfo {
	result := make([]OperationInfo, len(entries))
	for i, entry := range entries {
		result[i] = entry.info()
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max

	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
