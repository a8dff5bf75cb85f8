package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dshills/patternkit/internal/engine/buffer"
	"github.com/dshills/patternkit/internal/engine/history"
	"github.com/dshills/patternkit/internal/engine/tracking"
)

// Re-export commonly used types for convenience.
type (
	// Offset is a character position in the buffer.
	Offset = buffer.Offset

	// Point represents a line/column position.
	Point = buffer.Point

	// RevisionID uniquely identifies a buffer revision.
	RevisionID = buffer.RevisionID

	// SnapshotID uniquely identifies a named snapshot.
	SnapshotID = tracking.SnapshotID

	// Command is an undoable edit command.
	Command = history.Command
)

// Operation names reported to a Recorder.
const (
	OpExecute = "execute"
	OpUndo    = "undo"
	OpRedo    = "redo"
)

// Recorder receives edit outcomes, typically for metrics.
type Recorder interface {
	// CommandApplied is called after a command was executed, undone or redone.
	CommandApplied(op string, kind history.Kind)

	// Noop is called when undo or redo had nothing to do.
	Noop(op string)

	// CommandFailed is called when a command returned an error.
	CommandFailed(op string)
}

type nopRecorder struct{}

func (nopRecorder) CommandApplied(string, history.Kind) {}
func (nopRecorder) Noop(string)                         {}
func (nopRecorder) CommandFailed(string)                {}

// Engine is the main facade for the edit engine.
// All operations are thread-safe; edits are serialized.
type Engine struct {
	mu sync.Mutex

	// Core components
	buf       *buffer.Buffer
	history   *history.History
	snapshots *tracking.SnapshotManager
	timeline  *tracking.Timeline

	// Configuration
	maxUndoEntries int
	maxCheckpoints int
	readOnly       bool
	logger         *slog.Logger
	recorder       Recorder

	// Initialization
	initContent string
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxUndoEntries: DefaultMaxUndoEntries,
		maxCheckpoints: DefaultMaxCheckpoints,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder:       nopRecorder{},
	}

	for _, opt := range opts {
		opt(e)
	}

	e.buf = buffer.NewBufferFromString(e.initContent)
	e.history = history.NewHistory(e.maxUndoEntries)
	e.snapshots = tracking.NewSnapshotManager()
	e.timeline = tracking.NewTimeline(e.maxCheckpoints)

	return e
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the full buffer content.
func (e *Engine) Text() string {
	return e.buf.Text()
}

// TextRange returns text in the given range.
func (e *Engine) TextRange(start, end Offset) (string, error) {
	return e.buf.TextRange(start, end)
}

// Len returns the buffer length in characters.
func (e *Engine) Len() Offset {
	return e.buf.Len()
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() int {
	return e.buf.LineCount()
}

// LineText returns the text of a specific line (without newline).
func (e *Engine) LineText(line int) string {
	return e.buf.LineText(line)
}

// OffsetToPoint converts a character offset to line/column.
func (e *Engine) OffsetToPoint(offset Offset) Point {
	return e.buf.OffsetToPoint(offset)
}

// RevisionID returns the current buffer revision.
func (e *Engine) RevisionID() RevisionID {
	return e.buf.RevisionID()
}

// IsReadOnly returns true if the engine rejects edits.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}

// ============================================================================
// Edit Operations
// ============================================================================

// Insert inserts text at the given position as an undoable command.
func (e *Engine) Insert(text string, position Offset) error {
	return e.Execute(history.NewInsertCommand(text, position))
}

// Delete removes [start, end) as an undoable command and returns the
// removed text.
func (e *Engine) Delete(start, end Offset) (string, error) {
	cmd := history.NewDeleteCommand(start, end)
	if err := e.Execute(cmd); err != nil {
		return "", err
	}
	removed, _ := cmd.Removed()
	return removed, nil
}

// Execute runs a command and records it in the history.
func (e *Engine) Execute(cmd Command) error {
	if e.readOnly {
		return ErrReadOnly
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.history.Execute(cmd, e.buf); err != nil {
		e.recorder.CommandFailed(OpExecute)
		e.logger.Warn("command failed",
			slog.String("op", OpExecute),
			slog.String("command", cmd.Description()),
			slog.Any("error", err))
		return err
	}

	e.recorder.CommandApplied(OpExecute, cmd.Kind())
	e.logger.Debug("command executed",
		slog.String("command", cmd.Description()),
		slog.Int("undo", e.history.UndoCount()))
	return nil
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo undoes the last command.
// Returns false with a nil error when there is nothing to undo.
func (e *Engine) Undo() (bool, error) {
	return e.step(OpUndo, e.history.PeekUndo, e.history.Undo)
}

// Redo redoes the last undone command.
// Returns false with a nil error when there is nothing to redo.
func (e *Engine) Redo() (bool, error) {
	return e.step(OpRedo, e.history.PeekRedo, e.history.Redo)
}

func (e *Engine) step(op string, peek func() (history.OperationInfo, bool), apply func(*buffer.Buffer) (bool, error)) (bool, error) {
	if e.readOnly {
		return false, ErrReadOnly
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	info, _ := peek()
	ok, err := apply(e.buf)
	if err != nil {
		e.recorder.CommandFailed(op)
		e.logger.Warn("command failed", slog.String("op", op), slog.Any("error", err))
		return false, err
	}
	if !ok {
		e.recorder.Noop(op)
		e.logger.Debug("nothing to "+op, slog.String("op", op))
		return false, nil
	}

	e.recorder.CommandApplied(op, info.Kind)
	e.logger.Debug("command "+op+" applied",
		slog.String("command", info.Description),
		slog.String("id", info.ID.String()))
	return true, nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of undo entries.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of redo entries.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// BeginGroup starts grouping subsequent edits into one undo unit.
func (e *Engine) BeginGroup(name string) {
	e.history.BeginGroup(name)
}

// EndGroup closes the current group.
func (e *Engine) EndGroup() {
	e.history.EndGroup()
}

// CancelGroup closes the innermost group and reverts the edits made in it,
// leaving the buffer as the recorded history describes it.
func (e *Engine) CancelGroup() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.history.CancelGroup(e.buf); err != nil {
		e.logger.Warn("cancel group failed", slog.Any("error", err))
		return err
	}
	return nil
}

// Group runs fn with every edit it makes recorded as one undo unit.
// When fn fails its edits are reverted and nothing is recorded. Inside an
// open group, fn's edits join that group.
func (e *Engine) Group(name string, fn func() error) error {
	e.BeginGroup(name)
	if err := fn(); err != nil {
		if cerr := e.CancelGroup(); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}
	e.EndGroup()
	return nil
}

// ClearHistory removes all undo/redo entries.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// History returns the underlying history for inspection.
func (e *Engine) History() *history.History {
	return e.history
}

// ============================================================================
// Snapshots
// ============================================================================

// CreateSnapshot stores the current content under name.
// An existing snapshot with the same name is replaced.
func (e *Engine) CreateSnapshot(name string) SnapshotID {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.snapshots.Create(name, e.buf.Snapshot())
	e.logger.Debug("snapshot created", slog.String("name", name), slog.String("id", id.String()))
	return id
}

// GetSnapshot returns the named snapshot.
func (e *Engine) GetSnapshot(name string) (*tracking.Snapshot, error) {
	snap, ok := e.snapshots.GetByName(name)
	if !ok {
		return nil, fmt.Errorf("snapshot %q: %w", name, ErrSnapshotNotFound)
	}
	return snap, nil
}

// RestoreSnapshot replaces the content with the named snapshot.
// Undo and redo history are cleared.
func (e *Engine) RestoreSnapshot(name string) error {
	if e.readOnly {
		return ErrReadOnly
	}

	snap, err := e.GetSnapshot(name)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Restore(snap.State())
	e.history.Clear()
	e.logger.Debug("snapshot restored", slog.String("name", name))
	return nil
}

// DeleteSnapshot removes the named snapshot.
func (e *Engine) DeleteSnapshot(name string) {
	e.snapshots.DeleteByName(name)
}

// SnapshotNames returns the names of all snapshots, sorted.
func (e *Engine) SnapshotNames() []string {
	return e.snapshots.Names()
}

// ListSnapshots returns all snapshots, oldest first.
func (e *Engine) ListSnapshots() []*tracking.Snapshot {
	return e.snapshots.List()
}

// ============================================================================
// Checkpoint timeline
// ============================================================================

// Checkpoint records the current content on the timeline after the current
// checkpoint. Checkpoints ahead of it (left by Back) are discarded.
func (e *Engine) Checkpoint(name string) SnapshotID {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.timeline.Save(name, e.buf.Snapshot())
	e.logger.Debug("checkpoint saved",
		slog.String("name", name),
		slog.Int("position", e.timeline.Position()))
	return snap.ID
}

// Back restores the checkpoint before the current one.
// Returns false with a nil error when there is none. Undo and redo history
// are cleared on restore.
func (e *Engine) Back() (bool, error) {
	return e.travel("back", e.timeline.Back)
}

// Forward restores the checkpoint after the current one.
// Returns false with a nil error when there is none.
func (e *Engine) Forward() (bool, error) {
	return e.travel("forward", e.timeline.Forward)
}

func (e *Engine) travel(dir string, move func() (*tracking.Snapshot, bool)) (bool, error) {
	if e.readOnly {
		return false, ErrReadOnly
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap, ok := move()
	if !ok {
		e.logger.Debug("no checkpoint "+dir, slog.String("op", dir))
		return false, nil
	}
	e.buf.Restore(snap.State())
	e.history.Clear()
	e.logger.Debug("checkpoint restored",
		slog.String("op", dir),
		slog.String("name", snap.Name),
		slog.Int("position", e.timeline.Position()))
	return true, nil
}

// Checkpoints returns the number of checkpoints and the current position
// (-1 when there are none).
func (e *Engine) Checkpoints() (count, position int) {
	return e.timeline.Len(), e.timeline.Position()
}
