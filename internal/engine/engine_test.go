package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/dshills/patternkit/internal/engine/history"
)

type countingRecorder struct {
	mu      sync.Mutex
	applied map[string]int
	noops   map[string]int
	failed  map[string]int
	kinds   []history.Kind
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		applied: make(map[string]int),
		noops:   make(map[string]int),
		failed:  make(map[string]int),
	}
}

func (r *countingRecorder) CommandApplied(op string, kind history.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied[op]++
	r.kinds = append(r.kinds, kind)
}

func (r *countingRecorder) Noop(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noops[op]++
}

func (r *countingRecorder) CommandFailed(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[op]++
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	e := New()
	if e.Len() != 0 {
		t.Errorf("expected empty engine, got len %d", e.Len())
	}
	if e.Text() != "" {
		t.Errorf("expected empty text, got %q", e.Text())
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("new engine should have no history")
	}
}

func TestNewWithContent(t *testing.T) {
	content := "Hello, World!"
	e := New(WithContent(content))

	if e.Text() != content {
		t.Errorf("expected %q, got %q", content, e.Text())
	}
	if e.Len() != len(content) {
		t.Errorf("expected len %d, got %d", len(content), e.Len())
	}
}

func TestWithMaxUndoEntries(t *testing.T) {
	e := New(WithMaxUndoEntries(2))
	for i := 0; i < 5; i++ {
		if err := e.Insert("x", 0); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}
	if e.UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want 2", e.UndoCount())
	}
	if e.History().MaxEntries() != 2 {
		t.Errorf("MaxEntries() = %d, want 2", e.History().MaxEntries())
	}
}

func TestInsertDelete(t *testing.T) {
	e := New(WithContent("Hello"))

	if err := e.Insert(", World", 5); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if e.Text() != "Hello, World" {
		t.Errorf("Text() = %q", e.Text())
	}

	removed, err := e.Delete(0, 7)
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if removed != "Hello, " {
		t.Errorf("Delete() removed %q, want %q", removed, "Hello, ")
	}
	if e.Text() != "World" {
		t.Errorf("Text() = %q, want World", e.Text())
	}
}

func TestInsertOutOfRange(t *testing.T) {
	rec := newCountingRecorder()
	e := New(WithContent("abc"), WithRecorder(rec))

	err := e.Insert("x", 10)
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Insert() error = %v, want ErrOffsetOutOfRange", err)
	}
	if !IsOutOfRange(err) {
		t.Error("IsOutOfRange() should match")
	}
	if e.CanUndo() {
		t.Error("failed command should not be recorded")
	}
	if rec.failed[OpExecute] != 1 {
		t.Errorf("failed[execute] = %d, want 1", rec.failed[OpExecute])
	}
}

func TestDeleteInvalidRange(t *testing.T) {
	e := New(WithContent("abc"))

	if _, err := e.Delete(2, 1); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("Delete(2,1) error = %v, want ErrRangeInvalid", err)
	}
	if _, err := e.Delete(0, 9); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Delete(0,9) error = %v, want ErrOffsetOutOfRange", err)
	}
	if e.Text() != "abc" {
		t.Errorf("Text() = %q, want unchanged", e.Text())
	}
}

// ============================================================================
// Undo/Redo
// ============================================================================

func TestReferenceScenario(t *testing.T) {
	e := New(WithContent("The quick brown fox."))

	steps := []struct {
		name string
		do   func() error
		want string
	}{
		{"insert", func() error { return e.Insert("lazy ", 4) }, "The lazy quick brown fox."},
		{"delete", func() error { _, err := e.Delete(14, 20); return err }, "The lazy quick fox."},
		{"undo delete", func() error { _, err := e.Undo(); return err }, "The lazy quick brown fox."},
		{"undo insert", func() error { _, err := e.Undo(); return err }, "The quick brown fox."},
		{"redo insert", func() error { _, err := e.Redo(); return err }, "The lazy quick brown fox."},
		{"redo delete", func() error { _, err := e.Redo(); return err }, "The lazy quick fox."},
	}

	for _, step := range steps {
		if err := step.do(); err != nil {
			t.Fatalf("%s: unexpected error: %v", step.name, err)
		}
		if got := e.Text(); got != step.want {
			t.Fatalf("%s: Text() = %q, want %q", step.name, got, step.want)
		}
	}
}

func TestUndoRedoEmptyIsNoop(t *testing.T) {
	rec := newCountingRecorder()
	e := New(WithContent("same"), WithRecorder(rec))
	rev := e.RevisionID()

	for i := 0; i < 3; i++ {
		ok, err := e.Undo()
		if ok || err != nil {
			t.Errorf("Undo() = %v, %v; want false, nil", ok, err)
		}
	}
	ok, err := e.Redo()
	if ok || err != nil {
		t.Errorf("Redo() = %v, %v; want false, nil", ok, err)
	}

	if e.Text() != "same" || e.RevisionID() != rev {
		t.Error("no-op undo/redo should not touch the buffer")
	}
	if rec.noops[OpUndo] != 3 || rec.noops[OpRedo] != 1 {
		t.Errorf("noops = %v", rec.noops)
	}
}

func TestRedoInvalidatedByExecute(t *testing.T) {
	e := New()

	_ = e.Insert("A", 0)
	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if !e.CanRedo() {
		t.Fatal("CanRedo() should be true after undo")
	}

	_ = e.Insert("B", 0)
	if e.CanRedo() {
		t.Error("new execute should clear redo")
	}
	ok, err := e.Redo()
	if ok || err != nil {
		t.Errorf("Redo() = %v, %v; want false, nil", ok, err)
	}
	if e.Text() != "B" {
		t.Errorf("Text() = %q, want B", e.Text())
	}
}

func TestRecorderKinds(t *testing.T) {
	rec := newCountingRecorder()
	e := New(WithRecorder(rec))

	_ = e.Insert("ab", 0)
	_, _ = e.Delete(0, 1)
	_, _ = e.Undo()
	_, _ = e.Redo()

	if rec.applied[OpExecute] != 2 || rec.applied[OpUndo] != 1 || rec.applied[OpRedo] != 1 {
		t.Errorf("applied = %v", rec.applied)
	}
	want := []history.Kind{history.KindInsert, history.KindDelete, history.KindDelete, history.KindDelete}
	if len(rec.kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", rec.kinds, want)
	}
	for i := range want {
		if rec.kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, rec.kinds[i], want[i])
		}
	}
}

func TestGroupUndoesAsUnit(t *testing.T) {
	e := New(WithContent("x"))

	e.BeginGroup("typing")
	_ = e.Insert("a", 1)
	_ = e.Insert("b", 2)
	_ = e.Insert("c", 3)
	e.EndGroup()

	if e.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", e.UndoCount())
	}
	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if e.Text() != "x" {
		t.Errorf("Text() = %q, want x", e.Text())
	}
}

func TestGroupFunc(t *testing.T) {
	e := New(WithContent("ab"))

	err := e.Group("pair", func() error {
		if err := e.Insert("1", 0); err != nil {
			return err
		}
		return e.Insert("2", 3)
	})
	if err != nil {
		t.Fatalf("Group() error: %v", err)
	}
	if e.Text() != "1ab2" || e.UndoCount() != 1 {
		t.Fatalf("Text() = %q, UndoCount() = %d", e.Text(), e.UndoCount())
	}

	err = e.Group("bad", func() error {
		return e.Insert("x", 99)
	})
	if !IsOutOfRange(err) {
		t.Errorf("Group() error = %v, want out of range", err)
	}
	if e.UndoCount() != 1 {
		t.Errorf("failed group recorded an entry")
	}

	if ok, err := e.Undo(); !ok || err != nil {
		t.Fatalf("Undo() = %v, %v", ok, err)
	}
	if e.Text() != "ab" {
		t.Errorf("Text() = %q, want ab", e.Text())
	}
}

func TestUndoWhileGrouping(t *testing.T) {
	e := New()
	e.BeginGroup("open")
	_ = e.Insert("a", 0)

	if _, err := e.Undo(); !errors.Is(err, history.ErrGroupOpen) {
		t.Errorf("Undo() error = %v, want ErrGroupOpen", err)
	}

	if err := e.CancelGroup(); err != nil {
		t.Fatalf("CancelGroup() error: %v", err)
	}
	if e.CanUndo() {
		t.Error("canceled group should not be recorded")
	}
	if e.Text() != "" {
		t.Errorf("canceled group left %q in the buffer", e.Text())
	}
}

func TestGroupFailureRevertsEarlierEdits(t *testing.T) {
	e := New(WithContent("abc"))
	if err := e.Insert("X", 0); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := e.Group("g", func() error {
		if err := e.Insert("YY", 0); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Group() error = %v, want boom", err)
	}
	if e.Text() != "Xabc" || e.UndoCount() != 1 {
		t.Fatalf("after failed group Text() = %q, UndoCount() = %d", e.Text(), e.UndoCount())
	}

	if ok, err := e.Undo(); !ok || err != nil {
		t.Fatalf("Undo() = %v, %v", ok, err)
	}
	if e.Text() != "abc" {
		t.Errorf("Text() = %q, want abc", e.Text())
	}
}

func TestGroupInsideOpenGroup(t *testing.T) {
	e := New()
	e.BeginGroup("outer")
	_ = e.Insert("a", 0)
	if err := e.Group("inner", func() error { return e.Insert("b", 1) }); err != nil {
		t.Fatal(err)
	}
	_ = e.Insert("c", 2)
	e.EndGroup()

	if e.Text() != "abc" || e.UndoCount() != 1 {
		t.Fatalf("Text() = %q, UndoCount() = %d, want abc with 1", e.Text(), e.UndoCount())
	}
	if _, err := e.Undo(); err != nil || e.Text() != "" {
		t.Errorf("Undo() = %v, Text() = %q", err, e.Text())
	}
}

// ============================================================================
// Read-only
// ============================================================================

func TestReadOnly(t *testing.T) {
	e := New(WithContent("locked"), WithReadOnly(true))

	if !e.IsReadOnly() {
		t.Error("IsReadOnly() should be true")
	}
	if err := e.Insert("x", 0); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Insert() error = %v, want ErrReadOnly", err)
	}
	if _, err := e.Delete(0, 1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete() error = %v, want ErrReadOnly", err)
	}
	if _, err := e.Undo(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Undo() error = %v, want ErrReadOnly", err)
	}
	if e.Text() != "locked" {
		t.Errorf("Text() = %q", e.Text())
	}
}

// ============================================================================
// Snapshots
// ============================================================================

func TestSnapshotRestore(t *testing.T) {
	e := New(WithContent("v1"))

	id := e.CreateSnapshot("start")
	_ = e.Insert(" and v2", 2)

	snap, err := e.GetSnapshot("start")
	if err != nil {
		t.Fatalf("GetSnapshot() error: %v", err)
	}
	if snap.ID != id || snap.Text() != "v1" {
		t.Errorf("snapshot = %v/%q", snap.ID, snap.Text())
	}

	if err := e.RestoreSnapshot("start"); err != nil {
		t.Fatalf("RestoreSnapshot() error: %v", err)
	}
	if e.Text() != "v1" {
		t.Errorf("Text() = %q, want v1", e.Text())
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("restore should clear history")
	}
}

func TestSnapshotNotFound(t *testing.T) {
	e := New()
	if err := e.RestoreSnapshot("missing"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("RestoreSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestSnapshotListing(t *testing.T) {
	e := New()
	e.CreateSnapshot("b")
	e.CreateSnapshot("a")

	names := e.SnapshotNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("SnapshotNames() = %v", names)
	}
	list := e.ListSnapshots()
	if len(list) != 2 || list[0].Name != "b" {
		t.Errorf("ListSnapshots() should be in creation order")
	}

	e.DeleteSnapshot("a")
	if len(e.SnapshotNames()) != 1 {
		t.Error("DeleteSnapshot() should remove the snapshot")
	}
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentEdits(t *testing.T) {
	e := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = e.Insert("x", 0)
			}
		}()
	}
	wg.Wait()

	if e.Len() != 200 {
		t.Errorf("Len() = %d, want 200", e.Len())
	}
	for e.CanUndo() {
		if _, err := e.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	if e.Text() != "" {
		t.Errorf("Text() after undoing everything = %q", e.Text())
	}
}

// ============================================================================
// Checkpoint timeline
// ============================================================================

func TestCheckpointBackForward(t *testing.T) {
	e := New(WithContent("v1"))

	if ok, err := e.Back(); ok || err != nil {
		t.Errorf("Back() on empty timeline = %v, %v", ok, err)
	}

	e.Checkpoint("one")
	_ = e.Insert("+2", 2)
	e.Checkpoint("two")
	_ = e.Insert("+3", 4)
	e.Checkpoint("three")

	if ok, err := e.Back(); !ok || err != nil || e.Text() != "v1+2" {
		t.Fatalf("Back() = %v, %v, Text() = %q", ok, err, e.Text())
	}
	if ok, _ := e.Back(); !ok || e.Text() != "v1" {
		t.Fatalf("second Back() Text() = %q", e.Text())
	}
	if ok, _ := e.Back(); ok {
		t.Error("Back() past the first checkpoint should report false")
	}
	if e.CanUndo() {
		t.Error("restoring a checkpoint should clear history")
	}

	// Nothing is discarded by Back.
	_, _ = e.Forward()
	if ok, _ := e.Forward(); !ok || e.Text() != "v1+2+3" {
		t.Fatalf("Forward() Text() = %q, want v1+2+3", e.Text())
	}
	if count, pos := e.Checkpoints(); count != 3 || pos != 2 {
		t.Errorf("Checkpoints() = %d, %d, want 3, 2", count, pos)
	}
}

func TestCheckpointTruncatesAhead(t *testing.T) {
	e := New(WithContent("a"))
	e.Checkpoint("a")
	_ = e.Insert("b", 1)
	e.Checkpoint("ab")
	_, _ = e.Back()

	_ = e.Insert("c", 1)
	e.Checkpoint("ac")

	if ok, _ := e.Forward(); ok {
		t.Error("checkpoints ahead of the cursor should be discarded")
	}
	if count, _ := e.Checkpoints(); count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestCheckpointReadOnly(t *testing.T) {
	e := New(WithContent("x"), WithReadOnly(true))
	e.Checkpoint("x")
	if _, err := e.Back(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Back() error = %v, want ErrReadOnly", err)
	}
}
