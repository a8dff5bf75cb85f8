package tracking

import (
	"testing"
	"time"

	"github.com/dshills/patternkit/internal/engine/buffer"
)

func snapOf(text string) *buffer.Snapshot {
	return buffer.NewBufferFromString(text).Snapshot()
}

func TestSnapshotManagerCreateGet(t *testing.T) {
	sm := NewSnapshotManager()

	id := sm.Create("first", snapOf("one"))

	snap, ok := sm.Get(id)
	if !ok {
		t.Fatal("Get() should find created snapshot")
	}
	if snap.Name != "first" || snap.Text() != "one" {
		t.Errorf("snapshot = %q/%q", snap.Name, snap.Text())
	}
	if snap.Revision() == 0 {
		t.Error("Revision() should carry the buffer revision")
	}

	byName, ok := sm.GetByName("first")
	if !ok || byName.ID != id {
		t.Error("GetByName() should return the same snapshot")
	}
}

func TestSnapshotManagerReplaceByName(t *testing.T) {
	sm := NewSnapshotManager()

	oldID := sm.Create("cp", snapOf("old"))
	newID := sm.Create("cp", snapOf("new"))

	if sm.Count() != 1 {
		t.Errorf("Count() = %d, want 1", sm.Count())
	}
	if _, ok := sm.Get(oldID); ok {
		t.Error("replaced snapshot should be gone")
	}
	snap, _ := sm.GetByName("cp")
	if snap.ID != newID || snap.Text() != "new" {
		t.Errorf("GetByName() = %v %q", snap.ID, snap.Text())
	}
}

func TestSnapshotManagerDelete(t *testing.T) {
	sm := NewSnapshotManager()

	a := sm.Create("a", snapOf("a"))
	sm.Create("b", snapOf("b"))

	sm.Delete(a)
	if _, ok := sm.GetByName("a"); ok {
		t.Error("Delete() should remove the name index")
	}

	sm.DeleteByName("b")
	if sm.Count() != 0 {
		t.Errorf("Count() = %d, want 0", sm.Count())
	}
}

func TestSnapshotManagerListAndNames(t *testing.T) {
	sm := NewSnapshotManager()
	sm.Create("zeta", snapOf("1"))
	sm.Create("alpha", snapOf("2"))
	sm.Create("mid", snapOf("3"))

	list := sm.List()
	if len(list) != 3 || list[0].Name != "zeta" || list[2].Name != "mid" {
		t.Errorf("List() should be in creation order, got %v", names(list))
	}

	got := sm.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names() = %v, want %v", got, want)
			break
		}
	}

	sm.Clear()
	if sm.Count() != 0 || len(sm.Names()) != 0 {
		t.Error("Clear() should remove everything")
	}
}

func names(list []*Snapshot) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Name
	}
	return out
}

func TestSnapshotManagerPrune(t *testing.T) {
	sm := NewSnapshotManager()
	id := sm.Create("old", snapOf("x"))
	snap, _ := sm.Get(id)
	snap.Timestamp = time.Now().Add(-time.Hour)
	sm.Create("fresh", snapOf("y"))

	if removed := sm.Prune(time.Minute); removed != 1 {
		t.Errorf("Prune() = %d, want 1", removed)
	}
	if _, ok := sm.GetByName("fresh"); !ok {
		t.Error("fresh snapshot should survive Prune()")
	}
}

func TestSnapshotManagerPruneKeepN(t *testing.T) {
	sm := NewSnapshotManager()
	for _, n := range []string{"1", "2", "3", "4"} {
		sm.Create(n, snapOf(n))
	}

	if removed := sm.PruneKeepN(2); removed != 2 {
		t.Errorf("PruneKeepN(2) = %d, want 2", removed)
	}
	if _, ok := sm.GetByName("1"); ok {
		t.Error("oldest snapshot should be pruned")
	}
	if _, ok := sm.GetByName("4"); !ok {
		t.Error("newest snapshot should be kept")
	}
	if sm.PruneKeepN(5) != 0 {
		t.Error("PruneKeepN above count should remove nothing")
	}
}

func TestTimelineEmpty(t *testing.T) {
	tl := NewTimeline(0)

	if _, ok := tl.Current(); ok {
		t.Error("Current() on empty timeline should fail")
	}
	if _, ok := tl.Back(); ok {
		t.Error("Back() on empty timeline should fail")
	}
	if _, ok := tl.Forward(); ok {
		t.Error("Forward() on empty timeline should fail")
	}
	if tl.Position() != -1 {
		t.Errorf("Position() = %d, want -1", tl.Position())
	}
}

func TestTimelineBackForward(t *testing.T) {
	tl := NewTimeline(0)
	tl.Save("initial", snapOf("Alice"))
	tl.Save("rename", snapOf("Bob"))
	tl.Save("email", snapOf("Bob <bob@corp>"))
	tl.Save("rename again", snapOf("Robert <bob@corp>"))

	back, ok := tl.Back()
	if !ok || back.Text() != "Bob <bob@corp>" {
		t.Fatalf("Back() = %v, %v", back, ok)
	}

	// With only two entries, stepping back must still reach the first one.
	tl2 := NewTimeline(0)
	tl2.Save("a", snapOf("A"))
	tl2.Save("b", snapOf("B"))
	first, ok := tl2.Back()
	if !ok || first.Text() != "A" {
		t.Fatalf("Back() with two entries = %v, %v", first, ok)
	}
	if _, ok := tl2.Back(); ok {
		t.Error("Back() past the oldest entry should fail")
	}
	fwd, ok := tl2.Forward()
	if !ok || fwd.Text() != "B" {
		t.Errorf("Forward() = %v, %v; nothing should have been discarded", fwd, ok)
	}
	if tl2.CanForward() {
		t.Error("CanForward() at newest entry should be false")
	}

	if tl.Len() != 4 || !tl.CanBack() || !tl.CanForward() {
		t.Errorf("Len/CanBack/CanForward = %d/%v/%v", tl.Len(), tl.CanBack(), tl.CanForward())
	}
}

func TestTimelineSaveTruncatesAhead(t *testing.T) {
	tl := NewTimeline(0)
	tl.Save("1", snapOf("1"))
	tl.Save("2", snapOf("2"))
	tl.Save("3", snapOf("3"))

	tl.Back()
	tl.Back()
	tl.Save("branch", snapOf("b"))

	if tl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tl.Len())
	}
	cur, _ := tl.Current()
	if cur.Name != "branch" {
		t.Errorf("Current() = %q, want branch", cur.Name)
	}
	if tl.CanForward() {
		t.Error("saving should drop entries ahead of the cursor")
	}
}

func TestTimelineMax(t *testing.T) {
	tl := NewTimeline(2)
	tl.Save("1", snapOf("1"))
	tl.Save("2", snapOf("2"))
	tl.Save("3", snapOf("3"))

	if tl.Len() != 2 || tl.Position() != 1 {
		t.Errorf("Len/Position = %d/%d, want 2/1", tl.Len(), tl.Position())
	}
	oldest, ok := tl.Back()
	if !ok || oldest.Name != "2" {
		t.Errorf("Back() = %v, want entry 2", oldest)
	}
}
