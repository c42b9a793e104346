package engine

import (
	"errors"
	"testing"

	"github.com/lixenwraith/geomap/core"
)

type testPos struct{ X, Y float64 }
type testTag struct{ Name string }
type testHidden struct{}

func TestCreateEntityIDsAreUnique(t *testing.T) {
	w := NewWorld()
	seen := make(map[core.Entity]bool)
	for range 100 {
		e := w.CreateEntity("e")
		if e == core.NoEntity {
			t.Fatal("CreateEntity returned NoEntity")
		}
		if seen[e] {
			t.Fatalf("duplicate entity id %v", e)
		}
		seen[e] = true
	}
}

func TestComponentLifecycle(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("point")

	if err := AddComponent(w, e, testPos{X: 1, Y: 2}); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	got, err := GetComponent[testPos](w, e)
	if err != nil || got.X != 1 || got.Y != 2 {
		t.Fatalf("GetComponent = %+v, %v", got, err)
	}

	// Replace
	_ = AddComponent(w, e, testPos{X: 3})
	if got, _ := GetComponent[testPos](w, e); got.X != 3 {
		t.Errorf("replace: got %+v", got)
	}

	_, err = GetComponent[testTag](w, e)
	if !errors.Is(err, core.ErrComponentMissing) {
		t.Errorf("missing component: err = %v", err)
	}
	var miss *core.LookupMiss
	if !errors.As(err, &miss) || miss.Entity != e {
		t.Errorf("expected LookupMiss for %v, got %v", e, err)
	}

	if err := RemoveComponent[testPos](w, e); err != nil {
		t.Fatalf("RemoveComponent: %v", err)
	}
	if HasComponent[testPos](w, e) {
		t.Error("component still present after RemoveComponent")
	}
}

func TestUnknownEntity(t *testing.T) {
	w := NewWorld()
	if err := AddComponent(w, core.Entity(42), testPos{}); !errors.Is(err, core.ErrEntityNotFound) {
		t.Errorf("AddComponent on unknown entity: %v", err)
	}
	if _, err := GetComponent[testPos](w, core.Entity(42)); !errors.Is(err, core.ErrEntityNotFound) {
		t.Errorf("GetComponent on unknown entity: %v", err)
	}
	if err := w.RemoveEntity(core.Entity(42)); !errors.Is(err, core.ErrEntityNotFound) {
		t.Errorf("RemoveEntity on unknown entity: %v", err)
	}
}

func TestMustGetComponentPanicsWithLookupMiss(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("e")
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, core.ErrComponentMissing) {
			t.Errorf("recovered %v, want LookupMiss", r)
		}
	}()
	MustGetComponent[testPos](w, e)
}

func TestRemovalIsDeferredUntilFlush(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("doomed")
	_ = AddComponent(w, e, testPos{X: 1})
	_ = AddComponent(w, e, testTag{Name: "a"})

	if err := w.RemoveEntity(e); err != nil {
		t.Fatalf("RemoveEntity: %v", err)
	}
	// Still readable until flush
	if !w.ContainsEntity(e) {
		t.Error("entity vanished before flush")
	}
	if w.Alive(e) {
		t.Error("marked entity reported alive")
	}
	if _, err := GetComponent[testPos](w, e); err != nil {
		t.Errorf("components unreadable before flush: %v", err)
	}
	// Marking twice is a no-op
	if err := w.RemoveEntity(e); err != nil {
		t.Errorf("second RemoveEntity: %v", err)
	}

	if n := w.FlushRemovals(); n != 1 {
		t.Errorf("FlushRemovals = %d, want 1", n)
	}
	if w.ContainsEntity(e) {
		t.Error("entity exists after flush")
	}
	if HasComponent[testPos](w, e) || HasComponent[testTag](w, e) {
		t.Error("components survived flush")
	}
	if n := w.FlushRemovals(); n != 0 {
		t.Errorf("second FlushRemovals = %d, want 0", n)
	}
}

func TestStoreSwapRemoveKeepsIndex(t *testing.T) {
	s := NewStore[int]()
	for i := 1; i <= 5; i++ {
		s.Set(core.Entity(i), i*10)
	}
	s.Remove(core.Entity(2))
	s.RemoveBatch([]core.Entity{4, 99})
	if s.Count() != 3 {
		t.Fatalf("Count = %d, want 3", s.Count())
	}
	for _, e := range []core.Entity{1, 3, 5} {
		if v, ok := s.Get(e); !ok || v != int(e)*10 {
			t.Errorf("Get(%v) = %d, %v", e, v, ok)
		}
	}
	// Remove the last after compaction exercises index bookkeeping
	s.Remove(core.Entity(5))
	s.Remove(core.Entity(1))
	if got := s.All(); len(got) != 1 || got[0] != 3 {
		t.Errorf("All = %v, want [3]", got)
	}
}

func TestComponentTypesAndClear(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("e")
	_ = AddComponent(w, e, testPos{})
	_ = AddComponent(w, e, testTag{})
	if got := w.ComponentTypes(e); len(got) != 2 {
		t.Errorf("ComponentTypes = %v", got)
	}
	w.Clear()
	if w.EntityCount() != 0 || GetStore[testPos](w).Count() != 0 {
		t.Error("Clear left entities behind")
	}
}
