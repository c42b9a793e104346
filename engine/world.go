package engine

import (
	"reflect"
	"slices"

	"github.com/lixenwraith/geomap/core"
)

// World contains all entities and their components using a type-erased store registry
// Entity removal is deferred: RemoveEntity marks, FlushRemovals applies at the sync point
type World struct {
	nextEntityID core.Entity

	names   map[core.Entity]string
	pending map[core.Entity]struct{}
	queue   []core.Entity // Removal order, drained by FlushRemovals

	// Registry keyed by component type; list preserves registration order for lifecycle sweeps
	stores    map[reflect.Type]AnyStore
	allStores []AnyStore
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{
		nextEntityID: 1,
		names:        make(map[core.Entity]string),
		pending:      make(map[core.Entity]struct{}),
		queue:        make([]core.Entity, 0, 64),
		stores:       make(map[reflect.Type]AnyStore),
		allStores:    make([]AnyStore, 0, 32),
	}
}

// CreateEntity reserves a new entity ID without adding any components
func (w *World) CreateEntity(name string) core.Entity {
	id := w.nextEntityID
	w.nextEntityID++
	w.names[id] = name
	return id
}

// ContainsEntity reports whether e was created and not yet flushed
// Entities marked for removal still exist until FlushRemovals
func (w *World) ContainsEntity(e core.Entity) bool {
	_, ok := w.names[e]
	return ok
}

// Alive reports whether e exists and is not marked for removal
func (w *World) Alive(e core.Entity) bool {
	if _, ok := w.names[e]; !ok {
		return false
	}
	_, marked := w.pending[e]
	return !marked
}

// EntityName returns the name given at creation
func (w *World) EntityName(e core.Entity) (string, error) {
	name, ok := w.names[e]
	if !ok {
		return "", &core.LookupMiss{Entity: e, Err: core.ErrEntityNotFound}
	}
	return name, nil
}

// RemoveEntity marks e for removal at the next FlushRemovals
// Marking twice is a no-op
func (w *World) RemoveEntity(e core.Entity) error {
	if _, ok := w.names[e]; !ok {
		return &core.LookupMiss{Entity: e, Err: core.ErrEntityNotFound}
	}
	if _, marked := w.pending[e]; marked {
		return nil
	}
	w.pending[e] = struct{}{}
	w.queue = append(w.queue, e)
	return nil
}

// IsPendingRemoval reports whether e is marked and awaiting flush
func (w *World) IsPendingRemoval(e core.Entity) bool {
	_, marked := w.pending[e]
	return marked
}

// FlushRemovals applies pending removals, returning the number of entities destroyed
// Called once per tick by the scheduler after deferred closures ran
func (w *World) FlushRemovals() int {
	if len(w.queue) == 0 {
		return 0
	}
	for _, store := range w.allStores {
		store.RemoveBatch(w.queue)
	}
	n := len(w.queue)
	for _, e := range w.queue {
		delete(w.names, e)
		delete(w.pending, e)
	}
	w.queue = w.queue[:0]
	return n
}

// EntityCount returns the number of existing entities, including ones pending removal
func (w *World) EntityCount() int {
	return len(w.names)
}

// ComponentTypes lists the component type names attached to e, in registration order
func (w *World) ComponentTypes(e core.Entity) []string {
	var out []string
	for _, s := range w.allStores {
		if s.Has(e) {
			out = append(out, s.Type().String())
		}
	}
	return out
}

// Clear removes all entities and components from the world
func (w *World) Clear() {
	w.nextEntityID = 1
	clear(w.names)
	clear(w.pending)
	w.queue = w.queue[:0]
	for _, store := range w.allStores {
		store.Clear()
	}
}

// Entities returns all existing entity ids in ascending order
func (w *World) Entities() []core.Entity {
	out := make([]core.Entity, 0, len(w.names))
	for e := range w.names {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// storeFor returns the registered store for a type, nil if none
func (w *World) storeFor(t reflect.Type) AnyStore {
	return w.stores[t]
}

// register adds a store to the registry
func (w *World) register(s AnyStore) {
	w.stores[s.Type()] = s
	w.allStores = append(w.allStores, s)
}
