package engine

import (
	"reflect"
	"slices"

	"github.com/lixenwraith/geomap/core"
)

// Store is a generic container for a specific component type T
// Uses sparse set pattern for cache-friendly iteration
// Single writer, no internal locking: only the engine goroutine touches stores
type Store[T any] struct {
	typ        reflect.Type
	components map[core.Entity]T
	entities   []core.Entity // Dense array of entities that have this component
	index      map[core.Entity]int
}

// NewStore creates a new component store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		typ:        reflect.TypeFor[T](),
		components: make(map[core.Entity]T),
		entities:   make([]core.Entity, 0, 64),
		index:      make(map[core.Entity]int),
	}
}

// Set inserts or updates a component for an entity
func (s *Store[T]) Set(e core.Entity, val T) {
	if _, exists := s.components[e]; !exists {
		s.index[e] = len(s.entities)
		s.entities = append(s.entities, e)
	}
	s.components[e] = val
}

// Get retrieves a component for an entity
func (s *Store[T]) Get(e core.Entity) (T, bool) {
	val, ok := s.components[e]
	return val, ok
}

// Remove deletes the component of an entity, swap-removing from the dense array
func (s *Store[T]) Remove(e core.Entity) {
	i, exists := s.index[e]
	if !exists {
		return
	}
	last := len(s.entities) - 1
	moved := s.entities[last]
	s.entities[i] = moved
	s.index[moved] = i
	s.entities = s.entities[:last]
	delete(s.index, e)
	delete(s.components, e)
}

// Has checks if entity has this component
func (s *Store[T]) Has(e core.Entity) bool {
	_, ok := s.components[e]
	return ok
}

// All returns a copy of all entities with this component type
func (s *Store[T]) All() []core.Entity {
	return slices.Clone(s.entities)
}

// Count returns number of entities with this component
func (s *Store[T]) Count() int {
	return len(s.entities)
}

// Clear removes all components from this store
func (s *Store[T]) Clear() {
	s.components = make(map[core.Entity]T)
	s.entities = s.entities[:0]
	s.index = make(map[core.Entity]int)
}

// Type returns the component type held by the store
func (s *Store[T]) Type() reflect.Type {
	return s.typ
}

// RemoveBatch deletes multiple entities in a single pass - O(n+m) vs O(n*m) for individual removes
func (s *Store[T]) RemoveBatch(entities []core.Entity) {
	if len(entities) == 0 || len(s.components) == 0 {
		return
	}

	removed := 0
	for _, e := range entities {
		if _, exists := s.components[e]; exists {
			delete(s.components, e)
			delete(s.index, e)
			removed++
		}
	}
	if removed == 0 {
		return
	}

	// Single pass compaction of entities slice, reindexing survivors
	writeIdx := 0
	for _, e := range s.entities {
		if _, keep := s.components[e]; keep {
			s.entities[writeIdx] = e
			s.index[e] = writeIdx
			writeIdx++
		}
	}
	s.entities = s.entities[:writeIdx]
}
