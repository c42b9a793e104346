package engine

import (
	"iter"
	"reflect"
	"slices"
	"sort"

	"github.com/lixenwraith/geomap/core"
)

// QueryBuilder provides a fluent interface for querying entities based on component intersection
// It optimizes by starting with the smallest store and filtering through larger ones
// Results exclude entities marked for removal and are sorted by id, independent of With order
// A query without filters matches every live entity
type QueryBuilder struct {
	world    *World
	stores   []AnyStore
	missing  bool // A requested type has no store: result is empty
	executed bool
	results  []core.Entity
}

// Query creates a new QueryBuilder
//
// Example:
//
//	entities := world.Query().
//	    With(engine.GetStore[component.Point](world)).
//	    With(engine.GetStore[component.Member](world)).
//	    Execute()
func (w *World) Query() *QueryBuilder {
	return &QueryBuilder{
		world:  w,
		stores: make([]AnyStore, 0, 4),
	}
}

// With adds a component store to the query filter
// Panics if called after Execute()
func (qb *QueryBuilder) With(store AnyStore) *QueryBuilder {
	if qb.executed {
		panic("query already executed - cannot modify after Execute()")
	}
	qb.stores = append(qb.stores, store)
	return qb
}

// WithType adds a filter by registry type; an unregistered type yields an empty result
func (qb *QueryBuilder) WithType(t reflect.Type) *QueryBuilder {
	s := qb.world.storeFor(t)
	if s == nil {
		qb.missing = true
		return qb
	}
	return qb.With(s)
}

// Execute runs the query and returns the matching entities
// Calling Execute() multiple times returns the cached result
func (qb *QueryBuilder) Execute() []core.Entity {
	if qb.executed {
		return qb.results
	}
	qb.executed = true

	if qb.missing {
		qb.results = make([]core.Entity, 0)
		return qb.results
	}
	if len(qb.stores) == 0 {
		qb.results = slices.DeleteFunc(qb.world.Entities(), qb.world.IsPendingRemoval)
		return qb.results
	}

	// Sort stores by count (ascending) for optimal intersection performance
	stores := slices.Clone(qb.stores)
	sort.SliceStable(stores, func(i, j int) bool {
		return stores[i].Count() < stores[j].Count()
	})

	candidates := stores[0].All()
	filtered := candidates[:0]
	for _, e := range candidates {
		if qb.world.IsPendingRemoval(e) {
			continue
		}
		keep := true
		for _, s := range stores[1:] {
			if !s.Has(e) {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, e)
		}
	}
	slices.Sort(filtered)

	qb.results = filtered
	return qb.results
}

// Iter snapshots the matching set now and yields each entity that still matches when reached
// Entities added after the call are not yielded; entities removed or stripped of a
// queried component earlier in the same pass are skipped
func (qb *QueryBuilder) Iter() iter.Seq[core.Entity] {
	snapshot := slices.Clone(qb.Execute())
	stores := qb.stores
	w := qb.world
	return func(yield func(core.Entity) bool) {
		for _, e := range snapshot {
			if !w.Alive(e) {
				continue
			}
			matched := true
			for _, s := range stores {
				if !s.Has(e) {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// QueryTypes returns the entities holding every listed component type
// No types matches every live entity
func (w *World) QueryTypes(types ...reflect.Type) []core.Entity {
	qb := w.Query()
	for _, t := range types {
		qb.WithType(t)
	}
	return qb.Execute()
}
