package engine

import (
	"reflect"

	"github.com/lixenwraith/geomap/core"
)

// GetStore returns the store for T, creating and registering it on first use
// Call once during system construction; the pointer remains valid for the world lifetime
func GetStore[T any](w *World) *Store[T] {
	t := reflect.TypeFor[T]()
	if s := w.storeFor(t); s != nil {
		return s.(*Store[T])
	}
	s := NewStore[T]()
	w.register(s)
	return s
}

// AddComponent attaches or replaces the T component of e
func AddComponent[T any](w *World, e core.Entity, v T) error {
	if !w.ContainsEntity(e) {
		return &core.LookupMiss{Entity: e, Component: reflect.TypeFor[T]().String(), Err: core.ErrEntityNotFound}
	}
	GetStore[T](w).Set(e, v)
	return nil
}

// GetComponent returns the T component of e
// Fails with a *core.LookupMiss wrapping ErrEntityNotFound or ErrComponentMissing
func GetComponent[T any](w *World, e core.Entity) (T, error) {
	var zero T
	name := reflect.TypeFor[T]().String()
	if !w.ContainsEntity(e) {
		return zero, &core.LookupMiss{Entity: e, Component: name, Err: core.ErrEntityNotFound}
	}
	s := w.storeFor(reflect.TypeFor[T]())
	if s == nil {
		return zero, &core.LookupMiss{Entity: e, Component: name, Err: core.ErrComponentMissing}
	}
	v, ok := s.(*Store[T]).Get(e)
	if !ok {
		return zero, &core.LookupMiss{Entity: e, Component: name, Err: core.ErrComponentMissing}
	}
	return v, nil
}

// MustGetComponent is GetComponent for invariants: a miss panics with the *core.LookupMiss
// Inside a system the panic becomes a RenderFault
func MustGetComponent[T any](w *World, e core.Entity) T {
	v, err := GetComponent[T](w, e)
	if err != nil {
		panic(err)
	}
	return v
}

// HasComponent reports whether e holds a T component
func HasComponent[T any](w *World, e core.Entity) bool {
	s := w.storeFor(reflect.TypeFor[T]())
	return s != nil && s.Has(e)
}

// RemoveComponent detaches the T component of e, missing components are ignored
func RemoveComponent[T any](w *World, e core.Entity) error {
	if !w.ContainsEntity(e) {
		return &core.LookupMiss{Entity: e, Component: reflect.TypeFor[T]().String(), Err: core.ErrEntityNotFound}
	}
	if s := w.storeFor(reflect.TypeFor[T]()); s != nil {
		s.Remove(e)
	}
	return nil
}

// TypeOf returns the registry key for T, used to build type-set queries
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
