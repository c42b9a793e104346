package engine

import "time"

// System is a named per-frame logic unit
// Systems keep only entity ids across ticks: entities may vanish between ticks
type System interface {
	Name() string
	Update(ctx *Context, dt time.Duration)
}

// SystemBase provides common dependency for all systems
// Embed in system struct to eliminate boilerplate
type SystemBase struct {
	World    *World
	Resource *Resource
}

// NewSystemBase initializes base dependency from world
// Call once in system constructor
func NewSystemBase(w *World, r *Resource) SystemBase {
	return SystemBase{World: w, Resource: r}
}
