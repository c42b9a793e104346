package engine

import (
	"time"

	"github.com/lixenwraith/geomap/event"
	"github.com/lixenwraith/geomap/geo"
)

// Resource holds singleton engine state shared by systems, owned by the map runtime
type Resource struct {
	Time     *TimeResource
	Viewport *geo.Viewport
	Input    *event.Queue
	Status   *StatusResource
}

// NewResource wires the singleton resources around a viewport and input queue
func NewResource(vp *geo.Viewport, input *event.Queue) *Resource {
	return &Resource{
		Time:     &TimeResource{},
		Viewport: vp,
		Input:    input,
		Status:   &StatusResource{ViewportChanged: true, Loading: true},
	}
}

// TimeResource is updated by the Scheduler at the start of each tick
type TimeResource struct {
	// Elapsed is the accumulated tick time since start
	Elapsed time.Duration

	// Delta is the duration handed to systems this tick
	Delta time.Duration

	// Tick is the current tick number, starting at 1
	Tick uint64
}

// Update modifies TimeResource fields in-place (zero allocation)
func (tr *TimeResource) Update(dt time.Duration, tick uint64) {
	tr.Elapsed += dt
	tr.Delta = dt
	tr.Tick = tick
}

// StatusResource carries cross-system flags for the current tick
type StatusResource struct {
	// ViewportChanged is raised by camera systems and cleared by the status system at tick end
	ViewportChanged bool

	// Redraw requests a repaint even when the viewport did not move
	Redraw bool

	// Loading is true while any layer awaits its first paint
	Loading bool

	// Bounds is the last reported visible geographic box
	Bounds geo.BBox
}
