package system

import (
	"time"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
)

// CellSystem keeps basemap cell entities in step with the viewport
// Visible cells are reference-counted by the tracker; entered cells are fetched,
// evicted cells are removed and their fetch abandoned
// Fetch completions are marshaled back through the scheduler inbox
type CellSystem struct {
	engine.SystemBase
	layer   core.Entity
	tracker *cell.Tracker
	fetcher *cell.Fetcher
	metrics *cell.Metrics

	cells map[cell.Key]core.Entity

	cellStore  *engine.Store[component.CellComponent]
	tileStore  *engine.Store[component.TileComponent]
	layerStore *engine.Store[component.LayerComponent]
}

// NewCellSystem creates the cell system feeding the given basemap layer
func NewCellSystem(w *engine.World, res *engine.Resource, layer core.Entity, tracker *cell.Tracker, fetcher *cell.Fetcher, m *cell.Metrics) *CellSystem {
	return &CellSystem{
		SystemBase: engine.NewSystemBase(w, res),
		layer:      layer,
		tracker:    tracker,
		fetcher:    fetcher,
		metrics:    m,
		cells:      make(map[cell.Key]core.Entity),
		cellStore:  engine.GetStore[component.CellComponent](w),
		tileStore:  engine.GetStore[component.TileComponent](w),
		layerStore: engine.GetStore[component.LayerComponent](w),
	}
}

func (s *CellSystem) Name() string { return "cell" }

func (s *CellSystem) Update(ctx *engine.Context, dt time.Duration) {
	// A still camera keeps the sync point: pending keys age and evict every tick
	if !s.Resource.Status.ViewportChanged {
		if evicted := s.tracker.Flush(); len(evicted) > 0 {
			s.evict(evicted)
			s.markDirty()
		}
		return
	}
	if lc, ok := s.layerStore.Get(s.layer); !ok || !lc.Visible {
		if evicted := s.tracker.Flush(); len(evicted) > 0 {
			s.evict(evicted)
		}
		return
	}

	diff := s.tracker.Update(s.Resource.Viewport.VisibleCells())
	if diff.Empty() {
		return
	}

	for _, k := range diff.Entered {
		e, ok := s.cells[k]
		if !ok {
			e = s.World.CreateEntity("cell")
			s.cells[k] = e
			s.cellStore.Set(e, component.CellComponent{Key: k, Layer: s.layer, State: component.CellLoading})
			s.fetch(ctx, e, k)
			continue
		}
		// Failed cells retry when they come back into view
		if c, ok := s.cellStore.Get(e); ok && c.State == component.CellFailed {
			c.State = component.CellLoading
			s.cellStore.Set(e, c)
			s.fetch(ctx, e, k)
		}
	}
	s.evict(diff.Evicted)

	s.markDirty()
}

// evict drops the entities of evicted keys and abandons their fetches
func (s *CellSystem) evict(keys []cell.Key) {
	for _, k := range keys {
		e, ok := s.cells[k]
		if !ok {
			continue
		}
		delete(s.cells, k)
		s.fetcher.Abandon(k)
		if err := s.World.RemoveEntity(e); err != nil {
			core.Logger().Debug("cell_evict_missing", "key", k.String(), "error", err)
		}
	}
	s.metrics.Evicted(len(keys))
}

func (s *CellSystem) fetch(ctx *engine.Context, e core.Entity, k cell.Key) {
	c, _ := s.cellStore.Get(e)
	c.Attempts++
	s.cellStore.Set(e, c)

	// Runs on the fetch goroutine
	s.fetcher.Fetch(k, func(p cell.Payload, err error) {
		ctx.Post(e, func() { s.complete(e, k, p, err) })
	})
}

// complete applies a fetch result; engine goroutine only
func (s *CellSystem) complete(e core.Entity, k cell.Key, p cell.Payload, err error) {
	c, ok := s.cellStore.Get(e)
	if !ok || c.Key != k || s.World.IsPendingRemoval(e) {
		return
	}
	if err != nil {
		c.State = component.CellFailed
		s.cellStore.Set(e, c)
		core.Logger().Debug("cell_failed", "key", k.String(), "attempts", c.Attempts, "error", err)
	} else {
		c.State = component.CellReady
		s.cellStore.Set(e, c)
		s.tileStore.Set(e, component.TileComponent{Image: p.Image})
	}
	s.markDirty()
}

func (s *CellSystem) markDirty() {
	if lc, ok := s.layerStore.Get(s.layer); ok {
		lc.Dirty = true
		s.layerStore.Set(s.layer, lc)
	}
	s.Resource.Status.Redraw = true
}

// Entity returns the cell entity of a tracked key
func (s *CellSystem) Entity(k cell.Key) (core.Entity, bool) {
	e, ok := s.cells[k]
	return e, ok
}

// Tracker exposes the reference counter, read-only use
func (s *CellSystem) Tracker() *cell.Tracker {
	return s.tracker
}

// Close abandons every tracked cell and stops the fetcher
func (s *CellSystem) Close() {
	for _, k := range s.tracker.Reset() {
		s.fetcher.Abandon(k)
	}
	s.fetcher.Close()
}
