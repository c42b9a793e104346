package system

import (
	"time"

	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/geo"
)

// boundsEpsilon is the degree change below which the visible box counts as unchanged
const boundsEpsilon = 1e-9

// StatusSystem publishes the loading flag and the visible geographic box at the end of each tick
// It runs last and clears the per-tick viewport flag
type StatusSystem struct {
	engine.SystemBase

	// OnLocationChanged runs on the engine goroutine when the visible box changes
	OnLocationChanged func(geo.BBox)
	// OnLoadingChanged runs on the engine goroutine when the loading flag flips
	OnLoadingChanged func(loading bool)

	reported bool

	layerStore *engine.Store[component.LayerComponent]
}

// NewStatusSystem creates the status system
func NewStatusSystem(w *engine.World, res *engine.Resource) *StatusSystem {
	return &StatusSystem{
		SystemBase: engine.NewSystemBase(w, res),
		layerStore: engine.GetStore[component.LayerComponent](w),
	}
}

func (s *StatusSystem) Name() string { return "status" }

func (s *StatusSystem) Update(ctx *engine.Context, dt time.Duration) {
	st := s.Resource.Status

	loading := false
	for e := range s.World.Query().With(s.layerStore).Iter() {
		if lc, _ := s.layerStore.Get(e); lc.Visible && !lc.Painted {
			loading = true
			break
		}
	}
	if loading != st.Loading {
		st.Loading = loading
		core.Logger().Debug("loading_changed", "loading", loading, "tick", ctx.Tick)
		if s.OnLoadingChanged != nil {
			s.OnLoadingChanged(loading)
		}
	}

	if st.ViewportChanged {
		b := s.Resource.Viewport.VisibleBounds()
		if !s.reported || !b.Near(st.Bounds, boundsEpsilon) {
			s.reported = true
			st.Bounds = b
			if s.OnLocationChanged != nil {
				s.OnLocationChanged(b)
			}
		}
	}
	st.ViewportChanged = false
}
