package system

import (
	"time"

	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/locate"
	"github.com/lixenwraith/geomap/vmath"
)

// Selection is the hover and click state shared by hit-testing and rendering
// Engine goroutine only
type Selection struct {
	Hover       locate.HitResult
	HasHover    bool
	Selected    locate.HitResult
	HasSelected bool
}

// HitTestSystem resolves the feature under the cursor across all hit-testable layers
// Hover follows the cursor; a click selects and notifies OnSelect with the hit or a miss
type HitTestSystem struct {
	engine.SystemBase
	camera    core.Entity
	selection *Selection
	helper    *locate.RenderHelper

	// OnSelect runs on the engine goroutine for every click
	OnSelect func(hit locate.HitResult, ok bool)

	lastCursor vmath.Vec2

	cameraStore *engine.Store[component.CameraComponent]
	layerStore  *engine.Store[component.LayerComponent]
}

// NewHitTestSystem creates the hit-test system writing into sel
func NewHitTestSystem(w *engine.World, res *engine.Resource, camera core.Entity, sel *Selection) *HitTestSystem {
	return &HitTestSystem{
		SystemBase:  engine.NewSystemBase(w, res),
		camera:      camera,
		selection:   sel,
		helper:      locate.NewRenderHelper(w, res.Viewport),
		cameraStore: engine.GetStore[component.CameraComponent](w),
		layerStore:  engine.GetStore[component.LayerComponent](w),
	}
}

func (s *HitTestSystem) Name() string { return "hittest" }

func (s *HitTestSystem) Update(ctx *engine.Context, dt time.Duration) {
	cam, ok := s.cameraStore.Get(s.camera)
	if !ok {
		return
	}

	if cam.Deselect {
		cam.Deselect = false
		if s.selection.HasSelected {
			s.selection.Selected, s.selection.HasSelected = locate.HitResult{}, false
			s.Resource.Status.Redraw = true
		}
	}

	if cam.Click {
		cam.Click = false
		hit, ok := s.Locate(cam.ClickPos)
		if ok != s.selection.HasSelected || hit != s.selection.Selected {
			s.Resource.Status.Redraw = true
		}
		s.selection.Selected, s.selection.HasSelected = hit, ok
		if s.OnSelect != nil {
			s.OnSelect(hit, ok)
		}
	}
	s.cameraStore.Set(s.camera, cam)

	moved := !cam.Cursor.Equal(s.lastCursor)
	s.lastCursor = cam.Cursor
	if !cam.CursorIn {
		if s.selection.HasHover {
			s.selection.Hover, s.selection.HasHover = locate.HitResult{}, false
			s.Resource.Status.Redraw = true
		}
		return
	}
	if !moved && !s.Resource.Status.ViewportChanged && !s.Resource.Status.Redraw {
		return
	}
	hit, ok := s.Locate(cam.Cursor)
	if ok != s.selection.HasHover || hit != s.selection.Hover {
		s.selection.Hover, s.selection.HasHover = hit, ok
		s.Resource.Status.Redraw = true
	}
}

// Locate returns the best hit at p over every visible layer
func (s *HitTestSystem) Locate(p vmath.Vec2) (locate.HitResult, bool) {
	var candidates []locate.HitResult
	for _, ref := range sortedLayers(s.World, s.layerStore) {
		if !ref.layer.Visible {
			continue
		}
		loc := locate.ForKind(ref.layer.Kind)
		if loc == nil {
			continue
		}
		if hit, ok := loc.Search(p, ref.entity, s.helper); ok {
			candidates = append(candidates, hit)
		}
	}
	return locate.Reduce(candidates)
}
