package system

import (
	"math"
	"time"

	"github.com/lixenwraith/geomap/anim"
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/event"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/vmath"
)

// zoomAnimation tags the camera transition so a newer gesture replaces it
const zoomAnimation = "zoom"

// InputSystem drains the input queue and drives the camera: drag pan, wheel and key zoom, resize
// It is the only system that mutates the viewport directly
type InputSystem struct {
	engine.SystemBase
	camera core.Entity

	// ZoomDuration is the zoom transition length; zero jumps immediately
	ZoomDuration time.Duration

	cameraStore *engine.Store[component.CameraComponent]
	animStore   *engine.Store[component.AnimationComponent]
}

// NewInputSystem creates the input system driving the given camera entity
func NewInputSystem(w *engine.World, res *engine.Resource, camera core.Entity) *InputSystem {
	return &InputSystem{
		SystemBase:   engine.NewSystemBase(w, res),
		camera:       camera,
		ZoomDuration: parameter.ZoomDuration,
		cameraStore:  engine.GetStore[component.CameraComponent](w),
		animStore:    engine.GetStore[component.AnimationComponent](w),
	}
}

func (s *InputSystem) Name() string { return "input" }

func (s *InputSystem) Update(ctx *engine.Context, dt time.Duration) {
	events := s.Resource.Input.Consume()
	if len(events) == 0 {
		return
	}
	cam := engine.MustGetComponent[component.CameraComponent](s.World, s.camera)
	for _, ev := range events {
		s.handle(&cam, ev)
	}
	s.cameraStore.Set(s.camera, cam)
}

func (s *InputSystem) handle(cam *component.CameraComponent, ev event.InputEvent) {
	vp := s.Resource.Viewport
	switch ev.Kind {
	case event.KindPointerMove:
		cam.Cursor, cam.CursorIn = ev.Pos, true
		if !cam.Dragging {
			return
		}
		d := ev.Pos.Sub(cam.DragLast)
		if !cam.DragMoved && d.Len() < parameter.DragThreshold {
			return
		}
		cam.DragMoved = true
		cam.DragLast = ev.Pos
		s.stopZoom(cam)
		vp.Pan(d.X, d.Y)
		s.changed()

	case event.KindPointerDown:
		cam.Cursor, cam.CursorIn = ev.Pos, true
		cam.Dragging, cam.DragMoved, cam.DragLast = true, false, ev.Pos

	case event.KindPointerUp:
		cam.Cursor = ev.Pos
		if cam.Dragging && !cam.DragMoved {
			cam.Click, cam.ClickPos = true, ev.Pos
		}
		cam.Dragging, cam.DragMoved = false, false

	case event.KindScroll:
		cam.Cursor, cam.CursorIn = ev.Pos, true
		s.zoomBy(cam, ev.Pos, ev.Scroll*parameter.ZoomStep)

	case event.KindKey:
		s.key(cam, ev.Key)

	case event.KindResize:
		vp.Resize(ev.Width, ev.Height)
		s.changed()

	case event.KindLeave:
		cam.CursorIn, cam.Dragging, cam.DragMoved = false, false, false
	}
}

func (s *InputSystem) key(cam *component.CameraComponent, k event.Key) {
	vp := s.Resource.Viewport
	center := vp.Size().Scale(0.5)
	switch k {
	case event.KeyLeft:
		vp.Pan(parameter.KeyPanPixels, 0)
	case event.KeyRight:
		vp.Pan(-parameter.KeyPanPixels, 0)
	case event.KeyUp:
		vp.Pan(0, parameter.KeyPanPixels)
	case event.KeyDown:
		vp.Pan(0, -parameter.KeyPanPixels)
	case event.KeyZoomIn:
		s.zoomBy(cam, center, parameter.ZoomStep)
		return
	case event.KeyZoomOut:
		s.zoomBy(cam, center, -parameter.ZoomStep)
		return
	case event.KeyEscape:
		cam.Deselect = true
		return
	default:
		return
	}
	s.stopZoom(cam)
	s.changed()
}

// zoomBy starts an eased transition toward the accumulated target zoom, anchored at p
func (s *InputSystem) zoomBy(cam *component.CameraComponent, p vmath.Vec2, delta float64) {
	vp := s.Resource.Viewport
	base := vp.Zoom()
	if s.animStore.Has(s.camera) {
		base = cam.TargetZoom
	}
	lo, hi := vp.ZoomRange()
	target := vmath.Clamp(base+delta, lo, hi)
	if math.Abs(target-vp.Zoom()) < 1e-9 {
		s.stopZoom(cam)
		return
	}
	cam.TargetZoom = target
	if s.ZoomDuration <= 0 {
		s.stopZoom(cam)
		vp.ZoomAt(p, target)
		cam.TargetZoom = target
		s.changed()
		return
	}

	from := vp.Zoom()
	a := anim.New(s.ZoomDuration, anim.EaseOutCubic, anim.AnimatorFunc(func(t float64) {
		vp.ZoomAt(p, vmath.Lerp(from, target, t))
	}))
	s.animStore.Set(s.camera, component.AnimationComponent{Anim: a, Name: zoomAnimation})
	s.changed()
}

func (s *InputSystem) stopZoom(cam *component.CameraComponent) {
	if c, ok := s.animStore.Get(s.camera); ok && c.Name == zoomAnimation {
		s.animStore.Remove(s.camera)
		cam.TargetZoom = s.Resource.Viewport.Zoom()
	}
}

func (s *InputSystem) changed() {
	s.Resource.Status.ViewportChanged = true
}
