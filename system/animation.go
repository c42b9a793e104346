package system

import (
	"time"

	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/engine"
)

// AnimationSystem advances every attached animation and feeds its eased value to the animators
// Finished non-looping animations are detached after the tick
type AnimationSystem struct {
	engine.SystemBase

	animStore   *engine.Store[component.AnimationComponent]
	cameraStore *engine.Store[component.CameraComponent]
}

// NewAnimationSystem creates the animation system
func NewAnimationSystem(w *engine.World, res *engine.Resource) *AnimationSystem {
	return &AnimationSystem{
		SystemBase:  engine.NewSystemBase(w, res),
		animStore:   engine.GetStore[component.AnimationComponent](w),
		cameraStore: engine.GetStore[component.CameraComponent](w),
	}
}

func (s *AnimationSystem) Name() string { return "animation" }

func (s *AnimationSystem) Update(ctx *engine.Context, dt time.Duration) {
	for e := range s.World.Query().With(s.animStore).Iter() {
		c, _ := s.animStore.Get(e)
		if c.Anim == nil {
			continue
		}
		c.Anim.Step(dt)
		c.Anim.Evaluate()

		if s.cameraStore.Has(e) {
			s.Resource.Status.ViewportChanged = true
		} else {
			s.Resource.Status.Redraw = true
		}

		if c.Anim.Finished() {
			done := c.Anim
			ctx.RunLater(e, func() {
				// A newer animation may have replaced this one
				if cur, ok := s.animStore.Get(e); ok && cur.Anim == done {
					s.animStore.Remove(e)
				}
			})
		}
	}
}
