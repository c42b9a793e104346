package locate

import (
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/vmath"
)

// PolygonLocator tests ring-set containment in world space, holes included
// Fragments are tested in order and the first containing fragment decides
type PolygonLocator struct{}

func (l PolygonLocator) Search(cursor vmath.Vec2, target core.Entity, h *RenderHelper) (HitResult, bool) {
	polys := engine.GetStore[component.PolygonComponent](h.World)
	w := h.Viewport.ScreenToWorld(cursor)
	var hits []HitResult
	for _, ref := range members(h.World, target) {
		poly, ok := polys.Get(ref.entity)
		if !ok {
			continue
		}
		if ContainsWorld(poly, w) {
			hits = append(hits, ref.hit(0))
		}
	}
	return l.Reduce(hits)
}

// Reduce prefers the topmost fill: all fill hits are at distance 0
func (PolygonLocator) Reduce(candidates []HitResult) (HitResult, bool) {
	return Reduce(candidates)
}

// ContainsWorld reports whether any fragment of poly contains the world point
func ContainsWorld(poly component.PolygonComponent, w vmath.Vec2) bool {
	for _, f := range poly.Fragments {
		if !f.Bounds.Contains(w) {
			continue
		}
		if vmath.RingsContain(f.Rings, w) {
			return true
		}
	}
	return false
}
