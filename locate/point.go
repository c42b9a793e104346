package locate

import (
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/vmath"
)

// PointLocator hits markers whose disc, widened by the tolerance, contains the cursor
// Distance is measured to the marker center so the nearest center wins among overlaps
type PointLocator struct{}

func (l PointLocator) Search(cursor vmath.Vec2, target core.Entity, h *RenderHelper) (HitResult, bool) {
	points := engine.GetStore[component.PointComponent](h.World)
	var hits []HitResult
	for _, ref := range members(h.World, target) {
		pt, ok := points.Get(ref.entity)
		if !ok {
			continue
		}
		d := cursor.Dist(h.Viewport.WorldToScreen(pt.World))
		if d <= pt.Radius+h.Tolerance {
			hits = append(hits, ref.hit(d))
		}
	}
	return l.Reduce(hits)
}

func (PointLocator) Reduce(candidates []HitResult) (HitResult, bool) {
	return Reduce(candidates)
}

// PathLocator hits polylines within half the stroke width plus tolerance
type PathLocator struct{}

func (l PathLocator) Search(cursor vmath.Vec2, target core.Entity, h *RenderHelper) (HitResult, bool) {
	paths := engine.GetStore[component.PathComponent](h.World)
	styles := engine.GetStore[component.StyleComponent](h.World)
	var hits []HitResult
	for _, ref := range members(h.World, target) {
		path, ok := paths.Get(ref.entity)
		if !ok || len(path.World) == 0 {
			continue
		}
		width := 1.0
		if st, ok := styles.Get(ref.entity); ok && st.StrokeWidth > 0 {
			width = st.StrokeWidth
		}
		screen := make([]vmath.Vec2, len(path.World))
		for i, w := range path.World {
			screen[i] = h.Viewport.WorldToScreen(w)
		}
		d, _ := vmath.PolylineDistance(cursor, screen)
		if d <= width/2+h.Tolerance {
			hits = append(hits, ref.hit(d))
		}
	}
	return l.Reduce(hits)
}

func (PathLocator) Reduce(candidates []HitResult) (HitResult, bool) {
	return Reduce(candidates)
}
