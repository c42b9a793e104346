package locate

import (
	"math"

	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/vmath"
)

// PieAngles partitions 2π proportionally to |values|; all-zero values share it equally
func PieAngles(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	var total float64
	for _, v := range values {
		total += math.Abs(v)
	}
	out := make([]float64, n)
	for i, v := range values {
		if total == 0 {
			out[i] = vmath.TwoPi / float64(n)
			continue
		}
		out[i] = vmath.TwoPi * math.Abs(v) / total
	}
	return out
}

// SectorAt returns the wedge containing angle (radians from 12 o'clock, counter-clockwise),
// -1 when there are no wedges
func SectorAt(angles []float64, angle float64) int {
	if len(angles) == 0 {
		return -1
	}
	angle = vmath.NormalizeAngle(angle)
	var start float64
	for i, a := range angles {
		if angle >= start && angle < start+a {
			return i
		}
		start += a
	}
	// Rounding at the 2π seam
	return len(angles) - 1
}

// PieLocator hits the wedge under the cursor within [Inner, Radius] of the pie center
type PieLocator struct{}

func (l PieLocator) Search(cursor vmath.Vec2, target core.Entity, h *RenderHelper) (HitResult, bool) {
	pies := engine.GetStore[component.PieComponent](h.World)
	var hits []HitResult
	for _, ref := range members(h.World, target) {
		pie, ok := pies.Get(ref.entity)
		if !ok {
			continue
		}
		center := h.Viewport.WorldToScreen(pie.World)
		if sector, r, ok := PieHit(pie, center, cursor); ok {
			hit := ref.hit(r)
			hit.Sector = sector
			hits = append(hits, hit)
		}
	}
	return l.Reduce(hits)
}

func (PieLocator) Reduce(candidates []HitResult) (HitResult, bool) {
	return Reduce(candidates)
}

// PieHit tests cursor against a pie drawn at center, returning the wedge and the radial distance
func PieHit(pie component.PieComponent, center, cursor vmath.Vec2) (sector int, r float64, ok bool) {
	r = cursor.Dist(center)
	if r > pie.Radius || (pie.Inner > 0 && r < pie.Inner) {
		return -1, r, false
	}
	sector = SectorAt(PieAngles(pie.Values), vmath.ScreenPolarAngle(center, cursor))
	return sector, r, sector >= 0
}
