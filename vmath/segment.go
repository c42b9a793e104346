package vmath

import "math"

// SegmentDistance returns the distance from p to segment ab
func SegmentDistance(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.LenSq()
	if l2 == 0 {
		return p.Dist(a)
	}
	t := Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

// PolylineDistance returns the minimum distance from p to any segment of the polyline
// and the index of the closest segment, -1 for fewer than one point
func PolylineDistance(p Vec2, pts []Vec2) (float64, int) {
	switch len(pts) {
	case 0:
		return math.Inf(1), -1
	case 1:
		return p.Dist(pts[0]), 0
	}
	best, idx := math.Inf(1), -1
	for i := 0; i+1 < len(pts); i++ {
		if d := SegmentDistance(p, pts[i], pts[i+1]); d < best {
			best, idx = d, i
		}
	}
	return best, idx
}
