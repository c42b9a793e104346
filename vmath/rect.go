package vmath

import "math"

// Rect is an axis-aligned rectangle, Min inclusive, Max exclusive for tiling purposes
type Rect struct {
	Min, Max Vec2
}

// R builds a normalized rect from two corners
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{
		Min: Vec2{math.Min(x0, x1), math.Min(y0, y1)},
		Max: Vec2{math.Max(x0, x1), math.Max(y0, y1)},
	}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Center() Vec2    { return LerpVec2(r.Min, r.Max, 0.5) }
func (r Rect) Empty() bool     { return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y }

// Contains reports whether p lies inside r, edges inclusive
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether the two rects overlap
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X && r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Union returns the smallest rect covering both
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Vec2{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Vec2{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Extend grows r to include p
func (r Rect) Extend(p Vec2) Rect {
	return r.Union(Rect{Min: p, Max: p})
}

// BoundsOf returns the bounding rect of the points, ok=false for an empty slice
func BoundsOf(pts []Vec2) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r = r.Extend(p)
	}
	return r, true
}
