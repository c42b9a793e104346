package vmath

import "math"

// Vec2 is a 2D point or displacement in float64
type Vec2 struct {
	X, Y float64
}

// V2 is shorthand for Vec2{x, y}
func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2   { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64     { return v.X*o.X + v.Y*o.Y }
func (v Vec2) LenSq() float64         { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Len() float64           { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64    { return v.Sub(o).Len() }
func (v Vec2) Equal(o Vec2) bool      { return v.X == o.X && v.Y == o.Y }
func (v Vec2) Near(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Lerp interpolates between a and b, t=0 -> a, t=1 -> b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpVec2 interpolates component-wise
func LerpVec2(a, b Vec2, t float64) Vec2 {
	return Vec2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mod returns a floored modulo in [0, m) for m > 0
func Mod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}
