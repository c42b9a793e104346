package geo

import (
	"math"

	"github.com/lixenwraith/geomap/vmath"
)

// ClientTransform maps world space to zoomed client space by a factor of 2^zoom
// With WrapX, world x is taken modulo WorldSize so the world repeats horizontally
type ClientTransform struct {
	WorldSize float64
	WrapX     bool
}

// ZoomScale returns 2^zoom
func ZoomScale(zoom float64) float64 {
	return math.Exp2(zoom)
}

// Project maps a world point to client pixels at zoom
func (t ClientTransform) Project(w vmath.Vec2, zoom float64) vmath.Vec2 {
	if t.WrapX {
		w.X = vmath.Mod(w.X, t.WorldSize)
	}
	return w.Scale(ZoomScale(zoom))
}

// Invert maps client pixels back to world space at zoom
func (t ClientTransform) Invert(c vmath.Vec2, zoom float64) vmath.Vec2 {
	w := c.Scale(1 / ZoomScale(zoom))
	if t.WrapX {
		w.X = vmath.Mod(w.X, t.WorldSize)
	}
	return w
}

// Span returns the client width of one world repetition at zoom
func (t ClientTransform) Span(zoom float64) float64 {
	return t.WorldSize * ZoomScale(zoom)
}
