package render

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/lixenwraith/geomap/vmath"
)

// Canvas is the drawing surface the map renders into, touched only from the engine goroutine
// Coordinates are client pixels; a path accumulates until Fill or Stroke consumes it
type Canvas interface {
	Size() (width, height int)
	Clear(c gg.RGBA)

	MoveTo(p vmath.Vec2)
	LineTo(p vmath.Vec2)
	ClosePath()
	Circle(center vmath.Vec2, radius float64)

	// Fill paints and clears the current path; evenOdd selects the fill rule for holes
	Fill(c gg.RGBA, evenOdd bool) error
	// Stroke outlines and clears the current path
	Stroke(c gg.RGBA, width float64) error

	Text(s string, at vmath.Vec2, c gg.RGBA)
	// Image blits the src region of img scaled into dst
	Image(img image.Image, src image.Rectangle, dst vmath.Rect, opacity float64)

	// Snapshot captures the current frame
	Snapshot() image.Image
}

// Resizer is implemented by canvases that follow viewport resizes
type Resizer interface {
	Resize(width, height int) error
}
