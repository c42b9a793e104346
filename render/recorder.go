package render

import (
	"image"
	"slices"

	"github.com/gogpu/gg"

	"github.com/lixenwraith/geomap/vmath"
)

// Op identifies a recorded draw call
type Op uint8

const (
	OpClear Op = iota
	OpFill
	OpStroke
	OpCircleFill
	OpCircleStroke
	OpText
	OpImage
)

var opNames = [...]string{"clear", "fill", "stroke", "circle_fill", "circle_stroke", "text", "image"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// DrawCall is one entry of the per-frame draw sequence
type DrawCall struct {
	Op      Op
	Color   gg.RGBA
	Width   float64 // Stroke width
	EvenOdd bool
	// Subpaths of a fill or stroke, client pixels
	Paths [][]vmath.Vec2
	// Closed marks each subpath closed
	Closed []bool
	Center vmath.Vec2 // Circle center or text anchor
	Radius float64
	Text   string
	Src    image.Rectangle
	Dst    vmath.Rect
	Alpha  float64
}

// Recorder is a Canvas that keeps the draw-call sequence instead of rasterizing
// Hosts replay it onto their own surface; tests assert on it
type Recorder struct {
	width, height int
	calls         []DrawCall

	paths   [][]vmath.Vec2
	closed  []bool
	circles []circle
	last    image.Image
}

type circle struct {
	center vmath.Vec2
	radius float64
}

// NewRecorder creates a recorder reporting the given size
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

func (r *Recorder) Size() (int, int) { return r.width, r.height }

// Resize changes the reported size
func (r *Recorder) Resize(width, height int) error {
	r.width, r.height = width, height
	return nil
}

// Clear starts a new frame: previous calls are dropped
func (r *Recorder) Clear(c gg.RGBA) {
	r.calls = r.calls[:0]
	r.resetPath()
	r.calls = append(r.calls, DrawCall{Op: OpClear, Color: c})
}

func (r *Recorder) MoveTo(p vmath.Vec2) {
	r.paths = append(r.paths, []vmath.Vec2{p})
	r.closed = append(r.closed, false)
}

func (r *Recorder) LineTo(p vmath.Vec2) {
	if len(r.paths) == 0 {
		r.MoveTo(p)
		return
	}
	i := len(r.paths) - 1
	r.paths[i] = append(r.paths[i], p)
}

func (r *Recorder) ClosePath() {
	if len(r.closed) > 0 {
		r.closed[len(r.closed)-1] = true
	}
}

func (r *Recorder) Circle(center vmath.Vec2, radius float64) {
	r.circles = append(r.circles, circle{center: center, radius: radius})
}

func (r *Recorder) Fill(c gg.RGBA, evenOdd bool) error {
	r.flush(OpFill, OpCircleFill, c, 0, evenOdd)
	return nil
}

func (r *Recorder) Stroke(c gg.RGBA, width float64) error {
	r.flush(OpStroke, OpCircleStroke, c, width, false)
	return nil
}

func (r *Recorder) flush(pathOp, circleOp Op, c gg.RGBA, width float64, evenOdd bool) {
	if len(r.paths) > 0 {
		r.calls = append(r.calls, DrawCall{
			Op:      pathOp,
			Color:   c,
			Width:   width,
			EvenOdd: evenOdd,
			Paths:   r.paths,
			Closed:  r.closed,
		})
	}
	for _, ci := range r.circles {
		r.calls = append(r.calls, DrawCall{Op: circleOp, Color: c, Width: width, Center: ci.center, Radius: ci.radius})
	}
	r.resetPath()
}

func (r *Recorder) resetPath() {
	r.paths, r.closed, r.circles = nil, nil, nil
}

func (r *Recorder) Text(s string, at vmath.Vec2, c gg.RGBA) {
	r.calls = append(r.calls, DrawCall{Op: OpText, Text: s, Center: at, Color: c})
}

func (r *Recorder) Image(img image.Image, src image.Rectangle, dst vmath.Rect, opacity float64) {
	r.last = img
	r.calls = append(r.calls, DrawCall{Op: OpImage, Src: src, Dst: dst, Alpha: opacity})
}

// Snapshot returns the last blitted image; a recorder has no raster of its own
func (r *Recorder) Snapshot() image.Image {
	return r.last
}

// Calls returns a copy of the current frame's draw calls
func (r *Recorder) Calls() []DrawCall {
	return slices.Clone(r.calls)
}

// Count returns the number of calls with op
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}
