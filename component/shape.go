package component

import (
	"github.com/gogpu/gg"

	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/vmath"
)

// PointComponent is a circular marker; Radius is in client pixels
type PointComponent struct {
	Position geo.LonLat
	World    vmath.Vec2
	Radius   float64
}

// PathComponent is an open polyline
type PathComponent struct {
	Coords []geo.LonLat
	World  []vmath.Vec2
}

// Fragment is one clipped piece of a polygon: outer ring first, holes after, in world space
type Fragment struct {
	Rings  [][]vmath.Vec2
	Bounds vmath.Rect
}

// NewFragment computes the bounds of the outer ring
func NewFragment(rings [][]vmath.Vec2) Fragment {
	var b vmath.Rect
	if len(rings) > 0 {
		b, _ = vmath.BoundsOf(rings[0])
	}
	return Fragment{Rings: rings, Bounds: b}
}

// PolygonComponent is a filled area, possibly split into fragments (multi-polygons, antimeridian splits)
type PolygonComponent struct {
	Fragments []Fragment
}

// Bounds returns the union of fragment bounds
func (p PolygonComponent) Bounds() vmath.Rect {
	var r vmath.Rect
	for i, f := range p.Fragments {
		if i == 0 {
			r = f.Bounds
			continue
		}
		r = r.Union(f.Bounds)
	}
	return r
}

// PieComponent is a pie or donut marker at a geographic center
// Radius and Inner are client pixels; Inner > 0 makes a donut
type PieComponent struct {
	Center geo.LonLat
	World  vmath.Vec2
	Values []float64
	Radius float64
	Inner  float64
	Colors []gg.RGBA
}

// StyleComponent holds presentation fields; animations interpolate them
type StyleComponent struct {
	Fill        gg.RGBA
	Stroke      gg.RGBA
	StrokeWidth float64
	Opacity     float64
}

// DefaultStyle is applied to features without explicit styling
func DefaultStyle() StyleComponent {
	return StyleComponent{
		Fill:        gg.Hex("#3182bd"),
		Stroke:      gg.Hex("#08519c"),
		StrokeWidth: 1,
		Opacity:     1,
	}
}

// LabelComponent draws text next to a feature anchor
type LabelComponent struct {
	Text   string
	Offset vmath.Vec2 // Client pixels from the anchor
	Color  gg.RGBA
}
