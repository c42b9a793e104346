package geo

import (
	"math"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/vmath"
)

// Fitted maps a projection's extent into the square world space [0, size)²
// The smaller axis scale keeps the aspect ratio; the remainder is split evenly on both sides
// World y grows downward (north at the top)
type Fitted struct {
	proj   Projection
	size   float64
	scale  float64
	offset vmath.Vec2
	extent vmath.Rect
}

// Fit builds the linear fit of p into a world square of side worldSize
func Fit(p Projection, worldSize float64) (*Fitted, error) {
	if p == nil {
		return nil, core.NewConfigurationError("projection", nil, "missing")
	}
	if !(worldSize > 0) || math.IsInf(worldSize, 0) {
		return nil, core.NewConfigurationError("world_size", worldSize, "must be positive and finite")
	}
	ext := p.Extent()
	if ext.Empty() {
		return nil, core.NewConfigurationError("projection", p.Name(), "empty extent")
	}
	scale := math.Min(worldSize/ext.Width(), worldSize/ext.Height())
	return &Fitted{
		proj:  p,
		size:  worldSize,
		scale: scale,
		offset: vmath.V2(
			(worldSize-ext.Width()*scale)/2,
			(worldSize-ext.Height()*scale)/2,
		),
		extent: ext,
	}, nil
}

// MustFit is Fit for static setups with known-good arguments
func MustFit(p Projection) *Fitted {
	f, err := Fit(p, parameter.WorldSize)
	if err != nil {
		panic(err)
	}
	return f
}

// Project maps a geographic position into world space
func (f *Fitted) Project(ll LonLat) vmath.Vec2 {
	v := f.proj.Project(ll)
	return vmath.V2(
		f.offset.X+(v.X-f.extent.Min.X)*f.scale,
		f.offset.Y+(f.extent.Max.Y-v.Y)*f.scale,
	)
}

// Invert maps a world position back to geographic degrees
// Returns false outside the projection's valid domain
func (f *Fitted) Invert(w vmath.Vec2) (LonLat, bool) {
	v := vmath.V2(
		f.extent.Min.X+(w.X-f.offset.X)/f.scale,
		f.extent.Max.Y-(w.Y-f.offset.Y)/f.scale,
	)
	return f.proj.Invert(v)
}

// ProjectAll maps a ring or line of positions
func (f *Fitted) ProjectAll(lls []LonLat) []vmath.Vec2 {
	out := make([]vmath.Vec2, len(lls))
	for i, ll := range lls {
		out[i] = f.Project(ll)
	}
	return out
}

// ProjectBBox returns the world rect covering a geographic box, sampled along its edges
func (f *Fitted) ProjectBBox(b BBox) vmath.Rect {
	const steps = 16
	pts := make([]vmath.Vec2, 0, 4*(steps+1))
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		lon := vmath.Lerp(b.MinLon, b.MaxLon, t)
		lat := vmath.Lerp(b.MinLat, b.MaxLat, t)
		pts = append(pts,
			f.Project(LL(lon, b.MinLat)), f.Project(LL(lon, b.MaxLat)),
			f.Project(LL(b.MinLon, lat)), f.Project(LL(b.MaxLon, lat)),
		)
	}
	r, _ := vmath.BoundsOf(pts)
	return r
}

// Projection returns the underlying cartographic projection
func (f *Fitted) Projection() Projection { return f.proj }

// WorldSize returns the side of the world square
func (f *Fitted) WorldSize() float64 { return f.size }

// Scale returns world units per projected unit
func (f *Fitted) Scale() float64 { return f.scale }
