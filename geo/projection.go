package geo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/vmath"
)

// Projection is a cartographic projection between geographic degrees and projected units
// Projected y grows northward; the world fit flips it to grow downward
type Projection interface {
	Name() string
	Project(p LonLat) vmath.Vec2
	// Invert returns false for points outside the projected domain
	Invert(v vmath.Vec2) (LonLat, bool)
	// Domain is the valid geographic rectangle
	Domain() BBox
	// Extent is the projected rectangle of Domain
	Extent() vmath.Rect
}

// Mercator is the spherical (web) Mercator projection, domain clipped at ±MercatorMaxLat
type Mercator struct{}

// MercatorMaxLat makes the projected domain square
const MercatorMaxLat = 85.05112877980659

func (Mercator) Name() string { return "mercator" }

func (Mercator) Project(p LonLat) vmath.Vec2 {
	lat := vmath.Clamp(p.Lat, -MercatorMaxLat, MercatorMaxLat)
	phi := vmath.Radians(lat)
	return vmath.V2(vmath.Radians(p.Lon), math.Log(math.Tan(math.Pi/4+phi/2)))
}

func (Mercator) Invert(v vmath.Vec2) (LonLat, bool) {
	lat := vmath.Degrees(2*math.Atan(math.Exp(v.Y)) - math.Pi/2)
	return LL(vmath.Degrees(v.X), lat), math.Abs(v.X) <= math.Pi+1e-9
}

func (Mercator) Domain() BBox {
	return BBox{MinLon: -180, MinLat: -MercatorMaxLat, MaxLon: 180, MaxLat: MercatorMaxLat}
}

func (Mercator) Extent() vmath.Rect {
	return vmath.R(-math.Pi, -math.Pi, math.Pi, math.Pi)
}

// Equirectangular is the plate carrée projection
type Equirectangular struct{}

func (Equirectangular) Name() string { return "equirectangular" }

func (Equirectangular) Project(p LonLat) vmath.Vec2 {
	return vmath.V2(vmath.Radians(p.Lon), vmath.Radians(p.Lat))
}

func (Equirectangular) Invert(v vmath.Vec2) (LonLat, bool) {
	ok := math.Abs(v.X) <= math.Pi+1e-9 && math.Abs(v.Y) <= math.Pi/2+1e-9
	return LL(vmath.Degrees(v.X), vmath.Degrees(v.Y)), ok
}

func (Equirectangular) Domain() BBox { return World }

func (Equirectangular) Extent() vmath.Rect {
	return vmath.R(-math.Pi, -math.Pi/2, math.Pi, math.Pi/2)
}

// ConicEqualArea is the Albers equal-area conic projection
type ConicEqualArea struct {
	lambda0, n, c, rho0 float64
	extent              vmath.Rect
}

// NewConicEqualArea builds an Albers projection with standard parallels phi1, phi2,
// origin latitude lat0 and central meridian lon0 (degrees)
func NewConicEqualArea(phi1, phi2, lat0, lon0 float64) (*ConicEqualArea, error) {
	s1, s2 := math.Sin(vmath.Radians(phi1)), math.Sin(vmath.Radians(phi2))
	n := (s1 + s2) / 2
	if math.Abs(n) < 1e-9 {
		return nil, core.NewConfigurationError("parallels", [2]float64{phi1, phi2}, "symmetric about the equator")
	}
	c := math.Cos(vmath.Radians(phi1))*math.Cos(vmath.Radians(phi1)) + 2*n*s1
	p := &ConicEqualArea{
		lambda0: vmath.Radians(lon0),
		n:       n,
		c:       c,
		rho0:    math.Sqrt(c-2*n*math.Sin(vmath.Radians(lat0))) / n,
	}
	p.extent = sampleExtent(p, p.Domain())
	return p, nil
}

// DefaultConicEqualArea is the conterminous-US setup: parallels 29.5/45.5, origin 23N 96W
func DefaultConicEqualArea() *ConicEqualArea {
	p, _ := NewConicEqualArea(29.5, 45.5, 23, -96)
	return p
}

func (p *ConicEqualArea) Name() string { return "conic_equal_area" }

func (p *ConicEqualArea) Project(ll LonLat) vmath.Vec2 {
	theta := p.n * wrapLon(vmath.Radians(ll.Lon)-p.lambda0)
	rho := math.Sqrt(math.Max(p.c-2*p.n*math.Sin(vmath.Radians(ll.Lat)), 0)) / p.n
	return vmath.V2(rho*math.Sin(theta), p.rho0-rho*math.Cos(theta))
}

func (p *ConicEqualArea) Invert(v vmath.Vec2) (LonLat, bool) {
	dy := p.rho0 - v.Y
	rho := math.Copysign(math.Hypot(v.X, dy), p.n)
	x, y := v.X, dy
	if p.n < 0 {
		x, y = -x, -y
	}
	theta := math.Atan2(x, y)
	s := (p.c - rho*rho*p.n*p.n) / (2 * p.n)
	ok := math.Abs(s) <= 1+1e-9 && math.Abs(theta/p.n) <= math.Pi+1e-9
	phi := math.Asin(vmath.Clamp(s, -1, 1))
	return LL(vmath.Degrees(wrapLon(p.lambda0+theta/p.n)), vmath.Degrees(phi)), ok
}

func (p *ConicEqualArea) Domain() BBox { return World }

func (p *ConicEqualArea) Extent() vmath.Rect { return p.extent }

// AzimuthalEqualArea is the Lambert azimuthal equal-area projection about a center point
type AzimuthalEqualArea struct {
	lambda0, sinPhi1, cosPhi1 float64
}

// NewAzimuthalEqualArea centers the projection on c
func NewAzimuthalEqualArea(c LonLat) *AzimuthalEqualArea {
	phi1 := vmath.Radians(c.Lat)
	return &AzimuthalEqualArea{
		lambda0: vmath.Radians(c.Lon),
		sinPhi1: math.Sin(phi1),
		cosPhi1: math.Cos(phi1),
	}
}

func (p *AzimuthalEqualArea) Name() string { return "azimuthal_equal_area" }

func (p *AzimuthalEqualArea) Project(ll LonLat) vmath.Vec2 {
	phi := vmath.Radians(ll.Lat)
	dl := vmath.Radians(ll.Lon) - p.lambda0
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	cosDl := math.Cos(dl)
	denom := 1 + p.sinPhi1*sinPhi + p.cosPhi1*cosPhi*cosDl
	if denom <= 1e-12 {
		// Antipode maps onto the rim
		return vmath.V2(0, -2)
	}
	k := math.Sqrt(2 / denom)
	return vmath.V2(k*cosPhi*math.Sin(dl), k*(p.cosPhi1*sinPhi-p.sinPhi1*cosPhi*cosDl))
}

func (p *AzimuthalEqualArea) Invert(v vmath.Vec2) (LonLat, bool) {
	rho := v.Len()
	if rho < 1e-15 {
		return LL(vmath.Degrees(p.lambda0), vmath.Degrees(math.Asin(p.sinPhi1))), true
	}
	ok := rho <= 2+1e-9
	c := 2 * math.Asin(math.Min(rho/2, 1))
	sinC, cosC := math.Sin(c), math.Cos(c)
	phi := math.Asin(vmath.Clamp(cosC*p.sinPhi1+v.Y*sinC*p.cosPhi1/rho, -1, 1))
	lambda := p.lambda0 + math.Atan2(v.X*sinC, rho*p.cosPhi1*cosC-v.Y*p.sinPhi1*sinC)
	return LL(vmath.Degrees(wrapLon(lambda)), vmath.Degrees(phi)), ok
}

func (p *AzimuthalEqualArea) Domain() BBox { return World }

func (p *AzimuthalEqualArea) Extent() vmath.Rect { return vmath.R(-2, -2, 2, 2) }

// Mollweide is the pseudo-cylindrical equal-area world projection
type Mollweide struct{}

func (Mollweide) Name() string { return "mollweide" }

func (Mollweide) Project(p LonLat) vmath.Vec2 {
	phi := vmath.Radians(vmath.Clamp(p.Lat, -90, 90))
	theta := mollweideTheta(phi)
	return vmath.V2(2*math.Sqrt2/math.Pi*vmath.Radians(p.Lon)*math.Cos(theta), math.Sqrt2*math.Sin(theta))
}

// mollweideTheta solves 2θ + sin 2θ = π sin φ by Newton iteration
func mollweideTheta(phi float64) float64 {
	if math.Abs(math.Abs(phi)-math.Pi/2) < 1e-12 {
		return phi
	}
	target := math.Pi * math.Sin(phi)
	theta := phi
	for range 50 {
		denom := 2 + 2*math.Cos(2*theta)
		if math.Abs(denom) < 1e-12 {
			break
		}
		delta := (2*theta + math.Sin(2*theta) - target) / denom
		theta -= delta
		if math.Abs(delta) < 1e-13 {
			break
		}
	}
	return theta
}

func (Mollweide) Invert(v vmath.Vec2) (LonLat, bool) {
	s := v.Y / math.Sqrt2
	if math.Abs(s) > 1+1e-9 {
		return LonLat{}, false
	}
	theta := math.Asin(vmath.Clamp(s, -1, 1))
	phi := math.Asin(vmath.Clamp((2*theta+math.Sin(2*theta))/math.Pi, -1, 1))
	cosT := math.Cos(theta)
	if cosT < 1e-12 {
		return LL(0, vmath.Degrees(phi)), math.Abs(v.X) < 1e-9
	}
	lambda := math.Pi * v.X / (2 * math.Sqrt2 * cosT)
	return LL(vmath.Degrees(lambda), vmath.Degrees(phi)), math.Abs(lambda) <= math.Pi+1e-9
}

func (Mollweide) Domain() BBox { return World }

func (Mollweide) Extent() vmath.Rect {
	return vmath.R(-2*math.Sqrt2, -math.Sqrt2, 2*math.Sqrt2, math.Sqrt2)
}

// sampleExtent bounds the projected image of domain by dense sampling of its edges and interior
func sampleExtent(p Projection, d BBox) vmath.Rect {
	const steps = 180
	var r vmath.Rect
	first := true
	for i := 0; i <= steps; i++ {
		for j := 0; j <= steps; j++ {
			ll := LL(
				vmath.Lerp(d.MinLon, d.MaxLon, float64(i)/steps),
				vmath.Lerp(d.MinLat, d.MaxLat, float64(j)/steps),
			)
			v := p.Project(ll)
			if first {
				r = vmath.Rect{Min: v, Max: v}
				first = false
				continue
			}
			r = r.Extend(v)
		}
	}
	return r
}

var projections = map[string]func() Projection{
	"mercator":             func() Projection { return Mercator{} },
	"equirectangular":      func() Projection { return Equirectangular{} },
	"conic_equal_area":     func() Projection { return DefaultConicEqualArea() },
	"azimuthal_equal_area": func() Projection { return NewAzimuthalEqualArea(LL(0, 0)) },
	"mollweide":            func() Projection { return Mollweide{} },
}

// ByName returns a projection with default parameters
// Accepts "albers" and "lambert" as aliases
func ByName(name string) (Projection, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "albers":
		key = "conic_equal_area"
	case "lambert":
		key = "azimuthal_equal_area"
	case "":
		key = "mercator"
	}
	ctor, ok := projections[key]
	if !ok {
		return nil, core.NewConfigurationError("projection", name, fmt.Sprintf("unknown, want one of %v", Names()))
	}
	return ctor(), nil
}

// Names lists the registered projection names, sorted
func Names() []string {
	names := make([]string, 0, len(projections))
	for n := range projections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
