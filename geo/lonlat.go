package geo

import (
	"fmt"
	"math"
)

// LonLat is a geographic position in degrees
type LonLat struct {
	Lon, Lat float64
}

// LL is a shorthand constructor
func LL(lon, lat float64) LonLat { return LonLat{Lon: lon, Lat: lat} }

func (p LonLat) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lon, p.Lat)
}

// Near reports whether both coordinates are within eps degrees
func (p LonLat) Near(o LonLat, eps float64) bool {
	return math.Abs(p.Lon-o.Lon) <= eps && math.Abs(p.Lat-o.Lat) <= eps
}

// BBox is a geographic bounding box in degrees
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// World is the full longitude/latitude range
var World = BBox{MinLon: -180, MinLat: -90, MaxLon: 180, MaxLat: 90}

// Contains reports whether p lies inside b, edges inclusive
func (b BBox) Contains(p LonLat) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon && p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// Center returns the midpoint of b
func (b BBox) Center() LonLat {
	return LonLat{Lon: (b.MinLon + b.MaxLon) / 2, Lat: (b.MinLat + b.MaxLat) / 2}
}

// Extend grows b to include p
func (b BBox) Extend(p LonLat) BBox {
	return BBox{
		MinLon: math.Min(b.MinLon, p.Lon),
		MinLat: math.Min(b.MinLat, p.Lat),
		MaxLon: math.Max(b.MaxLon, p.Lon),
		MaxLat: math.Max(b.MaxLat, p.Lat),
	}
}

// Clamp restricts b to o
func (b BBox) Clamp(o BBox) BBox {
	return BBox{
		MinLon: math.Max(b.MinLon, o.MinLon),
		MinLat: math.Max(b.MinLat, o.MinLat),
		MaxLon: math.Min(b.MaxLon, o.MaxLon),
		MaxLat: math.Min(b.MaxLat, o.MaxLat),
	}
}

// Valid reports whether b is non-empty with ordered corners
func (b BBox) Valid() bool {
	return b.MinLon < b.MaxLon && b.MinLat < b.MaxLat
}

// Near compares corners within eps degrees
func (b BBox) Near(o BBox, eps float64) bool {
	return LL(b.MinLon, b.MinLat).Near(LL(o.MinLon, o.MinLat), eps) &&
		LL(b.MaxLon, b.MaxLat).Near(LL(o.MaxLon, o.MaxLat), eps)
}

func (b BBox) String() string {
	return fmt.Sprintf("[%.4f, %.4f, %.4f, %.4f]", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// wrapLon maps a longitude in radians into [-π, π)
func wrapLon(lambda float64) float64 {
	return math.Mod(math.Mod(lambda+math.Pi, 2*math.Pi)+2*math.Pi, 2*math.Pi) - math.Pi
}
