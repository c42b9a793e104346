package geo

import (
	"math"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/vmath"
)

// ViewportConfig holds the initial camera state
type ViewportConfig struct {
	Width, Height    float64
	Zoom             float64
	Center           vmath.Vec2 // World space, used when HasCenter is set
	HasCenter        bool       // Unset centers the world
	MinZoom, MaxZoom float64
	HasZoomRange     bool // Unset uses the parameter zoom range
	WrapX            bool
}

// Viewport composes the world fit and the client transform around a camera
// Mutated only by camera systems on the engine goroutine
type Viewport struct {
	fit    *Fitted
	client ClientTransform

	zoom             float64
	center           vmath.Vec2
	width, height    float64
	minZoom, maxZoom float64
}

// NewViewport validates cfg and builds a viewport over fit
func NewViewport(fit *Fitted, cfg ViewportConfig) (*Viewport, error) {
	if fit == nil {
		return nil, core.NewConfigurationError("projection", nil, "missing world fit")
	}
	if !(cfg.Width > 0) || !(cfg.Height > 0) {
		return nil, core.NewConfigurationError("size", vmath.V2(cfg.Width, cfg.Height), "width and height must be positive")
	}
	if !cfg.HasZoomRange {
		cfg.MinZoom, cfg.MaxZoom = parameter.MinZoom, parameter.MaxZoom
	}
	if cfg.MinZoom > cfg.MaxZoom || cfg.MinZoom < 0 {
		return nil, core.NewConfigurationError("zoom_range", [2]float64{cfg.MinZoom, cfg.MaxZoom}, "need 0 <= min <= max")
	}
	if math.IsNaN(cfg.Zoom) || cfg.Zoom < cfg.MinZoom || cfg.Zoom > cfg.MaxZoom {
		return nil, core.NewConfigurationError("zoom", cfg.Zoom, "outside zoom range")
	}
	size := fit.WorldSize()
	center := vmath.V2(size/2, size/2)
	if cfg.HasCenter {
		center = cfg.Center
	}
	if !vmath.R(0, 0, size, size).Contains(center) {
		return nil, core.NewConfigurationError("center", center, "outside world square")
	}
	return &Viewport{
		fit:     fit,
		client:  ClientTransform{WorldSize: size, WrapX: cfg.WrapX},
		zoom:    cfg.Zoom,
		center:  center,
		width:   cfg.Width,
		height:  cfg.Height,
		minZoom: cfg.MinZoom,
		maxZoom: cfg.MaxZoom,
	}, nil
}

func (v *Viewport) Zoom() float64           { return v.zoom }
func (v *Viewport) Center() vmath.Vec2      { return v.center }
func (v *Viewport) Size() vmath.Vec2        { return vmath.V2(v.width, v.height) }
func (v *Viewport) Fit() *Fitted            { return v.fit }
func (v *Viewport) Client() ClientTransform { return v.client }

// Scale returns client pixels per world unit
func (v *Viewport) Scale() float64 { return ZoomScale(v.zoom) }

// ZoomRange returns the allowed zoom bounds
func (v *Viewport) ZoomRange() (float64, float64) { return v.minZoom, v.maxZoom }

func (v *Viewport) half() vmath.Vec2 { return vmath.V2(v.width/2, v.height/2) }

// WorldToScreen maps a world point to viewport pixels
// With wrapping, the repetition nearest to the center is chosen
func (v *Viewport) WorldToScreen(w vmath.Vec2) vmath.Vec2 {
	d := v.client.Project(w, v.zoom).Sub(v.client.Project(v.center, v.zoom))
	if v.client.WrapX {
		span := v.client.Span(v.zoom)
		d.X = vmath.Mod(d.X+span/2, span) - span/2
	}
	return d.Add(v.half())
}

// ScreenToWorld maps viewport pixels to a world point
func (v *Viewport) ScreenToWorld(p vmath.Vec2) vmath.Vec2 {
	c := v.client.Project(v.center, v.zoom).Add(p.Sub(v.half()))
	return v.client.Invert(c, v.zoom)
}

// LonLatToScreen projects a geographic position to viewport pixels
func (v *Viewport) LonLatToScreen(ll LonLat) vmath.Vec2 {
	return v.WorldToScreen(v.fit.Project(ll))
}

// ScreenToLonLat inverts viewport pixels to a geographic position
func (v *Viewport) ScreenToLonLat(p vmath.Vec2) (LonLat, bool) {
	return v.fit.Invert(v.ScreenToWorld(p))
}

// VisibleRect returns the world-space rectangle under the viewport, unwrapped
func (v *Viewport) VisibleRect() vmath.Rect {
	h := v.half().Scale(1 / v.Scale())
	return vmath.Rect{Min: v.center.Sub(h), Max: v.center.Add(h)}
}

// VisibleBounds returns the geographic box under the viewport, clamped to the projection domain
func (v *Viewport) VisibleBounds() BBox {
	const steps = 8
	domain := v.fit.Projection().Domain()
	var b BBox
	found := false
	for i := 0; i <= steps; i++ {
		for j := 0; j <= steps; j++ {
			if i != 0 && i != steps && j != 0 && j != steps {
				continue
			}
			p := vmath.V2(v.width*float64(i)/steps, v.height*float64(j)/steps)
			w := v.ScreenToWorld(p)
			if !v.client.WrapX {
				w.X = vmath.Clamp(w.X, 0, v.client.WorldSize)
			}
			w.Y = vmath.Clamp(w.Y, 0, v.client.WorldSize)
			ll, ok := v.fit.Invert(w)
			if !ok {
				continue
			}
			if !found {
				b = BBox{MinLon: ll.Lon, MinLat: ll.Lat, MaxLon: ll.Lon, MaxLat: ll.Lat}
				found = true
				continue
			}
			b = b.Extend(ll)
		}
	}
	if !found {
		return domain
	}
	if v.client.WrapX && v.VisibleRect().Width() >= v.client.WorldSize {
		b.MinLon, b.MaxLon = domain.MinLon, domain.MaxLon
	}
	return b.Clamp(domain)
}

// CellLevel returns the quadtree level matching the current zoom
func (v *Viewport) CellLevel() int {
	level := int(math.Round(v.zoom + math.Log2(v.client.WorldSize/parameter.TileSize)))
	return min(max(level, 0), parameter.MaxCellLevel)
}

// VisibleCells returns the cell keys covering the viewport at CellLevel
func (v *Viewport) VisibleCells() []cell.Key {
	return cell.Cover(v.VisibleRect(), v.CellLevel(), v.client.WorldSize, v.client.WrapX)
}

// Pan moves the camera by a client-pixel delta; content follows the pointer
func (v *Viewport) Pan(dx, dy float64) {
	v.SetCenter(v.center.Sub(vmath.V2(dx, dy).Scale(1 / v.Scale())))
}

// SetCenter moves the camera to a world point, wrapping or clamping to the world square
func (v *Viewport) SetCenter(c vmath.Vec2) {
	size := v.client.WorldSize
	if v.client.WrapX {
		c.X = vmath.Mod(c.X, size)
	} else {
		c.X = vmath.Clamp(c.X, 0, size)
	}
	c.Y = vmath.Clamp(c.Y, 0, size)
	v.center = c
}

// SetZoom sets the zoom clamped to the allowed range, keeping the center
func (v *Viewport) SetZoom(z float64) {
	v.zoom = vmath.Clamp(z, v.minZoom, v.maxZoom)
}

// ZoomTarget returns the center and zoom that keep the world point under p fixed at zoom z
func (v *Viewport) ZoomTarget(p vmath.Vec2, z float64) (vmath.Vec2, float64) {
	z = vmath.Clamp(z, v.minZoom, v.maxZoom)
	// Unwrapped so the anchor stays on the center's repetition
	anchor := v.center.Add(p.Sub(v.half()).Scale(1 / v.Scale()))
	center := anchor.Sub(p.Sub(v.half()).Scale(1 / ZoomScale(z)))
	return center, z
}

// ZoomAt zooms to z keeping the world point under p fixed on screen
func (v *Viewport) ZoomAt(p vmath.Vec2, z float64) {
	c, z := v.ZoomTarget(p, z)
	v.zoom = z
	v.SetCenter(c)
}

// Resize changes the client size, ignoring non-positive dimensions
func (v *Viewport) Resize(w, h float64) {
	if w > 0 && h > 0 {
		v.width, v.height = w, h
	}
}

// FitBounds centers b and picks the largest zoom showing all of it
func (v *Viewport) FitBounds(b BBox) {
	r := v.fit.ProjectBBox(b)
	v.SetCenter(r.Center())
	if r.Width() <= 0 || r.Height() <= 0 {
		return
	}
	z := math.Log2(math.Min(v.width/r.Width(), v.height/r.Height()))
	v.SetZoom(math.Floor(z*4) / 4)
}
