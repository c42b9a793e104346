package render

import (
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/locate"
	"github.com/lixenwraith/geomap/vmath"
)

// Palette colors pie wedges that carry no explicit colors
var Palette = []gg.RGBA{
	gg.Hex("#1f77b4"), gg.Hex("#ff7f0e"), gg.Hex("#2ca02c"), gg.Hex("#d62728"), gg.Hex("#9467bd"),
	gg.Hex("#8c564b"), gg.Hex("#e377c2"), gg.Hex("#7f7f7f"), gg.Hex("#bcbd22"), gg.Hex("#17becf"),
}

// PlaceholderColor fills cells with no ready image or ancestor
var PlaceholderColor = gg.Hex("#e8e8e8")

// arcStep is the maximum angle between sampled arc vertices
const arcStep = math.Pi / 32

// TileRect returns the client rect of a cell, choosing the wrapped repetition nearest the center
func TileRect(vp *geo.Viewport, key cell.Key) vmath.Rect {
	b := key.Bounds(vp.Fit().WorldSize())
	c := vp.WorldToScreen(b.Center())
	half := vmath.V2(b.Width(), b.Height()).Scale(vp.Scale() / 2)
	return vmath.Rect{Min: c.Sub(half), Max: c.Add(half)}
}

// DrawTile blits a ready cell image over its rect
func DrawTile(c Canvas, vp *geo.Viewport, key cell.Key, img image.Image) {
	c.Image(img, img.Bounds(), TileRect(vp, key), 1)
}

// DrawPlaceholder covers a cell still loading: the matching region of the nearest ready
// ancestor when one exists, a flat fill otherwise
func DrawPlaceholder(c Canvas, vp *geo.Viewport, key, ancestor cell.Key, img image.Image) {
	dst := TileRect(vp, key)
	if img != nil && ancestor.Contains(key) && ancestor.Level() < key.Level() {
		if src, ok := subRegion(img.Bounds(), key, ancestor); ok {
			c.Image(img, src, dst, 1)
			return
		}
	}
	rectPath(c, dst)
	_ = c.Fill(PlaceholderColor, false)
}

// subRegion returns the part of an ancestor image covering key, false below one pixel
func subRegion(b image.Rectangle, key, ancestor cell.Key) (image.Rectangle, bool) {
	kx, ky, kl := key.Tile()
	ax, ay, al := ancestor.Tile()
	depth := kl - al
	n := 1 << depth
	rx, ry := kx-ax<<depth, ky-ay<<depth
	w, h := b.Dx()/n, b.Dy()/n
	if w < 1 || h < 1 {
		return image.Rectangle{}, false
	}
	min := b.Min.Add(image.Pt(rx*w, ry*h))
	return image.Rectangle{Min: min, Max: min.Add(image.Pt(w, h))}, true
}

func rectPath(c Canvas, r vmath.Rect) {
	c.MoveTo(r.Min)
	c.LineTo(vmath.V2(r.Max.X, r.Min.Y))
	c.LineTo(r.Max)
	c.LineTo(vmath.V2(r.Min.X, r.Max.Y))
	c.ClosePath()
}

func withOpacity(col gg.RGBA, opacity float64) gg.RGBA {
	col.A *= vmath.Clamp(opacity, 0, 1)
	return col
}

// DrawPoint draws a filled, outlined marker
func DrawPoint(c Canvas, vp *geo.Viewport, pt component.PointComponent, st component.StyleComponent) error {
	center := vp.WorldToScreen(pt.World)
	c.Circle(center, pt.Radius)
	if err := c.Fill(withOpacity(st.Fill, st.Opacity), false); err != nil {
		return err
	}
	if st.StrokeWidth <= 0 {
		return nil
	}
	c.Circle(center, pt.Radius)
	return c.Stroke(withOpacity(st.Stroke, st.Opacity), st.StrokeWidth)
}

// DrawPath strokes a polyline
func DrawPath(c Canvas, vp *geo.Viewport, path component.PathComponent, st component.StyleComponent) error {
	if len(path.World) < 2 {
		return nil
	}
	c.MoveTo(vp.WorldToScreen(path.World[0]))
	for _, w := range path.World[1:] {
		c.LineTo(vp.WorldToScreen(w))
	}
	return c.Stroke(withOpacity(st.Stroke, st.Opacity), math.Max(st.StrokeWidth, 1))
}

// DrawPolygon fills every fragment with the even-odd rule and outlines it
func DrawPolygon(c Canvas, vp *geo.Viewport, poly component.PolygonComponent, st component.StyleComponent) error {
	trace := func() {
		for _, f := range poly.Fragments {
			for _, ring := range f.Rings {
				if len(ring) < 3 {
					continue
				}
				c.MoveTo(vp.WorldToScreen(ring[0]))
				for _, w := range ring[1:] {
					c.LineTo(vp.WorldToScreen(w))
				}
				c.ClosePath()
			}
		}
	}
	trace()
	if err := c.Fill(withOpacity(st.Fill, st.Opacity), true); err != nil {
		return err
	}
	if st.StrokeWidth <= 0 {
		return nil
	}
	trace()
	return c.Stroke(withOpacity(st.Stroke, st.Opacity), st.StrokeWidth)
}

// DrawPie draws one wedge per value, starting at 12 o'clock and turning counter-clockwise
// Wedge angles match locate.PieAngles so hit-testing agrees with the picture
func DrawPie(c Canvas, vp *geo.Viewport, pie component.PieComponent, st component.StyleComponent) error {
	center := vp.WorldToScreen(pie.World)
	colors := pie.Colors
	if len(colors) == 0 {
		colors = Palette
	}

	var start float64
	for i, span := range locate.PieAngles(pie.Values) {
		if span <= 0 {
			continue
		}
		wedgePath(c, center, pie.Radius, pie.Inner, start, start+span)
		if err := c.Fill(withOpacity(colors[i%len(colors)], st.Opacity), false); err != nil {
			return err
		}
		if st.StrokeWidth > 0 {
			wedgePath(c, center, pie.Radius, pie.Inner, start, start+span)
			if err := c.Stroke(withOpacity(st.Stroke, st.Opacity), st.StrokeWidth); err != nil {
				return err
			}
		}
		start += span
	}
	return nil
}

func wedgePath(c Canvas, center vmath.Vec2, outer, inner, a0, a1 float64) {
	n := max(2, int(math.Ceil((a1-a0)/arcStep)))
	if inner <= 0 {
		c.MoveTo(center)
		for i := 0; i <= n; i++ {
			c.LineTo(vmath.ScreenPolarPoint(center, outer, vmath.Lerp(a0, a1, float64(i)/float64(n))))
		}
		c.ClosePath()
		return
	}
	c.MoveTo(vmath.ScreenPolarPoint(center, outer, a0))
	for i := 1; i <= n; i++ {
		c.LineTo(vmath.ScreenPolarPoint(center, outer, vmath.Lerp(a0, a1, float64(i)/float64(n))))
	}
	for i := n; i >= 0; i-- {
		c.LineTo(vmath.ScreenPolarPoint(center, inner, vmath.Lerp(a0, a1, float64(i)/float64(n))))
	}
	c.ClosePath()
}

// DrawLabel writes text next to a world anchor
func DrawLabel(c Canvas, vp *geo.Viewport, anchor vmath.Vec2, label component.LabelComponent) {
	c.Text(label.Text, vp.WorldToScreen(anchor).Add(label.Offset), label.Color)
}
