package render

import (
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/vmath"
)

// RasterCanvas renders into an in-memory gg context
type RasterCanvas struct {
	dc      *gg.Context
	hasFont bool

	// Converted tile images, reused across frames
	bufs map[image.Image]*gg.ImageBuf
}

// maxImageBufs bounds the conversion cache; it is dropped wholesale when full
const maxImageBufs = 512

// NewRasterCanvas allocates a width x height surface
func NewRasterCanvas(width, height int) *RasterCanvas {
	return &RasterCanvas{
		dc:   gg.NewContext(width, height),
		bufs: make(map[image.Image]*gg.ImageBuf),
	}
}

// LoadFont enables text drawing; without a font Text is a no-op
func (r *RasterCanvas) LoadFont(path string, points float64) error {
	if err := r.dc.LoadFontFace(path, points); err != nil {
		return err
	}
	r.hasFont = true
	return nil
}

func (r *RasterCanvas) Size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

// Resize reallocates the surface when the client size changes
func (r *RasterCanvas) Resize(width, height int) error {
	if width == r.dc.Width() && height == r.dc.Height() {
		return nil
	}
	return r.dc.Resize(width, height)
}

func (r *RasterCanvas) Clear(c gg.RGBA) {
	r.dc.ClearPath()
	r.dc.ClearWithColor(c)
}

func (r *RasterCanvas) MoveTo(p vmath.Vec2) { r.dc.MoveTo(p.X, p.Y) }
func (r *RasterCanvas) LineTo(p vmath.Vec2) { r.dc.LineTo(p.X, p.Y) }
func (r *RasterCanvas) ClosePath()          { r.dc.ClosePath() }

func (r *RasterCanvas) Circle(center vmath.Vec2, radius float64) {
	r.dc.DrawCircle(center.X, center.Y, radius)
}

func (r *RasterCanvas) Fill(c gg.RGBA, evenOdd bool) error {
	rule := gg.FillRuleNonZero
	if evenOdd {
		rule = gg.FillRuleEvenOdd
	}
	r.dc.SetFillRule(rule)
	r.dc.SetColor(c.Color())
	return r.dc.Fill()
}

func (r *RasterCanvas) Stroke(c gg.RGBA, width float64) error {
	r.dc.SetColor(c.Color())
	r.dc.SetLineWidth(width)
	return r.dc.Stroke()
}

func (r *RasterCanvas) Text(s string, at vmath.Vec2, c gg.RGBA) {
	if !r.hasFont {
		return
	}
	r.dc.SetColor(c.Color())
	r.dc.DrawString(s, at.X, at.Y)
}

func (r *RasterCanvas) Image(img image.Image, src image.Rectangle, dst vmath.Rect, opacity float64) {
	buf, ok := r.bufs[img]
	if !ok {
		buf = gg.ImageBufFromImage(img)
		if buf == nil {
			core.Logger().Warn("image_convert_failed", "bounds", img.Bounds())
			return
		}
		if len(r.bufs) >= maxImageBufs {
			clear(r.bufs)
		}
		r.bufs[img] = buf
	}
	opts := gg.DrawImageOptions{
		X:             dst.Min.X,
		Y:             dst.Min.Y,
		DstWidth:      dst.Width(),
		DstHeight:     dst.Height(),
		Interpolation: gg.InterpBilinear,
		Opacity:       opacity,
	}
	if b := img.Bounds(); src != b {
		// Buffers are rebased to the origin
		rel := src.Sub(b.Min)
		opts.SrcRect = &rel
	}
	r.dc.DrawImageEx(buf, opts)
}

func (r *RasterCanvas) Snapshot() image.Image {
	_ = r.dc.FlushGPU()
	return r.dc.Image()
}

// SavePNG writes the current frame to path
func (r *RasterCanvas) SavePNG(path string) error {
	return r.dc.SavePNG(path)
}

// EncodePNG writes the current frame as PNG
func (r *RasterCanvas) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// Close releases the surface
func (r *RasterCanvas) Close() error {
	return r.dc.Close()
}
