package system

import (
	"image"
	"math"
	"slices"
	"time"

	"github.com/gogpu/gg"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/render"
	"github.com/lixenwraith/geomap/vmath"
)

// Colors of the frame background and of the hover and selection outlines
var (
	BackgroundColor = gg.Hex("#f2efe9")
	HoverColor      = gg.Hex("#ffb000")
	SelectColor     = gg.Hex("#e6194b")
)

// highlightWidth is the outline width of hovered and selected features
const highlightWidth = 3.0

type staleTile struct {
	img   image.Image
	frame uint64 // Last repaint the image was ready or drawn
}

// RenderSystem repaints the canvas when the camera moved or content changed
// Layers draw in Index order; cells without a ready image draw a placeholder
type RenderSystem struct {
	engine.SystemBase
	canvas    render.Canvas
	selection *Selection

	// Images of cells that were ready recently, kept as placeholder sources after eviction
	stale map[cell.Key]staleTile

	frames uint64

	layerStore  *engine.Store[component.LayerComponent]
	memberStore *engine.Store[component.MemberComponent]
	cellStore   *engine.Store[component.CellComponent]
	tileStore   *engine.Store[component.TileComponent]
	styleStore  *engine.Store[component.StyleComponent]
	pointStore  *engine.Store[component.PointComponent]
	pathStore   *engine.Store[component.PathComponent]
	polyStore   *engine.Store[component.PolygonComponent]
	pieStore    *engine.Store[component.PieComponent]
	labelStore  *engine.Store[component.LabelComponent]
}

// NewRenderSystem creates the render system drawing into canvas
func NewRenderSystem(w *engine.World, res *engine.Resource, canvas render.Canvas, sel *Selection) *RenderSystem {
	return &RenderSystem{
		SystemBase:  engine.NewSystemBase(w, res),
		canvas:      canvas,
		selection:   sel,
		stale:       make(map[cell.Key]staleTile),
		layerStore:  engine.GetStore[component.LayerComponent](w),
		memberStore: engine.GetStore[component.MemberComponent](w),
		cellStore:   engine.GetStore[component.CellComponent](w),
		tileStore:   engine.GetStore[component.TileComponent](w),
		styleStore:  engine.GetStore[component.StyleComponent](w),
		pointStore:  engine.GetStore[component.PointComponent](w),
		pathStore:   engine.GetStore[component.PathComponent](w),
		polyStore:   engine.GetStore[component.PolygonComponent](w),
		pieStore:    engine.GetStore[component.PieComponent](w),
		labelStore:  engine.GetStore[component.LabelComponent](w),
	}
}

func (s *RenderSystem) Name() string { return "render" }

// Frames returns the number of repaints
func (s *RenderSystem) Frames() uint64 { return s.frames }

func (s *RenderSystem) Update(ctx *engine.Context, dt time.Duration) {
	st := s.Resource.Status
	layers := sortedLayers(s.World, s.layerStore)
	if !st.ViewportChanged && !st.Redraw && !anyDirty(layers) {
		return
	}
	s.resize()
	s.canvas.Clear(BackgroundColor)

	for _, ref := range layers {
		lc := ref.layer
		if lc.Visible {
			complete := true
			if lc.Kind == component.LayerBasemap {
				complete = s.paintBasemap(ref.entity)
			} else {
				s.paintFeatures(ref.entity)
			}
			lc.Painted = lc.Painted || complete
		}
		lc.Dirty = false
		s.layerStore.Set(ref.entity, lc)
	}
	s.paintHighlights()

	st.Redraw = false
	s.frames++
}

func anyDirty(layers []layerRef) bool {
	for _, ref := range layers {
		if ref.layer.Dirty {
			return true
		}
	}
	return false
}

func (s *RenderSystem) resize() {
	r, ok := s.canvas.(render.Resizer)
	if !ok {
		return
	}
	size := s.Resource.Viewport.Size()
	w, h := int(math.Round(size.X)), int(math.Round(size.Y))
	if cw, ch := s.canvas.Size(); cw == w && ch == h {
		return
	}
	if err := r.Resize(w, h); err != nil {
		core.Logger().Warn("canvas_resize_failed", "width", w, "height", h, "error", err)
	}
}

// paintBasemap draws visible cells and reports whether every one of them settled
func (s *RenderSystem) paintBasemap(layer core.Entity) bool {
	vp := s.Resource.Viewport
	ready := make(map[cell.Key]image.Image)
	settled := make(map[cell.Key]bool)
	for e := range s.World.Query().With(s.cellStore).Iter() {
		c, _ := s.cellStore.Get(e)
		if c.Layer != layer {
			continue
		}
		switch c.State {
		case component.CellReady:
			settled[c.Key] = true
			if t, ok := s.tileStore.Get(e); ok && t.Image != nil {
				ready[c.Key] = t.Image
			}
		case component.CellFailed:
			settled[c.Key] = true
		}
	}

	complete := true
	for _, k := range vp.VisibleCells() {
		if !settled[k] {
			complete = false
		}
		if img, ok := ready[k]; ok {
			render.DrawTile(s.canvas, vp, k, img)
			continue
		}
		if st, ok := s.stale[k]; ok {
			st.frame = s.frames
			s.stale[k] = st
			render.DrawTile(s.canvas, vp, k, st.img)
			continue
		}
		anc, img := s.ancestor(k, ready)
		render.DrawPlaceholder(s.canvas, vp, k, anc, img)
	}

	for k, img := range ready {
		s.stale[k] = staleTile{img: img, frame: s.frames}
	}
	for k, st := range s.stale {
		if s.frames-st.frame > parameter.StaleFrames {
			delete(s.stale, k)
		}
	}
	return complete
}

// ancestor finds the nearest ready or recently ready ancestor image of k
func (s *RenderSystem) ancestor(k cell.Key, ready map[cell.Key]image.Image) (cell.Key, image.Image) {
	for level := k.Level() - 1; level >= 0; level-- {
		a := k.Ancestor(level)
		if img, ok := ready[a]; ok {
			return a, img
		}
		if st, ok := s.stale[a]; ok {
			st.frame = s.frames
			s.stale[a] = st
			return a, st.img
		}
	}
	return cell.Root, nil
}

type memberRef struct {
	entity core.Entity
	z      int
}

// members returns the features of layer in stacking order
func (s *RenderSystem) members(layer core.Entity) []memberRef {
	var out []memberRef
	for e := range s.World.Query().With(s.memberStore).Iter() {
		m, _ := s.memberStore.Get(e)
		if m.Layer == layer {
			out = append(out, memberRef{entity: e, z: m.Z})
		}
	}
	slices.SortStableFunc(out, func(a, b memberRef) int { return a.z - b.z })
	return out
}

func (s *RenderSystem) paintFeatures(layer core.Entity) {
	var labels []core.Entity
	for _, m := range s.members(layer) {
		s.paintFeature(m.entity, s.style(m.entity))
		if s.labelStore.Has(m.entity) {
			labels = append(labels, m.entity)
		}
	}
	for _, e := range labels {
		anchor, ok := s.anchor(e)
		if !ok {
			continue
		}
		label, _ := s.labelStore.Get(e)
		render.DrawLabel(s.canvas, s.Resource.Viewport, anchor, label)
	}
}

func (s *RenderSystem) style(e core.Entity) component.StyleComponent {
	if st, ok := s.styleStore.Get(e); ok {
		return st
	}
	return component.DefaultStyle()
}

func (s *RenderSystem) paintFeature(e core.Entity, st component.StyleComponent) {
	vp := s.Resource.Viewport
	var err error
	if pt, ok := s.pointStore.Get(e); ok {
		if s.onCanvas(vp.WorldToScreen(pt.World), pt.Radius+st.StrokeWidth) {
			err = render.DrawPoint(s.canvas, vp, pt, st)
		}
	} else if path, ok := s.pathStore.Get(e); ok {
		err = render.DrawPath(s.canvas, vp, path, st)
	} else if poly, ok := s.polyStore.Get(e); ok {
		err = render.DrawPolygon(s.canvas, vp, poly, st)
	} else if pie, ok := s.pieStore.Get(e); ok {
		if s.onCanvas(vp.WorldToScreen(pie.World), pie.Radius+st.StrokeWidth) {
			err = render.DrawPie(s.canvas, vp, pie, st)
		}
	}
	if err != nil {
		core.Logger().Warn("render_draw_failed", "entity", e, "error", err)
	}
}

// onCanvas culls round markers entirely outside the canvas
func (s *RenderSystem) onCanvas(p vmath.Vec2, r float64) bool {
	w, h := s.canvas.Size()
	return p.X+r >= 0 && p.Y+r >= 0 && p.X-r <= float64(w) && p.Y-r <= float64(h)
}

// anchor returns the world point a label attaches to
func (s *RenderSystem) anchor(e core.Entity) (vmath.Vec2, bool) {
	if pt, ok := s.pointStore.Get(e); ok {
		return pt.World, true
	}
	if pie, ok := s.pieStore.Get(e); ok {
		return pie.World, true
	}
	if path, ok := s.pathStore.Get(e); ok && len(path.World) > 0 {
		return path.World[len(path.World)/2], true
	}
	if poly, ok := s.polyStore.Get(e); ok && len(poly.Fragments) > 0 {
		return poly.Bounds().Center(), true
	}
	return vmath.Vec2{}, false
}

// paintHighlights outlines the hovered and selected features on top of every layer
func (s *RenderSystem) paintHighlights() {
	if s.selection == nil {
		return
	}
	if s.selection.HasHover {
		s.highlight(s.selection.Hover.Entity, HoverColor)
	}
	if s.selection.HasSelected {
		s.highlight(s.selection.Selected.Entity, SelectColor)
	}
}

func (s *RenderSystem) highlight(e core.Entity, c gg.RGBA) {
	if !s.World.Alive(e) {
		return
	}
	st := component.StyleComponent{Fill: gg.RGBA{}, Stroke: c, StrokeWidth: highlightWidth, Opacity: 1}
	vp := s.Resource.Viewport
	var err error
	if pt, ok := s.pointStore.Get(e); ok {
		s.canvas.Circle(vp.WorldToScreen(pt.World), pt.Radius)
		err = s.canvas.Stroke(c, highlightWidth)
	} else if path, ok := s.pathStore.Get(e); ok {
		err = render.DrawPath(s.canvas, vp, path, st)
	} else if poly, ok := s.polyStore.Get(e); ok {
		err = render.DrawPolygon(s.canvas, vp, poly, st)
	} else if pie, ok := s.pieStore.Get(e); ok {
		s.canvas.Circle(vp.WorldToScreen(pie.World), pie.Radius)
		err = s.canvas.Stroke(c, highlightWidth)
	}
	if err != nil {
		core.Logger().Warn("render_highlight_failed", "entity", e, "error", err)
	}
}
