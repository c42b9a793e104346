// Package feature turns GeoJSON documents into layer and feature entities
package feature

import (
	"fmt"
	"strconv"

	"github.com/gogpu/gg"
	geojson "github.com/paulmach/go.geojson"

	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/vmath"
)

// Property names read from feature properties, following the simplestyle convention where one exists
const (
	PropLabel       = "label"
	PropName        = "name"
	PropFill        = "fill"
	PropStroke      = "stroke"
	PropStrokeWidth = "stroke-width"
	PropOpacity     = "fill-opacity"
	PropZ           = "z"
	PropRadius      = "radius"
	PropValues      = "values"
	PropInner       = "inner"
	PropColors      = "colors"
)

// kindOrder is the draw order of generated layers above BaseIndex
var kindOrder = []component.LayerKind{component.LayerPolygons, component.LayerPaths, component.LayerPoints, component.LayerPies}

// Loader creates entities for GeoJSON features projected through Fit
type Loader struct {
	World *engine.World
	Fit   *geo.Fitted

	// BaseIndex is the layer Index of the first generated layer; later kinds stack above it
	BaseIndex int
}

// Result reports the layers created by one load
type Result struct {
	Layers   map[component.LayerKind]core.Entity
	Features int
	Skipped  int
}

// NewLoader creates a loader; layers start above the basemap
func NewLoader(w *engine.World, fit *geo.Fitted) *Loader {
	return &Loader{World: w, Fit: fit, BaseIndex: 1}
}

// LoadBytes parses a FeatureCollection and loads it
func (l *Loader) LoadBytes(name string, data []byte) (Result, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Result{}, fmt.Errorf("geojson %s: %w", name, err)
	}
	return l.Load(name, fc)
}

// Load creates one layer per geometry kind present in fc and one entity per drawable geometry
// The feature index reported by hit results is the position in fc.Features
func (l *Loader) Load(name string, fc *geojson.FeatureCollection) (Result, error) {
	res := Result{Layers: make(map[component.LayerKind]core.Entity)}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			res.Skipped++
			continue
		}
		n, err := l.feature(name, &res, i, f, f.Geometry)
		if err != nil {
			return res, fmt.Errorf("geojson %s feature %d: %w", name, i, err)
		}
		if n == 0 {
			res.Skipped++
			continue
		}
		res.Features++
	}
	core.Logger().Debug("geojson_loaded", "name", name, "features", res.Features, "skipped", res.Skipped, "layers", len(res.Layers))
	return res, nil
}

// feature creates the entities of one geometry and returns how many were created
func (l *Loader) feature(name string, res *Result, idx int, f *geojson.Feature, g *geojson.Geometry) (int, error) {
	switch {
	case g.IsPoint():
		return 1, l.point(name, res, idx, f, g.Point)
	case g.IsMultiPoint():
		for _, p := range g.MultiPoint {
			if err := l.point(name, res, idx, f, p); err != nil {
				return 0, err
			}
		}
		return len(g.MultiPoint), nil
	case g.IsLineString():
		return 1, l.path(name, res, idx, f, g.LineString)
	case g.IsMultiLineString():
		for _, line := range g.MultiLineString {
			if err := l.path(name, res, idx, f, line); err != nil {
				return 0, err
			}
		}
		return len(g.MultiLineString), nil
	case g.IsPolygon():
		return 1, l.polygon(name, res, idx, f, [][][][]float64{g.Polygon})
	case g.IsMultiPolygon():
		if len(g.MultiPolygon) == 0 {
			return 0, nil
		}
		return 1, l.polygon(name, res, idx, f, g.MultiPolygon)
	case g.IsCollection():
		total := 0
		for _, sub := range g.Geometries {
			if sub == nil {
				continue
			}
			n, err := l.feature(name, res, idx, f, sub)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	}
	return 0, nil
}

func (l *Loader) layer(name string, res *Result, kind component.LayerKind) core.Entity {
	if e, ok := res.Layers[kind]; ok {
		return e
	}
	index := l.BaseIndex
	for i, k := range kindOrder {
		if k == kind {
			index += i
		}
	}
	e := l.World.CreateEntity(name + "/" + kind.String())
	set(l.World, e, component.LayerComponent{Index: index, Name: name, Kind: kind, Visible: true, Dirty: true})
	res.Layers[kind] = e
	return e
}

func (l *Loader) point(name string, res *Result, idx int, f *geojson.Feature, coord []float64) error {
	ll, err := lonLat(coord)
	if err != nil {
		return err
	}
	w := l.Fit.Project(ll)
	st := style(f)

	if values, ok := floats(f.Properties[PropValues]); ok {
		pie := component.PieComponent{
			Center: ll,
			World:  w,
			Values: values,
			Radius: number(f, PropRadius, parameter.PieRadius),
			Inner:  number(f, PropInner, 0),
			Colors: colors(f.Properties[PropColors]),
		}
		e := l.member(name, res, component.LayerPies, idx, f)
		set(l.World, e, pie)
		set(l.World, e, st)
		l.label(e, f, pie.Radius)
		return nil
	}

	pt := component.PointComponent{Position: ll, World: w, Radius: number(f, PropRadius, parameter.PointRadius)}
	e := l.member(name, res, component.LayerPoints, idx, f)
	set(l.World, e, pt)
	set(l.World, e, st)
	l.label(e, f, pt.Radius)
	return nil
}

func (l *Loader) path(name string, res *Result, idx int, f *geojson.Feature, coords [][]float64) error {
	lls, err := lonLats(coords)
	if err != nil {
		return err
	}
	e := l.member(name, res, component.LayerPaths, idx, f)
	set(l.World, e, component.PathComponent{Coords: lls, World: l.Fit.ProjectAll(lls)})
	set(l.World, e, style(f))
	return nil
}

func (l *Loader) polygon(name string, res *Result, idx int, f *geojson.Feature, polys [][][][]float64) error {
	var poly component.PolygonComponent
	for _, rings := range polys {
		var world [][]vmath.Vec2
		for _, ring := range rings {
			lls, err := lonLats(ring)
			if err != nil {
				return err
			}
			world = append(world, l.Fit.ProjectAll(lls))
		}
		if len(world) > 0 {
			poly.Fragments = append(poly.Fragments, component.NewFragment(world))
		}
	}
	e := l.member(name, res, component.LayerPolygons, idx, f)
	set(l.World, e, poly)
	set(l.World, e, style(f))
	return nil
}

func (l *Loader) member(name string, res *Result, kind component.LayerKind, idx int, f *geojson.Feature) core.Entity {
	layer := l.layer(name, res, kind)
	e := l.World.CreateEntity(kind.String())
	set(l.World, e, component.MemberComponent{Layer: layer, Feature: idx, Z: int(number(f, PropZ, 0))})
	return e
}

func (l *Loader) label(e core.Entity, f *geojson.Feature, radius float64) {
	text, _ := f.PropertyString(PropLabel)
	if text == "" {
		text, _ = f.PropertyString(PropName)
	}
	if text == "" {
		return
	}
	set(l.World, e, component.LabelComponent{
		Text:   text,
		Offset: vmath.V2(radius+parameter.LabelOffset, 0),
		Color:  gg.Hex("#202020"),
	})
}

func lonLat(c []float64) (geo.LonLat, error) {
	if len(c) < 2 {
		return geo.LonLat{}, fmt.Errorf("position needs 2 coordinates, got %d", len(c))
	}
	ll := geo.LL(c[0], c[1])
	if !geo.World.Contains(ll) {
		return geo.LonLat{}, fmt.Errorf("position %v outside [-180,180]x[-90,90]", ll)
	}
	return ll, nil
}

func lonLats(cs [][]float64) ([]geo.LonLat, error) {
	out := make([]geo.LonLat, len(cs))
	for i, c := range cs {
		ll, err := lonLat(c)
		if err != nil {
			return nil, err
		}
		out[i] = ll
	}
	return out, nil
}

// style reads simplestyle properties over the default style
func style(f *geojson.Feature) component.StyleComponent {
	st := component.DefaultStyle()
	if s, err := f.PropertyString(PropFill); err == nil && s != "" {
		st.Fill = gg.Hex(s)
	}
	if s, err := f.PropertyString(PropStroke); err == nil && s != "" {
		st.Stroke = gg.Hex(s)
	}
	st.StrokeWidth = number(f, PropStrokeWidth, st.StrokeWidth)
	st.Opacity = vmath.Clamp(number(f, PropOpacity, st.Opacity), 0, 1)
	return st
}

// number reads a numeric property, accepting JSON numbers and numeric strings
func number(f *geojson.Feature, key string, def float64) float64 {
	switch v := f.Properties[key].(type) {
	case float64:
		return v
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func floats(v any) ([]float64, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	out := make([]float64, 0, len(list))
	for _, x := range list {
		n, ok := x.(float64)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func colors(v any) []gg.RGBA {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []gg.RGBA
	for _, x := range list {
		if s, ok := x.(string); ok {
			out = append(out, gg.Hex(s))
		}
	}
	return out
}

// set attaches a component to an entity created by the loader
func set[T any](w *engine.World, e core.Entity, v T) {
	engine.GetStore[T](w).Set(e, v)
}
