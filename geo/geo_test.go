package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/vmath"
)

func allProjections(t *testing.T) []Projection {
	t.Helper()
	var out []Projection
	for _, name := range Names() {
		p, err := ByName(name)
		require.NoError(t, err)
		out = append(out, p)
	}
	albers, err := NewConicEqualArea(20, 60, 0, 10)
	require.NoError(t, err)
	return append(out, albers, NewAzimuthalEqualArea(LL(-100, 45)))
}

func TestProjectionRoundTrip(t *testing.T) {
	for _, p := range allProjections(t) {
		fit, err := Fit(p, parameter.WorldSize)
		require.NoError(t, err)
		d := p.Domain()
		t.Run(p.Name(), func(t *testing.T) {
			const steps = 24
			for i := 1; i < steps; i++ {
				for j := 1; j < steps; j++ {
					ll := LL(
						vmath.Lerp(d.MinLon, d.MaxLon, float64(i)/steps),
						vmath.Lerp(d.MinLat, d.MaxLat, float64(j)/steps),
					)
					w := fit.Project(ll)
					back, ok := fit.Invert(w)
					require.True(t, ok, "invert %v", ll)
					assert.True(t, back.Near(ll, 1e-6), "%s: %v -> %v -> %v", p.Name(), ll, w, back)
				}
			}
		})
	}
}

func TestFitPreservesAspectAndCenters(t *testing.T) {
	fit, err := Fit(Equirectangular{}, 256)
	require.NoError(t, err)

	// 2:1 extent: full width, half height, centered vertically
	assert.InDelta(t, 0, fit.Project(LL(-180, 0)).X, 1e-9)
	assert.InDelta(t, 256, fit.Project(LL(180, 0)).X, 1e-9)
	assert.InDelta(t, 64, fit.Project(LL(0, 90)).Y, 1e-9)
	assert.InDelta(t, 192, fit.Project(LL(0, -90)).Y, 1e-9)

	merc, err := Fit(Mercator{}, 256)
	require.NoError(t, err)
	assert.True(t, merc.Project(LL(0, 0)).Near(vmath.V2(128, 128), 1e-9))
	assert.True(t, merc.Project(LL(-180, MercatorMaxLat)).Near(vmath.V2(0, 0), 1e-6))

	// Every fitted extent lies inside the world square
	for _, p := range allProjections(t) {
		f, err := Fit(p, 256)
		require.NoError(t, err)
		for _, ll := range []LonLat{LL(-179.9, 0), LL(179.9, 0), LL(0, 89.9), LL(0, -89.9)} {
			w := f.Project(ll)
			assert.True(t, vmath.R(-1e-6, -1e-6, 256+1e-6, 256+1e-6).Contains(w), "%s %v -> %v", p.Name(), ll, w)
		}
	}
}

func TestFitConfigurationErrors(t *testing.T) {
	_, err := Fit(nil, 256)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = Fit(Mercator{}, 0)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = Fit(Mercator{}, math.Inf(1))
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = NewConicEqualArea(-30, 30, 0, 0)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = ByName("gnomonic")
	var ce *core.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "projection", ce.Field)

	for _, alias := range []string{"albers", "Lambert", "", "MERCATOR"} {
		_, err := ByName(alias)
		assert.NoError(t, err, alias)
	}
}

func TestClientTransformRoundTrip(t *testing.T) {
	for _, wrap := range []bool{false, true} {
		ct := ClientTransform{WorldSize: 256, WrapX: wrap}
		for _, zoom := range []float64{0, 0.5, 1, 6, 6.999, 7, 13.25} {
			for _, w := range []vmath.Vec2{{X: 0, Y: 0}, {X: 12.5, Y: 200}, {X: 255.9, Y: 128}} {
				back := ct.Invert(ct.Project(w, zoom), zoom)
				assert.True(t, back.Near(w, 1e-9), "wrap=%v zoom=%v %v -> %v", wrap, zoom, w, back)
			}
		}
	}

	ct := ClientTransform{WorldSize: 256, WrapX: true}
	assert.True(t, ct.Project(vmath.V2(256+10, 5), 1).Near(vmath.V2(20, 10), 1e-9))

	// Continuous within a zoom level, power-of-two jump across levels
	nt := ClientTransform{WorldSize: 256}
	w := vmath.V2(100, 100)
	assert.InDelta(t, nt.Project(w, 2).X*2, nt.Project(w, 3).X, 1e-9)
	assert.InDelta(t, nt.Project(w, 3-1e-9).X, nt.Project(w, 3).X, 1e-5)
}

func newTestViewport(t *testing.T, cfg ViewportConfig) *Viewport {
	t.Helper()
	vp, err := NewViewport(MustFit(Mercator{}), cfg)
	require.NoError(t, err)
	return vp
}

func TestViewportScreenWorld(t *testing.T) {
	vp := newTestViewport(t, ViewportConfig{Width: 256, Height: 256, Zoom: 6, Center: vmath.V2(128, 128), HasCenter: true})

	assert.True(t, vp.WorldToScreen(vmath.V2(128, 128)).Near(vmath.V2(128, 128), 1e-9))
	assert.True(t, vp.WorldToScreen(vmath.V2(129, 128)).Near(vmath.V2(128+64, 128), 1e-9))

	for _, p := range []vmath.Vec2{{X: 0, Y: 0}, {X: 17, Y: 230}, {X: 255, Y: 1}} {
		back := vp.WorldToScreen(vp.ScreenToWorld(p))
		assert.True(t, back.Near(p, 1e-9), "%v -> %v", p, back)
	}

	ll := LL(2.35, 48.85)
	vp.SetCenter(vp.Fit().Project(ll))
	assert.True(t, vp.LonLatToScreen(ll).Near(vmath.V2(128, 128), 1e-6))
	back, ok := vp.ScreenToLonLat(vmath.V2(128, 128))
	require.True(t, ok)
	assert.True(t, back.Near(ll, 1e-6))
}

func TestViewportVisibleCells(t *testing.T) {
	vp := newTestViewport(t, ViewportConfig{Width: 256, Height: 256, Zoom: 1})
	assert.Equal(t, 1, vp.CellLevel())
	cells := vp.VisibleCells()
	assert.Len(t, cells, 4)

	vp.SetZoom(0)
	assert.Len(t, vp.VisibleCells(), 1)

	vp.SetZoom(2.6)
	assert.Equal(t, 3, vp.CellLevel())
	for _, k := range vp.VisibleCells() {
		assert.Equal(t, 3, k.Level())
	}
}

func TestViewportVisibleBounds(t *testing.T) {
	vp := newTestViewport(t, ViewportConfig{Width: 256, Height: 256, Zoom: 0})
	b := vp.VisibleBounds()
	assert.InDelta(t, -180, b.MinLon, 1e-6)
	assert.InDelta(t, 180, b.MaxLon, 1e-6)
	assert.InDelta(t, MercatorMaxLat, b.MaxLat, 1e-6)

	vp.SetZoom(4)
	inner := vp.VisibleBounds()
	assert.True(t, inner.Valid())
	assert.True(t, inner.Contains(LL(0, 0)))
	assert.Less(t, inner.MaxLon-inner.MinLon, 30.0)
}

func TestViewportPanZoom(t *testing.T) {
	vp := newTestViewport(t, ViewportConfig{Width: 200, Height: 100, Zoom: 2, MinZoom: 0, MaxZoom: 10, HasZoomRange: true})

	before := vp.Center()
	vp.Pan(40, 0)
	assert.InDelta(t, before.X-10, vp.Center().X, 1e-9, "40px at zoom 2 is 10 world units")

	p := vmath.V2(150, 20)
	anchor := vp.ScreenToWorld(p)
	vp.ZoomAt(p, 5)
	assert.Equal(t, 5.0, vp.Zoom())
	assert.True(t, vp.ScreenToWorld(p).Near(anchor, 1e-9))

	vp.SetZoom(42)
	assert.Equal(t, 10.0, vp.Zoom())

	vp.SetCenter(vmath.V2(-50, 900))
	assert.Equal(t, vmath.V2(0, 256), vp.Center())
}

func TestViewportWrap(t *testing.T) {
	vp := newTestViewport(t, ViewportConfig{Width: 256, Height: 256, Zoom: 1, Center: vmath.V2(250, 128), HasCenter: true, WrapX: true})
	// World x=2 is just across the seam, right of center
	s := vp.WorldToScreen(vmath.V2(2, 128))
	assert.InDelta(t, 128+16, s.X, 1e-9)

	vp.Pan(-20, 0)
	assert.InDelta(t, 4, vp.Center().X, 1e-9)
}

func TestViewportFitBounds(t *testing.T) {
	vp := newTestViewport(t, ViewportConfig{Width: 256, Height: 256})
	b := BBox{MinLon: -10, MinLat: 35, MaxLon: 30, MaxLat: 60}
	vp.FitBounds(b)
	vis := vp.VisibleBounds()
	assert.LessOrEqual(t, vis.MinLon, b.MinLon)
	assert.GreaterOrEqual(t, vis.MaxLon, b.MaxLon)
	assert.LessOrEqual(t, vis.MinLat, b.MinLat)
	assert.GreaterOrEqual(t, vis.MaxLat, b.MaxLat)
	assert.Greater(t, vp.Zoom(), 1.0)
}

func TestViewportExplicitZeroSettings(t *testing.T) {
	vp := newTestViewport(t, ViewportConfig{Width: 64, Height: 64, HasZoomRange: true, HasCenter: true})
	lo, hi := vp.ZoomRange()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
	assert.Equal(t, vmath.V2(0, 0), vp.Center())

	vp = newTestViewport(t, ViewportConfig{Width: 64, Height: 64})
	_, hi = vp.ZoomRange()
	assert.Equal(t, parameter.MaxZoom, hi)
	size := vp.Fit().WorldSize()
	assert.Equal(t, vmath.V2(size/2, size/2), vp.Center())
}

func TestNewViewportErrors(t *testing.T) {
	fit := MustFit(Mercator{})
	tests := []struct {
		name string
		cfg  ViewportConfig
	}{
		{"zero size", ViewportConfig{Width: 0, Height: 10}},
		{"zoom above range", ViewportConfig{Width: 10, Height: 10, Zoom: 30}},
		{"inverted range", ViewportConfig{Width: 10, Height: 10, MinZoom: 5, MaxZoom: 2, HasZoomRange: true}},
		{"center outside", ViewportConfig{Width: 10, Height: 10, Center: vmath.V2(-1, 500), HasCenter: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewViewport(fit, tt.cfg)
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
	_, err := NewViewport(nil, ViewportConfig{Width: 1, Height: 1})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
