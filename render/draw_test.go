package render

import (
	"image"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/vmath"
)

// testViewport shows the whole Mercator world at zoom 0 on a 256x256 canvas
func testViewport(t *testing.T) *geo.Viewport {
	t.Helper()
	vp, err := geo.NewViewport(geo.MustFit(geo.Mercator{}), geo.ViewportConfig{Width: 256, Height: 256})
	require.NoError(t, err)
	return vp
}

func nearRect(t *testing.T, want, got vmath.Rect) {
	t.Helper()
	assert.True(t, want.Min.Near(got.Min, 1e-9) && want.Max.Near(got.Max, 1e-9), "want %v got %v", want, got)
}

func TestTileRect(t *testing.T) {
	vp := testViewport(t)
	tests := []struct {
		key  cell.Key
		want vmath.Rect
	}{
		{cell.Root, vmath.R(0, 0, 256, 256)},
		{cell.FromTile(0, 0, 1), vmath.R(0, 0, 128, 128)},
		{cell.FromTile(1, 0, 1), vmath.R(128, 0, 256, 128)},
		{cell.FromTile(3, 3, 2), vmath.R(192, 192, 256, 256)},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			nearRect(t, tt.want, TileRect(vp, tt.key))
		})
	}
}

func TestDrawTile(t *testing.T) {
	vp := testViewport(t)
	rec := NewRecorder(256, 256)
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	DrawTile(rec, vp, cell.FromTile(0, 1, 1), img)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, OpImage, calls[0].Op)
	assert.Equal(t, img.Bounds(), calls[0].Src)
	nearRect(t, vmath.R(0, 128, 128, 256), calls[0].Dst)
	assert.Same(t, img, rec.Snapshot())
}

func TestDrawPlaceholder(t *testing.T) {
	vp := testViewport(t)
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))

	tests := []struct {
		name     string
		key      cell.Key
		ancestor cell.Key
		img      image.Image
		op       Op
		src      image.Rectangle
	}{
		{"quadrant of root", cell.FromTile(1, 1, 1), cell.Root, img, OpImage, image.Rect(128, 128, 256, 256)},
		{"two levels down", cell.FromTile(1, 2, 2), cell.Root, img, OpImage, image.Rect(64, 128, 128, 192)},
		{"offset ancestor", cell.FromTile(3, 2, 2), cell.FromTile(1, 1, 1), img, OpImage, image.Rect(128, 0, 256, 128)},
		{"no ancestor image", cell.FromTile(1, 1, 1), cell.Root, nil, OpFill, image.Rectangle{}},
		{"not an ancestor", cell.FromTile(0, 0, 1), cell.FromTile(1, 1, 1), img, OpFill, image.Rectangle{}},
		{"below one pixel", cell.FromTile(0, 0, 9), cell.Root, img, OpFill, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder(256, 256)
			DrawPlaceholder(rec, vp, tt.key, tt.ancestor, tt.img)
			calls := rec.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.op, calls[0].Op)
			if tt.op == OpImage {
				assert.Equal(t, tt.src, calls[0].Src)
				nearRect(t, TileRect(vp, tt.key), calls[0].Dst)
				return
			}
			assert.Equal(t, PlaceholderColor, calls[0].Color)
			require.Len(t, calls[0].Paths, 1)
			assert.Len(t, calls[0].Paths[0], 4)
		})
	}
}

func TestDrawPieWedges(t *testing.T) {
	vp := testViewport(t)
	center := vmath.V2(128, 128)
	style := component.StyleComponent{Opacity: 1}

	t.Run("quarters", func(t *testing.T) {
		rec := NewRecorder(256, 256)
		pie := component.PieComponent{World: center, Values: []float64{1, 1, 1, 1}, Radius: 10}
		require.NoError(t, DrawPie(rec, vp, pie, style))
		calls := rec.Calls()
		require.Len(t, calls, 4)
		for i, c := range calls {
			assert.Equal(t, OpFill, c.Op)
			assert.Equal(t, Palette[i], c.Color)
		}
		// First wedge: center, 12 o'clock, then counter-clockwise to 9 o'clock
		first := calls[0].Paths[0]
		assert.True(t, first[0].Near(center, 1e-9))
		assert.True(t, first[1].Near(vmath.V2(128, 118), 1e-9))
		assert.True(t, first[len(first)-1].Near(vmath.V2(118, 128), 1e-9))
		assert.True(t, calls[0].Closed[0])
	})

	t.Run("zero values are skipped", func(t *testing.T) {
		rec := NewRecorder(256, 256)
		pie := component.PieComponent{World: center, Values: []float64{2, 0, 2}, Radius: 10}
		require.NoError(t, DrawPie(rec, vp, pie, style))
		calls := rec.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, Palette[2], calls[1].Color)
	})

	t.Run("donut", func(t *testing.T) {
		rec := NewRecorder(256, 256)
		colors := []gg.RGBA{gg.Hex("#ff0000"), gg.Hex("#00ff00")}
		pie := component.PieComponent{World: center, Values: []float64{1, 1}, Radius: 10, Inner: 5, Colors: colors}
		require.NoError(t, DrawPie(rec, vp, pie, component.StyleComponent{Opacity: 0.5, StrokeWidth: 1}))
		assert.Equal(t, 2, rec.Count(OpFill))
		assert.Equal(t, 2, rec.Count(OpStroke))
		calls := rec.Calls()
		assert.InDelta(t, 0.5, calls[0].Color.A, 1e-9)
		path := calls[0].Paths[0]
		assert.True(t, path[0].Near(vmath.V2(128, 118), 1e-9))
		// Inner arc returns to the start angle
		assert.True(t, path[len(path)-1].Near(vmath.V2(128, 123), 1e-9))
	})
}

func TestDrawPolygonEvenOdd(t *testing.T) {
	vp := testViewport(t)
	rec := NewRecorder(256, 256)
	outer := []vmath.Vec2{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}, {X: 10, Y: 50}}
	hole := []vmath.Vec2{{X: 20, Y: 20}, {X: 40, Y: 20}, {X: 40, Y: 40}}
	other := []vmath.Vec2{{X: 100, Y: 100}, {X: 120, Y: 100}, {X: 110, Y: 120}}
	poly := component.PolygonComponent{Fragments: []component.Fragment{
		component.NewFragment([][]vmath.Vec2{outer, hole}),
		component.NewFragment([][]vmath.Vec2{other}),
	}}
	require.NoError(t, DrawPolygon(rec, vp, poly, component.DefaultStyle()))

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, OpFill, calls[0].Op)
	assert.True(t, calls[0].EvenOdd)
	assert.Len(t, calls[0].Paths, 3)
	assert.Equal(t, []bool{true, true, true}, calls[0].Closed)
	assert.Equal(t, OpStroke, calls[1].Op)
	assert.Equal(t, 1.0, calls[1].Width)
}

func TestDrawPointAndPath(t *testing.T) {
	vp := testViewport(t)
	rec := NewRecorder(256, 256)
	st := component.DefaultStyle()

	require.NoError(t, DrawPoint(rec, vp, component.PointComponent{World: vmath.V2(64, 64), Radius: 4}, st))
	require.NoError(t, DrawPath(rec, vp, component.PathComponent{World: []vmath.Vec2{{X: 0, Y: 0}}}, st))
	require.NoError(t, DrawPath(rec, vp, component.PathComponent{World: []vmath.Vec2{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}}}, st))
	DrawLabel(rec, vp, vmath.V2(64, 64), component.LabelComponent{Text: "x", Offset: vmath.V2(6, 0)})

	calls := rec.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, OpCircleFill, calls[0].Op)
	assert.Equal(t, 4.0, calls[0].Radius)
	assert.Equal(t, OpCircleStroke, calls[1].Op)
	assert.Equal(t, OpStroke, calls[2].Op)
	assert.Len(t, calls[2].Paths[0], 3)
	assert.Equal(t, OpText, calls[3].Op)
	assert.True(t, calls[3].Center.Near(vmath.V2(70, 64), 1e-9))
}
