package system

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/event"
	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/locate"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/render"
	"github.com/lixenwraith/geomap/vmath"
)

type harness struct {
	world   *engine.World
	vp      *geo.Viewport
	queue   *event.Queue
	res     *engine.Resource
	camera  core.Entity
	basemap core.Entity
	points  core.Entity
	sel     *Selection
	rec     *render.Recorder
	metrics *cell.Metrics
	cells   *CellSystem
	hit     *HitTestSystem
	status  *StatusSystem
	render  *RenderSystem
	sched   *engine.Scheduler
}

func imageTransport() cell.Transport {
	return cell.TransportFunc(func(ctx context.Context, k cell.Key) (cell.Payload, error) {
		return cell.Payload{Image: image.NewRGBA(image.Rect(0, 0, 16, 16))}, nil
	})
}

func newHarness(t *testing.T, zoom float64, transport cell.Transport) *harness {
	t.Helper()
	vp, err := geo.NewViewport(geo.MustFit(geo.Mercator{}), geo.ViewportConfig{Width: 256, Height: 256, Zoom: zoom})
	require.NoError(t, err)

	h := &harness{world: engine.NewWorld(), vp: vp, queue: event.NewQueue(), sel: &Selection{}, rec: render.NewRecorder(256, 256)}
	h.res = engine.NewResource(vp, h.queue)
	h.metrics = cell.NewMetrics("test")

	h.camera = h.world.CreateEntity("camera")
	require.NoError(t, engine.AddComponent(h.world, h.camera, component.CameraComponent{TargetZoom: zoom}))
	h.basemap = h.world.CreateEntity("basemap")
	require.NoError(t, engine.AddComponent(h.world, h.basemap, component.LayerComponent{Index: 0, Kind: component.LayerBasemap, Visible: true}))
	h.points = h.world.CreateEntity("points")
	require.NoError(t, engine.AddComponent(h.world, h.points, component.LayerComponent{Index: 1, Kind: component.LayerPoints, Visible: true}))

	fetcher := cell.NewFetcher(transport, cell.FetcherOptions{Workers: 4, Metrics: h.metrics})
	h.cells = NewCellSystem(h.world, h.res, h.basemap, cell.NewTracker(1), fetcher, h.metrics)
	h.hit = NewHitTestSystem(h.world, h.res, h.camera, h.sel)
	h.status = NewStatusSystem(h.world, h.res)
	h.render = NewRenderSystem(h.world, h.res, h.rec, h.sel)
	systems := []engine.System{
		NewInputSystem(h.world, h.res, h.camera),
		NewAnimationSystem(h.world, h.res),
		h.cells,
		h.hit,
		h.render,
		h.status,
	}
	h.sched = engine.NewScheduler(h.world, h.res, systems)
	t.Cleanup(h.cells.Close)
	return h
}

func (h *harness) tick(t *testing.T, dt time.Duration, events ...event.InputEvent) {
	t.Helper()
	for _, ev := range events {
		h.queue.Push(ev)
	}
	require.NoError(t, h.sched.Tick(dt))
}

// tickUntil ticks until cond holds, failing after a deadline
func (h *harness) tickUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "condition not reached")
		h.tick(t, time.Millisecond)
		time.Sleep(time.Millisecond)
	}
}

func (h *harness) cellState(k cell.Key) (component.CellComponent, bool) {
	e, ok := h.cells.Entity(k)
	if !ok {
		return component.CellComponent{}, false
	}
	return engine.GetStore[component.CellComponent](h.world).Get(e)
}

func (h *harness) addPoint(t *testing.T, feature int, at vmath.Vec2, radius float64) core.Entity {
	t.Helper()
	e := h.world.CreateEntity("point")
	require.NoError(t, engine.AddComponent(h.world, e, component.MemberComponent{Layer: h.points, Feature: feature}))
	require.NoError(t, engine.AddComponent(h.world, e, component.PointComponent{World: at, Radius: radius}))
	return e
}

func near(t *testing.T, want, got vmath.Vec2) {
	t.Helper()
	assert.True(t, want.Near(got, 1e-6), "want %v got %v", want, got)
}

func TestSystemOrder(t *testing.T) {
	h := newHarness(t, 0, imageTransport())
	assert.Equal(t, []string{"input", "animation", "cell", "hittest", "render", "status"}, h.sched.SystemNames())
}

func TestInputDragPans(t *testing.T) {
	h := newHarness(t, 2, imageTransport())
	h.tick(t, 0,
		event.PointerDown(100, 100),
		event.PointerMove(101, 100), // below the drag threshold
		event.PointerMove(110, 100),
		event.PointerUp(110, 100),
	)
	near(t, vmath.V2(128-10.0/4, 128), h.vp.Center())

	cam := engine.MustGetComponent[component.CameraComponent](h.world, h.camera)
	assert.False(t, cam.Dragging)
	assert.False(t, cam.Click)
}

func TestInputKeys(t *testing.T) {
	tests := []struct {
		key  event.Key
		want vmath.Vec2
	}{
		{event.KeyLeft, vmath.V2(128-parameter.KeyPanPixels/4, 128)},
		{event.KeyRight, vmath.V2(128+parameter.KeyPanPixels/4, 128)},
		{event.KeyUp, vmath.V2(128, 128-parameter.KeyPanPixels/4)},
		{event.KeyDown, vmath.V2(128, 128+parameter.KeyPanPixels/4)},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			h := newHarness(t, 2, imageTransport())
			h.tick(t, 0, event.KeyPress(tt.key))
			near(t, tt.want, h.vp.Center())
		})
	}
}

func TestWheelZoomKeepsAnchor(t *testing.T) {
	h := newHarness(t, 2, imageTransport())
	anchor := vmath.V2(64, 64)
	w0 := h.vp.ScreenToWorld(anchor)

	h.tick(t, 0, event.ScrollAt(anchor.X, anchor.Y, 1))
	require.True(t, engine.HasComponent[component.AnimationComponent](h.world, h.camera))
	assert.Equal(t, 2.0, h.vp.Zoom())

	h.tick(t, parameter.ZoomDuration/2)
	mid := h.vp.Zoom()
	assert.Greater(t, mid, 2.0)
	assert.Less(t, mid, 3.0)
	near(t, anchor, h.vp.WorldToScreen(w0))

	h.tick(t, parameter.ZoomDuration)
	assert.Equal(t, 3.0, h.vp.Zoom())
	near(t, anchor, h.vp.WorldToScreen(w0))
	assert.False(t, engine.HasComponent[component.AnimationComponent](h.world, h.camera))
}

func TestKeyZoomAccumulates(t *testing.T) {
	h := newHarness(t, 2, imageTransport())
	h.tick(t, parameter.ZoomDuration, event.KeyPress(event.KeyZoomIn), event.KeyPress(event.KeyZoomIn))
	assert.Equal(t, 4.0, h.vp.Zoom())
	near(t, vmath.V2(128, 128), h.vp.Center())

	h.tick(t, parameter.ZoomDuration, event.KeyPress(event.KeyZoomOut))
	assert.Equal(t, 3.0, h.vp.Zoom())
}

func TestZoomClampedToRange(t *testing.T) {
	h := newHarness(t, 0, imageTransport())
	h.tick(t, parameter.ZoomDuration, event.ScrollAt(128, 128, -1))
	assert.Equal(t, 0.0, h.vp.Zoom())
	assert.False(t, engine.HasComponent[component.AnimationComponent](h.world, h.camera))
}

func TestResizeFollowsCanvas(t *testing.T) {
	h := newHarness(t, 1, imageTransport())
	h.tick(t, 0, event.Resize(300, 200))
	assert.Equal(t, vmath.V2(300, 200), h.vp.Size())
	w, ht := h.rec.Size()
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, ht)
}

func TestClickSelectsAndHovers(t *testing.T) {
	h := newHarness(t, 2, imageTransport())
	p := h.addPoint(t, 7, vmath.V2(128, 128), 6)

	var got []locate.HitResult
	var oks []bool
	h.hit.OnSelect = func(hit locate.HitResult, ok bool) {
		got = append(got, hit)
		oks = append(oks, ok)
	}

	h.tick(t, 0, event.PointerMove(129, 128))
	require.True(t, h.sel.HasHover)
	assert.Equal(t, p, h.sel.Hover.Entity)
	assert.Equal(t, 7, h.sel.Hover.Feature)
	assert.Equal(t, 1, h.sel.Hover.Layer)

	h.tick(t, 0, event.PointerDown(128, 128), event.PointerUp(128, 128))
	require.Len(t, oks, 1)
	assert.True(t, oks[0])
	assert.Equal(t, 7, got[0].Feature)
	assert.True(t, h.sel.HasSelected)
	assert.Equal(t, 1, h.rec.Count(render.OpCircleFill))

	h.tick(t, 0, event.PointerDown(10, 10), event.PointerUp(10, 10))
	require.Len(t, oks, 2)
	assert.False(t, oks[1])
	assert.False(t, h.sel.HasSelected)
	assert.False(t, h.sel.HasHover)

	h.tick(t, 0, event.PointerDown(128, 128), event.PointerUp(128, 128))
	require.True(t, h.sel.HasSelected)
	h.tick(t, 0, event.KeyPress(event.KeyEscape))
	assert.False(t, h.sel.HasSelected)

	h.tick(t, 0, event.InputEvent{Kind: event.KindLeave})
	assert.False(t, h.sel.HasHover)
}

func TestCellLifecycle(t *testing.T) {
	h := newHarness(t, 1, imageTransport())
	var bounds []geo.BBox
	h.status.OnLocationChanged = func(b geo.BBox) { bounds = append(bounds, b) }

	visible := h.vp.VisibleCells()
	require.Len(t, visible, 4)
	assert.True(t, h.res.Status.Loading)

	h.tickUntil(t, func() bool { return !h.res.Status.Loading })
	for _, k := range visible {
		c, ok := h.cellState(k)
		require.True(t, ok, k.String())
		assert.Equal(t, component.CellReady, c.State)
		assert.Equal(t, 1, c.Attempts)
	}
	require.Len(t, bounds, 1)
	assert.Equal(t, 4, h.rec.Count(render.OpImage))
	assert.InDelta(t, 4, testutil.ToFloat64(h.metrics.Requests), 0)

	lc := engine.MustGetComponent[component.LayerComponent](h.world, h.basemap)
	assert.True(t, lc.Painted)
	assert.False(t, lc.Dirty)

	// Only the top-left quadrant stays visible; the rest survives one cycle at zero
	h.vp.SetCenter(vmath.V2(16, 16))
	h.res.Status.ViewportChanged = true
	h.tick(t, 0)
	assert.Equal(t, 4, h.cells.Tracker().Len())
	assert.True(t, h.cells.Tracker().Pending(cell.FromTile(1, 1, 1)))
	require.Len(t, bounds, 2)

	h.res.Status.ViewportChanged = true
	h.tick(t, 0)
	assert.Equal(t, 1, h.cells.Tracker().Len())
	assert.InDelta(t, 3, testutil.ToFloat64(h.metrics.Evictions), 0)
	_, ok := h.cellState(cell.FromTile(1, 1, 1))
	assert.False(t, ok)
	assert.Len(t, engine.GetStore[component.CellComponent](h.world).All(), 1)

	// Evicted cells are still drawn from their last image while reloading
	h.vp.SetCenter(vmath.V2(128, 128))
	h.res.Status.ViewportChanged = true
	h.tick(t, 0)
	assert.Equal(t, 4, h.rec.Count(render.OpImage))
}

func TestCellEvictionWithStillCamera(t *testing.T) {
	h := newHarness(t, 1, imageTransport())
	h.tickUntil(t, func() bool { return !h.res.Status.Loading })
	gone := cell.FromTile(1, 1, 1)
	e, ok := h.cells.Entity(gone)
	require.True(t, ok)

	h.vp.SetCenter(vmath.V2(16, 16))
	h.res.Status.ViewportChanged = true
	h.tick(t, 0)
	require.True(t, h.cells.Tracker().Pending(gone))
	require.Equal(t, 4, h.cells.Tracker().Len())

	// No camera motion from here on
	h.tick(t, 0)
	assert.False(t, h.res.Status.ViewportChanged)
	assert.Equal(t, 1, h.cells.Tracker().Len())
	assert.False(t, h.cells.Tracker().Tracked(gone))
	_, ok = h.cells.Entity(gone)
	assert.False(t, ok)
	assert.False(t, h.world.Alive(e))
	assert.Len(t, engine.GetStore[component.CellComponent](h.world).All(), 1)
	assert.InDelta(t, 3, testutil.ToFloat64(h.metrics.Evictions), 0)

	h.tick(t, 0)
	assert.InDelta(t, 3, testutil.ToFloat64(h.metrics.Evictions), 0)
}

// flakyTransport fails the first attempt of every key
type flakyTransport struct {
	mu       sync.Mutex
	attempts map[cell.Key]int
}

func (f *flakyTransport) Fetch(ctx context.Context, k cell.Key) (cell.Payload, error) {
	f.mu.Lock()
	f.attempts[k]++
	n := f.attempts[k]
	f.mu.Unlock()
	if n == 1 {
		return cell.Payload{}, errors.New("unavailable")
	}
	return cell.Payload{Image: image.NewRGBA(image.Rect(0, 0, 8, 8))}, nil
}

func TestCellRetryOnReentry(t *testing.T) {
	h := newHarness(t, 1, &flakyTransport{attempts: make(map[cell.Key]int)})
	stay, back := cell.FromTile(0, 0, 1), cell.FromTile(1, 1, 1)

	h.tickUntil(t, func() bool {
		c, ok := h.cellState(back)
		return ok && c.State == component.CellFailed
	})
	h.tickUntil(t, func() bool {
		c, ok := h.cellState(stay)
		return ok && c.State == component.CellFailed
	})
	// Failed cells count as settled
	h.tickUntil(t, func() bool { return !h.res.Status.Loading })

	h.vp.SetCenter(vmath.V2(16, 16))
	h.res.Status.ViewportChanged = true
	h.tick(t, 0)
	h.vp.SetCenter(vmath.V2(128, 128))
	h.res.Status.ViewportChanged = true
	h.tick(t, 0)

	h.tickUntil(t, func() bool {
		c, _ := h.cellState(back)
		return c.State == component.CellReady
	})
	c, _ := h.cellState(back)
	assert.Equal(t, 2, c.Attempts)

	c, _ = h.cellState(stay)
	assert.Equal(t, component.CellFailed, c.State)
	assert.Equal(t, 1, c.Attempts)
}

func TestRenderFaultStopsTicking(t *testing.T) {
	h := newHarness(t, 0, imageTransport())
	var faults []*core.RenderFault
	sched := engine.NewScheduler(h.world, h.res, []engine.System{NewInputSystem(h.world, h.res, core.Entity(999))},
		engine.WithErrorHandler(func(f *core.RenderFault) { faults = append(faults, f) }))

	h.queue.Push(event.KeyPress(event.KeyLeft))
	err := sched.Tick(0)
	var rf *core.RenderFault
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "input", rf.System)
	assert.ErrorIs(t, err, core.ErrEntityNotFound)
	assert.ErrorIs(t, sched.Tick(0), core.ErrStopped)
	assert.Len(t, faults, 1)
}
