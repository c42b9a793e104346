// Package mapview assembles the world, resources and systems of one interactive map
package mapview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/config"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/event"
	"github.com/lixenwraith/geomap/feature"
	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/geocode"
	"github.com/lixenwraith/geomap/locate"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/render"
	"github.com/lixenwraith/geomap/system"
	"github.com/lixenwraith/geomap/vmath"
)

// Options configures a Map; zero fields fall back to Config-driven defaults
type Options struct {
	Config config.Config

	// Canvas receives frames; nil records draw calls into a render.Recorder
	Canvas render.Canvas
	// Input is shared with an event source created before the map; nil allocates one
	Input *event.Queue
	// Transport is the basemap origin; nil uses Config.TileURL or procedural tiles
	Transport cell.Transport
	// Redis overrides the client built from Config.RedisAddr
	Redis cell.RedisClient
	// Geocoder resolves Config.Location; nil chains the configured sources
	Geocoder geocode.Geocoder
	Metrics  *cell.Metrics
	Clock    engine.Clock

	// Callbacks run on the engine goroutine
	OnError           func(*core.RenderFault)
	OnLocationChanged func(geo.BBox)
	OnSelect          func(hit locate.HitResult, ok bool)
	OnLoadingChanged  func(loading bool)
}

// Map is one interactive map instance
// Tick, Run and the world-mutating methods belong to a single engine goroutine; Push is safe from any goroutine
type Map struct {
	cfg     config.Config
	world   *engine.World
	res     *engine.Resource
	queue   *event.Queue
	canvas  render.Canvas
	metrics *cell.Metrics

	camera    core.Entity
	basemap   core.Entity
	nextIndex int
	selection *system.Selection

	cells  *system.CellSystem
	hit    *system.HitTestSystem
	render *system.RenderSystem
	sched  *engine.Scheduler

	closers []io.Closer
}

// New validates the configuration, resolves the initial location and builds the system pipeline
func New(ctx context.Context, opts Options) (*Map, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	proj, err := geo.ByName(cfg.Projection)
	if err != nil {
		return nil, err
	}
	fit, err := geo.Fit(proj, parameter.WorldSize)
	if err != nil {
		return nil, err
	}

	vc := geo.ViewportConfig{
		Width:        float64(cfg.Width),
		Height:       float64(cfg.Height),
		Zoom:         cfg.Zoom,
		MinZoom:      cfg.MinZoom,
		MaxZoom:      cfg.MaxZoom,
		HasZoomRange: true,
		WrapX:        cfg.WrapX,
	}
	if cfg.HasCenter || cfg.CenterLon != 0 || cfg.CenterLat != 0 {
		vc.Center, vc.HasCenter = fit.Project(geo.LL(cfg.CenterLon, cfg.CenterLat)), true
	}
	vp, err := geo.NewViewport(fit, vc)
	if err != nil {
		return nil, err
	}

	m := &Map{
		cfg:       cfg,
		world:     engine.NewWorld(),
		queue:     opts.Input,
		canvas:    opts.Canvas,
		metrics:   opts.Metrics,
		selection: &system.Selection{},
		nextIndex: 1,
	}
	if cfg.Location != "" {
		if err := m.locate(ctx, vp, opts.Geocoder); err != nil {
			return nil, err
		}
	}
	if m.queue == nil {
		m.queue = event.NewQueue()
	}
	if m.canvas == nil {
		m.canvas = render.NewRecorder(cfg.Width, cfg.Height)
	}
	if m.metrics == nil {
		m.metrics = cell.NewMetrics("geomap")
	}
	m.res = engine.NewResource(vp, m.queue)

	m.camera = m.world.CreateEntity("camera")
	if err := engine.AddComponent(m.world, m.camera, component.CameraComponent{TargetZoom: vp.Zoom()}); err != nil {
		return nil, err
	}
	m.basemap = m.world.CreateEntity("basemap")
	if err := engine.AddComponent(m.world, m.basemap, component.LayerComponent{
		Index: 0, Name: "basemap", Kind: component.LayerBasemap, Visible: true,
	}); err != nil {
		return nil, err
	}

	transport, closers := buildTransport(cfg, opts, m.metrics)
	m.closers = append(m.closers, closers...)
	fetcher := cell.NewFetcher(transport, cell.FetcherOptions{
		Workers: cfg.FetchWorkers,
		Timeout: cfg.FetchTimeout,
		Metrics: m.metrics,
	})

	input := system.NewInputSystem(m.world, m.res, m.camera)
	input.ZoomDuration = cfg.ZoomDuration
	m.cells = system.NewCellSystem(m.world, m.res, m.basemap, cell.NewTracker(cfg.EvictDebounce), fetcher, m.metrics)
	m.hit = system.NewHitTestSystem(m.world, m.res, m.camera, m.selection)
	m.hit.OnSelect = opts.OnSelect
	m.render = system.NewRenderSystem(m.world, m.res, m.canvas, m.selection)
	status := system.NewStatusSystem(m.world, m.res)
	status.OnLocationChanged = opts.OnLocationChanged
	status.OnLoadingChanged = opts.OnLoadingChanged

	// Fixed order: camera input, then time, then data, then picking, then pixels, then reporting
	systems := []engine.System{
		input,
		system.NewAnimationSystem(m.world, m.res),
		m.cells,
		m.hit,
		m.render,
		status,
	}
	schedOpts := []engine.SchedulerOption{engine.WithErrorHandler(opts.OnError)}
	if opts.Clock != nil {
		schedOpts = append(schedOpts, engine.WithClock(opts.Clock))
	}
	m.sched = engine.NewScheduler(m.world, m.res, systems, schedOpts...)

	core.Logger().Info("map_created",
		"projection", proj.Name(),
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"zoom", vp.Zoom(),
		"systems", m.sched.SystemNames())
	return m, nil
}

// locate fits the viewport to the geocoded Config.Location
func (m *Map) locate(ctx context.Context, vp *geo.Viewport, g geocode.Geocoder) error {
	if g == nil {
		chain, closers, err := buildGeocoder(m.cfg)
		if err != nil {
			return err
		}
		defer func() {
			for _, c := range closers {
				_ = c.Close()
			}
		}()
		g = chain
	}
	place, err := geocode.Resolve(ctx, g, m.cfg.Location)
	if err != nil {
		return err
	}
	vp.FitBounds(place.Bounds)
	return nil
}

// Tick runs one frame; after a render fault every call returns core.ErrStopped
func (m *Map) Tick(dt time.Duration) error {
	return m.sched.Tick(dt)
}

// Run ticks at the configured interval until ctx ends or a fault stops the map
func (m *Map) Run(ctx context.Context) error {
	return m.sched.Run(ctx, m.cfg.TickInterval)
}

// Push queues an input event for the next tick
func (m *Map) Push(ev event.InputEvent) {
	m.queue.Push(ev)
}

// Queue is the input queue hosts feed directly
func (m *Map) Queue() *event.Queue {
	return m.queue
}

// LoadGeoJSON adds the features of a FeatureCollection as new layers above the existing ones
func (m *Map) LoadGeoJSON(name string, data []byte) (feature.Result, error) {
	l := feature.NewLoader(m.world, m.res.Viewport.Fit())
	l.BaseIndex = m.nextIndex
	res, err := l.LoadBytes(name, data)
	m.nextIndex += len(res.Layers)
	if len(res.Layers) > 0 {
		m.res.Status.Redraw = true
		m.res.Status.Loading = true
	}
	return res, err
}

// Loading reports whether a visible layer still awaits its first complete paint
func (m *Map) Loading() bool {
	return m.res.Status.Loading
}

// Hover returns the feature under the cursor
func (m *Map) Hover() (locate.HitResult, bool) {
	return m.selection.Hover, m.selection.HasHover
}

// Selection returns the last clicked feature
func (m *Map) Selection() (locate.HitResult, bool) {
	return m.selection.Selected, m.selection.HasSelected
}

// Locate hit-tests a client position against the current frame
func (m *Map) Locate(p vmath.Vec2) (locate.HitResult, bool) {
	return m.hit.Locate(p)
}

// DrawCalls returns the last frame when the canvas records; nil otherwise
func (m *Map) DrawCalls() []render.DrawCall {
	if r, ok := m.canvas.(*render.Recorder); ok {
		return r.Calls()
	}
	return nil
}

// Snapshot captures the canvas
func (m *Map) Snapshot() image.Image {
	return m.canvas.Snapshot()
}

// Frames counts repaints, letting hosts present only changed frames
func (m *Map) Frames() uint64 {
	return m.render.Frames()
}

// Bounds is the visible geographic box
func (m *Map) Bounds() geo.BBox {
	return m.res.Viewport.VisibleBounds()
}

func (m *Map) Viewport() *geo.Viewport { return m.res.Viewport }
func (m *Map) World() *engine.World    { return m.world }
func (m *Map) Metrics() *cell.Metrics  { return m.metrics }

// Fault returns the render fault that stopped the map, nil while running
func (m *Map) Fault() *core.RenderFault {
	return m.sched.Fault()
}

// Close stops tile fetching and releases external clients
func (m *Map) Close() error {
	m.cells.Close()
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}
