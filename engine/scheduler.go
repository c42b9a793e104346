package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/parameter"
)

// Context is handed to every system update of one tick
type Context struct {
	World    *World
	Resource *Resource
	Tick     uint64

	scheduler *Scheduler
}

// RunLater enqueues fn to run after every system of this tick finished and before removals flush
// fn is skipped when e is not NoEntity and no longer exists at drain time
func (c *Context) RunLater(e core.Entity, fn func()) {
	c.scheduler.deferred = append(c.scheduler.deferred, deferredCall{entity: e, fn: fn})
}

// Post forwards to Scheduler.Post; safe to call from any goroutine after the tick returned
func (c *Context) Post(e core.Entity, fn func()) {
	c.scheduler.Post(e, fn)
}

type deferredCall struct {
	entity core.Entity
	fn     func()
}

// Scheduler runs a fixed, caller-assembled list of systems once per tick
// Tick must be called from a single goroutine; Post is the only goroutine-safe entry
type Scheduler struct {
	world   *World
	res     *Resource
	systems []System
	clock   Clock

	// Run-later queue, engine goroutine only
	deferred []deferredCall

	// Async completions, drained into deferred at the sync point
	inboxMu sync.Mutex
	inbox   []deferredCall

	tick    uint64
	stopped atomic.Bool
	fault   *core.RenderFault
	onError func(*core.RenderFault)
}

// SchedulerOption configures a Scheduler at construction
type SchedulerOption func(*Scheduler)

// WithErrorHandler sets the hook invoked exactly once on a fatal fault
func WithErrorHandler(fn func(*core.RenderFault)) SchedulerOption {
	return func(s *Scheduler) { s.onError = fn }
}

// WithClock replaces the wall clock used by Run
func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// NewScheduler builds a scheduler over an explicit system order
// The slice is copied; order never changes afterwards
func NewScheduler(w *World, res *Resource, systems []System, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		world:    w,
		res:      res,
		systems:  append([]System(nil), systems...),
		clock:    NewTimeProvider(),
		deferred: make([]deferredCall, 0, 32),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Post hands a closure bound to e from any goroutine to the engine goroutine
// It runs at the next sync point, in arrival order, after closures enqueued by systems
func (s *Scheduler) Post(e core.Entity, fn func()) {
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, deferredCall{entity: e, fn: fn})
	s.inboxMu.Unlock()
}

// Tick runs one frame: systems in order, deferred closures in enqueue order, then removal flush
// Returns the RenderFault of this tick once, and core.ErrStopped for every tick after a fault
func (s *Scheduler) Tick(dt time.Duration) error {
	if s.stopped.Load() {
		return core.ErrStopped
	}
	s.tick++
	if s.res != nil && s.res.Time != nil {
		s.res.Time.Update(dt, s.tick)
	}

	ctx := &Context{World: s.world, Resource: s.res, Tick: s.tick, scheduler: s}
	for _, sys := range s.systems {
		if f := core.CaptureFault(sys.Name(), s.tick, func() { sys.Update(ctx, dt) }); f != nil {
			return s.fail(f)
		}
	}

	s.inboxMu.Lock()
	s.deferred = append(s.deferred, s.inbox...)
	s.inbox = s.inbox[:0]
	s.inboxMu.Unlock()

	// Closures may enqueue further closures; they run in the same drain
	for i := 0; i < len(s.deferred); i++ {
		d := s.deferred[i]
		if d.entity != core.NoEntity && !s.world.ContainsEntity(d.entity) {
			continue
		}
		if f := core.CaptureFault("run_later", s.tick, d.fn); f != nil {
			return s.fail(f)
		}
	}
	s.deferred = s.deferred[:0]

	s.world.FlushRemovals()
	return nil
}

// fail stops the scheduler and surfaces the fault through the hook exactly once
func (s *Scheduler) fail(f *core.RenderFault) error {
	s.stopped.Store(true)
	s.fault = f
	s.deferred = s.deferred[:0]
	core.Logger().Error("render_fault", "system", f.System, "tick", f.Tick, "cause", f.Cause)
	if s.onError != nil {
		s.onError(f)
	}
	return f
}

// Run ticks every interval until ctx is done or a fault stops the scheduler
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = parameter.TickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := s.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.clock.Now()
			dt := min(now.Sub(last), parameter.MaxTickDelta)
			last = now
			if err := s.Tick(dt); err != nil {
				return err
			}
		}
	}
}

// Stopped reports whether a fault halted the scheduler
func (s *Scheduler) Stopped() bool {
	return s.stopped.Load()
}

// Fault returns the fault that stopped the scheduler, nil while running
func (s *Scheduler) Fault() *core.RenderFault {
	return s.fault
}

// TickCount returns the number of ticks started
func (s *Scheduler) TickCount() uint64 {
	return s.tick
}

// SystemNames returns the fixed system order
func (s *Scheduler) SystemNames() []string {
	names := make([]string, len(s.systems))
	for i, sys := range s.systems {
		names[i] = sys.Name()
	}
	return names
}
