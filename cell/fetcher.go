package cell

import (
	"context"
	"sync"
	"time"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/parameter"
)

// Future is the shared result of one in-flight fetch unit
type Future struct {
	key    Key
	done   chan struct{}
	cancel context.CancelFunc

	// Written once before done closes
	payload Payload
	err     error

	// Guarded by Fetcher.mu
	callbacks []func(Payload, error)
	abandoned bool
}

// Key returns the cell the unit loads
func (f *Future) Key() Key { return f.key }

// Done is closed when the result is available
func (f *Future) Done() <-chan struct{} { return f.done }

// Result blocks until the unit completes
func (f *Future) Result() (Payload, error) {
	<-f.done
	return f.payload, f.err
}

// Wait blocks until the unit completes or ctx ends
func (f *Future) Wait(ctx context.Context) (Payload, error) {
	select {
	case <-f.done:
		return f.payload, f.err
	case <-ctx.Done():
		return Payload{}, ctx.Err()
	}
}

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	Workers int
	Timeout time.Duration
	Metrics *Metrics
}

// Fetcher runs transport requests off the engine goroutine with one in-flight unit per key
// Concurrent Fetch calls for a key share the same Future
type Fetcher struct {
	transport Transport
	timeout   time.Duration
	metrics   *Metrics
	sem       chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inflight map[Key]*Future
}

// NewFetcher creates a fetcher over transport
func NewFetcher(transport Transport, opts FetcherOptions) *Fetcher {
	if opts.Workers <= 0 {
		opts.Workers = parameter.FetchWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = parameter.FetchTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Fetcher{
		transport: transport,
		timeout:   opts.Timeout,
		metrics:   opts.Metrics,
		sem:       make(chan struct{}, opts.Workers),
		ctx:       ctx,
		cancel:    cancel,
		inflight:  make(map[Key]*Future),
	}
}

// Fetch starts or joins the unit for key; onDone, when not nil, runs on the fetch
// goroutine after the result is set and must marshal back to the engine goroutine itself
func (f *Fetcher) Fetch(key Key, onDone func(Payload, error)) *Future {
	f.mu.Lock()
	if fut, ok := f.inflight[key]; ok {
		if onDone != nil {
			fut.callbacks = append(fut.callbacks, onDone)
		}
		f.mu.Unlock()
		f.metrics.coalesced()
		return fut
	}

	ctx, cancel := context.WithCancel(f.ctx)
	fut := &Future{key: key, done: make(chan struct{}), cancel: cancel}
	if onDone != nil {
		fut.callbacks = append(fut.callbacks, onDone)
	}
	f.inflight[key] = fut
	f.mu.Unlock()

	f.metrics.requested()
	f.metrics.inFlight(1)
	core.Go("cell_fetch", func() { f.run(ctx, fut) }, func(rf *core.RenderFault) {
		f.complete(fut, Payload{}, &core.FetchError{Key: key.String(), Err: rf})
	})
	return fut
}

func (f *Fetcher) run(ctx context.Context, fut *Future) {
	select {
	case f.sem <- struct{}{}:
		defer func() { <-f.sem }()
	case <-ctx.Done():
		f.complete(fut, Payload{}, &core.FetchError{Key: fut.key.String(), Err: ctx.Err()})
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	p, err := f.transport.Fetch(reqCtx, fut.key)
	if err == nil {
		p, err = Decode(p)
	}
	if err != nil {
		err = &core.FetchError{Key: fut.key.String(), Err: err}
	}
	f.complete(fut, p, err)
}

// complete publishes the result once and releases the in-flight slot
func (f *Fetcher) complete(fut *Future, p Payload, err error) {
	f.mu.Lock()
	select {
	case <-fut.done:
		f.mu.Unlock()
		return
	default:
	}
	fut.payload, fut.err = p, err
	if cur, ok := f.inflight[fut.key]; ok && cur == fut {
		delete(f.inflight, fut.key)
	}
	callbacks := fut.callbacks
	fut.callbacks = nil
	abandoned := fut.abandoned
	close(fut.done)
	f.mu.Unlock()

	fut.cancel()
	f.metrics.inFlight(-1)
	if abandoned {
		core.Logger().Debug("cell_fetch_discarded", "key", fut.key.String())
	} else if err != nil {
		f.metrics.failed()
		core.Logger().Debug("cell_fetch_failed", "key", fut.key.String(), "error", err)
	}
	for _, cb := range callbacks {
		cb(p, err)
	}
}

// Abandon detaches the in-flight unit for key and cancels its context
// A transport that ignores cancellation still finishes; its callbacks still run and
// the caller discards the result for untracked cells
func (f *Fetcher) Abandon(key Key) bool {
	f.mu.Lock()
	fut, ok := f.inflight[key]
	if ok {
		delete(f.inflight, key)
		fut.abandoned = true
	}
	f.mu.Unlock()
	if !ok {
		return false
	}
	fut.cancel()
	f.metrics.abandoned()
	return true
}

// InFlight reports whether key has a unit in flight
func (f *Fetcher) InFlight(key Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.inflight[key]
	return ok
}

// Pending returns the number of units in flight
func (f *Fetcher) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inflight)
}

// Close cancels every in-flight unit
func (f *Fetcher) Close() {
	f.cancel()
}
