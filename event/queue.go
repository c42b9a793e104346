package event

import (
	"sync/atomic"

	"github.com/lixenwraith/geomap/parameter"
)

// Queue is a lock-free MPSC ring buffer for input events
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK (terminal poller, host callbacks)
//   - Consume: Single consumer (input system on the engine goroutine)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest events overwritten when full
type Queue struct {
	events    [parameter.InputQueueSize]InputEvent
	published [parameter.InputQueueSize]atomic.Bool // True = slot fully written
	head      atomic.Uint64                         // Read index
	tail      atomic.Uint64                         // Write index
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push adds an event using lock-free CAS with published flags pattern
func (q *Queue) Push(ev InputEvent) {
	for {
		tail := q.tail.Load()
		next := tail + 1
		if !q.tail.CompareAndSwap(tail, next) {
			continue
		}
		idx := tail & parameter.InputBufferMask
		q.events[idx] = ev
		q.published[idx].Store(true) // MUST be after write

		// Drop unread events being overwritten
		head := q.head.Load()
		if next-head > parameter.InputQueueSize {
			q.head.CompareAndSwap(head, next-parameter.InputQueueSize)
		}
		return
	}
}

// Consume returns pending events in FIFO order and advances head
// Stops early at a slot whose writer has not published yet
func (q *Queue) Consume() []InputEvent {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if tail == head {
			return nil
		}

		n := tail - head
		if n > parameter.InputQueueSize {
			n = parameter.InputQueueSize
			head = tail - parameter.InputQueueSize
		}

		out := make([]InputEvent, 0, n)
		for i := uint64(0); i < n; i++ {
			idx := (head + i) & parameter.InputBufferMask
			if !q.published[idx].Load() {
				break
			}
			out = append(out, q.events[idx])
			q.published[idx].Store(false)
		}

		if q.head.CompareAndSwap(head, head+uint64(len(out))) {
			if len(out) == 0 {
				return nil
			}
			return out
		}
	}
}

// Len returns approximate pending event count
func (q *Queue) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail <= head {
		return 0
	}
	return min(int(tail-head), parameter.InputQueueSize)
}
