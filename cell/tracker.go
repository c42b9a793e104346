package cell

import (
	"slices"

	"github.com/lixenwraith/geomap/parameter"
)

// Diff is the outcome of one tracker update cycle
type Diff struct {
	// Entered are keys whose counter went from 0 to 1, in visible order
	Entered []Key

	// Left are keys that dropped out of the visible set, sorted
	Left []Key

	// Evicted are keys that stayed at zero through the debounce window, sorted
	Evicted []Key
}

// Empty reports whether the cycle changed nothing
func (d Diff) Empty() bool {
	return len(d.Entered) == 0 && len(d.Left) == 0 && len(d.Evicted) == 0
}

// Tracker reference-counts cell keys and debounces eviction of unreferenced keys
// A key reaching zero waits in the pending set; it is evicted only after surviving
// debounce full cycles at zero without re-entry
// Engine goroutine only
type Tracker struct {
	debounce int
	counts   map[Key]int
	pending  map[Key]int // Key -> cycles survived at zero
	visible  map[Key]struct{}
}

// NewTracker creates a tracker; debounce < 1 uses parameter.EvictDebounceCycles
func NewTracker(debounce int) *Tracker {
	if debounce < 1 {
		debounce = parameter.EvictDebounceCycles
	}
	return &Tracker{
		debounce: debounce,
		counts:   make(map[Key]int),
		pending:  make(map[Key]int),
		visible:  make(map[Key]struct{}),
	}
}

// Request increments the counter of k, inserting it at 1 when new
// Returns true when the key became referenced (0 -> 1)
func (t *Tracker) Request(k Key) bool {
	t.counts[k]++
	delete(t.pending, k)
	return t.counts[k] == 1
}

// Release decrements the counter of k; reaching zero queues k for eviction
// Releasing an untracked or zero key is a no-op
func (t *Tracker) Release(k Key) {
	n, ok := t.counts[k]
	if !ok || n == 0 {
		return
	}
	n--
	t.counts[k] = n
	if n == 0 {
		if _, queued := t.pending[k]; !queued {
			t.pending[k] = 0
		}
	}
}

// Flush completes one cycle for pending keys: those past the debounce window are
// dropped and returned sorted, the rest age by one cycle
func (t *Tracker) Flush() []Key {
	var evicted []Key
	for k, age := range t.pending {
		if age >= t.debounce {
			evicted = append(evicted, k)
			delete(t.pending, k)
			delete(t.counts, k)
			continue
		}
		t.pending[k] = age + 1
	}
	slices.Sort(evicted)
	return evicted
}

// Update diffs visible against the previous visible set, adjusts counters and flushes
func (t *Tracker) Update(visible []Key) Diff {
	var d Diff
	next := make(map[Key]struct{}, len(visible))
	for _, k := range visible {
		if _, dup := next[k]; dup {
			continue
		}
		next[k] = struct{}{}
		if _, was := t.visible[k]; was {
			continue
		}
		if t.Request(k) {
			d.Entered = append(d.Entered, k)
		}
	}
	for k := range t.visible {
		if _, still := next[k]; !still {
			d.Left = append(d.Left, k)
			t.Release(k)
		}
	}
	slices.Sort(d.Left)
	t.visible = next
	d.Evicted = t.Flush()
	return d
}

// Count returns the reference counter of k, 0 when untracked
func (t *Tracker) Count(k Key) int {
	return t.counts[k]
}

// Tracked reports whether k has a cache entry (referenced or pending eviction)
func (t *Tracker) Tracked(k Key) bool {
	_, ok := t.counts[k]
	return ok
}

// Pending reports whether k sits at zero awaiting eviction
func (t *Tracker) Pending(k Key) bool {
	_, ok := t.pending[k]
	return ok
}

// Visible reports whether k was in the last visible set
func (t *Tracker) Visible(k Key) bool {
	_, ok := t.visible[k]
	return ok
}

// Len returns the number of tracked keys
func (t *Tracker) Len() int {
	return len(t.counts)
}

// Reset forgets every key and returns them sorted for cleanup
func (t *Tracker) Reset() []Key {
	keys := make([]Key, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	clear(t.counts)
	clear(t.pending)
	clear(t.visible)
	return keys
}
