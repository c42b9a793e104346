package anim

import "time"

// Direction selects whether progress runs 0→1 or 1→0
type Direction uint8

const (
	Forward Direction = iota
	Back
)

func (d Direction) Flip() Direction {
	if d == Forward {
		return Back
	}
	return Forward
}

func (d Direction) String() string {
	if d == Back {
		return "back"
	}
	return "forward"
}

// Loop is the policy applied when time passes the duration
type Loop uint8

const (
	// LoopDisabled clamps at the end and finishes
	LoopDisabled Loop = iota
	// LoopSwitchDirection wraps and flips direction once per elapsed period
	LoopSwitchDirection
	// LoopKeepDirection wraps without flipping
	LoopKeepDirection
)

// Animation drives one or more animators from a single eased progress value
// Owned by the entity it animates; not safe for concurrent use
type Animation struct {
	Duration  time.Duration
	Easing    Easing
	Animators []Animator
	Direction Direction
	Loop      Loop

	elapsed  time.Duration // Unwrapped time since start
	time     time.Duration // Position within the current period
	periods  int64         // Periods already accounted for direction flips
	finished bool
}

// New creates a forward, non-looping animation; a nil easing is Linear
func New(d time.Duration, easing Easing, animators ...Animator) *Animation {
	if easing == nil {
		easing = Linear
	}
	return &Animation{Duration: d, Easing: easing, Animators: animators}
}

// Advance sets the unwrapped animation time and applies the loop policy
func (a *Animation) Advance(t time.Duration) {
	if a.finished {
		return
	}
	if t < 0 {
		t = 0
	}
	a.elapsed = t

	if a.Duration <= 0 {
		a.time = 0
		a.finished = a.Loop == LoopDisabled
		return
	}

	switch a.Loop {
	case LoopDisabled:
		if t >= a.Duration {
			a.time = a.Duration
			a.finished = true
			return
		}
		a.time = t
	case LoopSwitchDirection:
		periods := int64(t / a.Duration)
		if (periods-a.periods)%2 != 0 {
			a.Direction = a.Direction.Flip()
		}
		a.periods = periods
		a.time = t % a.Duration
	case LoopKeepDirection:
		a.periods = int64(t / a.Duration)
		a.time = t % a.Duration
	}
}

// Step advances by dt from the current unwrapped time
func (a *Animation) Step(dt time.Duration) {
	a.Advance(a.elapsed + dt)
}

// Progress returns linear progress in [0,1], reversed when running Back
func (a *Animation) Progress() float64 {
	p := 1.0
	if a.Duration > 0 {
		p = float64(a.time) / float64(a.Duration)
	}
	if a.Direction == Back {
		p = 1 - p
	}
	return p
}

// Value returns the eased progress fed to animators
func (a *Animation) Value() float64 {
	return a.Easing(a.Progress())
}

// Evaluate feeds the eased progress to every animator in order
func (a *Animation) Evaluate() {
	v := a.Value()
	for _, an := range a.Animators {
		an.Apply(v)
	}
}

// Finished reports whether a non-looping animation reached its end
func (a *Animation) Finished() bool { return a.finished }

// Time returns the position within the current period
func (a *Animation) Time() time.Duration { return a.time }

// Elapsed returns the unwrapped time since start
func (a *Animation) Elapsed() time.Duration { return a.elapsed }

// Reset rewinds to the start without changing direction
func (a *Animation) Reset() {
	a.elapsed, a.time, a.periods, a.finished = 0, 0, 0, false
}
