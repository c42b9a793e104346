package parameter

import "time"

// Engine Timing
const (
	// TickInterval is the default scheduler tick (~60 FPS)
	TickInterval = 16 * time.Millisecond

	// MaxTickDelta caps dt handed to systems after a stall (debugger, suspended host)
	MaxTickDelta = 250 * time.Millisecond
)

// Input Queue
const (
	// InputQueueSize is the fixed capacity of the input ring buffer
	InputQueueSize = 256

	// InputBufferMask is the bitmask for fast modulo operations (256 - 1)
	InputBufferMask = 255
)
