package core

import (
	"runtime/debug"
)

// CaptureFault runs fn and converts a panic into a RenderFault tagged with the system name and tick
// Returns nil when fn completes normally
func CaptureFault(system string, tick uint64, fn func()) (fault *RenderFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &RenderFault{
				System: system,
				Tick:   tick,
				Cause:  r,
				Stack:  debug.Stack(),
			}
		}
	}()
	fn()
	return nil
}

// Go runs fn in a new goroutine with panic recovery
// A recovered panic is logged and passed to onPanic when it is not nil
func Go(name string, fn func(), onPanic func(*RenderFault)) {
	go func() {
		if f := CaptureFault(name, 0, fn); f != nil {
			Logger().Error("goroutine_panic", "name", name, "cause", f.Cause)
			if onPanic != nil {
				onPanic(f)
			}
		}
	}()
}
