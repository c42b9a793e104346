package anim

import "math"

// Easing maps linear progress in [0,1] to eased progress
type Easing func(t float64) float64

func Linear(t float64) float64     { return t }
func EaseInQuad(t float64) float64 { return t * t }
func EaseOutQuad(t float64) float64 {
	return t * (2 - t)
}

func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func EaseOutCubic(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

// EaseInOutSine is used by the camera zoom transition
func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

var easings = map[string]Easing{
	"linear":           Linear,
	"ease_in_quad":     EaseInQuad,
	"ease_out_quad":    EaseOutQuad,
	"ease_in_out":      EaseInOutQuad,
	"ease_out_cubic":   EaseOutCubic,
	"ease_in_out_sine": EaseInOutSine,
}

// EasingByName returns a named easing, Linear when unknown
func EasingByName(name string) Easing {
	if e, ok := easings[name]; ok {
		return e
	}
	return Linear
}
