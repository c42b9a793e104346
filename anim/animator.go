package anim

import (
	"github.com/gogpu/gg"

	"github.com/lixenwraith/geomap/vmath"
)

// Animator writes one interpolated field for an eased progress value
type Animator interface {
	Apply(p float64)
}

// NumberAnimator interpolates a scalar field
type NumberAnimator struct {
	From, To float64
	Set      func(float64)
}

func (a NumberAnimator) Apply(p float64) {
	a.Set(vmath.Lerp(a.From, a.To, p))
}

// VectorAnimator interpolates a 2D field
type VectorAnimator struct {
	From, To vmath.Vec2
	Set      func(vmath.Vec2)
}

func (a VectorAnimator) Apply(p float64) {
	a.Set(vmath.LerpVec2(a.From, a.To, p))
}

// ColorAnimator interpolates a color field component-wise
type ColorAnimator struct {
	From, To gg.RGBA
	Set      func(gg.RGBA)
}

func (a ColorAnimator) Apply(p float64) {
	a.Set(a.From.Lerp(a.To, p))
}

// AnimatorFunc adapts a function to Animator
type AnimatorFunc func(p float64)

func (f AnimatorFunc) Apply(p float64) { f(p) }
