package component

import (
	"github.com/lixenwraith/geomap/anim"
	"github.com/lixenwraith/geomap/vmath"
)

// CameraComponent holds gesture state of the single camera entity
type CameraComponent struct {
	// TargetZoom is the end zoom of the running zoom transition, accumulated by repeated wheel input
	TargetZoom float64
	Dragging   bool
	DragLast   vmath.Vec2
	DragMoved  bool
	Cursor     vmath.Vec2
	CursorIn   bool

	// Click is raised by a press and release without drag, consumed by hit-testing
	Click    bool
	ClickPos vmath.Vec2
	// Deselect is raised by Escape, consumed by hit-testing
	Deselect bool
}

// AnimationComponent attaches a running animation to the entity it animates
type AnimationComponent struct {
	Anim *anim.Animation
	// Name tags the animation so a newer one of the same kind replaces it
	Name string
}
