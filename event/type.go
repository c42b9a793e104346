package event

import "github.com/lixenwraith/geomap/vmath"

// Kind identifies an input event
type Kind uint8

const (
	KindNone Kind = iota
	KindPointerMove
	KindPointerDown
	KindPointerUp
	KindScroll
	KindKey
	KindResize
	KindLeave
)

var kindNames = [...]string{
	KindNone:        "none",
	KindPointerMove: "pointer_move",
	KindPointerDown: "pointer_down",
	KindPointerUp:   "pointer_up",
	KindScroll:      "scroll",
	KindKey:         "key",
	KindResize:      "resize",
	KindLeave:       "leave",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Key is a navigation key understood by the camera
type Key uint8

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyZoomIn
	KeyZoomOut
	KeyEscape
)

var keyNames = [...]string{"none", "left", "right", "up", "down", "zoom_in", "zoom_out", "escape"}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "unknown"
}

// InputEvent is one pointer, wheel, key or resize event in client pixels
type InputEvent struct {
	Kind Kind

	// Pos is the pointer position for pointer and scroll events
	Pos vmath.Vec2

	// Scroll is the wheel delta in notches, positive zooms in
	Scroll float64

	Key Key

	// Width and Height carry the new client size for KindResize
	Width, Height float64
}

// PointerMove builds a pointer-move event
func PointerMove(x, y float64) InputEvent {
	return InputEvent{Kind: KindPointerMove, Pos: vmath.V2(x, y)}
}

// PointerDown builds a button-press event
func PointerDown(x, y float64) InputEvent {
	return InputEvent{Kind: KindPointerDown, Pos: vmath.V2(x, y)}
}

// PointerUp builds a button-release event
func PointerUp(x, y float64) InputEvent {
	return InputEvent{Kind: KindPointerUp, Pos: vmath.V2(x, y)}
}

// ScrollAt builds a wheel event anchored at a pointer position
func ScrollAt(x, y, notches float64) InputEvent {
	return InputEvent{Kind: KindScroll, Pos: vmath.V2(x, y), Scroll: notches}
}

// KeyPress builds a navigation key event
func KeyPress(k Key) InputEvent {
	return InputEvent{Kind: KindKey, Key: k}
}

// Resize builds a client size change
func Resize(w, h float64) InputEvent {
	return InputEvent{Kind: KindResize, Width: w, Height: h}
}
