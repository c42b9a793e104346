package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/geomap/event"
)

// Translator converts tcell events into map input events
// It tracks the primary button so motion becomes move, press or release
type Translator struct {
	down bool
}

// Translate maps ev; ok is false for events the map ignores, quit is set for quit keys
func (t *Translator) Translate(ev tcell.Event) (in event.InputEvent, ok bool, quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		return t.mouse(ev), true, false

	case *tcell.EventKey:
		k, quit := translateKey(ev.Key(), ev.Rune())
		if quit {
			return event.InputEvent{}, false, true
		}
		if k == event.KeyNone {
			return event.InputEvent{}, false, false
		}
		return event.KeyPress(k), true, false

	case *tcell.EventResize:
		w, h := ev.Size()
		pw, ph := PixelSize(w, h)
		return event.Resize(float64(pw), float64(ph)), true, false

	case *tcell.EventFocus:
		if !ev.Focused {
			t.down = false
			return event.InputEvent{Kind: event.KindLeave}, true, false
		}
	}
	return event.InputEvent{}, false, false
}

func (t *Translator) mouse(ev *tcell.EventMouse) event.InputEvent {
	cx, cy := ev.Position()
	x, y := CellCenter(cx, cy)
	btn := ev.Buttons()

	switch {
	case btn&tcell.WheelUp != 0:
		return event.ScrollAt(x, y, 1)
	case btn&tcell.WheelDown != 0:
		return event.ScrollAt(x, y, -1)
	case btn&tcell.Button1 != 0 && !t.down:
		t.down = true
		return event.PointerDown(x, y)
	case btn&tcell.Button1 == 0 && t.down:
		t.down = false
		return event.PointerUp(x, y)
	}
	return event.PointerMove(x, y)
}

// translateKey maps arrows, vi motions and zoom keys; q and ctrl-c quit
func translateKey(k tcell.Key, r rune) (event.Key, bool) {
	switch k {
	case tcell.KeyCtrlC:
		return event.KeyNone, true
	case tcell.KeyEscape:
		return event.KeyEscape, false
	case tcell.KeyLeft:
		return event.KeyLeft, false
	case tcell.KeyRight:
		return event.KeyRight, false
	case tcell.KeyUp:
		return event.KeyUp, false
	case tcell.KeyDown:
		return event.KeyDown, false
	case tcell.KeyRune:
	default:
		return event.KeyNone, false
	}

	switch r {
	case 'q':
		return event.KeyNone, true
	case 'h':
		return event.KeyLeft, false
	case 'l':
		return event.KeyRight, false
	case 'k':
		return event.KeyUp, false
	case 'j':
		return event.KeyDown, false
	case '+', '=':
		return event.KeyZoomIn, false
	case '-', '_':
		return event.KeyZoomOut, false
	}
	return event.KeyNone, false
}

// CellCenter returns the map pixel at the middle of terminal cell (cx, cy)
func CellCenter(cx, cy int) (float64, float64) {
	return float64(cx) + 0.5, float64(cy)*2 + 1
}

// PixelSize returns the map size for a w x h cell terminal, reserving the status row
func PixelSize(w, h int) (int, int) {
	return max(w, 1), max(h-1, 1) * 2
}
