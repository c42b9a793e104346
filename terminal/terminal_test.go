package terminal

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/geomap/event"
)

func TestTranslateMouse(t *testing.T) {
	var tr Translator
	steps := []struct {
		name string
		ev   tcell.Event
		kind event.Kind
	}{
		{"hover", tcell.NewEventMouse(3, 2, tcell.ButtonNone, tcell.ModNone), event.KindPointerMove},
		{"press", tcell.NewEventMouse(3, 2, tcell.Button1, tcell.ModNone), event.KindPointerDown},
		{"drag", tcell.NewEventMouse(4, 2, tcell.Button1, tcell.ModNone), event.KindPointerMove},
		{"release", tcell.NewEventMouse(4, 2, tcell.ButtonNone, tcell.ModNone), event.KindPointerUp},
		{"wheel up", tcell.NewEventMouse(1, 1, tcell.WheelUp, tcell.ModNone), event.KindScroll},
	}
	for _, st := range steps {
		in, ok, quit := tr.Translate(st.ev)
		require.True(t, ok, st.name)
		assert.False(t, quit, st.name)
		assert.Equal(t, st.kind, in.Kind, st.name)
	}

	in, _, _ := tr.Translate(tcell.NewEventMouse(3, 2, tcell.ButtonNone, tcell.ModNone))
	assert.Equal(t, 3.5, in.Pos.X)
	assert.Equal(t, 5.0, in.Pos.Y)

	in, _, _ = tr.Translate(tcell.NewEventMouse(0, 0, tcell.WheelDown, tcell.ModNone))
	assert.Equal(t, -1.0, in.Scroll)
}

func TestTranslateResize(t *testing.T) {
	var tr Translator
	in, ok, _ := tr.Translate(tcell.NewEventResize(80, 25))
	require.True(t, ok)
	assert.Equal(t, event.KindResize, in.Kind)
	assert.Equal(t, 80.0, in.Width)
	assert.Equal(t, 48.0, in.Height)
}

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want event.Key
		quit bool
	}{
		{tcell.KeyLeft, 0, event.KeyLeft, false},
		{tcell.KeyDown, 0, event.KeyDown, false},
		{tcell.KeyEscape, 0, event.KeyEscape, false},
		{tcell.KeyRune, 'h', event.KeyLeft, false},
		{tcell.KeyRune, 'k', event.KeyUp, false},
		{tcell.KeyRune, '+', event.KeyZoomIn, false},
		{tcell.KeyRune, '-', event.KeyZoomOut, false},
		{tcell.KeyRune, 'x', event.KeyNone, false},
		{tcell.KeyRune, 'q', event.KeyNone, true},
		{tcell.KeyCtrlC, 0, event.KeyNone, true},
		{tcell.KeyTab, 0, event.KeyNone, false},
	}
	for _, tt := range tests {
		got, quit := translateKey(tt.key, tt.r)
		assert.Equal(t, tt.want, got, "key %v rune %q", tt.key, tt.r)
		assert.Equal(t, tt.quit, quit, "key %v rune %q", tt.key, tt.r)
	}
}

func TestPresentHalfBlocks(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	s, err := NewWithScreen(sim, event.NewQueue())
	require.NoError(t, err)
	defer s.Close()
	sim.SetSize(4, 4)

	w, h := s.PixelSize()
	require.Equal(t, 4, w)
	require.Equal(t, 6, h)

	// Rows 0-2 red, rows 3-5 blue
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		c := color.RGBA{R: 255, A: 255}
		if y >= 3 {
			c = color.RGBA{B: 255, A: 255}
		}
		for x := range w {
			img.Set(x, y, c)
		}
	}

	s.SetStatus("ok")
	s.Present(img)

	red := tcell.NewRGBColor(255, 0, 0)
	blue := tcell.NewRGBColor(0, 0, 255)
	tests := []struct {
		cy     int
		fg, bg tcell.Color
	}{
		{0, red, red},
		{1, red, blue},
		{2, blue, blue},
	}
	for _, tt := range tests {
		r, _, style, _ := sim.GetContent(1, tt.cy)
		fg, bg, _ := style.Decompose()
		assert.Equal(t, halfBlock, r, "row %d", tt.cy)
		assert.Equal(t, tt.fg, fg, "row %d", tt.cy)
		assert.Equal(t, tt.bg, bg, "row %d", tt.cy)
	}

	r, _, _, _ := sim.GetContent(0, 3)
	assert.Equal(t, 'o', r)
	r, _, _, _ = sim.GetContent(3, 3)
	assert.Equal(t, ' ', r)
}
