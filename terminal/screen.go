package terminal

import (
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/event"
)

const halfBlock = '▀'

var statusStyle = tcell.StyleDefault.Reverse(true)

// Screen presents rendered frames and feeds terminal input into an event queue
type Screen struct {
	screen tcell.Screen
	queue  *event.Queue
	tr     Translator

	mu     sync.Mutex
	status string
	closed bool
}

// New opens the controlling terminal
func New(q *event.Queue) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(s, q)
}

// NewWithScreen initializes s with mouse reporting enabled
func NewWithScreen(s tcell.Screen, q *event.Queue) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.EnableMouse(tcell.MouseMotionEvents)
	s.EnableFocus()
	s.HideCursor()
	s.Clear()
	return &Screen{screen: s, queue: q}, nil
}

// PixelSize returns the map surface size for the current terminal
func (s *Screen) PixelSize() (int, int) {
	return PixelSize(s.screen.Size())
}

// Poll pushes input into the queue until the screen closes; quit runs on a quit key
func (s *Screen) Poll(quit func()) {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		in, ok, q := s.tr.Translate(ev)
		if q {
			core.Logger().Info("terminal_quit")
			if quit != nil {
				quit()
			}
			continue
		}
		if ok {
			if in.Kind == event.KindResize {
				s.screen.Sync()
			}
			s.queue.Push(in)
		}
	}
}

// SetStatus replaces the status line text shown by the next Present
func (s *Screen) SetStatus(text string) {
	s.mu.Lock()
	s.status = text
	s.mu.Unlock()
}

// Present draws img as half blocks and shows the status line
func (s *Screen) Present(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	w, h := s.screen.Size()
	rows := max(h-1, 0)
	b := img.Bounds()

	for cy := range rows {
		for cx := range w {
			top := pixel(img, b.Min.X+cx, b.Min.Y+cy*2)
			bottom := pixel(img, b.Min.X+cx, b.Min.Y+cy*2+1)
			s.screen.SetContent(cx, cy, halfBlock, nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}

	if h > 0 {
		status := []rune(s.status)
		for cx := range w {
			r := ' '
			if cx < len(status) {
				r = status[cx]
			}
			s.screen.SetContent(cx, h-1, r, nil, statusStyle)
		}
	}
	s.screen.Show()
}

// Close restores the terminal; PollEvent returns nil afterwards
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.screen.Fini()
}

func pixel(img image.Image, x, y int) tcell.Color {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return tcell.ColorBlack
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}
