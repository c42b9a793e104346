package main

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/locate"
)

// statusLine accumulates callback state for the bottom row
// Written from engine callbacks, read by the same loop that ticks
type statusLine struct {
	bounds      geo.BBox
	zoom        float64
	loading     bool
	selected    locate.HitResult
	hasSelected bool

	last string
}

// dirty reports whether the text changed since the last String call
func (s *statusLine) dirty() bool {
	return s.render() != s.last
}

func (s *statusLine) String() string {
	s.last = s.render()
	return s.last
}

func (s *statusLine) render() string {
	var b strings.Builder
	c := s.bounds.Center()
	fmt.Fprintf(&b, " %.3f,%.3f z%.2f", c.Lon, c.Lat, s.zoom)
	if s.loading {
		b.WriteString(" loading")
	}
	if s.hasSelected {
		fmt.Fprintf(&b, " | layer %d feature %d", s.selected.Layer, s.selected.Feature)
		if s.selected.Sector >= 0 {
			fmt.Fprintf(&b, " sector %d", s.selected.Sector)
		}
	}
	b.WriteString(" | q quit")
	return b.String()
}
