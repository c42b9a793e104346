package component

import (
	"image"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/core"
)

// CellState tracks the fetch lifecycle of a basemap cell
type CellState uint8

const (
	CellLoading CellState = iota
	CellReady
	CellFailed
)

func (s CellState) String() string {
	switch s {
	case CellLoading:
		return "loading"
	case CellReady:
		return "ready"
	case CellFailed:
		return "failed"
	}
	return "unknown"
}

// CellComponent is a tile cache entry owned by a basemap layer
type CellComponent struct {
	Key      cell.Key
	Layer    core.Entity
	State    CellState
	Attempts int
}

// TileComponent carries the fetched snapshot of a ready cell
type TileComponent struct {
	Image image.Image
}
