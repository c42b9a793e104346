package component

import "github.com/lixenwraith/geomap/core"

// LayerKind selects how a layer draws and which locator hit-tests it
type LayerKind uint8

const (
	LayerBasemap LayerKind = iota // Tiled cells, never hit-tested
	LayerPoints
	LayerPaths
	LayerPolygons
	LayerPies
)

var layerKindNames = [...]string{"basemap", "points", "paths", "polygons", "pies"}

func (k LayerKind) String() string {
	if int(k) < len(layerKindNames) {
		return layerKindNames[k]
	}
	return "unknown"
}

// LayerComponent groups features drawn together; Index is the draw and hit-test order
type LayerComponent struct {
	Index   int
	Name    string
	Kind    LayerKind
	Visible bool

	// Dirty requests a redraw; cleared by the render system
	Dirty bool
	// Painted is set once the layer drew with all its content ready
	Painted bool
}

// MemberComponent ties a feature entity to its layer
type MemberComponent struct {
	Layer   core.Entity
	Feature int // Index within the layer, reported by hit results
	Z       int // Stacking order within the layer, higher draws on top
}
