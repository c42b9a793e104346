package system

import (
	"slices"

	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
)

type layerRef struct {
	entity core.Entity
	layer  component.LayerComponent
}

// sortedLayers returns every layer in ascending Index order, ties by entity id
func sortedLayers(w *engine.World, store *engine.Store[component.LayerComponent]) []layerRef {
	var out []layerRef
	for e := range w.Query().With(store).Iter() {
		lc, _ := store.Get(e)
		out = append(out, layerRef{entity: e, layer: lc})
	}
	slices.SortFunc(out, func(a, b layerRef) int {
		if a.layer.Index != b.layer.Index {
			return a.layer.Index - b.layer.Index
		}
		return int(a.entity) - int(b.entity)
	})
	return out
}
