package locate

import (
	"github.com/lixenwraith/geomap/component"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/engine"
	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/parameter"
	"github.com/lixenwraith/geomap/vmath"
)

// HitResult is an immutable snapshot of the feature under the cursor
type HitResult struct {
	Layer    int
	Feature  int
	Distance float64 // Client pixels from the cursor to the feature anchor or edge, 0 inside fills
	Entity   core.Entity
	Z        int
	Sector   int // Wedge index for pies, -1 otherwise
}

// RenderHelper gives locators read access to the world and the current camera
type RenderHelper struct {
	World     *engine.World
	Viewport  *geo.Viewport
	Tolerance float64 // Extra client pixels accepted around strokes and markers
}

// NewRenderHelper uses the default hit tolerance
func NewRenderHelper(w *engine.World, vp *geo.Viewport) *RenderHelper {
	return &RenderHelper{World: w, Viewport: vp, Tolerance: parameter.HitTolerance}
}

// Locator hit-tests the features of one layer entity
type Locator interface {
	// Search returns the best feature of target under cursor (client pixels)
	Search(cursor vmath.Vec2, target core.Entity, h *RenderHelper) (HitResult, bool)
	// Reduce picks one result out of candidates
	Reduce(candidates []HitResult) (HitResult, bool)
}

// ForKind returns the locator for a layer kind, nil for kinds that are not hit-tested
func ForKind(kind component.LayerKind) Locator {
	switch kind {
	case component.LayerPoints:
		return PointLocator{}
	case component.LayerPaths:
		return PathLocator{}
	case component.LayerPolygons:
		return PolygonLocator{}
	case component.LayerPies:
		return PieLocator{}
	}
	return nil
}

// Reduce keeps the minimum-distance result; ties go to the higher layer, then the higher Z
func Reduce(candidates []HitResult) (HitResult, bool) {
	if len(candidates) == 0 {
		return HitResult{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best, true
}

func better(a, b HitResult) bool {
	if a.Distance < b.Distance-parameter.DistanceEpsilon {
		return true
	}
	if a.Distance > b.Distance+parameter.DistanceEpsilon {
		return false
	}
	if a.Layer != b.Layer {
		return a.Layer > b.Layer
	}
	return a.Z > b.Z
}

// members yields the feature entities of layer in ascending entity order
func members(w *engine.World, layer core.Entity) []memberRef {
	store := engine.GetStore[component.MemberComponent](w)
	layerIdx := 0
	if lc, err := engine.GetComponent[component.LayerComponent](w, layer); err == nil {
		layerIdx = lc.Index
	}
	var out []memberRef
	for e := range w.Query().With(store).Iter() {
		m, _ := store.Get(e)
		if m.Layer != layer {
			continue
		}
		out = append(out, memberRef{entity: e, layer: layerIdx, member: m})
	}
	return out
}

type memberRef struct {
	entity core.Entity
	layer  int
	member component.MemberComponent
}

func (r memberRef) hit(dist float64) HitResult {
	return HitResult{
		Layer:    r.layer,
		Feature:  r.member.Feature,
		Distance: dist,
		Entity:   r.entity,
		Z:        r.member.Z,
		Sector:   -1,
	}
}
