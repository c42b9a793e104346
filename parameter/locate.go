package parameter

// Hit testing
const (
	// HitTolerance is extra client pixels around strokes and points accepted as a hit
	HitTolerance = 2.0

	// DistanceEpsilon treats two hit distances as a tie
	DistanceEpsilon = 1e-9
)
