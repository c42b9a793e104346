package parameter

import "time"

// World and zoom limits
const (
	// WorldSize is the side of the square world space produced by every projection fit
	// Matches one 256px tile at zoom 0
	WorldSize = 256.0

	// TileSize is the client pixel size of a basemap cell at integer zoom
	TileSize = 256

	// MinZoom and MaxZoom bound viewport zoom
	MinZoom = 0.0
	MaxZoom = 19.0

	// MaxCellLevel is the deepest quadtree level requested from a transport
	MaxCellLevel = 19
)

// Camera input
const (
	// ZoomStep is the zoom delta applied per wheel notch or +/- key
	ZoomStep = 1.0

	// ZoomDuration is the length of the animated zoom transition
	ZoomDuration = 250 * time.Millisecond

	// KeyPanPixels is the client distance moved per arrow key press
	KeyPanPixels = 32.0

	// DragThreshold is the pointer travel in client pixels that turns a press into a drag instead of a click
	DragThreshold = 3.0
)
