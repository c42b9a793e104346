package cell

import (
	"context"
	"math"

	"github.com/gogpu/gg"

	"github.com/lixenwraith/geomap/parameter"
)

// ProceduralTransport draws tiles locally: a level-tinted checker with a cell border
// Used for offline runs and tests; it honors cancellation before drawing
type ProceduralTransport struct {
	Size   int
	Light  gg.RGBA
	Dark   gg.RGBA
	Border gg.RGBA
}

// NewProceduralTransport creates a transport with the default palette
func NewProceduralTransport() *ProceduralTransport {
	return &ProceduralTransport{
		Size:   parameter.TileSize,
		Light:  gg.Hex("#dfe8ef"),
		Dark:   gg.Hex("#c9d6e0"),
		Border: gg.Hex("#8fa3b3"),
	}
}

func (t *ProceduralTransport) Fetch(ctx context.Context, key Key) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	size := t.Size
	if size <= 0 {
		size = parameter.TileSize
	}

	x, y, level := key.Tile()
	base := t.Light
	if (x+y)%2 == 1 {
		base = t.Dark
	}
	// Deeper levels shift slightly toward the border tone
	shade := math.Min(float64(level)/float64(parameter.MaxCellLevel), 1) * 0.35

	dc := gg.NewContext(size, size)
	defer dc.Close()
	dc.ClearWithColor(base.Lerp(t.Border, shade))

	s := float64(size)
	dc.SetColor(t.Border.Color())
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, s-1, s-1)
	if err := dc.Stroke(); err != nil {
		return Payload{}, err
	}
	dc.DrawLine(s/2, s/2-4, s/2, s/2+4)
	dc.DrawLine(s/2-4, s/2, s/2+4, s/2)
	if err := dc.Stroke(); err != nil {
		return Payload{}, err
	}
	_ = dc.FlushGPU()
	return Payload{Image: dc.Image()}, nil
}
