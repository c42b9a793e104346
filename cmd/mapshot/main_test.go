package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/geomap/config"
)

const sample = `{"type":"FeatureCollection","features":[
  {"type":"Feature","geometry":{"type":"Point","coordinates":[10,50]},"properties":{"values":[2,1,1]}},
  {"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,40],[20,55]]},"properties":{}}
]}`

func TestSnapshotWritesPNG(t *testing.T) {
	dir := t.TempDir()
	geojsonPath := filepath.Join(dir, "features.geojson")
	require.NoError(t, os.WriteFile(geojsonPath, []byte(sample), 0o644))
	outPath := filepath.Join(dir, "out.png")

	cfg := config.Default()
	cfg.Width, cfg.Height, cfg.Zoom = 128, 96, 2

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, snapshot(ctx, cfg, geojsonPath, outPath))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())
}

func TestSnapshotMissingGeoJSON(t *testing.T) {
	cfg := config.Default()
	err := snapshot(context.Background(), cfg, filepath.Join(t.TempDir(), "missing.geojson"), filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}
