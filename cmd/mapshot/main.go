// Command mapshot renders a map headlessly and writes it as PNG
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/geomap/config"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/mapview"
	"github.com/lixenwraith/geomap/render"
)

var (
	envFile     = flag.String("env", ".env", "Optional .env file")
	out         = flag.String("out", "map.png", "Output PNG path")
	geojsonPath = flag.String("geojson", "", "GeoJSON FeatureCollection to overlay")
	location    = flag.String("location", "", "Place name or IP address to frame")
	width       = flag.Int("width", 0, "Image width, overrides GEOMAP_WIDTH")
	height      = flag.Int("height", 0, "Image height, overrides GEOMAP_HEIGHT")
	zoom        = flag.Float64("zoom", -1, "Zoom level, overrides GEOMAP_ZOOM")
	wait        = flag.Duration("wait", 10*time.Second, "Maximum time to wait for tiles")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	core.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *wait)
	defer cancel()
	if err := snapshot(ctx, cfg, *geojsonPath, *out); err != nil {
		core.Logger().Error("snapshot_failed", "error", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *zoom >= 0 {
		cfg.Zoom = *zoom
	}
	if *location != "" {
		cfg.Location = *location
	}
}

// snapshot ticks the map until every layer painted or ctx ends, then writes the frame
// An incomplete frame is still written, with a warning
func snapshot(ctx context.Context, cfg config.Config, geojsonPath, outPath string) error {
	canvas := render.NewRasterCanvas(cfg.Width, cfg.Height)
	defer canvas.Close()
	if cfg.FontPath != "" {
		if err := canvas.LoadFont(cfg.FontPath, 12); err != nil {
			core.Logger().Warn("font_load_failed", "path", cfg.FontPath, "error", err)
		}
	}

	m, err := mapview.New(ctx, mapview.Options{Config: cfg, Canvas: canvas})
	if err != nil {
		return err
	}
	defer m.Close()

	if geojsonPath != "" {
		data, err := os.ReadFile(geojsonPath)
		if err != nil {
			return err
		}
		if _, err := m.LoadGeoJSON(filepath.Base(geojsonPath), data); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	for m.Loading() {
		select {
		case <-ctx.Done():
			core.Logger().Warn("snapshot_incomplete", "error", ctx.Err())
			return save(canvas, outPath)
		case <-ticker.C:
			if err := m.Tick(cfg.TickInterval); err != nil {
				return err
			}
		}
	}
	return save(canvas, outPath)
}

func save(canvas *render.RasterCanvas, path string) error {
	if err := canvas.SavePNG(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	core.Logger().Info("snapshot_written", "path", path)
	return nil
}
