// Command mapview is an interactive terminal map viewer
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/geomap/audio"
	"github.com/lixenwraith/geomap/config"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/event"
	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/locate"
	"github.com/lixenwraith/geomap/mapview"
	"github.com/lixenwraith/geomap/render"
	"github.com/lixenwraith/geomap/terminal"
)

var (
	envFile     = flag.String("env", ".env", "Optional .env file")
	geojsonPath = flag.String("geojson", "", "GeoJSON FeatureCollection to overlay")
	location    = flag.String("location", "", "Place name or IP address to open at")
	logPath     = flag.String("log", "", "Log file; logging is off when empty since the terminal owns stderr")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *location != "" {
		cfg.Location = *location
	}

	logFile, err := setupLogging(*logPath, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		os.Exit(2)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "mapview: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) (err error) {
	queue := event.NewQueue()
	screen, err := terminal.New(queue)
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	// Restore the terminal before anything reaches stderr, crashes included
	defer func() {
		if r := recover(); r != nil {
			screen.Close()
			fmt.Fprintf(os.Stderr, "MAPVIEW CRASHED: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
		screen.Close()
	}()
	cfg.Width, cfg.Height = screen.PixelSize()

	canvas := render.NewRasterCanvas(cfg.Width, cfg.Height)
	defer canvas.Close()
	if cfg.FontPath != "" {
		if err := canvas.LoadFont(cfg.FontPath, 10); err != nil {
			core.Logger().Warn("font_load_failed", "path", cfg.FontPath, "error", err)
		}
	}

	cues := audio.NewCuePlayer(0.6)
	if cfg.Audio {
		if err := cues.Initialize(); err != nil {
			core.Logger().Warn("audio_unavailable", "error", err)
		}
		defer cues.Close()
	}

	st := &statusLine{}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m, err := mapview.New(ctx, mapview.Options{
		Config: cfg,
		Canvas: canvas,
		Input:  queue,
		OnLocationChanged: func(b geo.BBox) {
			st.bounds = b
		},
		OnLoadingChanged: func(loading bool) {
			st.loading = loading
			if !loading {
				cues.PlayLoaded()
			}
		},
		OnSelect: func(hit locate.HitResult, ok bool) {
			st.selected, st.hasSelected = hit, ok
			if ok {
				cues.PlaySelect(hit.Sector)
			} else {
				cues.PlayMiss()
			}
		},
	})
	if err != nil {
		return err
	}
	defer m.Close()

	if *geojsonPath != "" {
		data, err := os.ReadFile(*geojsonPath)
		if err != nil {
			return err
		}
		if _, err := m.LoadGeoJSON(filepath.Base(*geojsonPath), data); err != nil {
			return err
		}
	}

	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, m)
	}

	go screen.Poll(cancel)

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	last := time.Now()
	var presented uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := m.Tick(dt); err != nil {
				var fault *core.RenderFault
				if errors.As(err, &fault) {
					screen.Close()
					fmt.Fprintln(os.Stderr, fallbackText(fault))
				}
				return err
			}
			if f := m.Frames(); f != presented || st.dirty() {
				presented = f
				st.zoom = m.Viewport().Zoom()
				screen.SetStatus(st.String())
				screen.Present(m.Snapshot())
			}
		}
	}
}

// setupLogging installs a file logger, or leaves logging silent when path is empty
func setupLogging(path, level, format string) (*os.File, error) {
	if path == "" {
		core.SetLogger(nil)
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler = slog.NewTextHandler(f, opts)
	if format == "json" {
		h = slog.NewJSONHandler(f, opts)
	}
	core.SetLogger(slog.New(h))
	return f, nil
}

// serveMetrics exposes the tile cache counters on addr until ctx ends
func serveMetrics(ctx context.Context, addr string, m *mapview.Map) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if err := m.Metrics().Register(reg); err != nil {
		core.Logger().Warn("metrics_register_failed", "error", err)
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	core.Go("metrics_server", func() {
		core.Logger().Info("metrics_listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.Logger().Error("metrics_server_failed", "error", err)
		}
	}, nil)
	core.Go("metrics_shutdown", func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}, nil)
}

// fallbackText is shown in place of the map after a render fault
func fallbackText(f *core.RenderFault) string {
	return fmt.Sprintf("The map stopped after an internal error in %s at tick %d: %v", f.System, f.Tick, f.Cause)
}
