package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/geo"
	"github.com/lixenwraith/geomap/locate"
)

func TestSetupLoggingDisabledByDefault(t *testing.T) {
	f, err := setupLogging("", "debug", "text")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if f != nil {
		t.Error("Expected nil log file without a path")
		f.Close()
	}
	if core.Logger().Enabled(t.Context(), 0) {
		t.Error("Expected silent logger")
	}
}

func TestSetupLoggingWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mapview.log")
	f, err := setupLogging(path, "info", "json")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer func() {
		core.SetLogger(nil)
		f.Close()
	}()

	core.Logger().Info("test_message", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"test_message"`) {
		t.Errorf("Expected JSON record in log, got %q", data)
	}
}

func TestStatusLine(t *testing.T) {
	s := &statusLine{bounds: geo.BBox{MinLon: -10, MinLat: -10, MaxLon: 10, MaxLat: 10}, zoom: 2}
	if got := s.String(); !strings.Contains(got, "0.000,0.000 z2.00") {
		t.Errorf("Unexpected status %q", got)
	}
	if s.dirty() {
		t.Error("Expected clean status after String")
	}

	s.loading = true
	s.selected, s.hasSelected = locate.HitResult{Layer: 1, Feature: 3, Sector: 2}, true
	if !s.dirty() {
		t.Error("Expected dirty status after change")
	}
	got := s.String()
	for _, want := range []string{"loading", "layer 1 feature 3", "sector 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("Status %q missing %q", got, want)
		}
	}
}

func TestFallbackText(t *testing.T) {
	got := fallbackText(&core.RenderFault{System: "render", Tick: 7, Cause: "boom"})
	if !strings.Contains(got, "render") || !strings.Contains(got, "tick 7") {
		t.Errorf("Unexpected fallback %q", got)
	}
}
