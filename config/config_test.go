package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/geomap/core"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		"GEOMAP_PROJECTION":    "mollweide",
		"GEOMAP_WIDTH":         "800",
		"GEOMAP_ZOOM":          "3.5",
		"GEOMAP_WRAP_X":        "true",
		"GEOMAP_FETCH_TIMEOUT": "2s",
		"REDIS_HOST":           "cache",
		"REDIS_DB":             "2",
	}))
	require.NoError(t, err)

	assert.Equal(t, "mollweide", cfg.Projection)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 3.5, cfg.Zoom)
	assert.True(t, cfg.WrapX)
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestApplyEnvExplicitCenter(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"unset", map[string]string{}, false},
		{"origin", map[string]string{"GEOMAP_CENTER_LON": "0", "GEOMAP_CENTER_LAT": "0"}, true},
		{"latitude only", map[string]string{"GEOMAP_CENTER_LAT": "12"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.ApplyEnv(mapLookup(tt.env)))
			assert.Equal(t, tt.want, cfg.HasCenter)
		})
	}
}

func TestApplyEnvParseError(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{"GEOMAP_WIDTH": "wide"}))

	var ce *core.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "GEOMAP_WIDTH", ce.Field)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, "width"},
		{"zoom above max", func(c *Config) { c.Zoom = 30 }, "zoom"},
		{"inverted zoom range", func(c *Config) { c.MinZoom, c.MaxZoom = 5, 2 }, "max_zoom"},
		{"latitude", func(c *Config) { c.CenterLat = 91 }, "center_lat"},
		{"no debounce", func(c *Config) { c.EvictDebounce = 0 }, "evict_debounce"},
		{"bad template", func(c *Config) { c.TileURL = "https://tiles/{z}.png" }, "tile_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			var ce *core.ConfigurationError
			require.ErrorAs(t, cfg.Validate(), &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEOMAP_HEIGHT=480\n"), 0o600))
	t.Setenv("GEOMAP_HEIGHT", "")
	os.Unsetenv("GEOMAP_HEIGHT")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 480, cfg.Height)
}
