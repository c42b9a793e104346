// Package config loads runtime configuration from defaults, optional .env files and the environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/parameter"
)

// Config holds every runtime-tunable setting of a map instance
type Config struct {
	// Projection and viewport
	Projection string
	Width      int
	Height     int
	Zoom       float64
	MinZoom    float64
	MaxZoom    float64
	CenterLon  float64
	CenterLat  float64
	HasCenter  bool   // CenterLon/CenterLat are explicit, (0,0) included
	Location   string // geocoded once at setup when set
	WrapX      bool

	// Basemap
	TileURL        string // {z}/{x}/{y} or {q} template, empty = procedural tiles
	TileUserAgent  string
	PayloadCache   int
	FetchWorkers   int
	FetchTimeout   time.Duration
	EvictDebounce  int
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisTTL       time.Duration
	PostgresDSN    string
	GeoIPPath      string
	MMDBPath       string

	// Runtime
	TickInterval time.Duration
	ZoomDuration time.Duration
	FontPath     string
	Audio        bool
	MetricsAddr  string
	LogLevel     string
	LogFormat    string
}

// Default returns the built-in configuration: world view, procedural basemap
func Default() Config {
	return Config{
		Projection:    "mercator",
		Width:         256,
		Height:        256,
		Zoom:          1,
		MinZoom:       parameter.MinZoom,
		MaxZoom:       parameter.MaxZoom,
		TileUserAgent: "geomap/1.0",
		PayloadCache:  parameter.PayloadCacheSize,
		FetchWorkers:  parameter.FetchWorkers,
		FetchTimeout:  parameter.FetchTimeout,
		EvictDebounce: parameter.EvictDebounceCycles,
		RedisTTL:      parameter.RedisTileTTL,
		TickInterval:  parameter.TickInterval,
		ZoomDuration:  parameter.ZoomDuration,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads the given .env files (missing files are ignored), applies environment overrides
// on top of Default and validates the result
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	cfg := Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from a lookup function, os.LookupEnv in production
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	p := envParser{lookup: lookup}

	p.str("GEOMAP_PROJECTION", &c.Projection)
	p.integer("GEOMAP_WIDTH", &c.Width)
	p.integer("GEOMAP_HEIGHT", &c.Height)
	p.float("GEOMAP_ZOOM", &c.Zoom)
	p.float("GEOMAP_MIN_ZOOM", &c.MinZoom)
	p.float("GEOMAP_MAX_ZOOM", &c.MaxZoom)
	p.float("GEOMAP_CENTER_LON", &c.CenterLon)
	p.float("GEOMAP_CENTER_LAT", &c.CenterLat)
	for _, key := range []string{"GEOMAP_CENTER_LON", "GEOMAP_CENTER_LAT"} {
		if _, ok := lookup(key); ok {
			c.HasCenter = true
		}
	}
	p.str("GEOMAP_LOCATION", &c.Location)
	p.boolean("GEOMAP_WRAP_X", &c.WrapX)

	p.str("GEOMAP_TILE_URL", &c.TileURL)
	p.str("GEOMAP_TILE_USER_AGENT", &c.TileUserAgent)
	p.integer("GEOMAP_PAYLOAD_CACHE", &c.PayloadCache)
	p.integer("GEOMAP_FETCH_WORKERS", &c.FetchWorkers)
	p.duration("GEOMAP_FETCH_TIMEOUT", &c.FetchTimeout)
	p.integer("GEOMAP_EVICT_DEBOUNCE", &c.EvictDebounce)
	p.str("GEOMAP_GEOIP_PATH", &c.GeoIPPath)
	p.str("GEOMAP_MMDB_PATH", &c.MMDBPath)

	if host, ok := lookup("REDIS_HOST"); ok && host != "" {
		port := "6379"
		p.str("REDIS_PORT", &port)
		c.RedisAddr = host + ":" + port
	}
	p.str("REDIS_PASS", &c.RedisPassword)
	p.integer("REDIS_DB", &c.RedisDB)
	p.duration("GEOMAP_REDIS_TTL", &c.RedisTTL)
	p.str("PG_DSN", &c.PostgresDSN)

	p.duration("GEOMAP_TICK_INTERVAL", &c.TickInterval)
	p.duration("GEOMAP_ZOOM_DURATION", &c.ZoomDuration)
	p.str("GEOMAP_FONT_PATH", &c.FontPath)
	p.boolean("GEOMAP_AUDIO", &c.Audio)
	p.str("GEOMAP_METRICS_ADDR", &c.MetricsAddr)
	p.str("LOG_LEVEL", &c.LogLevel)
	p.str("LOG_FORMAT", &c.LogFormat)

	return p.err
}

// Validate rejects parameters that would prevent the map from starting
func (c Config) Validate() error {
	switch {
	case c.Width <= 0:
		return core.NewConfigurationError("width", c.Width, "must be positive")
	case c.Height <= 0:
		return core.NewConfigurationError("height", c.Height, "must be positive")
	case c.MinZoom < 0:
		return core.NewConfigurationError("min_zoom", c.MinZoom, "must not be negative")
	case c.MaxZoom < c.MinZoom:
		return core.NewConfigurationError("max_zoom", c.MaxZoom, "must not be below min_zoom")
	case c.Zoom < c.MinZoom || c.Zoom > c.MaxZoom:
		return core.NewConfigurationError("zoom", c.Zoom, fmt.Sprintf("must be within [%g, %g]", c.MinZoom, c.MaxZoom))
	case c.CenterLon < -180 || c.CenterLon > 180:
		return core.NewConfigurationError("center_lon", c.CenterLon, "must be within [-180, 180]")
	case c.CenterLat < -90 || c.CenterLat > 90:
		return core.NewConfigurationError("center_lat", c.CenterLat, "must be within [-90, 90]")
	case c.FetchWorkers <= 0:
		return core.NewConfigurationError("fetch_workers", c.FetchWorkers, "must be positive")
	case c.EvictDebounce < 1:
		return core.NewConfigurationError("evict_debounce", c.EvictDebounce, "must be at least one cycle")
	case c.TickInterval <= 0:
		return core.NewConfigurationError("tick_interval", c.TickInterval, "must be positive")
	case c.ZoomDuration < 0:
		return core.NewConfigurationError("zoom_duration", c.ZoomDuration, "must not be negative")
	}
	if c.TileURL != "" && !strings.Contains(c.TileURL, "{q}") &&
		!(strings.Contains(c.TileURL, "{z}") && strings.Contains(c.TileURL, "{x}") && strings.Contains(c.TileURL, "{y}")) {
		return core.NewConfigurationError("tile_url", c.TileURL, "needs {z}/{x}/{y} or {q} placeholders")
	}
	return nil
}

// envParser accumulates the first parse error so ApplyEnv stays linear
type envParser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *envParser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (p *envParser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = core.NewConfigurationError(key, v, err.Error())
	}
}

func (p *envParser) str(key string, dst *string) {
	if v, ok := p.raw(key); ok {
		*dst = v
	}
}

func (p *envParser) integer(key string, dst *int) {
	if v, ok := p.raw(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *envParser) float(key string, dst *float64) {
	if v, ok := p.raw(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (p *envParser) boolean(key string, dst *bool) {
	if v, ok := p.raw(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (p *envParser) duration(key string, dst *time.Duration) {
	if v, ok := p.raw(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = d
	}
}
