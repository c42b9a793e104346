package mapview

import (
	"fmt"
	"io"

	"github.com/lixenwraith/geomap/cell"
	"github.com/lixenwraith/geomap/config"
	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/geocode"
)

// redisPrefix namespaces shared tile bytes
const redisPrefix = "geomap:tile"

// buildTransport stacks the payload caches over the basemap source:
// memory LRU, then redis when configured, then the origin
func buildTransport(cfg config.Config, opts Options, m *cell.Metrics) (cell.Transport, []io.Closer) {
	var closers []io.Closer

	origin := opts.Transport
	switch {
	case origin != nil:
	case cfg.TileURL != "":
		origin = cell.NewHTTPTransport(cfg.TileURL, cfg.TileUserAgent, cfg.FetchTimeout)
	default:
		origin = cell.NewProceduralTransport()
	}

	t := origin
	redisClient := opts.Redis
	if redisClient == nil && cfg.RedisAddr != "" {
		c := cell.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, c)
		redisClient = c
	}
	if redisClient != nil {
		t = cell.NewRedisCache(t, redisClient, redisPrefix, cfg.RedisTTL, m)
	}
	if cfg.PayloadCache > 0 {
		t = cell.NewMemoryCache(t, cfg.PayloadCache, m)
	}
	return t, closers
}

// buildGeocoder chains the configured gazetteer sources in front of the builtin regions
func buildGeocoder(cfg config.Config) (geocode.Geocoder, []io.Closer, error) {
	var (
		chain   geocode.Chain
		closers []io.Closer
	)
	fail := func(err error) (geocode.Geocoder, []io.Closer, error) {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, nil, err
	}

	if cfg.PostgresDSN != "" {
		pg, err := geocode.OpenPostgres(cfg.PostgresDSN, geocode.DefaultTable)
		if err != nil {
			return fail(fmt.Errorf("gazetteer: %w", err))
		}
		chain, closers = append(chain, pg), append(closers, pg)
	}
	if cfg.MMDBPath != "" {
		db, err := geocode.OpenMMDB(cfg.MMDBPath)
		if err != nil {
			return fail(fmt.Errorf("mmdb: %w", err))
		}
		chain, closers = append(chain, db), append(closers, db)
	}
	if cfg.GeoIPPath != "" {
		db, err := geocode.OpenGeoIP(cfg.GeoIPPath)
		if err != nil {
			return fail(fmt.Errorf("geoip: %w", err))
		}
		chain, closers = append(chain, db), append(closers, db)
	}
	chain = append(chain, geocode.Builtin)
	core.Logger().Debug("geocoder_ready", "sources", len(chain))
	return chain, closers, nil
}
