package geocode

import (
	"context"
	"fmt"
	"math"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"

	"github.com/lixenwraith/geomap/geo"
)

const (
	kmPerDegree = 111.32

	// minRadiusKm keeps boxes of exact coordinates from collapsing to a point
	minRadiusKm = 25.0
)

// GeoIP resolves IP address queries with a GeoIP2/GeoLite2 City database
// The box is centered on the city location and sized by its accuracy radius
type GeoIP struct {
	reader *geoip2.Reader
}

// OpenGeoIP opens a City database file
func OpenGeoIP(path string) (*GeoIP, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip %s: %w", path, err)
	}
	return &GeoIP{reader: r}, nil
}

func (g *GeoIP) Lookup(ctx context.Context, query string) (Place, error) {
	ip := net.ParseIP(query)
	if ip == nil {
		return Place{}, fmt.Errorf("geoip %q: not an address: %w", query, ErrNotFound)
	}
	rec, err := g.reader.City(ip)
	if err != nil {
		return Place{}, fmt.Errorf("geoip %q: %w", query, err)
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return Place{}, fmt.Errorf("geoip %q: %w", query, ErrNotFound)
	}
	name := rec.City.Names["en"]
	if name == "" {
		name = rec.Country.Names["en"]
	}
	return Place{
		Name:   name,
		Bounds: RadiusBox(geo.LL(rec.Location.Longitude, rec.Location.Latitude), float64(rec.Location.AccuracyRadius)),
		Source: "geoip",
	}, nil
}

func (g *GeoIP) Close() error {
	return g.reader.Close()
}

// mmdbRecord is the layout of custom location databases: either an explicit box or a point
type mmdbRecord struct {
	Name string    `maxminddb:"name"`
	BBox []float64 `maxminddb:"bbox"` // [min_lon, min_lat, max_lon, max_lat]
	Lat  float64   `maxminddb:"lat"`
	Lng  float64   `maxminddb:"lng"`
}

// MMDB resolves IP address queries against any MaxMind-format database carrying
// name plus bbox or lat/lng fields, as produced by ipinfo-style exports
type MMDB struct {
	reader *maxminddb.Reader
}

// OpenMMDB opens a database file
func OpenMMDB(path string) (*MMDB, error) {
	r, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb %s: %w", path, err)
	}
	return &MMDB{reader: r}, nil
}

// MMDBFromBytes reads a database held in memory
func MMDBFromBytes(b []byte) (*MMDB, error) {
	r, err := maxminddb.FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("read mmdb: %w", err)
	}
	return &MMDB{reader: r}, nil
}

func (m *MMDB) Lookup(ctx context.Context, query string) (Place, error) {
	ip := net.ParseIP(query)
	if ip == nil {
		return Place{}, fmt.Errorf("mmdb %q: not an address: %w", query, ErrNotFound)
	}
	var rec mmdbRecord
	if err := m.reader.Lookup(ip, &rec); err != nil {
		return Place{}, fmt.Errorf("mmdb %q: %w", query, err)
	}
	return rec.place(query)
}

func (r mmdbRecord) place(query string) (Place, error) {
	switch {
	case len(r.BBox) == 4:
		return Place{
			Name:   r.Name,
			Bounds: geo.BBox{MinLon: r.BBox[0], MinLat: r.BBox[1], MaxLon: r.BBox[2], MaxLat: r.BBox[3]},
			Source: "mmdb",
		}, nil
	case r.Lat != 0 || r.Lng != 0:
		return Place{Name: r.Name, Bounds: RadiusBox(geo.LL(r.Lng, r.Lat), 0), Source: "mmdb"}, nil
	}
	return Place{}, fmt.Errorf("mmdb %q: %w", query, ErrNotFound)
}

func (m *MMDB) Close() error {
	return m.reader.Close()
}

// RadiusBox returns the box of radiusKm around c, at least minRadiusKm, clamped to the world
func RadiusBox(c geo.LonLat, radiusKm float64) geo.BBox {
	r := math.Max(radiusKm, minRadiusKm)
	dLat := r / kmPerDegree
	dLon := dLat / math.Max(math.Cos(c.Lat*math.Pi/180), 0.01)
	b := geo.BBox{MinLon: c.Lon - dLon, MinLat: c.Lat - dLat, MaxLon: c.Lon + dLon, MaxLat: c.Lat + dLat}
	return b.Clamp(geo.World)
}
