// Package geocode resolves named places and IP addresses to geographic boxes
// Lookups run once at setup, never on the per-frame path
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/geo"
)

// ErrNotFound is returned when a geocoder has no match for the query
var ErrNotFound = errors.New("location not found")

// Place is a resolved location
type Place struct {
	Name   string
	Bounds geo.BBox
	Source string // Geocoder that answered
}

// Geocoder resolves a free-form query to a place
type Geocoder interface {
	Lookup(ctx context.Context, query string) (Place, error)
}

// Chain asks each geocoder in order and returns the first match
// ErrNotFound from one member moves on; other errors are collected and also move on
type Chain []Geocoder

func (c Chain) Lookup(ctx context.Context, query string) (Place, error) {
	var errs []error
	for _, g := range c {
		if g == nil {
			continue
		}
		p, err := g.Lookup(ctx, query)
		if err == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			return Place{}, ctx.Err()
		}
		if !errors.Is(err, ErrNotFound) {
			core.Logger().Warn("geocode_failed", "query", query, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Place{}, fmt.Errorf("%w: %q: %w", ErrNotFound, query, errors.Join(errs...))
	}
	return Place{}, fmt.Errorf("%w: %q", ErrNotFound, query)
}

// Static answers from a fixed table of named boxes, case-insensitive
type Static map[string]geo.BBox

// Builtin covers the world and a few regions so a map can start without external data
var Builtin = Static{
	"world":         geo.World,
	"europe":        {MinLon: -25, MinLat: 34, MaxLon: 45, MaxLat: 72},
	"north america": {MinLon: -170, MinLat: 7, MaxLon: -50, MaxLat: 75},
	"usa":           {MinLon: -125, MinLat: 24, MaxLon: -66, MaxLat: 50},
	"south america": {MinLon: -82, MinLat: -56, MaxLon: -34, MaxLat: 13},
	"africa":        {MinLon: -18, MinLat: -35, MaxLon: 52, MaxLat: 38},
	"asia":          {MinLon: 25, MinLat: -11, MaxLon: 180, MaxLat: 78},
	"oceania":       {MinLon: 110, MinLat: -48, MaxLon: 180, MaxLat: 0},
}

func (s Static) Lookup(ctx context.Context, query string) (Place, error) {
	key := normalize(query)
	b, ok := s[key]
	if !ok {
		return Place{}, fmt.Errorf("static %q: %w", query, ErrNotFound)
	}
	return Place{Name: key, Bounds: b, Source: "static"}, nil
}

func normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Resolve looks query up and clamps the result to the world, returning a
// *core.ConfigurationError when nothing usable is found
func Resolve(ctx context.Context, g Geocoder, query string) (Place, error) {
	if g == nil {
		g = Builtin
	}
	p, err := g.Lookup(ctx, query)
	if err != nil {
		return Place{}, errors.Join(core.NewConfigurationError("location", query, "cannot be resolved"), err)
	}
	p.Bounds = p.Bounds.Clamp(geo.World)
	if !p.Bounds.Valid() {
		return Place{}, core.NewConfigurationError("location", query, fmt.Sprintf("empty box %v", p.Bounds))
	}
	core.Logger().Info("location_resolved", "query", query, "name", p.Name, "source", p.Source, "bounds", p.Bounds.String())
	return p, nil
}
