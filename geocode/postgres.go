package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/lib/pq"
)

// DefaultTable is the gazetteer table queried by Postgres
const DefaultTable = "gazetteer"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Postgres looks names up in a gazetteer table:
//
//	CREATE TABLE gazetteer (name text, min_lon float8, min_lat float8, max_lon float8, max_lat float8, rank int)
//
// Matching is case-insensitive; the highest rank wins
type Postgres struct {
	db    *sql.DB
	query string
}

// OpenPostgres opens a pooled connection; the DSN is not dialed until the first lookup
func OpenPostgres(dsn, table string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	p, err := NewPostgres(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an open database; table defaults to DefaultTable
func NewPostgres(db *sql.DB, table string) (*Postgres, error) {
	q, err := gazetteerQuery(table)
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db, query: q}, nil
}

func gazetteerQuery(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return "", fmt.Errorf("gazetteer table %q: not a plain identifier", table)
	}
	return "SELECT name, min_lon, min_lat, max_lon, max_lat FROM " + table +
		" WHERE lower(name) = $1 ORDER BY rank DESC NULLS LAST LIMIT 1", nil
}

func (p *Postgres) Lookup(ctx context.Context, query string) (Place, error) {
	var pl Place
	row := p.db.QueryRowContext(ctx, p.query, normalize(query))
	err := row.Scan(&pl.Name, &pl.Bounds.MinLon, &pl.Bounds.MinLat, &pl.Bounds.MaxLon, &pl.Bounds.MaxLat)
	if errors.Is(err, sql.ErrNoRows) {
		return Place{}, fmt.Errorf("postgres %q: %w", query, ErrNotFound)
	}
	if err != nil {
		return Place{}, fmt.Errorf("postgres %q: %w", query, err)
	}
	pl.Source = "postgres"
	return pl, nil
}

// Close releases the connection pool
func (p *Postgres) Close() error {
	return p.db.Close()
}
