// Package postgres stores the catalog and users in PostgreSQL. Uuid lists
// are text[] columns; row order follows the insertion sequence.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/kinobot/internal/catalog"
)

// Migrations holds the schema applied at boot.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

// Catalog implements catalog.Store, catalog.Writer and catalog.Counter.
type Catalog struct {
	db *sqlx.DB
}

// NewCatalog wraps db.
func NewCatalog(db *sqlx.DB) *Catalog {
	return &Catalog{db: db}
}

type filmRow struct {
	UUID    string         `db:"uuid"`
	Name    string         `db:"name"`
	Year    int            `db:"year"`
	Rate    float64        `db:"rate"`
	Length  string         `db:"length"`
	Country string         `db:"country"`
	Type    string         `db:"type"`
	Picture string         `db:"picture"`
	Link    string         `db:"link"`
	Cinemas pq.StringArray `db:"cinemas"`
}

func (r filmRow) film() catalog.Film {
	return catalog.Film{
		UUID: r.UUID, Name: r.Name, Year: r.Year, Rate: r.Rate, Length: r.Length,
		Country: r.Country, Type: r.Type, Picture: r.Picture, Link: r.Link,
		Cinemas: []string(r.Cinemas),
	}
}

type cinemaRow struct {
	UUID  string         `db:"uuid"`
	Name  string         `db:"name"`
	URL   string         `db:"url"`
	Lat   float64        `db:"lat"`
	Lon   float64        `db:"lon"`
	Films pq.StringArray `db:"films"`
}

func (r cinemaRow) cinema() catalog.Cinema {
	return catalog.Cinema{
		UUID: r.UUID, Name: r.Name, URL: r.URL,
		Location: catalog.Location{Lat: r.Lat, Lon: r.Lon},
		Films:    []string(r.Films),
	}
}

const (
	filmColumns   = `uuid, name, year, rate, length, country, type, picture, link, cinemas`
	cinemaColumns = `uuid, name, url, lat, lon, films`
)

// Films returns films matching f in insertion order.
func (c *Catalog) Films(ctx context.Context, f catalog.Filter) ([]catalog.Film, error) {
	var rows []filmRow
	var err error
	if f.Type == "" {
		err = c.db.SelectContext(ctx, &rows, `SELECT `+filmColumns+` FROM films ORDER BY seq`)
	} else {
		err = c.db.SelectContext(ctx, &rows, `SELECT `+filmColumns+` FROM films WHERE type = $1 ORDER BY seq`, f.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: select films: %w", err)
	}
	return films(rows), nil
}

// FilmsByUUID returns films whose uuid is in uuids, in insertion order.
func (c *Catalog) FilmsByUUID(ctx context.Context, uuids []string) ([]catalog.Film, error) {
	var rows []filmRow
	err := c.db.SelectContext(ctx, &rows,
		`SELECT `+filmColumns+` FROM films WHERE uuid = ANY($1) ORDER BY seq`, pq.Array(uuids))
	if err != nil {
		return nil, fmt.Errorf("postgres: select films by uuid: %w", err)
	}
	return films(rows), nil
}

// Film returns the film with uuid or catalog.ErrNotFound.
func (c *Catalog) Film(ctx context.Context, uuid string) (catalog.Film, error) {
	var row filmRow
	err := c.db.GetContext(ctx, &row, `SELECT `+filmColumns+` FROM films WHERE uuid = $1`, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Film{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Film{}, fmt.Errorf("postgres: get film: %w", err)
	}
	return row.film(), nil
}

// Cinemas returns all cinemas in insertion order.
func (c *Catalog) Cinemas(ctx context.Context) ([]catalog.Cinema, error) {
	var rows []cinemaRow
	if err := c.db.SelectContext(ctx, &rows, `SELECT `+cinemaColumns+` FROM cinemas ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("postgres: select cinemas: %w", err)
	}
	return cinemas(rows), nil
}

// CinemasByUUID returns cinemas whose uuid is in uuids, in insertion order.
func (c *Catalog) CinemasByUUID(ctx context.Context, uuids []string) ([]catalog.Cinema, error) {
	var rows []cinemaRow
	err := c.db.SelectContext(ctx, &rows,
		`SELECT `+cinemaColumns+` FROM cinemas WHERE uuid = ANY($1) ORDER BY seq`, pq.Array(uuids))
	if err != nil {
		return nil, fmt.Errorf("postgres: select cinemas by uuid: %w", err)
	}
	return cinemas(rows), nil
}

// Cinema returns the cinema with uuid or catalog.ErrNotFound.
func (c *Catalog) Cinema(ctx context.Context, uuid string) (catalog.Cinema, error) {
	var row cinemaRow
	err := c.db.GetContext(ctx, &row, `SELECT `+cinemaColumns+` FROM cinemas WHERE uuid = $1`, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Cinema{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Cinema{}, fmt.Errorf("postgres: get cinema: %w", err)
	}
	return row.cinema(), nil
}

// UpsertFilm inserts f or updates it in place, keeping its sequence.
func (c *Catalog) UpsertFilm(ctx context.Context, f catalog.Film) error {
	const q = `
INSERT INTO films (uuid, name, year, rate, length, country, type, picture, link, cinemas)
VALUES (:uuid, :name, :year, :rate, :length, :country, :type, :picture, :link, :cinemas)
ON CONFLICT (uuid) DO UPDATE SET
    name = EXCLUDED.name, year = EXCLUDED.year, rate = EXCLUDED.rate,
    length = EXCLUDED.length, country = EXCLUDED.country, type = EXCLUDED.type,
    picture = EXCLUDED.picture, link = EXCLUDED.link, cinemas = EXCLUDED.cinemas`
	row := filmRow{
		UUID: f.UUID, Name: f.Name, Year: f.Year, Rate: f.Rate, Length: f.Length,
		Country: f.Country, Type: f.Type, Picture: f.Picture, Link: f.Link,
		Cinemas: nonNil(f.Cinemas),
	}
	if _, err := c.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("postgres: upsert film: %w", err)
	}
	return nil
}

// UpsertCinema inserts cn or updates it in place, keeping its sequence.
func (c *Catalog) UpsertCinema(ctx context.Context, cn catalog.Cinema) error {
	const q = `
INSERT INTO cinemas (uuid, name, url, lat, lon, films)
VALUES (:uuid, :name, :url, :lat, :lon, :films)
ON CONFLICT (uuid) DO UPDATE SET
    name = EXCLUDED.name, url = EXCLUDED.url, lat = EXCLUDED.lat,
    lon = EXCLUDED.lon, films = EXCLUDED.films`
	row := cinemaRow{
		UUID: cn.UUID, Name: cn.Name, URL: cn.URL,
		Lat: cn.Location.Lat, Lon: cn.Location.Lon,
		Films: nonNil(cn.Films),
	}
	if _, err := c.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("postgres: upsert cinema: %w", err)
	}
	return nil
}

// Counts reports catalog and user totals.
func (c *Catalog) Counts(ctx context.Context) (catalog.Counts, error) {
	var out catalog.Counts
	err := c.db.GetContext(ctx, &out, `
SELECT (SELECT count(*) FROM films)   AS films,
       (SELECT count(*) FROM cinemas) AS cinemas,
       (SELECT count(*) FROM users)   AS users`)
	if err != nil {
		return catalog.Counts{}, fmt.Errorf("postgres: counts: %w", err)
	}
	return out, nil
}

func films(rows []filmRow) []catalog.Film {
	out := make([]catalog.Film, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.film())
	}
	return out
}

func cinemas(rows []cinemaRow) []catalog.Cinema {
	out := make([]catalog.Cinema, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.cinema())
	}
	return out
}

func nonNil(ids []string) pq.StringArray {
	if ids == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(ids)
}
