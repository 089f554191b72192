// Package catalog defines films and cinemas, the store contract the bot reads
// them through, a Redis read-through cache and the YAML seeder.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by single-entity lookups when no record matches.
var ErrNotFound = errors.New("catalog: not found")

// Film types used by the genre menu.
const (
	TypeComedy = "comedy"
	TypeAction = "action"
)

// Location is a latitude/longitude pair in degrees.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat" db:"lat"`
	Lon float64 `json:"lon" yaml:"lon" db:"lon"`
}

// Film is immutable reference data; only seeding writes it.
type Film struct {
	UUID    string   `json:"uuid" yaml:"uuid"`
	Name    string   `json:"name" yaml:"name"`
	Year    int      `json:"year" yaml:"year"`
	Rate    float64  `json:"rate" yaml:"rate"`
	Length  string   `json:"length" yaml:"length"`
	Country string   `json:"country" yaml:"country"`
	Type    string   `json:"type" yaml:"type"`
	Picture string   `json:"picture" yaml:"picture"`
	Link    string   `json:"link" yaml:"link"`
	Cinemas []string `json:"cinemas" yaml:"cinemas"`
}

// Cinema is immutable reference data; only seeding writes it.
type Cinema struct {
	UUID     string   `json:"uuid" yaml:"uuid"`
	Name     string   `json:"name" yaml:"name"`
	URL      string   `json:"url" yaml:"url"`
	Location Location `json:"location" yaml:"location"`
	Films    []string `json:"films" yaml:"films"`
}

// Filter selects films by exact field match. The zero Filter matches every film.
type Filter struct {
	Type string
}

// Matches reports whether f selects film.
func (f Filter) Matches(film Film) bool {
	return f.Type == "" || film.Type == f.Type
}

// Store reads the catalog. Multi-record queries return records in catalog
// (insertion) order and never fail on unknown ids; single lookups return
// ErrNotFound.
type Store interface {
	Films(ctx context.Context, f Filter) ([]Film, error)
	FilmsByUUID(ctx context.Context, uuids []string) ([]Film, error)
	Film(ctx context.Context, uuid string) (Film, error)
	Cinemas(ctx context.Context) ([]Cinema, error)
	CinemasByUUID(ctx context.Context, uuids []string) ([]Cinema, error)
	Cinema(ctx context.Context, uuid string) (Cinema, error)
}

// Writer stores reference data. Upserts keep the original insertion position.
type Writer interface {
	UpsertFilm(ctx context.Context, f Film) error
	UpsertCinema(ctx context.Context, c Cinema) error
}

// Counts summarises catalog and user totals for the admin report.
type Counts struct {
	Films   int `db:"films"`
	Cinemas int `db:"cinemas"`
	Users   int `db:"users"`
}

// Counter reports catalog totals.
type Counter interface {
	Counts(ctx context.Context) (Counts, error)
}
