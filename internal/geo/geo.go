// Package geo orders cinemas by great-circle distance from an observer.
package geo

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"

	"github.com/m3rciful/kinobot/internal/catalog"
)

// EarthRadiusMeters is the sphere radius used for distances.
const EarthRadiusMeters = 6378137.0

// Point is an observer location in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether p is a finite coordinate within range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Ranked pairs a cinema with its distance from the observer.
type Ranked struct {
	Cinema     catalog.Cinema
	DistanceKm float64
}

// DistanceKm returns the great-circle distance between two points, unrounded.
func DistanceKm(a Point, b catalog.Location) float64 {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return angle.Radians() * EarthRadiusMeters / 1000
}

// Rank returns cinemas sorted by ascending distance from origin. Ties keep
// input order; the input slice is not modified.
func Rank(origin Point, cinemas []catalog.Cinema) []Ranked {
	out := make([]Ranked, len(cinemas))
	for i, c := range cinemas {
		out[i] = Ranked{Cinema: c, DistanceKm: DistanceKm(origin, c.Location)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}
