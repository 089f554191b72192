package geo

import (
	"math"
	"testing"

	"github.com/m3rciful/kinobot/internal/catalog"
)

// northOf returns a location dist km due north of p.
func northOf(p Point, km float64) catalog.Location {
	deg := km * 1000 / EarthRadiusMeters * 180 / math.Pi
	return catalog.Location{Lat: p.Lat + deg, Lon: p.Lon}
}

func TestRankOrdersByDistance(t *testing.T) {
	origin := Point{Lat: 55.75, Lon: 37.61}
	cinemas := []catalog.Cinema{
		{UUID: "c1", Location: northOf(origin, 1)},
		{UUID: "c2", Location: northOf(origin, 5)},
		{UUID: "c3", Location: northOf(origin, 0.5)},
	}
	got := Rank(origin, cinemas)
	want := []string{"c3", "c1", "c2"}
	for i, r := range got {
		if r.Cinema.UUID != want[i] {
			t.Fatalf("position %d = %s, want %s", i, r.Cinema.UUID, want[i])
		}
	}
	if math.Abs(got[1].DistanceKm-1) > 1e-6 {
		t.Fatalf("distance = %v, want ~1", got[1].DistanceKm)
	}
	if cinemas[0].UUID != "c1" {
		t.Fatal("input reordered")
	}
}

func TestRankStableOnTies(t *testing.T) {
	origin := Point{Lat: 10, Lon: 10}
	loc := northOf(origin, 2)
	cinemas := []catalog.Cinema{{UUID: "a", Location: loc}, {UUID: "b", Location: loc}, {UUID: "c", Location: loc}}
	got := Rank(origin, cinemas)
	for i, id := range []string{"a", "b", "c"} {
		if got[i].Cinema.UUID != id {
			t.Fatalf("tie order broken: %+v", got)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(Point{}, nil); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestPointValid(t *testing.T) {
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{-90, 180}, true},
		{Point{91, 0}, false},
		{Point{0, -181}, false},
		{Point{math.NaN(), 0}, false},
		{Point{0, math.Inf(1)}, false},
	}
	for _, tc := range cases {
		if got := tc.p.Valid(); got != tc.want {
			t.Fatalf("%+v.Valid() = %v", tc.p, got)
		}
	}
}
