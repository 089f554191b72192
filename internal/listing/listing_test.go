package listing

import (
	"strings"
	"testing"

	"github.com/m3rciful/kinobot/internal/catalog"
	"github.com/m3rciful/kinobot/internal/geo"
)

// echo renders message ids verbatim with template values appended.
type echo struct{}

func (echo) T(id string, data ...map[string]any) string {
	if len(data) == 0 {
		return id
	}
	for _, v := range data[0] {
		return id + "(" + v.(string) + ")"
	}
	return id
}

func TestEmptyListingsRenderSentinel(t *testing.T) {
	for name, got := range map[string]string{
		"films":      Films(echo{}, nil),
		"cinemas":    Cinemas(echo{}, nil),
		"ranked":     RankedCinemas(echo{}, nil),
		"favourites": Favourites(echo{}, []catalog.Film{}),
	} {
		if got != EmptyID {
			t.Fatalf("%s = %q, want sentinel", name, got)
		}
	}
}

func TestFilmsKeepOrderAndCommands(t *testing.T) {
	got := Films(echo{}, []catalog.Film{
		{UUID: "b2", Name: "Second <2>"},
		{UUID: "a1", Name: "First"},
	})
	want := "<b>1</b> Second &lt;2&gt; - /fb2\n<b>2</b> First - /fa1"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFavouritesShowRate(t *testing.T) {
	got := Favourites(echo{}, []catalog.Film{{UUID: "x", Name: "X", Rate: 8.25}})
	if got != "<b>1</b> X - listing.rate(8.25) - /fx" {
		t.Fatalf("got %q", got)
	}
}

func TestRankedCinemasShowDistanceUnrounded(t *testing.T) {
	got := RankedCinemas(echo{}, []geo.Ranked{
		{Cinema: catalog.Cinema{UUID: "c9", Name: "Near"}, DistanceKm: 0.123456789},
		{Cinema: catalog.Cinema{UUID: "c1", Name: "Far"}, DistanceKm: 12},
	})
	lines := strings.Split(got, "\n")
	if lines[0] != "<b>1</b> Near. <em>listing.distance(0.123456789)</em> - /cc9" {
		t.Fatalf("line 1 = %q", lines[0])
	}
	if lines[1] != "<b>2</b> Far. <em>listing.distance(12)</em> - /cc1" {
		t.Fatalf("line 2 = %q", lines[1])
	}
}

func TestCinemasListing(t *testing.T) {
	if got := Cinemas(echo{}, []catalog.Cinema{{UUID: "u", Name: "A&B"}}); got != "<b>1</b> A&amp;B - /cu" {
		t.Fatalf("got %q", got)
	}
}

func TestFilmCaptionSkipsEmptyFields(t *testing.T) {
	got := FilmCaption(echo{}, catalog.Film{Name: "Heat", Year: 1995, Rate: 8.5})
	want := "<b>film.name:</b> Heat\n<b>film.year:</b> 1995\n<b>film.rate:</b> 8.5"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
