package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(Migrations, MigrationsDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Fatalf("migration %s has no down file", v)
		}
	}
}

func TestRowConversion(t *testing.T) {
	f := filmRow{UUID: "f1", Name: "Heat", Year: 1995, Type: "action", Cinemas: pq.StringArray{"c1", "c2"}}.film()
	if f.UUID != "f1" || f.Year != 1995 || len(f.Cinemas) != 2 || f.Cinemas[1] != "c2" {
		t.Fatalf("film = %+v", f)
	}
	c := cinemaRow{UUID: "c1", Lat: 55.75, Lon: 37.62}.cinema()
	if c.Location.Lat != 55.75 || c.Location.Lon != 37.62 {
		t.Fatalf("cinema = %+v", c)
	}
	u := userRow{TelegramID: 7}.user()
	if u.Favourites == nil || len(u.Favourites) != 0 {
		t.Fatalf("user favourites = %#v, want empty non-nil", u.Favourites)
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Fatalf("nonNil(nil) = %#v", got)
	}
	if got := nonNil([]string{"a"}); len(got) != 1 {
		t.Fatalf("nonNil = %#v", got)
	}
}
