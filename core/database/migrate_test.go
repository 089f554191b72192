package database

import (
	"testing"
	"testing/fstest"

	coreconfig "github.com/m3rciful/kinobot/core/config"
)

func TestListMigrationFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_users.up.sql":     {Data: []byte("--")},
		"migrations/000001_catalog.up.sql":   {Data: []byte("--")},
		"migrations/000001_catalog.down.sql": {Data: []byte("--")},
		"migrations/readme.md":               {Data: []byte("x")},
	}
	got := listMigrationFiles(fsys, "migrations")
	want := []string{"000001_catalog.up.sql", "000002_users.up.sql"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCountApplied(t *testing.T) {
	files := []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}
	cases := []struct {
		from, to uint64
		want     int
	}{
		{0, 3, 3},
		{1, 3, 2},
		{3, 3, 0},
		{2, 1, 0},
	}
	for _, tc := range cases {
		if got := countApplied(files, tc.from, tc.to); got != tc.want {
			t.Fatalf("countApplied(%d,%d) = %d, want %d", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestURLEscapesCredentials(t *testing.T) {
	got := URL(coreconfig.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "kino",
		Password: "p@ss",
		Name:     "films",
		SSLMode:  "disable",
	})
	want := "postgres://kino:p%40ss@db:5432/films?sslmode=disable"
	if got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}
