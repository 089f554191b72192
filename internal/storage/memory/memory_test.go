package memory

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/m3rciful/kinobot/internal/catalog"
)

func TestCatalogKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog([]catalog.Film{
		{UUID: "3", Type: catalog.TypeComedy},
		{UUID: "1", Type: catalog.TypeAction},
		{UUID: "2", Type: catalog.TypeComedy},
	}, nil)

	comedies, _ := c.Films(ctx, catalog.Filter{Type: catalog.TypeComedy})
	if ids(comedies) != "3,2" {
		t.Fatalf("comedies = %s", ids(comedies))
	}
	byID, _ := c.FilmsByUUID(ctx, []string{"2", "3", "missing"})
	if ids(byID) != "3,2" {
		t.Fatalf("by uuid = %s", ids(byID))
	}

	_ = c.UpsertFilm(ctx, catalog.Film{UUID: "3", Name: "renamed"})
	all, _ := c.Films(ctx, catalog.Filter{})
	if ids(all) != "3,1,2" || all[0].Name != "renamed" {
		t.Fatalf("upsert moved record: %+v", all)
	}
	if _, err := c.Film(ctx, "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestCatalogReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(nil, []catalog.Cinema{{UUID: "c", Films: []string{"a"}}})
	got, _ := c.Cinema(ctx, "c")
	got.Films[0] = "mutated"
	again, _ := c.Cinema(ctx, "c")
	if again.Films[0] != "a" {
		t.Fatal("caller mutation leaked into store")
	}
}

func TestUsersAddDeduplicates(t *testing.T) {
	u := NewUsers()
	ctx := context.Background()
	_, _ = u.AddFavourite(ctx, 1, "f1")
	_, _ = u.AddFavourite(ctx, 1, "f2")
	user, _ := u.AddFavourite(ctx, 1, "f1")
	if !reflect.DeepEqual(user.Favourites, []string{"f1", "f2"}) {
		t.Fatalf("favourites = %v", user.Favourites)
	}
}

func TestUsersRemoveCreatesEmptyUser(t *testing.T) {
	u := NewUsers()
	ctx := context.Background()
	user, err := u.RemoveFavourite(ctx, 9, "f1")
	if err != nil || user.Favourites == nil || len(user.Favourites) != 0 {
		t.Fatalf("user = %+v, %v", user, err)
	}
	if _, ok, _ := u.FindUser(ctx, 9); !ok {
		t.Fatal("remove must persist the user")
	}
}

func TestUsersConcurrentAdds(t *testing.T) {
	u := NewUsers()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = u.AddFavourite(ctx, 1, "same")
		}()
	}
	wg.Wait()
	user, _, _ := u.FindUser(ctx, 1)
	if len(user.Favourites) != 1 {
		t.Fatalf("favourites = %v", user.Favourites)
	}
}

func TestStatsCounts(t *testing.T) {
	c := NewCatalog([]catalog.Film{{UUID: "f"}}, []catalog.Cinema{{UUID: "a"}, {UUID: "b"}})
	u := NewUsers()
	_, _ = u.AddFavourite(context.Background(), 1, "f")
	got, _ := Stats{Catalog: c, Users: u}.Counts(context.Background())
	if got != (catalog.Counts{Films: 1, Cinemas: 2, Users: 1}) {
		t.Fatalf("counts = %+v", got)
	}
}

func ids(films []catalog.Film) string {
	out := ""
	for i, f := range films {
		if i > 0 {
			out += ","
		}
		out += f.UUID
	}
	return out
}
