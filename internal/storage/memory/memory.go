// Package memory keeps the catalog and users in process memory. It backs the
// "memory" storage driver and the tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/m3rciful/kinobot/internal/catalog"
	"github.com/m3rciful/kinobot/internal/favourites"
)

// Catalog is an insertion-ordered film and cinema store.
type Catalog struct {
	mu      sync.RWMutex
	films   []catalog.Film
	cinemas []catalog.Cinema
}

// NewCatalog returns a catalog preloaded with films and cinemas.
func NewCatalog(films []catalog.Film, cinemas []catalog.Cinema) *Catalog {
	c := &Catalog{}
	for _, f := range films {
		_ = c.UpsertFilm(context.Background(), f)
	}
	for _, cn := range cinemas {
		_ = c.UpsertCinema(context.Background(), cn)
	}
	return c
}

// UpsertFilm inserts f or replaces the film with the same uuid in place.
func (c *Catalog) UpsertFilm(_ context.Context, f catalog.Film) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.Cinemas = slices.Clone(f.Cinemas)
	if i := slices.IndexFunc(c.films, func(x catalog.Film) bool { return x.UUID == f.UUID }); i >= 0 {
		c.films[i] = f
		return nil
	}
	c.films = append(c.films, f)
	return nil
}

// UpsertCinema inserts cn or replaces the cinema with the same uuid in place.
func (c *Catalog) UpsertCinema(_ context.Context, cn catalog.Cinema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cn.Films = slices.Clone(cn.Films)
	if i := slices.IndexFunc(c.cinemas, func(x catalog.Cinema) bool { return x.UUID == cn.UUID }); i >= 0 {
		c.cinemas[i] = cn
		return nil
	}
	c.cinemas = append(c.cinemas, cn)
	return nil
}

// Films returns films matching f in insertion order.
func (c *Catalog) Films(_ context.Context, f catalog.Filter) ([]catalog.Film, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []catalog.Film
	for _, film := range c.films {
		if f.Matches(film) {
			out = append(out, cloneFilm(film))
		}
	}
	return out, nil
}

// FilmsByUUID returns films whose uuid is in uuids, in insertion order.
func (c *Catalog) FilmsByUUID(_ context.Context, uuids []string) ([]catalog.Film, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []catalog.Film
	for _, film := range c.films {
		if slices.Contains(uuids, film.UUID) {
			out = append(out, cloneFilm(film))
		}
	}
	return out, nil
}

// Film returns the film with uuid or catalog.ErrNotFound.
func (c *Catalog) Film(_ context.Context, uuid string) (catalog.Film, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, film := range c.films {
		if film.UUID == uuid {
			return cloneFilm(film), nil
		}
	}
	return catalog.Film{}, catalog.ErrNotFound
}

// Cinemas returns all cinemas in insertion order.
func (c *Catalog) Cinemas(_ context.Context) ([]catalog.Cinema, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]catalog.Cinema, 0, len(c.cinemas))
	for _, cn := range c.cinemas {
		out = append(out, cloneCinema(cn))
	}
	return out, nil
}

// CinemasByUUID returns cinemas whose uuid is in uuids, in insertion order.
func (c *Catalog) CinemasByUUID(_ context.Context, uuids []string) ([]catalog.Cinema, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []catalog.Cinema
	for _, cn := range c.cinemas {
		if slices.Contains(uuids, cn.UUID) {
			out = append(out, cloneCinema(cn))
		}
	}
	return out, nil
}

// Cinema returns the cinema with uuid or catalog.ErrNotFound.
func (c *Catalog) Cinema(_ context.Context, uuid string) (catalog.Cinema, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cn := range c.cinemas {
		if cn.UUID == uuid {
			return cloneCinema(cn), nil
		}
	}
	return catalog.Cinema{}, catalog.ErrNotFound
}

func cloneFilm(f catalog.Film) catalog.Film {
	f.Cinemas = slices.Clone(f.Cinemas)
	return f
}

func cloneCinema(c catalog.Cinema) catalog.Cinema {
	c.Films = slices.Clone(c.Films)
	return c
}

// Users stores favourites. Each mutation runs under one lock, so a toggle
// never interleaves with another change to the same user.
type Users struct {
	mu    sync.Mutex
	users map[int64][]string
}

// NewUsers returns an empty user store.
func NewUsers() *Users {
	return &Users{users: make(map[int64][]string)}
}

// AddFavourite appends filmUUID unless already present, creating the user when absent.
func (u *Users) AddFavourite(_ context.Context, telegramID int64, filmUUID string) (favourites.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	list := u.users[telegramID]
	if !slices.Contains(list, filmUUID) {
		list = append(list, filmUUID)
	}
	u.users[telegramID] = list
	return favourites.User{TelegramID: telegramID, Favourites: slices.Clone(list)}, nil
}

// RemoveFavourite drops every occurrence of filmUUID, creating an empty user when absent.
func (u *Users) RemoveFavourite(_ context.Context, telegramID int64, filmUUID string) (favourites.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	list := slices.DeleteFunc(u.users[telegramID], func(id string) bool { return id == filmUUID })
	if list == nil {
		list = []string{}
	}
	u.users[telegramID] = list
	return favourites.User{TelegramID: telegramID, Favourites: slices.Clone(list)}, nil
}

// FindUser returns the user and whether it exists.
func (u *Users) FindUser(_ context.Context, telegramID int64) (favourites.User, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	list, ok := u.users[telegramID]
	return favourites.User{TelegramID: telegramID, Favourites: slices.Clone(list)}, ok, nil
}

// Count returns the number of stored users.
func (u *Users) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.users)
}

// Stats combines a memory catalog and user store into catalog.Counter.
type Stats struct {
	Catalog *Catalog
	Users   *Users
}

// Counts reports catalog and user totals.
func (s Stats) Counts(_ context.Context) (catalog.Counts, error) {
	var out catalog.Counts
	if s.Catalog != nil {
		s.Catalog.mu.RLock()
		out.Films, out.Cinemas = len(s.Catalog.films), len(s.Catalog.cinemas)
		s.Catalog.mu.RUnlock()
	}
	if s.Users != nil {
		out.Users = s.Users.Count()
	}
	return out, nil
}
