// Package router dispatches inbound user events to the catalog, the
// favourites engine and the distance ranker, and emits the replies.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/kinobot/core/logger"
	"github.com/m3rciful/kinobot/core/telegram/keyboard"
	"github.com/m3rciful/kinobot/internal/action"
	"github.com/m3rciful/kinobot/internal/catalog"
	"github.com/m3rciful/kinobot/internal/favourites"
	"github.com/m3rciful/kinobot/internal/geo"
	"github.com/m3rciful/kinobot/internal/listing"
	"github.com/m3rciful/kinobot/internal/locale"
)

// ErrInvalidLocation rejects shared locations outside valid coordinates.
var ErrInvalidLocation = errors.New("router: invalid location")

// Outbound delivers replies for one inbound event.
type Outbound interface {
	SendText(ctx context.Context, html string, kb *keyboard.Keyboard) error
	SendPhoto(ctx context.Context, photoURL, caption string, kb *keyboard.Keyboard) error
	SendLocation(ctx context.Context, lat, lon float64) error
	AnswerCallback(ctx context.Context, text string) error
}

// Router holds no per-user state; every event is handled independently.
type Router struct {
	catalog    catalog.Store
	favourites *favourites.Engine
	locales    *locale.Bundle
	log        *slog.Logger
}

// New builds a Router.
func New(store catalog.Store, favs *favourites.Engine, locales *locale.Bundle) *Router {
	return &Router{
		catalog:    store,
		favourites: favs,
		locales:    locales,
		log:        logger.Component("router"),
	}
}

// Translator returns the translator for a sender language tag.
func (r *Router) Translator(lang string) locale.Translator {
	return r.locales.Printer(lang)
}

// Classify maps text to an event, matching menu labels of the sender's
// language first and then of every loaded language.
func (r *Router) Classify(lang, text string) Event {
	if ev := Classify(r.locales.Printer(lang), text); ev != nil {
		return ev
	}
	for _, p := range r.locales.Printers() {
		if ev := Classify(p, text); ev != nil {
			return ev
		}
	}
	return nil
}

// Route handles one event. Malformed callbacks and store faults are returned
// without sending anything; a missing entity is logged and ignored.
func (r *Router) Route(ctx context.Context, in Inbound, out Outbound) error {
	tr := r.locales.Printer(in.Lang)
	switch ev := in.Event.(type) {
	case Start:
		return out.SendText(ctx, tr.T("start.greeting", map[string]any{"Name": ev.FirstName}), RootKeyboard(tr))
	case MenuText:
		return r.menu(ctx, in, tr, ev.Item, out)
	case EntityCommand:
		return r.entity(ctx, in, tr, ev, out)
	case LocationShared:
		return r.nearest(ctx, tr, ev.Point, out)
	case Callback:
		return r.callback(ctx, in, tr, ev.Data, out)
	case nil:
		return errors.New("router: nil event")
	default:
		return fmt.Errorf("router: unsupported event %T", ev)
	}
}

func (r *Router) menu(ctx context.Context, in Inbound, tr locale.Translator, item MenuItem, out Outbound) error {
	switch item {
	case MenuFavourites:
		ids, err := r.favourites.List(ctx, in.UserID)
		if err != nil {
			return err
		}
		var films []catalog.Film
		if len(ids) > 0 {
			if films, err = r.catalog.FilmsByUUID(ctx, ids); err != nil {
				return fmt.Errorf("router: favourite films: %w", err)
			}
		}
		return out.SendText(ctx, listing.Favourites(tr, films), nil)
	case MenuFilms:
		return out.SendText(ctx, tr.T("films.prompt"), FilmsKeyboard(tr))
	case MenuComedy, MenuAction, MenuRandom:
		films, err := r.catalog.Films(ctx, GenreFilter(item))
		if err != nil {
			return fmt.Errorf("router: films: %w", err)
		}
		return out.SendText(ctx, listing.Films(tr, films), nil)
	case MenuCinemas:
		return out.SendText(ctx, tr.T("cinemas.prompt"), CinemasKeyboard(tr))
	case MenuBack:
		return out.SendText(ctx, tr.T("root.prompt"), RootKeyboard(tr))
	}
	return fmt.Errorf("router: unknown menu item %d", item)
}

// GenreFilter maps a genre menu item to its catalog filter; Random matches all films.
func GenreFilter(item MenuItem) catalog.Filter {
	switch item {
	case MenuComedy:
		return catalog.Filter{Type: catalog.TypeComedy}
	case MenuAction:
		return catalog.Filter{Type: catalog.TypeAction}
	}
	return catalog.Filter{}
}

func (r *Router) entity(ctx context.Context, in Inbound, tr locale.Translator, ev EntityCommand, out Outbound) error {
	switch ev.Prefix {
	case action.PrefixFilm:
		film, err := r.catalog.Film(ctx, ev.ID)
		if errors.Is(err, catalog.ErrNotFound) {
			r.missing(ctx, "film", ev.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("router: film %s: %w", ev.ID, err)
		}
		fav, err := r.favourites.IsFavourite(ctx, in.UserID, film.UUID)
		if err != nil {
			return err
		}
		kb, err := FilmCard(tr, film, fav)
		if err != nil {
			return err
		}
		caption := listing.FilmCaption(tr, film)
		if film.Picture == "" {
			return out.SendText(ctx, caption, kb)
		}
		return out.SendPhoto(ctx, film.Picture, caption, kb)
	case action.PrefixCinema:
		cinema, err := r.catalog.Cinema(ctx, ev.ID)
		if errors.Is(err, catalog.ErrNotFound) {
			r.missing(ctx, "cinema", ev.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("router: cinema %s: %w", ev.ID, err)
		}
		kb, err := CinemaCard(tr, cinema)
		if err != nil {
			return err
		}
		return out.SendText(ctx, listing.CinemaCaption(tr, cinema), kb)
	}
	return fmt.Errorf("router: unknown entity prefix %q", ev.Prefix)
}

func (r *Router) nearest(ctx context.Context, tr locale.Translator, p geo.Point, out Outbound) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %v,%v", ErrInvalidLocation, p.Lat, p.Lon)
	}
	cinemas, err := r.catalog.Cinemas(ctx)
	if err != nil {
		return fmt.Errorf("router: cinemas: %w", err)
	}
	return out.SendText(ctx, listing.RankedCinemas(tr, geo.Rank(p, cinemas)), nil)
}

func (r *Router) callback(ctx context.Context, in Inbound, tr locale.Translator, data string, out Outbound) error {
	payload, err := action.Decode(data)
	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case action.ToggleFavourite:
		_, result, err := r.favourites.Toggle(ctx, in.UserID, p.FilmUUID, p.Favourite)
		if err != nil {
			return err
		}
		return out.AnswerCallback(ctx, tr.T("favourites."+string(result)))
	case action.ShowOnMap:
		if err := out.SendLocation(ctx, p.Lat, p.Lon); err != nil {
			return err
		}
	case action.ShowCinemas:
		ids := p.CinemaUUIDs
		if p.Source != "" {
			film, err := r.catalog.Film(ctx, p.Source)
			if err != nil && !errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("router: film %s: %w", p.Source, err)
			}
			ids = film.Cinemas
		}
		var cinemas []catalog.Cinema
		if len(ids) > 0 {
			if cinemas, err = r.catalog.CinemasByUUID(ctx, ids); err != nil {
				return fmt.Errorf("router: cinemas by uuid: %w", err)
			}
		}
		if err := out.SendText(ctx, listing.Cinemas(tr, cinemas), nil); err != nil {
			return err
		}
	case action.ShowFilms:
		ids := p.FilmUUIDs
		if p.Source != "" {
			cinema, err := r.catalog.Cinema(ctx, p.Source)
			if err != nil && !errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("router: cinema %s: %w", p.Source, err)
			}
			ids = cinema.Films
		}
		var films []catalog.Film
		if len(ids) > 0 {
			if films, err = r.catalog.FilmsByUUID(ctx, ids); err != nil {
				return fmt.Errorf("router: films by uuid: %w", err)
			}
		}
		if err := out.SendText(ctx, listing.Films(tr, films), nil); err != nil {
			return err
		}
	}
	return out.AnswerCallback(ctx, "")
}

func (r *Router) missing(ctx context.Context, kind, id string) {
	logger.LogEvent(ctx, r.log, slog.LevelWarn, "entity.missing",
		slog.String("kind", kind),
		slog.String("id", logger.SanitizeLimit(id, 64)),
	)
}
