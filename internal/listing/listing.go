// Package listing renders catalog query results as numbered HTML listings
// whose lines carry re-entrant /f and /c commands.
package listing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/kinobot/core/telegram/format"
	"github.com/m3rciful/kinobot/internal/action"
	"github.com/m3rciful/kinobot/internal/catalog"
	"github.com/m3rciful/kinobot/internal/geo"
	"github.com/m3rciful/kinobot/internal/locale"
)

// EmptyID is the message shown instead of an empty listing.
const EmptyID = "listing.empty"

func render(tr locale.Translator, n int, line func(i int) string) string {
	if n == 0 {
		return tr.T(EmptyID)
	}
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		lines[i] = fmt.Sprintf("%s %s", format.Bold(strconv.Itoa(i+1)), line(i))
	}
	return strings.Join(lines, "\n")
}

// Films lists films in the given order.
func Films(tr locale.Translator, films []catalog.Film) string {
	return render(tr, len(films), func(i int) string {
		f := films[i]
		return format.Escape(f.Name) + " - " + action.EntityCommand(action.PrefixFilm, f.UUID)
	})
}

// Favourites lists favourite films with their rating.
func Favourites(tr locale.Translator, films []catalog.Film) string {
	return render(tr, len(films), func(i int) string {
		f := films[i]
		rate := tr.T("listing.rate", map[string]any{"Rate": FormatNumber(f.Rate)})
		return format.Escape(f.Name) + " - " + format.Escape(rate) + " - " + action.EntityCommand(action.PrefixFilm, f.UUID)
	})
}

// Cinemas lists cinemas in the given order.
func Cinemas(tr locale.Translator, cinemas []catalog.Cinema) string {
	return render(tr, len(cinemas), func(i int) string {
		c := cinemas[i]
		return format.Escape(c.Name) + " - " + action.EntityCommand(action.PrefixCinema, c.UUID)
	})
}

// RankedCinemas lists cinemas in ranker order with their distance.
func RankedCinemas(tr locale.Translator, ranked []geo.Ranked) string {
	return render(tr, len(ranked), func(i int) string {
		r := ranked[i]
		dist := tr.T("listing.distance", map[string]any{"Km": FormatNumber(r.DistanceKm)})
		return format.Escape(r.Cinema.Name) + ". <em>" + format.Escape(dist) + "</em> - " +
			action.EntityCommand(action.PrefixCinema, r.Cinema.UUID)
	})
}

// FilmCaption renders the detail card caption of a film.
func FilmCaption(tr locale.Translator, f catalog.Film) string {
	field := func(id, value string) string {
		if value == "" {
			return ""
		}
		return format.Bold(format.Escape(tr.T(id))+":") + " " + format.Escape(value)
	}
	year := ""
	if f.Year > 0 {
		year = strconv.Itoa(f.Year)
	}
	return format.Lines(
		field("film.name", f.Name),
		field("film.year", year),
		field("film.rate", FormatNumber(f.Rate)),
		field("film.length", f.Length),
		field("film.country", f.Country),
	)
}

// CinemaCaption renders the detail card text of a cinema.
func CinemaCaption(_ locale.Translator, c catalog.Cinema) string {
	return format.Bold(format.Escape(c.Name))
}

// FormatNumber prints v with the fewest digits that represent it exactly.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
