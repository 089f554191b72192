package router

import (
	"github.com/m3rciful/kinobot/core/telegram/keyboard"
	"github.com/m3rciful/kinobot/internal/action"
	"github.com/m3rciful/kinobot/internal/catalog"
	"github.com/m3rciful/kinobot/internal/locale"
)

// RootKeyboard is the home menu: Films and Cinemas, then Favourites.
func RootKeyboard(tr locale.Translator) *keyboard.Keyboard {
	return keyboard.Reply(
		[]keyboard.Button{keyboard.Text(tr.T(MenuFilms.String())), keyboard.Text(tr.T(MenuCinemas.String()))},
		[]keyboard.Button{keyboard.Text(tr.T(MenuFavourites.String()))},
	)
}

// FilmsKeyboard is the genre menu.
func FilmsKeyboard(tr locale.Translator) *keyboard.Keyboard {
	return keyboard.Reply(
		[]keyboard.Button{keyboard.Text(tr.T(MenuAction.String())), keyboard.Text(tr.T(MenuComedy.String()))},
		[]keyboard.Button{keyboard.Text(tr.T(MenuRandom.String()))},
		[]keyboard.Button{keyboard.Text(tr.T(MenuBack.String()))},
	)
}

// CinemasKeyboard asks for the user's location.
func CinemasKeyboard(tr locale.Translator) *keyboard.Keyboard {
	return keyboard.Reply(
		[]keyboard.Button{keyboard.Location(tr.T("menu.send_location"))},
		[]keyboard.Button{keyboard.Text(tr.T(MenuBack.String()))},
	)
}

// FilmCard builds the inline actions of a film card.
func FilmCard(tr locale.Translator, f catalog.Film, favourite bool) (*keyboard.Keyboard, error) {
	toggle, err := action.Encode(action.ToggleFavourite{FilmUUID: f.UUID, Favourite: favourite})
	if err != nil {
		return nil, err
	}
	cinemas, err := action.Encode(action.ShowCinemas{CinemaUUIDs: f.Cinemas, Source: f.UUID})
	if err != nil {
		return nil, err
	}
	label := "film.add_favourite"
	if favourite {
		label = "film.remove_favourite"
	}
	kb := keyboard.Inline([]keyboard.Button{
		keyboard.Data(tr.T(label), toggle),
		keyboard.Data(tr.T("film.show_cinemas"), cinemas),
	})
	if f.Link != "" {
		kb.Rows = append(kb.Rows, []keyboard.Button{keyboard.URL(tr.T("film.link"), f.Link)})
	}
	return kb, nil
}

// CinemaCard builds the inline actions of a cinema card.
func CinemaCard(tr locale.Translator, c catalog.Cinema) (*keyboard.Keyboard, error) {
	pin, err := action.Encode(action.ShowOnMap{Lat: c.Location.Lat, Lon: c.Location.Lon})
	if err != nil {
		return nil, err
	}
	films, err := action.Encode(action.ShowFilms{FilmUUIDs: c.Films, Source: c.UUID})
	if err != nil {
		return nil, err
	}
	first := []keyboard.Button{keyboard.Data(tr.T("cinema.on_map"), pin)}
	if c.URL != "" {
		first = append([]keyboard.Button{keyboard.URL(tr.T("cinema.site"), c.URL)}, first...)
	}
	return keyboard.Inline(first, []keyboard.Button{keyboard.Data(tr.T("cinema.films"), films)}), nil
}
