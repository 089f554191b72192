package router

import (
	"github.com/m3rciful/kinobot/internal/action"
	"github.com/m3rciful/kinobot/internal/geo"
	"github.com/m3rciful/kinobot/internal/locale"
)

// Event is an inbound user action. The set is closed: Start, MenuText,
// EntityCommand, LocationShared and Callback.
type Event interface {
	isEvent()
}

// Start is the /start command.
type Start struct {
	FirstName string
}

// MenuText is a press of a reply-keyboard menu item.
type MenuText struct {
	Item MenuItem
}

// EntityCommand is a re-entrant /f<uuid> or /c<uuid> command.
type EntityCommand struct {
	Prefix string
	ID     string
}

// LocationShared carries a location sent by the user.
type LocationShared struct {
	Point geo.Point
}

// Callback is an inline-button press with its raw callback data.
type Callback struct {
	Data string
}

func (Start) isEvent()          {}
func (MenuText) isEvent()       {}
func (EntityCommand) isEvent()  {}
func (LocationShared) isEvent() {}
func (Callback) isEvent()       {}

// Inbound is one event from one user. Lang is the sender's language tag and
// selects the locale for every reply to this event.
type Inbound struct {
	UserID int64
	Lang   string
	Event  Event
}

// MenuItem enumerates reply-keyboard entries.
type MenuItem int

// Menu items.
const (
	MenuFavourites MenuItem = iota + 1
	MenuFilms
	MenuCinemas
	MenuComedy
	MenuAction
	MenuRandom
	MenuBack
)

var menuMessages = []struct {
	item MenuItem
	id   string
}{
	{MenuFavourites, "menu.favourites"},
	{MenuFilms, "menu.films"},
	{MenuCinemas, "menu.cinemas"},
	{MenuComedy, "menu.comedy"},
	{MenuAction, "menu.action"},
	{MenuRandom, "menu.random"},
	{MenuBack, "menu.back"},
}

// String returns the item's message id.
func (m MenuItem) String() string {
	for _, mm := range menuMessages {
		if mm.item == m {
			return mm.id
		}
	}
	return "menu.unknown"
}

// Classify maps message text to an event using tr's menu labels. It returns
// nil for text that is neither /start, a menu label nor an entity command.
func Classify(tr locale.Translator, text string) Event {
	if text == "/start" {
		return Start{}
	}
	for _, mm := range menuMessages {
		if text == tr.T(mm.id) {
			return MenuText{Item: mm.item}
		}
	}
	if prefix, id, ok := action.ParseEntityCommand(text); ok {
		return EntityCommand{Prefix: prefix, ID: id}
	}
	return nil
}
