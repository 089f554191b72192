// Package favourites applies add/remove toggles to a user's favourite films.
package favourites

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/m3rciful/kinobot/core/logger"
	"github.com/m3rciful/kinobot/core/metrics"
)

// User holds a Telegram user's favourite film uuids in the order they were added.
type User struct {
	TelegramID int64    `db:"telegram_id"`
	Favourites []string `db:"films"`
}

// Has reports whether filmUUID is among the user's favourites.
func (u User) Has(filmUUID string) bool {
	return slices.Contains(u.Favourites, filmUUID)
}

// Result labels the action a toggle performed.
type Result string

const (
	// Added means the film was requested to be added.
	Added Result = "added"
	// Removed means the film was requested to be removed.
	Removed Result = "removed"
)

// Store persists users. Add and Remove are single atomic operations that
// create the user when absent; Add never stores a uuid twice and Remove
// drops every occurrence.
type Store interface {
	AddFavourite(ctx context.Context, telegramID int64, filmUUID string) (User, error)
	RemoveFavourite(ctx context.Context, telegramID int64, filmUUID string) (User, error)
	FindUser(ctx context.Context, telegramID int64) (User, bool, error)
}

// Toggled describes a persisted favourite change.
type Toggled struct {
	TelegramID int64     `json:"telegram_id"`
	FilmUUID   string    `json:"film_uuid"`
	Result     Result    `json:"result"`
	At         time.Time `json:"at"`
}

// Publisher announces persisted toggles to other services.
type Publisher interface {
	PublishToggled(ctx context.Context, ev Toggled) error
}

// Engine runs favourite toggles against a Store.
type Engine struct {
	store Store
	pub   Publisher
	now   func() time.Time
	log   *slog.Logger
}

// NewEngine builds an Engine. A nil publisher disables event publishing.
func NewEngine(store Store, pub Publisher) *Engine {
	return &Engine{
		store: store,
		pub:   pub,
		now:   time.Now,
		log:   logger.Component("service.favourites"),
	}
}

// Toggle removes filmUUID when currentlyFavourite is set and adds it otherwise.
// The result label follows the requested direction, not a re-read of the
// stored list. A store error is returned before anything is acknowledged.
func (e *Engine) Toggle(ctx context.Context, telegramID int64, filmUUID string, currentlyFavourite bool) (User, Result, error) {
	start := time.Now()
	var (
		user   User
		result Result
		err    error
	)
	if currentlyFavourite {
		result = Removed
		user, err = e.store.RemoveFavourite(ctx, telegramID, filmUUID)
	} else {
		result = Added
		user, err = e.store.AddFavourite(ctx, telegramID, filmUUID)
	}
	if err != nil {
		logger.LogEvent(ctx, e.log, slog.LevelError, "favourites.toggle",
			slog.String("status", logger.Status(err)),
			slog.String("film", filmUUID),
			slog.String("result", string(result)),
			slog.String("err", err.Error()),
		)
		return User{}, "", fmt.Errorf("favourites: toggle %s: %w", filmUUID, err)
	}
	metrics.FavouriteToggles.WithLabelValues(string(result)).Inc()
	logger.LogEvent(ctx, e.log, slog.LevelInfo, "favourites.toggle",
		slog.String("status", "ok"),
		slog.String("film", filmUUID),
		slog.String("result", string(result)),
		slog.Int("count", len(user.Favourites)),
		slog.Duration("took", logger.Took(start)),
	)

	if e.pub != nil {
		ev := Toggled{TelegramID: telegramID, FilmUUID: filmUUID, Result: result, At: e.now().UTC()}
		if err := e.pub.PublishToggled(ctx, ev); err != nil {
			logger.LogEvent(ctx, e.log, slog.LevelWarn, "favourites.publish_failed",
				slog.String("film", filmUUID),
				slog.String("err", err.Error()),
			)
		}
	}
	return user, result, nil
}

// IsFavourite reports whether the user has filmUUID among favourites. Unknown users have none.
func (e *Engine) IsFavourite(ctx context.Context, telegramID int64, filmUUID string) (bool, error) {
	user, _, err := e.store.FindUser(ctx, telegramID)
	if err != nil {
		return false, fmt.Errorf("favourites: find user: %w", err)
	}
	return user.Has(filmUUID), nil
}

// List returns the user's favourite film uuids.
func (e *Engine) List(ctx context.Context, telegramID int64) ([]string, error) {
	user, _, err := e.store.FindUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("favourites: find user: %w", err)
	}
	return user.Favourites, nil
}
