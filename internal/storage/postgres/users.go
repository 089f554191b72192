package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/kinobot/internal/favourites"
)

// Users implements favourites.Store. Every mutation is one statement, so
// concurrent toggles for the same user serialize on the row lock.
type Users struct {
	db *sqlx.DB
}

// NewUsers wraps db.
func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

type userRow struct {
	TelegramID int64          `db:"telegram_id"`
	Films      pq.StringArray `db:"films"`
}

const addFavourite = `
INSERT INTO users (telegram_id, films) VALUES ($1, ARRAY[$2::text])
ON CONFLICT (telegram_id) DO UPDATE SET
    films = CASE WHEN $2::text = ANY(users.films) THEN users.films
                 ELSE array_append(users.films, $2::text) END,
    updated_at = now()
RETURNING telegram_id, films`

const removeFavourite = `
INSERT INTO users (telegram_id, films) VALUES ($1, '{}')
ON CONFLICT (telegram_id) DO UPDATE SET
    films = array_remove(users.films, $2::text),
    updated_at = now()
RETURNING telegram_id, films`

// AddFavourite appends filmUUID unless present, creating the user when absent.
func (u *Users) AddFavourite(ctx context.Context, telegramID int64, filmUUID string) (favourites.User, error) {
	var row userRow
	if err := u.db.GetContext(ctx, &row, addFavourite, telegramID, filmUUID); err != nil {
		return favourites.User{}, fmt.Errorf("postgres: add favourite: %w", err)
	}
	return row.user(), nil
}

// RemoveFavourite drops every occurrence of filmUUID, creating an empty user when absent.
func (u *Users) RemoveFavourite(ctx context.Context, telegramID int64, filmUUID string) (favourites.User, error) {
	var row userRow
	if err := u.db.GetContext(ctx, &row, removeFavourite, telegramID, filmUUID); err != nil {
		return favourites.User{}, fmt.Errorf("postgres: remove favourite: %w", err)
	}
	return row.user(), nil
}

// FindUser returns the user and whether it exists.
func (u *Users) FindUser(ctx context.Context, telegramID int64) (favourites.User, bool, error) {
	var row userRow
	err := u.db.GetContext(ctx, &row, `SELECT telegram_id, films FROM users WHERE telegram_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return favourites.User{TelegramID: telegramID}, false, nil
	}
	if err != nil {
		return favourites.User{}, false, fmt.Errorf("postgres: find user: %w", err)
	}
	return row.user(), true, nil
}

func (r userRow) user() favourites.User {
	films := []string(r.Films)
	if films == nil {
		films = []string{}
	}
	return favourites.User{TelegramID: r.TelegramID, Favourites: films}
}
