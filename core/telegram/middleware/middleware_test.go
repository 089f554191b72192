package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kinobot/core/telegram/commands"
)

func newContext(t *testing.T, updateID int, userID int64, callback bool) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	user := &tele.User{ID: userID}
	msg := &tele.Message{ID: updateID, Sender: user, Chat: &tele.Chat{ID: userID}}
	upd := tele.Update{ID: updateID}
	if callback {
		upd.Callback = &tele.Callback{Sender: user, Message: msg, Data: `{"t":"sm"}`}
	} else {
		upd.Message = msg
	}
	return bot.NewContext(upd)
}

func TestRateLimitDropsBurst(t *testing.T) {
	clock := time.Unix(1000, 0)
	var limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
		Now:       func() time.Time { return clock },
	})
	var handled int
	h := mw(func(tele.Context) error { handled++; return nil })

	_ = h(newContext(t, 1, 7, false))
	clock = clock.Add(200 * time.Millisecond)
	_ = h(newContext(t, 2, 7, false))
	_ = h(newContext(t, 3, 7, true))
	_ = h(newContext(t, 4, 8, false))
	clock = clock.Add(2 * time.Second)
	_ = h(newContext(t, 5, 7, false))

	if handled != 4 {
		t.Fatalf("handled = %d, want 4", handled)
	}
	if limited != 1 {
		t.Fatalf("limited = %d, want 1", limited)
	}
}

func TestWithAdminCheck(t *testing.T) {
	var ran, rejected int
	cmd := commands.Command{
		Description: "stats",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { ran++; return nil },
	}
	h := WithAdminCheck(AdminOptions{AdminID: 42, OnReject: func(tele.Context) error { rejected++; return nil }}, cmd)

	_ = h(newContext(t, 1, 42, false))
	_ = h(newContext(t, 2, 7, false))
	if ran != 1 || rejected != 1 {
		t.Fatalf("ran=%d rejected=%d", ran, rejected)
	}

	closed := WithAdminCheck(AdminOptions{}, cmd)
	_ = closed(newContext(t, 3, 42, false))
	if ran != 1 {
		t.Fatal("admin command must stay closed without configured admin")
	}
}

func TestRecoverMiddlewareReturnsError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(newContext(t, 1, 1, false)); err == nil {
		t.Fatal("expected error from recovered panic")
	}
	ok := RecoverMiddleware(func(tele.Context) error { return errors.New("plain") })
	if err := ok(newContext(t, 2, 1, false)); err == nil || err.Error() != "plain" {
		t.Fatalf("err = %v", err)
	}
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	c := newContext(t, 9, 3, false)
	var rid string
	_ = LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})(c)
	if rid != "9:3:3" {
		t.Fatalf("rid = %q", rid)
	}
}
