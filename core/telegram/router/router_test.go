package router

import (
	"errors"
	"fmt"
	"testing"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/kinobot/core/telegram"
	"github.com/m3rciful/kinobot/core/telegram/commands"
)

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "not found" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	if got := deriveErrorCode(fmt.Errorf("wrap: %w", codedErr{})); got != "NOT_FOUND" {
		t.Fatalf("coded = %q", got)
	}
	if got := deriveErrorCode(fmt.Errorf("wrap: %w", &plainErr{})); got != "PLAINERR" {
		t.Fatalf("plain = %q", got)
	}
	if got := deriveErrorCode(errors.New("x")); got != "ERRORSTRING" {
		t.Fatalf("errors.New = %q", got)
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	if got := normalizeHandlerName(" /Start Now "); got != "start_now" {
		t.Fatalf("got %q", got)
	}
	if got := normalizeHandlerName(""); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}

func TestCommandRoutesBindAliases(t *testing.T) {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/help", commands.Command{
		Handler:     func(tele.Context) error { return nil },
		Description: "help",
		Aliases:     []string{"h", "/about"},
	})
	routes := CommandRoutes(reg, CommandRouteOptions{})
	got := map[any]bool{}
	for _, r := range routes {
		got[r.Endpoint] = true
	}
	for _, want := range []string{"/help", "/h", "/about"} {
		if !got[want] {
			t.Fatalf("missing endpoint %s in %v", want, got)
		}
	}
}

func textContext(t *testing.T, userID int64, text string) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	user := &tele.User{ID: userID}
	msg := &tele.Message{ID: 1, Sender: user, Chat: &tele.Chat{ID: userID}, Text: text}
	return bot.NewContext(tele.Update{ID: 1, Message: msg})
}

func TestTextRoutesGuardAdminCommands(t *testing.T) {
	var stats, rejected, fallback int
	reg := tg.NewRegistry()
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     func(tele.Context) error { stats++; return nil },
		Description: "stats",
		AdminOnly:   true,
	})
	reg.SetTextFallback(func(tele.Context) error { fallback++; return nil })
	routes := TextRoutes(reg, TextOptions{
		AdminID:       1,
		OnAdminReject: func(tele.Context) error { rejected++; return nil },
	})
	if len(routes) != 1 || routes[0].Endpoint != tele.OnText {
		t.Fatalf("routes = %+v", routes)
	}
	h := routes[0].Handler

	_ = h(textContext(t, 7, "stats"))
	if stats != 0 || fallback != 1 {
		t.Fatalf("bare word: stats=%d fallback=%d, want 0 and 1", stats, fallback)
	}
	_ = h(textContext(t, 7, "/stats"))
	if stats != 0 || rejected != 1 {
		t.Fatalf("non-admin: stats=%d rejected=%d, want 0 and 1", stats, rejected)
	}
	_ = h(textContext(t, 1, "/stats"))
	if stats != 1 {
		t.Fatalf("admin: stats=%d, want 1", stats)
	}
}
