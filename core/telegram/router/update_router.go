package router

import (
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/kinobot/core/telegram"
	"github.com/m3rciful/kinobot/core/telegram/callbacks"
	"github.com/m3rciful/kinobot/core/telegram/middleware"
)

// TextOptions controls routing of plain text messages.
type TextOptions struct {
	// UnknownText handles text that is neither a command nor claimed by the registry fallback.
	UnknownText tele.HandlerFunc
	// AdminID and OnAdminReject guard admin-only commands reached through text.
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// TextRoutes routes slash text through registry commands first, then the
// registry text fallback. Commands reached here pass the same admin guard
// as their direct routes; text without a leading slash is never a command.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	adminOpts := middleware.AdminOptions{AdminID: opts.AdminID, OnReject: opts.OnAdminReject}
	handler := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			if text := c.Text(); strings.HasPrefix(text, "/") {
				if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
					guarded := middleware.WithAdminCheck(adminOpts, cmd)
					return handleWithSummary(c, "command."+normalizeHandlerName(key), start, func() error {
						return guarded(c)
					})
				}
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, func() error { return fb(c) })
			}
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error { return opts.UnknownText(c) })
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}
	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}

// LocationRoute routes shared locations to h.
func LocationRoute(h tele.HandlerFunc) tg.Route {
	return tg.Route{
		Endpoint: tele.OnLocation,
		Handler: func(c tele.Context) error {
			return handleWithSummary(c, "location", time.Now(), func() error { return h(c) })
		},
	}
}

// CallbackOptions configures the callback route.
type CallbackOptions struct {
	Handler tele.HandlerFunc
	// Name derives the handler name from callback data; defaults to "callback".
	Name func(data string) string
}

// CallbackRoute routes inline button presses carrying raw callback data.
func CallbackRoute(opts CallbackOptions) tg.Route {
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler: func(c tele.Context) error {
			start := time.Now()
			data := callbacks.Data(c)
			name := "callback"
			if opts.Name != nil {
				name = "callback." + normalizeHandlerName(opts.Name(data))
			}
			if opts.Handler == nil {
				logHandlerSummary(c, name, start, "skip", nil)
				return nil
			}
			return handleWithSummary(c, name, start, func() error {
				return opts.Handler(c)
			}, slog.Int("data_len", len(data)))
		},
	}
}
