package app

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/kinobot/core/telegram"
	"github.com/m3rciful/kinobot/core/telegram/callbacks"
	"github.com/m3rciful/kinobot/core/telegram/commands"
	"github.com/m3rciful/kinobot/core/telegram/helpers"
	"github.com/m3rciful/kinobot/core/telegram/keyboard"
	tgrouter "github.com/m3rciful/kinobot/core/telegram/router"
	"github.com/m3rciful/kinobot/internal/action"
	"github.com/m3rciful/kinobot/internal/geo"
	"github.com/m3rciful/kinobot/internal/locale"
	"github.com/m3rciful/kinobot/internal/router"
)

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reject := a.reply("admin.denied")
	routes := tgrouter.CommandRoutes(a.registry, tgrouter.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: reject,
	})
	routes = append(routes, tgrouter.TextRoutes(a.registry, tgrouter.TextOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: reject,
	})...)
	routes = append(routes,
		tgrouter.LocationRoute(a.handleLocation),
		tgrouter.CallbackRoute(tgrouter.CallbackOptions{Handler: a.handleCallback, Name: callbackName}),
	)
	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, a.reply("ratelimit.slow")),
		Routes:      routes,
	}, nil
}

func (a *App) registerCommands() {
	tr := a.locales.Printer(a.cfg.Locale.Default)
	a.registry.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: tr.T("command.start"),
	})
	a.registry.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: tr.T("command.help"),
	})
	a.registry.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: tr.T("command.stats"),
		AdminOnly:   true,
	})
	a.registry.SetTextFallback(a.handleText)
}

// checkEntityPrefixes rejects commands that would shadow /f<uuid> or /c<uuid>.
func checkEntityPrefixes(reg *coretelegram.Registry) error {
	for name, cmd := range reg.Commands() {
		for _, n := range append([]string{name}, cmd.Aliases...) {
			if !strings.HasPrefix(n, "/") {
				n = "/" + n
			}
			if prefix, _, ok := action.ParseEntityCommand(n); ok {
				return fmt.Errorf("app: command %s collides with entity prefix %q", n, prefix)
			}
		}
	}
	return nil
}

func (a *App) handleStart(c tele.Context) error {
	ev := router.Start{}
	if s := c.Sender(); s != nil {
		ev.FirstName = s.FirstName
	}
	return a.dispatch(c, ev)
}

func (a *App) handleHelp(c tele.Context) error {
	tr := a.translator(c)
	return helpers.SendHTML(c, tr.T("help.text"), router.RootKeyboard(tr).Markup())
}

func (a *App) handleStats(c tele.Context) error {
	if a.counter == nil {
		return nil
	}
	counts, err := a.counter.Counts(helpers.BuildContext(c))
	if err != nil {
		return err
	}
	tr := a.translator(c)
	return helpers.SendHTML(c, tr.T("stats.text", map[string]any{
		"Films":   counts.Films,
		"Cinemas": counts.Cinemas,
		"Users":   counts.Users,
	}))
}

// handleText classifies menu labels and entity commands; anything else gets
// the unknown-text reply.
func (a *App) handleText(c tele.Context) error {
	ev := a.router.Classify(senderLang(c), strings.TrimSpace(c.Text()))
	if ev == nil {
		return a.reply("unknown.text")(c)
	}
	if start, ok := ev.(router.Start); ok {
		if s := c.Sender(); s != nil {
			start.FirstName = s.FirstName
		}
		ev = start
	}
	return a.dispatch(c, ev)
}

func (a *App) handleLocation(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Location == nil {
		return nil
	}
	p := geo.Point{Lat: float64(msg.Location.Lat), Lon: float64(msg.Location.Lng)}
	return a.dispatch(c, router.LocationShared{Point: p})
}

func (a *App) handleCallback(c tele.Context) error {
	return a.dispatch(c, router.Callback{Data: callbacks.Data(c)})
}

func (a *App) dispatch(c tele.Context, ev router.Event) error {
	in := router.Inbound{UserID: senderID(c), Lang: senderLang(c), Event: ev}
	return a.router.Route(helpers.BuildContext(c), in, replier{c: c})
}

// reply sends the localized message id as plain text.
func (a *App) reply(id string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendText(c, a.translator(c).T(id))
	}
}

func (a *App) translator(c tele.Context) locale.Translator {
	return a.router.Translator(senderLang(c))
}

func callbackName(data string) string {
	p, err := action.Decode(data)
	if err != nil {
		return "malformed"
	}
	return string(p.Type())
}

func senderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

func senderLang(c tele.Context) string {
	if s := c.Sender(); s != nil {
		return s.LanguageCode
	}
	return ""
}

// replier delivers router output to the chat of one update.
type replier struct {
	c tele.Context
}

func (r replier) SendText(_ context.Context, html string, kb *keyboard.Keyboard) error {
	return helpers.SendHTML(r.c, html, kb.Markup())
}

func (r replier) SendPhoto(_ context.Context, photoURL, caption string, kb *keyboard.Keyboard) error {
	return helpers.SendPhoto(r.c, photoURL, caption, kb.Markup())
}

func (r replier) SendLocation(_ context.Context, lat, lon float64) error {
	return helpers.SendLocation(r.c, lat, lon)
}

func (r replier) AnswerCallback(_ context.Context, text string) error {
	return helpers.Respond(r.c, text)
}
