package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kinobot/core/logger"
	"github.com/m3rciful/kinobot/core/metrics"
	"github.com/m3rciful/kinobot/core/telegram/sender"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// sendSync delivers in call order; messages of one reply must not overtake each other.
func sendSync(c tele.Context, kind, endpoint string, run func() error) error {
	var err error
	if disp := currentDispatcher(); disp != nil {
		err = disp.Do(BuildContext(c), "send."+kind, endpoint, run)
	} else {
		err = run()
	}
	if err == nil {
		metrics.MessagesSent.WithLabelValues(kind).Inc()
	}
	return err
}

// sendAsync hands the call to the worker pool, running inline when the queue is unavailable.
func sendAsync(c tele.Context, kind, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, "send."+kind, endpoint, func() error {
		if err := run(); err != nil {
			return err
		}
		metrics.MessagesSent.WithLabelValues(kind).Inc()
		return nil
	})
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("kind", kind),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendSync(c, "text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		ReplyMarkup:           firstMarkup(markup),
		DisableWebPagePreview: true,
	})
}

// SendPhoto sends a photo fetched by Telegram from url, captioned in HTML.
func SendPhoto(c tele.Context, url, caption string, markup ...*tele.ReplyMarkup) error {
	photo := &tele.Photo{File: tele.FromURL(url), Caption: caption}
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: firstMarkup(markup)}
	return sendSync(c, "photo", "sendPhoto", func() error {
		return c.Send(photo, opts)
	})
}

// SendLocation sends a map pin.
func SendLocation(c tele.Context, lat, lon float64, markup ...*tele.ReplyMarkup) error {
	loc := &tele.Location{Lat: float32(lat), Lng: float32(lon)}
	opts := &tele.SendOptions{ReplyMarkup: firstMarkup(markup)}
	return sendSync(c, "location", "sendLocation", func() error {
		return c.Send(loc, opts)
	})
}

// Respond acknowledges the current callback query, showing text as a toast when set.
func Respond(c tele.Context, text string) error {
	if c.Callback() == nil {
		return nil
	}
	resp := &tele.CallbackResponse{Text: text}
	return sendAsync(c, "callback", "answerCallbackQuery", func() error {
		return c.Respond(resp)
	})
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}
