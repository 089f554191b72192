package logger

import (
	"context"
	"log/slog"
)

// contextHandler decorates records with request metadata stored in ctx
// (rid, update/user/chat ids, handler name) before delegating.
type contextHandler struct {
	next slog.Handler
}

func newContextHandler(next slog.Handler) *contextHandler {
	return &contextHandler{next: next}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if rid := RIDFrom(ctx); rid != "" {
			r.AddAttrs(slog.String("rid", CompactRID(rid)))
		}
		if id := UpdateIDFrom(ctx); id != 0 {
			r.AddAttrs(slog.Int("update_id", id))
		}
		if id := UserIDFrom(ctx); id != 0 {
			r.AddAttrs(slog.Int64("user_id", id))
		}
		if id := ChatIDFrom(ctx); id != 0 {
			r.AddAttrs(slog.Int64("chat_id", id))
		}
		if name := HandlerFrom(ctx); name != "" && !hasAttr(r, "handler") {
			r.AddAttrs(slog.String("handler", name))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}
