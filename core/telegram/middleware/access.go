package middleware

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kinobot/core/telegram/commands"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// WithAdminCheck wraps a command handler, rejecting non-admin senders for admin-only commands.
// An unset AdminID disables the command for everyone.
func WithAdminCheck(opts AdminOptions, cmd commands.Command) tele.HandlerFunc {
	if !cmd.AdminOnly {
		return cmd.Handler
	}
	return func(c tele.Context) error {
		sender := c.Sender()
		if opts.AdminID == 0 || sender == nil || sender.ID != opts.AdminID {
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
		return cmd.Handler(c)
	}
}
