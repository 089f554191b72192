// Package callbacks reads inline-button callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// MaxDataLen is the Bot API limit for callback_data, in bytes.
const MaxDataLen = 64

// Data returns the callback data of the current update, or "" for non-callback updates.
// Buttons registered with a unique endpoint carry a "\f<unique>|" prefix that is stripped.
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	data := strings.TrimSpace(cb.Data)
	if strings.HasPrefix(data, "\f") {
		if i := strings.IndexByte(data, '|'); i >= 0 {
			return data[i+1:]
		}
		return ""
	}
	return data
}

// Fits reports whether data can be attached to an inline button.
func Fits(data string) bool {
	return data != "" && len(data) <= MaxDataLen
}
