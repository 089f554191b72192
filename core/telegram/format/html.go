// Package format renders Telegram HTML fragments.
package format

import (
	"html"
	"strings"
)

// Escape escapes <, >, & and quotes for Telegram HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Bold wraps already-escaped text in <b>.
func Bold(s string) string {
	return "<b>" + s + "</b>"
}

// Link renders an anchor with escaped label and href.
func Link(label, href string) string {
	return `<a href="` + html.EscapeString(href) + `">` + html.EscapeString(label) + "</a>"
}

// Lines joins non-empty lines with newlines.
func Lines(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
