// Package action encodes the identifiers the bot hands to users: re-entrant
// entity commands in listings and inline-button callback payloads.
package action

import "strings"

// Entity command prefixes. Registered slash commands must not start with these.
const (
	PrefixFilm   = "f"
	PrefixCinema = "c"
)

// EntityCommand renders the re-entrant command opening an entity's detail view.
func EntityCommand(prefix, uuid string) string {
	return "/" + prefix + uuid
}

// DecodeEntityID strips the optional leading slash and exactly one prefix
// character, returning the rest verbatim. It never fails; an unknown id is
// only detected by the catalog lookup.
func DecodeEntityID(raw, prefix string) string {
	raw = strings.TrimPrefix(raw, "/")
	if prefix == "" || raw == "" {
		return raw
	}
	return raw[len(prefix):]
}

// ParseEntityCommand splits "/f<uuid>" or "/c<uuid>" into prefix and id.
// A trailing "@<botname>" mention is dropped. ok is false for any other text.
func ParseEntityCommand(text string) (prefix, id string, ok bool) {
	if !strings.HasPrefix(text, "/") || len(text) < 2 || strings.ContainsAny(text, " \n\t") {
		return "", "", false
	}
	if at := strings.IndexByte(text, '@'); at >= 0 {
		text = text[:at]
		if len(text) < 2 {
			return "", "", false
		}
	}
	switch p := text[1:2]; p {
	case PrefixFilm, PrefixCinema:
		return p, DecodeEntityID(text, p), true
	}
	return "", "", false
}
