package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/m3rciful/kinobot/core/telegram/callbacks"
)

var (
	// ErrMalformedPayload rejects callback data that is not a known, well-formed action.
	ErrMalformedPayload = errors.New("action: malformed payload")
	// ErrPayloadTooLarge is returned when an action cannot fit the callback data limit.
	ErrPayloadTooLarge = errors.New("action: payload too large")
)

// Type tags a callback payload.
type Type string

// Payload types.
const (
	TypeToggleFavourite Type = "tf"
	TypeShowCinemas     Type = "sc"
	TypeShowOnMap       Type = "sm"
	TypeShowFilms       Type = "sf"
)

// Payload is one of ToggleFavourite, ShowCinemas, ShowOnMap or ShowFilms.
type Payload interface {
	Type() Type
}

// ToggleFavourite flips a film in the sender's favourites. Favourite is the
// state shown on the card when it was rendered.
type ToggleFavourite struct {
	FilmUUID  string
	Favourite bool
}

// ShowCinemas lists the cinemas screening a film. When the id list does not
// fit the callback limit, Source names the film whose cinemas to list.
type ShowCinemas struct {
	CinemaUUIDs []string
	Source      string
}

// ShowOnMap sends a map pin.
type ShowOnMap struct {
	Lat float64
	Lon float64
}

// ShowFilms lists the films screened by a cinema. Source names the cinema
// when the id list does not fit the callback limit.
type ShowFilms struct {
	FilmUUIDs []string
	Source    string
}

func (ToggleFavourite) Type() Type { return TypeToggleFavourite }
func (ShowCinemas) Type() Type     { return TypeShowCinemas }
func (ShowOnMap) Type() Type       { return TypeShowOnMap }
func (ShowFilms) Type() Type       { return TypeShowFilms }

// wire is the compact JSON form. Keys are short to stay under the limit.
type wire struct {
	T   Type     `json:"t"`
	ID  string   `json:"id,omitempty"`
	F   *int     `json:"f,omitempty"`
	IDs []string `json:"ids,omitempty"`
	Src string   `json:"src,omitempty"`
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// Encode serializes p for an inline button. List payloads that exceed the
// limit are sent as a Source reference instead.
func Encode(p Payload) (string, error) {
	var w wire
	switch v := p.(type) {
	case ToggleFavourite:
		if v.FilmUUID == "" {
			return "", fmt.Errorf("action: toggle without film id")
		}
		w = wire{T: v.Type(), ID: v.FilmUUID}
		if v.Favourite {
			one := 1
			w.F = &one
		}
	case ShowCinemas:
		return encodeList(v.Type(), v.CinemaUUIDs, v.Source)
	case ShowFilms:
		return encodeList(v.Type(), v.FilmUUIDs, v.Source)
	case ShowOnMap:
		lat, lon := round6(v.Lat), round6(v.Lon)
		w = wire{T: v.Type(), Lat: &lat, Lon: &lon}
	default:
		return "", fmt.Errorf("action: unsupported payload %T", p)
	}
	return marshal(w)
}

func encodeList(t Type, ids []string, source string) (string, error) {
	data, err := marshal(wire{T: t, IDs: ids})
	if err == nil || !errors.Is(err, ErrPayloadTooLarge) || source == "" {
		return data, err
	}
	return marshal(wire{T: t, Src: source})
}

func marshal(w wire) (string, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("action: encode: %w", err)
	}
	if !callbacks.Fits(string(raw)) {
		return "", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(raw))
	}
	return string(raw), nil
}

// round6 keeps about 0.1 m of precision so coordinates stay short on the wire.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Decode parses callback data. Unknown types, unknown fields and fields that
// do not belong to the tagged type are rejected with ErrMalformedPayload.
func Decode(data string) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	var w wire
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedPayload)
	}

	switch w.T {
	case TypeToggleFavourite:
		if w.ID == "" || w.IDs != nil || w.Src != "" || w.Lat != nil || w.Lon != nil {
			return nil, mismatch(w.T)
		}
		if w.F != nil && *w.F != 0 && *w.F != 1 {
			return nil, mismatch(w.T)
		}
		return ToggleFavourite{FilmUUID: w.ID, Favourite: w.F != nil && *w.F == 1}, nil
	case TypeShowCinemas, TypeShowFilms:
		if w.ID != "" || w.F != nil || w.Lat != nil || w.Lon != nil {
			return nil, mismatch(w.T)
		}
		if w.T == TypeShowCinemas {
			return ShowCinemas{CinemaUUIDs: w.IDs, Source: w.Src}, nil
		}
		return ShowFilms{FilmUUIDs: w.IDs, Source: w.Src}, nil
	case TypeShowOnMap:
		if w.Lat == nil || w.Lon == nil || w.ID != "" || w.F != nil || w.IDs != nil || w.Src != "" {
			return nil, mismatch(w.T)
		}
		return ShowOnMap{Lat: *w.Lat, Lon: *w.Lon}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedPayload)
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedPayload, w.T)
}

func mismatch(t Type) error {
	return fmt.Errorf("%w: fields do not match type %q", ErrMalformedPayload, t)
}
