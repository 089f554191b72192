package action

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeEntityIDReturnsRemainderVerbatim(t *testing.T) {
	for _, x := range []string{"", "abc", "3f2b-..-ZZ", "f", "/weird id", "ünï"} {
		if got := DecodeEntityID(PrefixFilm+x, PrefixFilm); got != x {
			t.Fatalf("DecodeEntityID(%q) = %q", PrefixFilm+x, got)
		}
		if got := DecodeEntityID("/"+PrefixCinema+x, PrefixCinema); got != x {
			t.Fatalf("DecodeEntityID(/c%q) = %q", x, got)
		}
	}
}

func TestEntityCommandRoundTrip(t *testing.T) {
	cmd := EntityCommand(PrefixFilm, "1234")
	if cmd != "/f1234" {
		t.Fatalf("cmd = %q", cmd)
	}
	prefix, id, ok := ParseEntityCommand(cmd)
	if !ok || prefix != PrefixFilm || id != "1234" {
		t.Fatalf("parse = %q %q %v", prefix, id, ok)
	}
}

func TestParseEntityCommandDropsBotMention(t *testing.T) {
	prefix, id, ok := ParseEntityCommand("/c9f1e2d@kinobot")
	if !ok || prefix != PrefixCinema || id != "9f1e2d" {
		t.Fatalf("parse = %q %q %v", prefix, id, ok)
	}
	if _, _, ok := ParseEntityCommand("/@kinobot"); ok {
		t.Fatal("bare mention accepted")
	}
}

func TestParseEntityCommandRejectsOtherText(t *testing.T) {
	for _, text := range []string{"/start", "/help", "f123", "/", "", "/f12 34", "Films"} {
		if _, _, ok := ParseEntityCommand(text); ok {
			t.Fatalf("ParseEntityCommand(%q) accepted", text)
		}
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	uuid := "0b8ae5e4-4f4b-4d6c-9a2e-3f1c2d3e4f5a"
	cases := []Payload{
		ToggleFavourite{FilmUUID: uuid, Favourite: true},
		ToggleFavourite{FilmUUID: uuid},
		ShowCinemas{CinemaUUIDs: []string{uuid}},
		ShowFilms{FilmUUIDs: []string{"a", "b", "c"}},
		ShowOnMap{Lat: 55.751244, Lon: -37.618423},
	}
	for _, p := range cases {
		data, err := Encode(p)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", p, err)
		}
		if len(data) > 64 {
			t.Fatalf("Encode(%+v) = %d bytes", p, len(data))
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s): %v", data, err)
		}
		if !reflect.DeepEqual(got, p) {
			t.Fatalf("round trip %s = %+v, want %+v", data, got, p)
		}
	}
}

func TestEncodeFallsBackToSource(t *testing.T) {
	ids := []string{
		"0b8ae5e4-4f4b-4d6c-9a2e-3f1c2d3e4f5a",
		"1b8ae5e4-4f4b-4d6c-9a2e-3f1c2d3e4f5a",
	}
	src := "2b8ae5e4-4f4b-4d6c-9a2e-3f1c2d3e4f5a"
	data, err := Encode(ShowCinemas{CinemaUUIDs: ids, Source: src})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sc := got.(ShowCinemas); sc.Source != src || sc.CinemaUUIDs != nil {
		t.Fatalf("got %+v", sc)
	}

	if _, err := Encode(ShowFilms{FilmUUIDs: ids}); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, data := range []string{
		``,
		`not json`,
		`{"t":"bogus"}`,
		`{}`,
		`{"t":"tf"}`,
		`{"t":"tf","id":"x","f":2}`,
		`{"t":"tf","id":"x","lat":1}`,
		`{"t":"sm","lat":1}`,
		`{"t":"sc","id":"x"}`,
		`{"t":"sf","ids":["a"],"extra":1}`,
		`{"t":"sf"} {"t":"sf"}`,
		`{"type":"tf"}`,
	} {
		p, err := Decode(data)
		if !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("Decode(%q) = %+v, %v; want ErrMalformedPayload", data, p, err)
		}
		if p != nil {
			t.Fatalf("Decode(%q) returned partial payload %+v", data, p)
		}
	}
}

func TestEncodeUnknownPayload(t *testing.T) {
	type other struct{ Payload }
	if _, err := Encode(other{}); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("err = %v", err)
	}
}
