package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	base := slog.NewJSONHandler(buf, &slog.HandlerOptions{ReplaceAttr: replaceAttr})
	return slog.New(newContextHandler(base))
}

func TestContextHandlerAddsRequestMeta(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newTestLogger(buf).With("component", "router")

	ctx := WithRID(Background(), "12:34:56")
	ctx = WithUpdateMeta(ctx, 12, 56, 34)
	ctx = WithHandler(ctx, "menu.films")

	LogEvent(ctx, log, slog.LevelInfo, "handler.handled", slog.String("status", "ok"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"component": "router",
		"event":     "handler.handled",
		"status":    "ok",
		"rid":       CompactRID("12:34:56"),
		"handler":   "menu.films",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Fatalf("%s = %v, want %v (line %s)", k, rec[k], v, buf.String())
		}
	}
	if rec["user_id"] != float64(56) || rec["chat_id"] != float64(34) || rec["update_id"] != float64(12) {
		t.Fatalf("missing update meta: %s", buf.String())
	}
	if _, ok := rec["ts"]; !ok {
		t.Fatalf("expected ts key: %s", buf.String())
	}
	if _, ok := rec["msg"]; ok {
		t.Fatalf("empty msg should be dropped: %s", buf.String())
	}
}

func TestContextHandlerKeepsExplicitHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newTestLogger(buf)
	ctx := WithHandler(Background(), "from_ctx")
	LogEvent(ctx, log, slog.LevelInfo, "x", slog.String("handler", "explicit"))
	if strings.Count(buf.String(), `"handler"`) != 1 || !strings.Contains(buf.String(), `"explicit"`) {
		t.Fatalf("unexpected handler attrs: %s", buf.String())
	}
}

func TestCompactRID(t *testing.T) {
	cases := map[string]string{
		"35:36:1":  "z.10.1",
		"abc":      "abc",
		"1:x:2":    "1:x:2",
		" 0:0:0 ":  "0.0.0",
	}
	for in, want := range cases {
		if got := CompactRID(in); got != want {
			t.Fatalf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\x00b\tc", 10); got != "ab\tc" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeLimit("привет", 3); got != "при" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeLimit("x", 0); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}
	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}
