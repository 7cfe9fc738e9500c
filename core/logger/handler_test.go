package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{level: slog.LevelDebug, writer: w, format: format})
	return slog.New(h), func() string {
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return strings.TrimSpace(buf.String())
	}
}

func TestKVLineOrder(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	ctx := WithMeta(context.Background(), NewUpdateMeta(42, 7, 9))

	LogEvent(ctx, log.With("component", "service.entries"), slog.LevelInfo, "entry.saved",
		slog.String("status", "OK"),
		slog.String("zeta", "last"),
		slog.String("word", "the cat"),
	)

	tokens := strings.Split(output(), " ")
	want := []string{"ts=", "level=INFO", "component=service.entries", "event=entry.saved", "status=ok", "rid=16.9.7", "update_id=42", "user_id=7", "chat_id=9"}
	if len(tokens) < len(want) {
		t.Fatalf("short line: %v", tokens)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %q, want prefix %q", i, tokens[i], prefix)
		}
	}
	line := strings.Join(tokens, " ")
	if !strings.Contains(line, `word="the cat"`) {
		t.Fatalf("value with space not quoted: %s", line)
	}
	if !strings.HasSuffix(line, "zeta=last") {
		t.Fatalf("unlisted keys should follow alphabetically: %s", line)
	}
}

func TestJSONLine(t *testing.T) {
	log, output := newTestLogger(t, formatJSON)
	ctx := WithHandler(WithMeta(context.Background(), NewUpdateMeta(1, 2, 3)), "callback.quiz")

	LogEvent(ctx, log, slog.LevelError, "store.fail",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Any("err", errors.New("disk full")),
		slog.String("cache", "bogus"),
		slog.Group("page", slog.Int("n", 2)),
	)

	line := output()
	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", line, err)
	}
	checks := map[string]any{
		"level":       "ERROR",
		"component":   "app",
		"event":       "store.fail",
		"handler":     "callback.quiz",
		"duration_ms": float64(2),
		"err":         "disk full",
		"page.n":      float64(2),
	}
	for k, v := range checks {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["cache"]; ok {
		t.Errorf("unknown cache value should be dropped: %s", line)
	}
	if _, ok := got["ts_unix_nano"]; !ok {
		t.Errorf("ts_unix_nano missing: %s", line)
	}
	if !strings.HasPrefix(line, `{"ts":`) {
		t.Errorf("ts should lead the line: %s", line)
	}
}

func TestExplicitAttrsWinOverMeta(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	ctx := WithMeta(context.Background(), NewUpdateMeta(1, 2, 3))
	LogEvent(ctx, log, slog.LevelInfo, "x", slog.Int64("user_id", 99))
	if line := output(); !strings.Contains(line, "user_id=99") || strings.Contains(line, "user_id=2") {
		t.Fatalf("explicit user_id lost: %s", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{buf}, 0)
	log := slog.New(newStructuredHandler(handlerConfig{level: slog.LevelWarn, writer: w, format: formatKV}))
	log.Info("dropped", "event", "info.event")
	log.Warn("kept", "event", "warn.event")
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "info.event") || !strings.Contains(out, "event=warn.event") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestMessageBecomesEvent(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	log.Info("bot started")
	if line := output(); !strings.Contains(line, `event="bot started"`) {
		t.Fatalf("message not used as event: %s", line)
	}
}

func TestWriterFlushAndClose(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{buf}, 16)
	for i := 0; i < 50; i++ {
		if err := w.Write([]byte("line\n")); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "line\n"); n != 50 {
		t.Fatalf("flushed %d lines, want 50", n)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]byte("late\n")); !errors.Is(err, errWriterClosed) {
		t.Fatalf("write after close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestSampler(t *testing.T) {
	s := &sampler{}
	s.set(2, 5)
	kept := 0
	for i := 0; i < 20; i++ {
		if s.allow() {
			kept++
		}
	}
	if kept != 8 {
		t.Fatalf("kept %d of 20, want 8", kept)
	}
	s.set(0, 0)
	if !s.allow() {
		t.Fatal("disabled sampler should allow everything")
	}
}

func TestParseRatio(t *testing.T) {
	cases := []struct {
		in           string
		keep, window int
		ok           bool
	}{
		{"1/50", 1, 50, true},
		{" 3 / 10 ", 3, 10, true},
		{"20", 1, 20, true},
		{"off", 0, 0, true},
		{"0", 0, 0, true},
		{"x/y", 0, 0, false},
		{"-4", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		keep, window, ok := parseRatio(tc.in)
		if keep != tc.keep || window != tc.window || ok != tc.ok {
			t.Errorf("parseRatio(%q) = %d,%d,%v", tc.in, keep, window, ok)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("héllo\u0000​ world", 5); got != "héllo" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeLimit("a\tb\nc", 10); got != "a\tb\nc" {
		t.Fatalf("tab/newline should survive: %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Fatalf("zero limit: %q", got)
	}
}

func TestNewRID(t *testing.T) {
	if got := NewRID(35, -1001, 36); got != "z.-rt.10" {
		t.Fatalf("NewRID = %q", got)
	}
}
