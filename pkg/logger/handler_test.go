package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	return event
}

func TestJSONHandlerWritesSeverityAndData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewJSONHandlerTo(&buf, slog.LevelInfo))

	log.Warn("slot already booked", "slot_id", "atm1-2025-05-01-09:00", "error", errors.New("conflict"))

	event := decodeLine(t, &buf)
	if event["severity"] != "WARNING" {
		t.Fatalf("severity = %v, want WARNING", event["severity"])
	}
	if event["message"] != "slot already booked" {
		t.Fatalf("unexpected message: %v", event["message"])
	}
	data, ok := event["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data object: %v", event)
	}
	if data["slot_id"] != "atm1-2025-05-01-09:00" || data["error"] != "conflict" {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestJSONHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewJSONHandlerTo(&buf, slog.LevelWarn))

	log.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", buf.String())
	}
}

func TestJSONHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewJSONHandlerTo(&buf, slog.LevelDebug)).
		With("request_id", "r-1").
		WithGroup("booking")

	log.Debug("confirmed", "id", "booking-1")

	data := decodeLine(t, &buf)["data"].(map[string]any)
	if data["request_id"] != "r-1" {
		t.Fatalf("missing handler attr: %v", data)
	}
	if data["booking.id"] != "booking-1" {
		t.Fatalf("group not flattened: %v", data)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewJSONHandlerTo(&buf, slog.LevelInfo))

	ctx := ToContext(context.Background(), base)
	log, ctx := With(ctx, "uid", "user1")
	log.Info("first")
	buf.Reset()

	FromContext(Detach(ctx)).Info("second")
	data := decodeLine(t, &buf)["data"].(map[string]any)
	if data["uid"] != "user1" {
		t.Fatalf("detached context lost logger attrs: %v", data)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
