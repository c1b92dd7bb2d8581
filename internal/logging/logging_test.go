package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerWritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "bookedbarber-api", "warn")

	log.Info("dropped")
	log.Warn("kept", "barber_id", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output %q: %v", buf.String(), err)
	}
	if line["msg"] != "kept" || line["service"] != "bookedbarber-api" || line["barber_id"] != float64(3) {
		t.Fatalf("line = %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
