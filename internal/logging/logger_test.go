package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"debug", "DEBUG", slog.LevelDebug},
		{"info", "INFO", slog.LevelInfo},
		{"warn", "WARN", slog.LevelWarn},
		{"warning", "WARNING", slog.LevelWarn},
		{"error", "ERROR", slog.LevelError},
		{"lowercase", "debug", slog.LevelDebug},
		{"padded", " info ", slog.LevelInfo},
		{"invalid", "LOUD", slog.LevelWarn},
		{"empty", "", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input, slog.LevelWarn); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	if !FromEnv().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled")
	}

	t.Setenv(EnvLevel, "")
	l := FromEnv()
	if l.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled by default")
	}
	if !l.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be enabled by default")
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	l.Debug("hidden")
	l.Info("shown", "radius", 4.0)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message leaked: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "radius=4") {
		t.Errorf("info message missing: %s", out)
	}
}

func TestRunID(t *testing.T) {
	ctx := context.Background()
	if RunID(ctx) != "" {
		t.Error("empty context should have no run id")
	}

	ctx = WithRunID(ctx, "dynamic_1")
	if got := RunID(ctx); got != "dynamic_1" {
		t.Errorf("RunID = %q", got)
	}

	gen := RunID(WithRunID(context.Background(), ""))
	if len(gen) != 16 {
		t.Errorf("generated id %q has length %d", gen, len(gen))
	}
	if gen == NewRunID() {
		t.Error("generated ids should differ")
	}
}

func TestForAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSON(&buf, slog.LevelInfo)
	ctx := WithRunID(context.Background(), "spiral_7")

	For(ctx, base).Info("saved")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not json: %v (%s)", err, buf.String())
	}
	if entry["run_id"] != "spiral_7" {
		t.Errorf("run_id = %v", entry["run_id"])
	}

	if For(context.Background(), nil) == nil {
		t.Error("nil logger should fall back to a discard logger")
	}
}
