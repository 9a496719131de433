// Package logging sets up the structured logger shared by the simulator,
// the playback server and the CLI, and carries run ids through contexts.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable read by FromEnv.
const EnvLevel = "SPHERESIM_LOG_LEVEL"

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSON is New with JSON output, used by the server.
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// FromEnv builds a stderr logger whose level comes from SPHERESIM_LOG_LEVEL.
// Without the variable only warnings and errors are printed, so CLI output
// stays clean.
func FromEnv() *slog.Logger {
	return New(os.Stderr, ParseLevel(os.Getenv(EnvLevel), slog.LevelWarn))
}

// ParseLevel maps DEBUG, INFO, WARN/WARNING and ERROR (any case) to a level.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return fallback
	}
}

// Discard drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type runIDKey struct{}

// WithRunID stores id in ctx. An empty id is replaced by a random one.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewRunID()
	}
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the id stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewRunID returns 16 random hex characters.
func NewRunID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// For returns l annotated with the run id of ctx, if any.
func For(ctx context.Context, l *slog.Logger) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	if id := RunID(ctx); id != "" {
		return l.With("run_id", id)
	}
	return l
}
