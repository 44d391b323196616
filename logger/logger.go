// Package logger wraps structured, leveled logging plus periodic
// statistics reporting around log/slog. It keeps the scheduling idea of
// the teacher's hand-rolled logger (register a closure, run it no more
// often than its own interval) while delegating line formatting to
// log/slog and github.com/lmittmann/tint, the combination the rest of
// this codebase's corpus reaches for.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds a *slog.Logger that writes colorized, leveled lines to w
// (os.Stderr is the usual choice) at or above level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
	return slog.New(handler)
}

// ParseLevel maps a LOG_LEVEL environment value to a slog.Level, defaulting
// to Info for anything unrecognized.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
