// Package logging configures the structured logger shared by the harness,
// the history store and the CLI.
package logging

import (
	"io"
	"log/slog"
)

// Level maps the CLI verbosity flags to a log level. Quiet wins over
// verbose.
func Level(quiet, verbose bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// New returns a text logger writing to w at the level selected by the flags.
func New(w io.Writer, quiet, verbose bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level(quiet, verbose),
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
