// Package logging builds the slog loggers pennant attaches its evaluation
// diagnostics to: hook failures, timeouts and provider degradation. Output
// is JSON with a "system" attribute so pennant records are separable from
// the host application's own logging.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
	"err":     slog.LevelError,
}

// New returns the client's default logger: JSON on stderr, filtered at the
// given level. An empty level means info.
func New(level string) *slog.Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter is New writing to w instead of stderr.
func NewWithWriter(level string, w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With(slog.String("system", "pennant"))
}

// ParseLevel maps a level name to its [slog.Level]. Names are matched
// case-insensitively with surrounding whitespace ignored; anything
// unrecognised resolves to info rather than failing.
func ParseLevel(name string) slog.Level {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return slog.LevelInfo
}
