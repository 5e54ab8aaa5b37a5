// Package logging holds the *slog.Logger shared by the adapters.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the package-level logger. Passing nil discards output.
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = slog.New(discardHandler{})
	}
	logger.Store(sl)
}

// Logger returns the package-level logger, a discarding one if none was set.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = slog.New(discardHandler{})
		logger.Store(l)
	}
	return l
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}
