package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

// BufferedHandler is a slog.Handler capturing records in memory as
// "LEVEL message key=value ..." lines. It is meant for tests that assert
// on what was logged.
type BufferedHandler struct {
	mu    *sync.Mutex
	buf   *bytes.Buffer
	level slog.Leveler
	attrs []string // pre-rendered, with the group prefix in effect when added
	group string
}

// NewBufferedHandler returns an empty handler accepting records at or above
// level; a nil level accepts everything.
func NewBufferedHandler(level slog.Leveler) *BufferedHandler {
	return &BufferedHandler{
		mu:    &sync.Mutex{},
		buf:   &bytes.Buffer{},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *BufferedHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.level == nil || level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferedHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.WriteString(r.Level.String())
	h.buf.WriteByte(' ')
	h.buf.WriteString(r.Message)
	for _, a := range h.attrs {
		h.buf.WriteByte(' ')
		h.buf.WriteString(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.buf.WriteByte(' ')
		h.buf.WriteString(h.render(a))
		return true
	})
	h.buf.WriteByte('\n')
	return nil
}

// WithAttrs implements slog.Handler.
func (h *BufferedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append([]string(nil), h.attrs...)
	for _, a := range attrs {
		nh.attrs = append(nh.attrs, h.render(a))
	}
	return &nh
}

func (h *BufferedHandler) render(a slog.Attr) string {
	if h.group == "" {
		return a.String()
	}
	return h.group + "." + a.String()
}

// WithGroup implements slog.Handler.
func (h *BufferedHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	if nh.group != "" {
		nh.group += "." + name
	} else {
		nh.group = name
	}
	return &nh
}

// String returns everything captured so far.
func (h *BufferedHandler) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.String()
}

// Lines returns the captured records, one per element.
func (h *BufferedHandler) Lines() []string {
	s := strings.TrimSuffix(h.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Contains reports whether any captured output contains s.
func (h *BufferedHandler) Contains(s string) bool {
	return strings.Contains(h.String(), s)
}
