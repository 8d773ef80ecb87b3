package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// SlogHandler is a slog.Handler that writes through a namespaced Logger, so
// libraries that want a *slog.Logger obey the same DEBUG patterns.
type SlogHandler struct {
	logger *Logger
	attrs  []slog.Attr
}

// NewSlogHandler wraps logger.
func NewSlogHandler(logger *Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// Enabled reports whether the wrapped logger is enabled; levels are not filtered.
func (h *SlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return h.logger.Enabled()
}

// Handle writes the record as "[LEVEL] message key=value ...".
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.logger.Enabled() {
		return nil
	}

	var msg strings.Builder
	msg.WriteString("[" + r.Level.String() + "] ")
	msg.WriteString(r.Message)
	for _, a := range h.attrs {
		msg.WriteString(" " + a.Key + "=" + a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		msg.WriteString(" " + a.Key + "=" + a.Value.String())
		return true
	})

	h.logger.Print(msg.String())
	return nil
}

// WithAttrs returns a handler that appends attrs to every record.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &SlogHandler{logger: h.logger, attrs: merged}
}

// WithGroup is a no-op; groups are flattened.
func (h *SlogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// NewSlogLogger creates a *slog.Logger for namespace.
func NewSlogLogger(namespace string) *slog.Logger {
	return slog.New(NewSlogHandler(New(namespace)))
}

// Discard returns a *slog.Logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
