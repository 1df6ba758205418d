package logging

import (
	"context"
	"log/slog"
)

// teeHandler pairs the console handler with the JSON handler behind
// <state_dir>/logs/annodocs.log. Each side applies its own level, so a
// console at warn still leaves debug records for `annodocs logs`.
type teeHandler struct {
	console slog.Handler
	file    slog.Handler
}

// newTeeHandler returns console alone when there is no log file.
func newTeeHandler(console, file slog.Handler) slog.Handler {
	switch {
	case console == nil && file == nil:
		return NoopHandler{}
	case file == nil:
		return console
	case console == nil:
		return file
	}
	return &teeHandler{console: console, file: file}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

// Handle writes the file copy first so the log file stays complete when the
// console write fails.
func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var fileErr error
	if h.file.Enabled(ctx, record.Level) {
		fileErr = h.file.Handle(ctx, record.Clone())
	}
	if h.console.Enabled(ctx, record.Level) {
		if err := h.console.Handle(ctx, record); err != nil {
			return err
		}
	}
	return fileErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{console: h.console.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{console: h.console.WithGroup(name), file: h.file.WithGroup(name)}
}
