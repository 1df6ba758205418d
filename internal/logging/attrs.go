package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

type Value = slog.Value

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Slug tags a record with the annotation it concerns.
func Slug(slug string) Attr { return slog.String(FieldSlug, slug) }

// Alert marks a record that the console prints first and that
// `annodocs logs --alerts` selects.
func Alert(value string) Attr { return slog.String(FieldAlert, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags every record with component (parser, publish,
// watch, store). A nil logger yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey returns true if any attribute in attrs has the given key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

type eventGuidance struct {
	hint   string
	impact string
}

// guidance is what an editor sees for each document or publish event when
// the caller does not pass its own error_hint or impact.
var guidance = map[string]eventGuidance{
	"annotation_unclosed": {
		hint:   "close the annotation with a horizontal rule after its body",
		impact: "the annotation is left out of the published page",
	},
	"annotation_restarted": {
		hint:   "end each annotation with a horizontal rule before starting the next",
		impact: "the earlier open annotation is discarded",
	},
	"annotation_stray_end": {
		hint:   "remove the extra horizontal rule",
		impact: "the rule is ignored",
	},
	"author_unresolved": {
		hint:   "add the author's initials to the authors directory",
		impact: "the byline shows the raw author line",
	},
	"metadata_malformed": {
		hint:   "metadata lines must look like 'Key: value'",
		impact: "the line is skipped",
	},
	"slug_duplicate": {
		hint:   "give each annotation a unique Slug line",
		impact: "only the first annotation with the slug gets an embed page",
	},
	"transcript_extraction_mismatch": {
		hint:   "check the speaker line markup in the document",
		impact: "the paragraph is published as plain transcript text",
	},
	"embed_duplicate": {
		hint:   "give each annotation a unique Slug line",
		impact: "only the first annotation with the slug gets an embed page",
	},
	"embed_reserved_slug": {
		hint:   "pick a Slug other than index",
		impact: "the embed page is written under a suffixed file name",
	},
	"watch_cycle_failed": {
		hint:   "run annodocs check to test the document and directories",
		impact: "the published page stays at the last successful run",
	},
}

const (
	fallbackHint   = "run annodocs logs --level warn for the full record"
	fallbackImpact = "the page was published with warnings"
)

func withGuidance(attrs []Attr, eventType string, impact bool) []Attr {
	g, known := guidance[eventType]
	if !known {
		g = eventGuidance{hint: fallbackHint, impact: fallbackImpact}
	}
	if !HasAttrKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !HasAttrKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, g.hint))
	}
	if impact && !HasAttrKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, g.impact))
	}
	return attrs
}

// WarnWithContext logs a warning carrying event_type, error_hint and impact.
// Missing hint and impact come from the guidance for eventType.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Warn(msg, Args(withGuidance(attrs, eventType, true)...)...)
}

// ErrorWithContext logs an error carrying event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, Args(withGuidance(attrs, eventType, false)...)...)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
