package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// consoleValueLimit caps a field value on the console. Paragraph text and
// markup snippets run long; the JSON log keeps them whole.
const consoleValueLimit = 96

// attrString renders a header value (component, run id) without quoting.
func attrString(v slog.Value) string {
	return renderValue(v, false)
}

// formatValue renders a field value for the console, quoting anything with
// spaces so multi-word speaker names and hints stay readable as one value.
func formatValue(v slog.Value) string {
	return renderValue(v, true)
}

func renderValue(v slog.Value, quote bool) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	s = clipConsoleValue(s)
	if quote && needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

// clipConsoleValue folds the line breaks that block text carries and trims
// the result to consoleValueLimit runes.
func clipConsoleValue(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		s = strings.Join(strings.Fields(s), " ")
	}
	if utf8.RuneCountInString(s) <= consoleValueLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:consoleValueLimit-1]) + "…"
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
