package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"annodocs/internal/config"
	"annodocs/internal/logging"
)

func TestNewFromConfigWritesJSONLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Error("unexpected metadata format", logging.String("line", "no colon"))

	data, err := os.ReadFile(filepath.Join(cfg.LogDir(), "annodocs.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log file is not JSON: %v (%q)", err, data)
	}
	if entry["msg"] != "unexpected metadata format" || entry["level"] != "error" || entry["line"] != "no colon" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestConsoleLoggerFormatsHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "parser").Info("document parsed",
		logging.String("status", "during"),
		logging.Int("annotations", 2),
	)

	out := buf.String()
	for _, want := range []string{"INFO [parser] – document parsed", "    - status: during", "    - annotations: 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color for a non-terminal writer, got %q", out)
	}
}

func TestConsoleLoggerDebugIncludesCallerAndColor(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf, Color: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("speaker not in directory", logging.String(logging.FieldSpeaker, "LESTER HOLT"))

	out := buf.String()
	if !strings.Contains(out, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", out)
	}
	if !strings.Contains(out, "\x1b[90mDEBUG\x1b[0m") {
		t.Fatalf("expected colored level label, got %q", out)
	}
	if !strings.Contains(out, `speaker: "LESTER HOLT"`) {
		t.Fatalf("expected quoted speaker field, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "annotation left open", "annotation_unclosed")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("missing %s in %v", key, entry)
		}
	}
	if got := entry[logging.FieldImpact]; got != "the annotation is left out of the published page" {
		t.Fatalf("impact = %v, want guidance for annotation_unclosed", got)
	}
}

func TestWithContextGuidance(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "embed slug clashes with the embeds index", "embed_reserved_slug",
		logging.String(logging.FieldErrorHint, "rename the slug"))
	logging.ErrorWithContext(logger, "template failed", "template_unknown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d:\n%s", len(lines), buf.String())
	}
	var warn, failure map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &warn); err != nil {
		t.Fatalf("decode warn: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &failure); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if warn[logging.FieldErrorHint] != "rename the slug" {
		t.Fatalf("caller hint should win, got %v", warn[logging.FieldErrorHint])
	}
	if warn[logging.FieldImpact] != "the embed page is written under a suffixed file name" {
		t.Fatalf("impact = %v", warn[logging.FieldImpact])
	}
	if failure[logging.FieldErrorHint] != "run annodocs logs --level warn for the full record" {
		t.Fatalf("unknown event should use the fallback hint, got %v", failure[logging.FieldErrorHint])
	}
	if _, ok := failure[logging.FieldImpact]; ok {
		t.Fatalf("errors carry no impact field: %v", failure)
	}
}

func TestConsoleClipsMultilineValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("paragraph kept as text",
		logging.String("text", "END\neditor notes"),
		logging.String("markup", strings.Repeat("x", 200)),
		logging.Duration("elapsed", 1234567*time.Nanosecond),
	)

	out := buf.String()
	if !strings.Contains(out, `text: "END editor notes"`) {
		t.Fatalf("expected folded line break, got %q", out)
	}
	if !strings.Contains(out, "markup: "+strings.Repeat("x", 95)+"…\n") {
		t.Fatalf("expected clipped markup, got %q", out)
	}
	if !strings.Contains(out, "elapsed: 1ms") {
		t.Fatalf("expected duration rounded to milliseconds, got %q", out)
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(context.Background(), "run-123")
	ctx = logging.WithDocument(ctx, "/docs/debate.html")

	logging.WithContext(ctx, logger).Info("contextual log")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[logging.FieldRunID] != "run-123" || entry[logging.FieldDocument] != "/docs/debate.html" {
		t.Fatalf("context fields missing: %v", entry)
	}
	if got := logging.WithContext(context.Background(), nil); got == nil {
		t.Fatal("expected no-op logger for nil input")
	}
}
