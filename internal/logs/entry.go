package logs

import (
	"encoding/json"
	"strings"
	"time"

	"annodocs/internal/logging"
)

// Entry is one decoded JSON log line.
type Entry struct {
	Time      time.Time      `json:"ts"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Component string         `json:"component,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	Document  string         `json:"document,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	// Raw is set when the line was not JSON.
	Raw string `json:"raw,omitempty"`
}

// Filter narrows entries. Empty fields match everything.
type Filter struct {
	RunID     string
	Component string
	MinLevel  string
	// Alerts keeps only records tagged with an alert.
	Alerts bool
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Matches reports whether e passes f. Undecodable lines only pass an empty
// filter.
func (f Filter) Matches(e Entry) bool {
	if e.Raw != "" {
		return f == Filter{}
	}
	if f.RunID != "" && e.RunID != f.RunID {
		return false
	}
	if f.Component != "" && !strings.EqualFold(e.Component, f.Component) {
		return false
	}
	if f.Alerts {
		if alert, _ := e.Fields[logging.FieldAlert].(string); alert == "" {
			return false
		}
	}
	if f.MinLevel != "" {
		want, ok := levelRank[strings.ToLower(f.MinLevel)]
		if ok && levelRank[strings.ToLower(e.Level)] < want {
			return false
		}
	}
	return true
}

// ParseLine decodes a JSON log line. Lines that are not JSON objects come
// back with only Raw set.
func ParseLine(line string) Entry {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Entry{Raw: line}
	}
	e := Entry{
		Level:     takeString(fields, "level"),
		Message:   takeString(fields, "msg"),
		Component: takeString(fields, logging.FieldComponent),
		RunID:     takeString(fields, logging.FieldRunID),
		Document:  takeString(fields, logging.FieldDocument),
	}
	if ts := takeString(fields, "ts"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = parsed
		}
	}
	if len(fields) > 0 {
		e.Fields = fields
	}
	return e
}

// Entries decodes lines and keeps those matching f.
func Entries(lines []string, f Filter) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if e := ParseLine(line); f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func takeString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	s, _ := v.(string)
	return s
}
