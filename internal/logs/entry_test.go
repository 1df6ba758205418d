package logs_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"annodocs/internal/logs"
)

func TestParseLine(t *testing.T) {
	e := logs.ParseLine(`{"ts":"2026-10-16T12:00:00Z","level":"warn","msg":"author initials not in directory","component":"parser","run_id":"r1","initials":"xy"}`)
	if e.Level != "warn" || e.Message != "author initials not in directory" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Component != "parser" || e.RunID != "r1" {
		t.Fatalf("unexpected context fields: %+v", e)
	}
	if e.Time.IsZero() {
		t.Fatal("expected timestamp to be parsed")
	}
	if diff := cmp.Diff(map[string]any{"initials": "xy"}, e.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	raw := logs.ParseLine("not json")
	if raw.Raw != "not json" || raw.Message != "" {
		t.Fatalf("expected raw entry, got %+v", raw)
	}
}

func TestEntriesFilter(t *testing.T) {
	lines := []string{
		`{"level":"debug","msg":"a","run_id":"r1"}`,
		`{"level":"info","msg":"b","run_id":"r1","component":"watch"}`,
		`{"level":"error","msg":"c","run_id":"r2","component":"publish"}`,
		`{"level":"warn","msg":"d","component":"parser","alert":"duplicate_slugs"}`,
		"",
		"plain text",
	}

	cases := []struct {
		name   string
		filter logs.Filter
		want   []string
	}{
		{name: "no filter", filter: logs.Filter{}, want: []string{"a", "b", "c", "d", ""}},
		{name: "run", filter: logs.Filter{RunID: "r1"}, want: []string{"a", "b"}},
		{name: "level", filter: logs.Filter{MinLevel: "info"}, want: []string{"b", "c", "d"}},
		{name: "component", filter: logs.Filter{Component: "PUBLISH"}, want: []string{"c"}},
		{name: "alerts", filter: logs.Filter{Alerts: true}, want: []string{"d"}},
		{name: "alerts from one component", filter: logs.Filter{Alerts: true, Component: "publish"}, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, e := range logs.Entries(lines, tc.filter) {
				got = append(got, e.Message)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
