package parser_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"annodocs/internal/directory"
	"annodocs/internal/document"
	"annodocs/internal/parser"
	"annodocs/internal/testsupport"
)

func defaultDirs() directory.Set {
	return directory.Set{
		Speakers: directory.DefaultSpeakers(),
		Authors: directory.NewAuthors([]directory.Author{
			{Initials: "jd", Name: "Jane Doe", Role: "Reporter", Page: "https://example.org/jd"},
		}),
	}
}

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func mustParse(t *testing.T, dirs directory.Set, logger *slog.Logger, blocks ...string) *parser.Result {
	t.Helper()
	result, err := parser.New(dirs, logger).Parse(testsupport.MustDocument(t, blocks...))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return result
}

func TestEmptyDocumentIsBefore(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil, "<p>   </p>", "<p></p>")
	if result.Status != parser.StatusBefore {
		t.Fatalf("status = %s, want before", result.Status)
	}
	if len(result.Segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(result.Segments))
	}
}

func TestClassifiedBlocksMakeStatusDuring(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil, testsupport.P("Welcome to the debate."))
	if result.Status != parser.StatusDuring {
		t.Fatalf("status = %s, want during", result.Status)
	}
}

func TestSingleSeparatorYieldsEmptyMetadata(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil,
		testsupport.StartRule(),
		testsupport.Separator(),
		testsupport.P("Only block"),
		testsupport.EndRule(),
	)
	annotations := result.Annotations()
	if len(annotations) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(annotations))
	}
	got := annotations[0]
	if diff := cmp.Diff(parser.Metadata{}, got.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if got.Content != "<p>Only block</p>" {
		t.Fatalf("content = %q", got.Content)
	}
	if result.Diagnostics.MalformedMetadata != 0 {
		t.Fatalf("content block must not be parsed as metadata")
	}
}

func TestSpeakerResolvedFromDirectory(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil, testsupport.P("DONALD TRUMP: Thanks everyone"))
	seg := result.Segments[0]
	if seg.Type != parser.TypeSpeaker {
		t.Fatalf("type = %s, want speaker", seg.Type)
	}
	want := parser.TranscriptSegment{Name: "DONALD TRUMP", Class: "speaker gop", Text: "Thanks everyone"}
	if diff := cmp.Diff(want, *seg.Transcript); diff != "" {
		t.Fatalf("speaker mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownSpeakerGetsDefaultClassAndDebugLog(t *testing.T) {
	var buf bytes.Buffer
	dirs := directory.Set{Speakers: directory.NewSpeakers(nil)}
	result := mustParse(t, dirs, debugLogger(&buf), testsupport.P("DONALD TRUMP: Thanks everyone"))

	seg := result.Segments[0]
	if seg.Type != parser.TypeSpeaker || seg.Transcript.Class != directory.DefaultSpeakerClass {
		t.Fatalf("got %s with class %q", seg.Type, seg.Transcript.Class)
	}
	if result.Diagnostics.UnresolvedSpeakers != 1 {
		t.Fatalf("unresolved speakers = %d", result.Diagnostics.UnresolvedSpeakers)
	}
	logs := buf.String()
	if !strings.Contains(logs, "level=DEBUG") || !strings.Contains(logs, "speaker not in directory") {
		t.Fatalf("expected debug notice, got:\n%s", logs)
	}
	if strings.Contains(logs, "level=ERROR") {
		t.Fatalf("unknown speaker must not log an error:\n%s", logs)
	}
}

func TestSpeakerTimestampAndLeadingTag(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil,
		"<p><b>HILLARY CLINTON [21:04:10]:</b> We need a plan.</p>",
	)
	got := *result.Segments[0].Transcript
	want := parser.TranscriptSegment{
		Name:      "HILLARY CLINTON",
		Class:     "speaker dem",
		Timestamp: "21:04:10",
		Text:      "<strong></strong> We need a plan.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("speaker mismatch (-want +got):\n%s", diff)
	}
}

func TestSoundbite(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil, testsupport.P(": (laughter)"))
	seg := result.Segments[0]
	if seg.Type != parser.TypeSoundbite {
		t.Fatalf("type = %s, want soundbite", seg.Type)
	}
	if seg.Transcript.Text != "(laughter)" {
		t.Fatalf("text = %q, want (laughter)", seg.Transcript.Text)
	}
}

func TestExtractionMismatchFallsBackToOther(t *testing.T) {
	var buf bytes.Buffer
	result := mustParse(t, defaultDirs(), debugLogger(&buf), "<p>DONALD <i>TRUMP</i>: hi</p>")
	seg := result.Segments[0]
	if seg.Type != parser.TypeOther {
		t.Fatalf("type = %s, want other", seg.Type)
	}
	if seg.Transcript.Text != "DONALD <em>TRUMP</em>: hi" {
		t.Fatalf("text = %q", seg.Transcript.Text)
	}
	if result.Diagnostics.ExtractionMismatch != 1 {
		t.Fatalf("extraction mismatch = %d", result.Diagnostics.ExtractionMismatch)
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("expected error log, got:\n%s", buf.String())
	}
}

func TestTranscriptRulePriority(t *testing.T) {
	var got []parser.SegmentType
	for _, rule := range parser.TranscriptRules {
		got = append(got, rule.Type)
	}
	want := []parser.SegmentType{parser.TypeSpeaker, parser.TypeSoundbite, parser.TypeOther}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rule order mismatch (-want +got):\n%s", diff)
	}

	kind, seg := parser.ClassifyBlock(document.NewBlock("MODERATOR: : (applause)"), defaultDirs(), nil)
	if kind != parser.TypeSpeaker || seg.Text != ": (applause)" {
		t.Fatalf("speaker shape must win over soundbite, got %s %q", kind, seg.Text)
	}
}

func TestDuplicateSlugsAreReportedButKept(t *testing.T) {
	blocks := append(
		testsupport.Annotation("First", []string{"Slug: foo"}, "one"),
		testsupport.Annotation("Second", []string{"Slug: FOO"}, "two")...,
	)
	result := mustParse(t, defaultDirs(), nil, blocks...)

	annotations := result.Annotations()
	if len(annotations) != 2 {
		t.Fatalf("expected both annotations, got %d", len(annotations))
	}
	for _, a := range annotations {
		if a.Slug != "foo" {
			t.Fatalf("slug = %q, want foo", a.Slug)
		}
	}
	if diff := cmp.Diff([]string{"foo"}, result.Diagnostics.DuplicateSlugs); diff != "" {
		t.Fatalf("duplicates mismatch (-want +got):\n%s", diff)
	}
}

func TestSlugTracker(t *testing.T) {
	tracker := parser.NewSlugTracker()
	for _, slug := range []string{"foo", "bar", "foo", "baz", "bar", "foo"} {
		tracker.Register(slug)
	}
	if diff := cmp.Diff([]string{"bar", "foo"}, tracker.Duplicates()); diff != "" {
		t.Fatalf("duplicates mismatch (-want +got):\n%s", diff)
	}
	if dups := parser.NewSlugTracker().Duplicates(); len(dups) != 0 {
		t.Fatalf("fresh tracker reported %v", dups)
	}
}

func TestAuthorResolution(t *testing.T) {
	blocks := testsupport.Annotation("Claim", []string{"Author: Jane Doe (jd)"}, "body")

	result := mustParse(t, defaultDirs(), nil, blocks...)
	a := result.Annotations()[0]
	if !a.AuthorResolved || a.Author.Name != "Jane Doe" || a.Author.Role != "Reporter" {
		t.Fatalf("unexpected resolved author: %+v (resolved=%v)", a.Author, a.AuthorResolved)
	}

	var buf bytes.Buffer
	dirs := directory.Set{Speakers: directory.DefaultSpeakers()}
	result = mustParse(t, dirs, debugLogger(&buf), blocks...)
	a = result.Annotations()[0]
	want := directory.Author{Initials: "jd", Name: "Jane Doe"}
	if a.AuthorResolved {
		t.Fatal("author should not resolve without directory entry")
	}
	if diff := cmp.Diff(want, a.Author); diff != "" {
		t.Fatalf("fallback author mismatch (-want +got):\n%s", diff)
	}
	if result.Diagnostics.UnresolvedAuthors != 1 || !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected warning for unresolved author, logs:\n%s", buf.String())
	}
}

func TestMetadataParsing(t *testing.T) {
	var buf bytes.Buffer
	blocks := testsupport.Annotation("Trade deficit claims", []string{
		"Published: YES",
		"Major Development: No",
		"this line has no colon",
		"Notes: see http://example.org",
	}, "Body text")
	result := mustParse(t, defaultDirs(), debugLogger(&buf), blocks...)
	a := result.Annotations()[0]

	want := parser.Metadata{
		Published: "yes",
		Extra: map[string]string{
			"major development": "No",
			"notes":             "see http://example.org",
		},
	}
	if diff := cmp.Diff(want, a.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if !a.Metadata.IsPublished() {
		t.Fatal("expected annotation to be published")
	}
	if a.Slug != "trade-deficit-claims-1" {
		t.Fatalf("slug = %q, want derived from headline", a.Slug)
	}
	if a.Content != "<p>Body text</p>" {
		t.Fatalf("content = %q", a.Content)
	}
	if result.Diagnostics.MalformedMetadata != 1 || !strings.Contains(buf.String(), "unexpected metadata format") {
		t.Fatalf("expected malformed line to be logged, logs:\n%s", buf.String())
	}
}

func TestGeneratedContentReclassifiesAsOther(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil,
		testsupport.Annotation("Claim", []string{"Slug: claim"}, "DONALD TRUMP: not a speaker here", ": (nor a soundbite)")...,
	)
	content := result.Annotations()[0].Content
	kind, seg := parser.ClassifyBlock(document.NewBlock(content), defaultDirs(), nil)
	if kind != parser.TypeOther {
		t.Fatalf("generated content classified as %s", kind)
	}
	if seg.Text == "" {
		t.Fatal("expected generated content to pass through")
	}
}

func TestEndBoundaryMakesStatusAfter(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil,
		testsupport.P("DONALD TRUMP: Thanks everyone"),
		testsupport.Rule,
		testsupport.P("END"),
		testsupport.P("editor notes"),
	)
	if result.Status != parser.StatusAfter {
		t.Fatalf("status = %s, want after", result.Status)
	}
	if len(result.Segments) != 1 {
		t.Fatalf("boundary content leaked into output: %d segments", len(result.Segments))
	}
}

func TestBoundarySignals(t *testing.T) {
	tests := []struct {
		name     string
		region   []string
		status   parser.Status
		segments int
	}{
		{
			name:     "transcript ended",
			region:   []string{testsupport.P("LIVE TRANSCRIPT HAS ENDED"), testsupport.P("notes")},
			status:   parser.StatusTranscriptEnded,
			segments: 1,
		},
		{
			name:     "do not write keeps the rest",
			region:   []string{testsupport.P("DO NOT WRITE BELOW THIS LINE"), testsupport.P("MIKE PENCE: Late addition")},
			status:   parser.StatusDuring,
			segments: 2,
		},
		{
			name:     "do not write error",
			region:   []string{testsupport.P("DO NOT WRITE BELOW THIS LINE ERROR")},
			status:   parser.StatusError,
			segments: 1,
		},
		{
			name:     "end beats transcript ended",
			region:   []string{testsupport.P("LIVE TRANSCRIPT HAS ENDED"), testsupport.P("end")},
			status:   parser.StatusAfter,
			segments: 1,
		},
		{
			name:     "end inside container",
			region:   []string{"<div>" + testsupport.P("END") + testsupport.P("editor notes") + "</div>"},
			status:   parser.StatusAfter,
			segments: 1,
		},
		{
			name:     "transcript ended inside container",
			region:   []string{"<div>" + testsupport.P("notes") + testsupport.P("LIVE TRANSCRIPT HAS ENDED") + "</div>"},
			status:   parser.StatusTranscriptEnded,
			segments: 1,
		},
		{
			name: "do not write error inside container keeps the rest",
			region: []string{"<div>" + testsupport.P("DO NOT WRITE BELOW THIS LINE ERROR") +
				testsupport.P("MIKE PENCE: x") + "</div>"},
			status:   parser.StatusError,
			segments: 2,
		},
		{
			name:     "nested containers",
			region:   []string{"<div><div>" + testsupport.P("DO NOT WRITE BELOW THIS LINE") + "</div>" + testsupport.P("MIKE PENCE: x") + "</div>"},
			status:   parser.StatusDuring,
			segments: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := append([]string{testsupport.P("TIM KAINE: Hello"), testsupport.Rule}, tt.region...)
			result := mustParse(t, defaultDirs(), nil, blocks...)
			if result.Status != tt.status {
				t.Fatalf("status = %s, want %s", result.Status, tt.status)
			}
			if len(result.Segments) != tt.segments {
				t.Fatalf("segments = %d, want %d", len(result.Segments), tt.segments)
			}
		})
	}
}

func TestBoundaryWithoutContentIsBefore(t *testing.T) {
	result := mustParse(t, defaultDirs(), nil, testsupport.Rule, testsupport.P("DO NOT WRITE BELOW THIS LINE"))
	if result.Status != parser.StatusBefore {
		t.Fatalf("status = %s, want before", result.Status)
	}
}

func TestSegmenterRecovery(t *testing.T) {
	var buf bytes.Buffer
	result := mustParse(t, defaultDirs(), debugLogger(&buf),
		testsupport.EndRule(),
		testsupport.P("---"),
		testsupport.StartRule(),
		testsupport.P("abandoned"),
		testsupport.StartRule(),
		testsupport.Separator(),
		testsupport.P("kept"),
		testsupport.EndRule(),
		testsupport.P("TIM KAINE: after"),
		testsupport.StartRule(),
		testsupport.P("never closed"),
	)

	var types []parser.SegmentType
	for i, seg := range result.Segments {
		if seg.Position != i {
			t.Fatalf("segment %d has position %d", i, seg.Position)
		}
		types = append(types, seg.Type)
	}
	want := []parser.SegmentType{parser.TypeOther, parser.TypeAnnotation, parser.TypeSpeaker}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("segment types mismatch (-want +got):\n%s", diff)
	}
	if got := result.Segments[0].Transcript.Text; got != "---" {
		t.Fatalf("top-level separator should be content, got %q", got)
	}
	if got := result.Segments[1].Annotation.Content; got != "<p>kept</p>" {
		t.Fatalf("restarted span content = %q", got)
	}

	d := result.Diagnostics
	if d.StrayEndMarkers != 1 || d.RestartedSpans != 1 || d.UnclosedAnnotations != 1 {
		t.Fatalf("unexpected diagnostics: %+v", d)
	}
	if d.Clean() {
		t.Fatal("diagnostics should not be clean")
	}
	if !strings.Contains(buf.String(), "annotation left open at end of document") {
		t.Fatalf("expected unclosed annotation warning, logs:\n%s", buf.String())
	}
}

func TestNilDocumentIsFatal(t *testing.T) {
	_, err := parser.New(defaultDirs(), nil).Parse(nil)
	if !errors.Is(err, document.ErrMissingBody) {
		t.Fatalf("expected ErrMissingBody, got %v", err)
	}
}

func TestParseReader(t *testing.T) {
	html := testsupport.HTML(testsupport.P("MIKE PENCE: Good evening"))
	result, err := parser.New(defaultDirs(), nil).ParseReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if result.Segments[0].Transcript.Class != "speaker gop" {
		t.Fatalf("unexpected class %q", result.Segments[0].Transcript.Class)
	}
}

func TestNonBreakingSpacesInSpeakerLines(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{name: "leading", markup: "<p>&nbsp;DONALD TRUMP: hi</p>"},
		{name: "inside name", markup: "<p>DONALD&nbsp;TRUMP:&nbsp;hi</p>"},
		{name: "inside leading tag", markup: "<p><b>DONALD&nbsp;TRUMP:</b> hi</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustParse(t, defaultDirs(), nil, tt.markup)
			if len(result.Segments) != 1 {
				t.Fatalf("segments = %d, want 1", len(result.Segments))
			}
			seg := result.Segments[0]
			if seg.Type != parser.TypeSpeaker {
				t.Fatalf("type = %s, want speaker (diagnostics %+v)", seg.Type, result.Diagnostics)
			}
			if seg.Transcript.Name != "DONALD TRUMP" {
				t.Fatalf("name = %q, want DONALD TRUMP", seg.Transcript.Name)
			}
			if seg.Transcript.Class != "speaker gop" {
				t.Fatalf("class = %q, want speaker gop", seg.Transcript.Class)
			}
			if result.Diagnostics.ExtractionMismatch != 0 {
				t.Fatalf("unexpected extraction mismatch")
			}
		})
	}
}
