package testsupport

import (
	"html"
	"strings"
	"testing"

	"annodocs/internal/document"
)

// Rule is the horizontal rule separating the live body from trailing notes.
const Rule = "<hr>"

// P returns an escaped paragraph.
func P(text string) string {
	return "<p>" + html.EscapeString(text) + "</p>"
}

// StartRule returns the paragraph opening an annotation.
func StartRule() string { return P(strings.Repeat("+", 60)) }

// EndRule returns the paragraph closing an annotation.
func EndRule() string { return P(strings.Repeat("-", 100)) }

// Separator returns a frontmatter separator paragraph.
func Separator() string { return P("---") }

// Annotation lays out a complete annotation span the way the editors'
// add-on inserts it: start rule, headline, metadata between separators,
// content, end rule.
func Annotation(headline string, metadata []string, content ...string) []string {
	blocks := []string{StartRule(), "<h1>" + html.EscapeString(headline) + "</h1>", Separator()}
	for _, line := range metadata {
		blocks = append(blocks, P(line))
	}
	blocks = append(blocks, Separator())
	for _, c := range content {
		blocks = append(blocks, P(c))
	}
	return append(blocks, EndRule())
}

// HTML wraps blocks in a minimal export document.
func HTML(blocks ...string) string {
	return "<html><head><title>doc</title></head><body>" + strings.Join(blocks, "\n") + "</body></html>"
}

// MustDocument parses blocks into a document.
func MustDocument(t testing.TB, blocks ...string) *document.Document {
	t.Helper()

	doc, err := document.ParseString(HTML(blocks...))
	if err != nil {
		t.Fatalf("document.ParseString: %v", err)
	}
	return doc
}

// Concat flattens block groups, for mixing Annotation spans with single
// paragraphs.
func Concat(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
