// Package markers recognizes the line-level markers editors type into a
// fact-check document: annotation start/end rules, the frontmatter separator,
// and the sentinels written around the content boundary.
package markers

import (
	"regexp"
	"strings"
)

// Kind identifies a marker line.
type Kind int

const (
	None Kind = iota
	AnnotationStart
	AnnotationEnd
	FrontmatterSeparator
	EndFactCheck
	EndTranscript
	DoNotWriteBoundary
)

// MinRuleLength is the shortest run of '+' or '-' accepted as an annotation
// start or end rule.
const MinRuleLength = 50

func (k Kind) String() string {
	switch k {
	case AnnotationStart:
		return "annotation-start"
	case AnnotationEnd:
		return "annotation-end"
	case FrontmatterSeparator:
		return "frontmatter-separator"
	case EndFactCheck:
		return "end-fact-check"
	case EndTranscript:
		return "end-transcript"
	case DoNotWriteBoundary:
		return "do-not-write"
	default:
		return "none"
	}
}

// Marker is the classification of one line of text.
type Marker struct {
	Kind Kind
	// Error is set for a do-not-write boundary followed by the literal ERROR.
	Error bool
}

var (
	endFactCheckPattern  = regexp.MustCompile(`(?i)^end$`)
	endTranscriptPattern = regexp.MustCompile(`(?i)^.*live\s+transcript\s+has\s+ended.*$`)
	doNotWritePattern    = regexp.MustCompile(`(?i)^.*do\s*not\s*write\s*below\s*this\s*line(.*)$`)
	errorSuffixPattern   = regexp.MustCompile(`(?i)\berror\b`)
)

// Classify returns the marker carried by a block's visible text. Surrounding
// whitespace is ignored; everything else must match the whole string.
func Classify(text string) Marker {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Marker{}
	}
	switch {
	case isRun(trimmed, '+') && len(trimmed) >= MinRuleLength:
		return Marker{Kind: AnnotationStart}
	case isRun(trimmed, '-') && len(trimmed) >= MinRuleLength:
		return Marker{Kind: AnnotationEnd}
	case trimmed == "---":
		return Marker{Kind: FrontmatterSeparator}
	case endFactCheckPattern.MatchString(trimmed):
		return Marker{Kind: EndFactCheck}
	case endTranscriptPattern.MatchString(trimmed):
		return Marker{Kind: EndTranscript}
	}
	if m := doNotWritePattern.FindStringSubmatch(trimmed); m != nil {
		return Marker{Kind: DoNotWriteBoundary, Error: errorSuffixPattern.MatchString(m[1])}
	}
	return Marker{}
}

// IsFrontmatterSeparator is a shortcut used while decomposing annotations.
func IsFrontmatterSeparator(text string) bool {
	return Classify(text).Kind == FrontmatterSeparator
}

func isRun(s string, r byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != r {
			return false
		}
	}
	return true
}
