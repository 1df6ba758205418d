package parser

import (
	"annodocs/internal/directory"
	"annodocs/internal/document"
)

// RawKind distinguishes the two raw segment variants.
type RawKind int

const (
	RawTranscript RawKind = iota
	RawAnnotation
)

// RawSegment is one unit produced by the segmenter: a single transcript
// block, or the ordered interior blocks of an annotation span.
type RawSegment struct {
	Kind   RawKind
	Blocks []document.Block
}

// SegmentType tags a classified segment. The values double as the template
// names used when rendering.
type SegmentType string

const (
	TypeSpeaker    SegmentType = "speaker"
	TypeSoundbite  SegmentType = "soundbite"
	TypeOther      SegmentType = "other"
	TypeAnnotation SegmentType = "annotation"
)

// Segment is one entry of the parse result. Exactly one of Transcript and
// Annotation is set, matching Type.
type Segment struct {
	Position   int                `json:"position"`
	Type       SegmentType        `json:"type"`
	Transcript *TranscriptSegment `json:"transcript,omitempty"`
	Annotation *AnnotationSegment `json:"annotation,omitempty"`
}

// TranscriptSegment is a classified transcript paragraph. Name, Class and
// Timestamp are only set for speakers. Text holds inline markup.
type TranscriptSegment struct {
	Name      string `json:"name,omitempty"`
	Class     string `json:"class,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Text      string `json:"text"`
}

// Metadata holds the key/value lines of an annotation's metadata region.
// Keys the parser gives meaning to have named fields; anything else lands
// in Extra under its lower-cased key.
type Metadata struct {
	Slug      string            `json:"slug,omitempty"`
	Author    string            `json:"author,omitempty"`
	Published string            `json:"published,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Get returns the value for a lower-cased key, named fields included.
func (m Metadata) Get(key string) (string, bool) {
	switch key {
	case "slug":
		return m.Slug, m.Slug != ""
	case "author":
		return m.Author, m.Author != ""
	case "published":
		return m.Published, m.Published != ""
	}
	v, ok := m.Extra[key]
	return v, ok
}

// IsPublished reports whether the annotation is marked for publishing.
func (m Metadata) IsPublished() bool {
	return m.Published == "yes"
}

// AnnotationSegment is a decomposed annotation span.
type AnnotationSegment struct {
	Slug           string           `json:"slug"`
	Metadata       Metadata         `json:"metadata"`
	Author         directory.Author `json:"author"`
	AuthorResolved bool             `json:"author_resolved"`
	Content        string           `json:"content"`
}
