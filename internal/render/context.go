package render

import (
	"html/template"
	"strings"

	"annodocs/internal/parser"
)

// FactCheckedClass is the class given to emphasis in transcript text.
const FactCheckedClass = "fact-checked"

// Template names. Segment templates share their name with parser.SegmentType.
const (
	TemplatePage        = "page"
	TemplateEmbed       = "embed"
	TemplateEmbedsIndex = "embeds_index"
	TemplateShare       = "share"
)

const (
	labelClass      = "annotation-label"
	labelClassNoImg = "annotation-label no-img"
)

var factChecked = strings.NewReplacer(
	"<strong>", `<span class="`+FactCheckedClass+`">`,
	"</strong>", "</span>",
)

// FactChecked replaces strong emphasis with the fact-checked span. It is a
// literal replacement and does not look at the surrounding markup.
func FactChecked(markup string) string {
	return factChecked.Replace(markup)
}

// Context is the input of one template execution.
type Context map[string]any

// String returns the value under key when it is a string or trusted markup.
func (c Context) String(key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case template.HTML:
		return string(v)
	}
	return ""
}

// Item is one segment ready for rendering. Markup is empty until the item
// has been through RenderAll.
type Item struct {
	Position int                `json:"position"`
	Type     parser.SegmentType `json:"type"`
	Context  Context            `json:"context"`
	Markup   string             `json:"markup,omitempty"`
}

// Slug returns the annotation slug, or "" for transcript items.
func (it Item) Slug() string {
	if it.Type != parser.TypeAnnotation {
		return ""
	}
	return it.Context.String("slug")
}

// Build returns one item per segment, in segment order.
func Build(result *parser.Result) []Item {
	if result == nil {
		return nil
	}
	items := make([]Item, 0, len(result.Segments))
	for _, seg := range result.Segments {
		items = append(items, Item{
			Position: seg.Position,
			Type:     seg.Type,
			Context:  contextFor(seg),
		})
	}
	return items
}

func contextFor(seg parser.Segment) Context {
	if seg.Annotation != nil {
		return annotationContext(*seg.Annotation)
	}
	var t parser.TranscriptSegment
	if seg.Transcript != nil {
		t = *seg.Transcript
	}
	text := template.HTML(FactChecked(t.Text))
	switch seg.Type {
	case parser.TypeSpeaker:
		return Context{
			"speaker":       t.Name,
			"speaker_class": t.Class,
			"timestamp":     t.Timestamp,
			"text":          text,
		}
	default:
		return Context{"text": text}
	}
}

func annotationContext(a parser.AnnotationSegment) Context {
	label := labelClass
	if a.Author.Image == "" {
		label = labelClassNoImg
	}
	metadata := make(map[string]string, len(a.Metadata.Extra))
	for k, v := range a.Metadata.Extra {
		metadata[k] = v
	}
	return Context{
		"slug":                   a.Slug,
		"contents":               template.HTML(a.Content),
		"author_initials":        a.Author.Initials,
		"author_name":            a.Author.Name,
		"author_role":            a.Author.Role,
		"author_page":            a.Author.Page,
		"author_img":             a.Author.Image,
		"author_resolved":        a.AuthorResolved,
		"annotation_label_class": label,
		"published":              a.Metadata.IsPublished(),
		"metadata":               metadata,
	}
}
