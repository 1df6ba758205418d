package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"annodocs/internal/directory"
	"annodocs/internal/document"
	"annodocs/internal/logging"
)

// Exports write non-breaking spaces as U+00A0, which RE2's \s does not
// match. The text projection already folds them; markup patterns use ws.
const ws = `[\s\x{00A0}]`

var (
	speakerShape   = regexp.MustCompile(`^\s*[A-Z][A-Z\s.,-]*(\[[^\]]*\]\s*)?:`)
	soundbiteShape = regexp.MustCompile(`^\s*:`)

	speakerExtract = regexp.MustCompile(`(?s)^` + ws + `*(<[^>]*>)?([A-Z][A-Z\s\x{00A0}.,-]*?)` + ws +
		`*(?:\[([^\]]*)\]` + ws + `*)?:` + ws + `*(.*)$`)
	soundbiteExtract = regexp.MustCompile(`(?s)^` + ws + `*(?:<[^>]*>)?` + ws + `*:` + ws +
		`*\[?\((.*)\)\]?` + ws + `*(?:</[^>]*>)?` + ws + `*$`)
)

// TranscriptRule pairs the shape test run on a block's visible text with the
// extractor run on its inner markup. Rules are tried in order and the first
// shape that matches decides the segment type.
type TranscriptRule struct {
	Type    SegmentType
	Matches func(text string) bool
	Extract func(markup string) (TranscriptSegment, bool)
}

// TranscriptRules is the fixed classification order: speaker, then
// soundbite, then other. The other rule always matches.
var TranscriptRules = []TranscriptRule{
	{Type: TypeSpeaker, Matches: speakerShape.MatchString, Extract: extractSpeaker},
	{Type: TypeSoundbite, Matches: soundbiteShape.MatchString, Extract: extractSoundbite},
	{Type: TypeOther, Matches: func(string) bool { return true }, Extract: extractOther},
}

func extractSpeaker(markup string) (TranscriptSegment, bool) {
	m := speakerExtract.FindStringSubmatch(markup)
	if m == nil {
		return TranscriptSegment{}, false
	}
	name := strings.TrimSpace(strings.ReplaceAll(m[2], "\u00a0", " "))
	if name == "" {
		return TranscriptSegment{}, false
	}
	return TranscriptSegment{
		Name:      name,
		Timestamp: strings.TrimSpace(m[3]),
		Text:      m[1] + m[4],
	}, true
}

func extractSoundbite(markup string) (TranscriptSegment, bool) {
	m := soundbiteExtract.FindStringSubmatch(markup)
	if m == nil {
		return TranscriptSegment{}, false
	}
	return TranscriptSegment{Text: "(" + strings.TrimSpace(m[1]) + ")"}, true
}

func extractOther(markup string) (TranscriptSegment, bool) {
	return TranscriptSegment{Text: markup}, true
}

type transcriptClassifier struct {
	dirs   directory.Set
	diag   *Diagnostics
	logger *slog.Logger
}

// ClassifyBlock classifies a single transcript block against dirs. It is
// what the parser runs for every transcript block and is exported for
// callers that re-check generated markup.
func ClassifyBlock(block document.Block, dirs directory.Set, logger *slog.Logger) (SegmentType, TranscriptSegment) {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := transcriptClassifier{dirs: dirs, diag: &Diagnostics{}, logger: logger}
	return c.classify(block)
}

func (c *transcriptClassifier) classify(block document.Block) (SegmentType, TranscriptSegment) {
	text := block.Text()
	for _, rule := range TranscriptRules {
		if !rule.Matches(text) {
			continue
		}
		seg, ok := rule.Extract(block.InnerMarkup())
		if !ok {
			c.diag.ExtractionMismatch++
			logging.ErrorWithContext(c.logger, "paragraph matched shape but extraction failed; keeping it as plain text", "transcript_extraction_mismatch",
				logging.String("rule", string(rule.Type)),
				logging.String("text", text),
				logging.String(logging.FieldErrorHint, "check the speaker or soundbite formatting in the document"),
			)
			return TypeOther, TranscriptSegment{Text: block.InnerMarkup()}
		}
		if rule.Type == TypeSpeaker {
			seg.Class = c.speakerClass(seg.Name)
		}
		return rule.Type, seg
	}
	return TypeOther, TranscriptSegment{Text: block.InnerMarkup()}
}

func (c *transcriptClassifier) speakerClass(name string) string {
	class, ok := c.dirs.SpeakerClass(name)
	if ok {
		return class
	}
	c.diag.UnresolvedSpeakers++
	attrs := []logging.Attr{
		logging.String(logging.FieldSpeaker, name),
		logging.String("class", class),
	}
	if suggestion, found := c.dirs.Speakers.Suggest(name); found {
		attrs = append(attrs, logging.String("did_you_mean", suggestion))
	}
	c.logger.Debug("speaker not in directory; using default class", logging.Args(attrs...)...)
	return class
}
