package parser

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"annodocs/internal/directory"
	"annodocs/internal/document"
	"annodocs/internal/logging"
)

// Result is the outcome of one parse. It is never mutated after Parse
// returns.
type Result struct {
	Segments    []Segment   `json:"segments"`
	Status      Status      `json:"status"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Annotations returns the annotation segments in document order.
func (r *Result) Annotations() []AnnotationSegment {
	var out []AnnotationSegment
	for _, seg := range r.Segments {
		if seg.Annotation != nil {
			out = append(out, *seg.Annotation)
		}
	}
	return out
}

// Parser parses documents against a fixed pair of directories. A Parser
// holds no per-parse state and may be used from several goroutines.
type Parser struct {
	dirs   directory.Set
	logger *slog.Logger
}

// New returns a parser resolving names through dirs.
func New(dirs directory.Set, logger *slog.Logger) *Parser {
	return &Parser{dirs: dirs, logger: logging.NewComponentLogger(logger, "parser")}
}

// ParseReader loads an HTML export and parses it.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	doc, err := document.Parse(r)
	if err != nil {
		return nil, err
	}
	return p.Parse(doc)
}

// Parse classifies every block of doc. The only error is
// document.ErrMissingBody.
func (p *Parser) Parse(doc *document.Document) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("parser: %w", document.ErrMissingBody)
	}

	var diag Diagnostics
	signal := StatusUndetermined
	blocks := doc.Body()
	if doc.HasBoundary() {
		var kept []document.Block
		signal, kept = ReadBoundary(doc.BoundaryRegion())
		blocks = append(blocks, kept...)
	}
	raw := SplitBlocks(blocks, &diag, p.logger)

	tracker := NewSlugTracker()
	annotations := annotationDecomposer{
		authors: p.dirs.Authors,
		tracker: tracker,
		diag:    &diag,
		logger:  p.logger,
	}
	transcript := transcriptClassifier{dirs: p.dirs, diag: &diag, logger: p.logger}

	segments := make([]Segment, 0, len(raw))
	for _, r := range raw {
		seg := Segment{Position: len(segments)}
		switch r.Kind {
		case RawAnnotation:
			diag.Annotations++
			a := annotations.decompose(r.Blocks, diag.Annotations)
			seg.Type = TypeAnnotation
			seg.Annotation = &a
		default:
			diag.TranscriptBlocks++
			kind, t := transcript.classify(r.Blocks[0])
			seg.Type = kind
			seg.Transcript = &t
		}
		segments = append(segments, seg)
	}

	if dups := tracker.Duplicates(); len(dups) > 0 {
		diag.DuplicateSlugs = dups
		logging.WarnWithContext(p.logger, "duplicate annotation slugs", "slug_duplicate",
			logging.Alert("duplicate_slugs"),
			logging.String("slugs", strings.Join(dups, ",")),
			logging.Int("count", len(dups)),
			logging.String(logging.FieldErrorHint, "give each annotation a unique Slug line"),
			logging.String(logging.FieldImpact, "embeds for these slugs overwrite each other"),
		)
	}

	status := finalizeStatus(signal, len(segments))
	p.logger.Info("document parsed",
		logging.String("status", status.String()),
		logging.Int("annotations", diag.Annotations),
		logging.Int("transcript_blocks", diag.TranscriptBlocks),
		logging.Int("unclosed_annotations", diag.UnclosedAnnotations),
	)
	return &Result{Segments: segments, Status: status, Diagnostics: diag}, nil
}
