package parser

import (
	"log/slog"
	"strings"

	"annodocs/internal/document"
	"annodocs/internal/logging"
	"annodocs/internal/markers"
)

// ReadBoundary inspects the boundary region and returns the status it
// signals together with the blocks that flow back into the body. END and
// LIVE TRANSCRIPT HAS ENDED discard the whole region. Otherwise do-not-write
// lines are removed and the remaining blocks are kept; a do-not-write line
// carrying ERROR signals StatusError.
func ReadBoundary(region []document.Block) (Status, []document.Block) {
	if len(region) == 0 {
		return StatusUndetermined, nil
	}
	region = flattenContainers(region)

	var ended bool
	for _, block := range region {
		for _, m := range blockMarkers(block) {
			switch m.Kind {
			case markers.EndFactCheck:
				return StatusAfter, nil
			case markers.EndTranscript:
				ended = true
			}
		}
	}
	if ended {
		return StatusTranscriptEnded, nil
	}

	signal := StatusUndetermined
	kept := make([]document.Block, 0, len(region))
	for _, block := range region {
		dropped := false
		for _, m := range blockMarkers(block) {
			if m.Kind != markers.DoNotWriteBoundary {
				continue
			}
			dropped = true
			if m.Error {
				signal = StatusError
			}
		}
		if dropped || (block.IsBoundary() && block.IsBlank()) {
			continue
		}
		kept = append(kept, block)
	}
	return signal, kept
}

// flattenContainers replaces container blocks by their block-level
// children so each paragraph after the rule is classified on its own.
func flattenContainers(blocks []document.Block) []document.Block {
	out := make([]document.Block, 0, len(blocks))
	for _, block := range blocks {
		if children := block.Children(); len(children) > 0 {
			out = append(out, flattenContainers(children)...)
			continue
		}
		out = append(out, block)
	}
	return out
}

// blockMarkers classifies each line of a block. A paragraph may still hold
// several lines separated by <br>.
func blockMarkers(block document.Block) []markers.Marker {
	lines := strings.Split(block.Text(), "\n")
	out := make([]markers.Marker, 0, len(lines))
	for _, line := range lines {
		if m := markers.Classify(line); m.Kind != markers.None {
			out = append(out, m)
		}
	}
	return out
}

// SplitBlocks partitions body blocks into transcript blocks and annotation
// spans. Blank blocks are dropped. Recoverable irregularities are logged
// and counted in diag.
func SplitBlocks(blocks []document.Block, diag *Diagnostics, logger *slog.Logger) []RawSegment {
	if logger == nil {
		logger = logging.NewNop()
	}
	if diag == nil {
		diag = &Diagnostics{}
	}

	var (
		out    []RawSegment
		inside bool
		acc    []document.Block
	)
	for _, block := range blocks {
		if block.IsBlank() {
			continue
		}
		switch markers.Classify(block.Text()).Kind {
		case markers.AnnotationStart:
			if inside {
				diag.RestartedSpans++
				logging.WarnWithContext(logger, "annotation start inside open annotation; restarting span", "annotation_restarted",
					logging.Int("discarded_blocks", len(acc)),
					logging.String(logging.FieldErrorHint, "add the missing end rule before the new start rule"),
					logging.String(logging.FieldImpact, "blocks of the interrupted annotation were discarded"),
				)
			}
			inside = true
			acc = nil
			continue
		case markers.AnnotationEnd:
			if !inside {
				diag.StrayEndMarkers++
				logging.WarnWithContext(logger, "annotation end rule outside an annotation; ignoring", "annotation_stray_end",
					logging.String(logging.FieldErrorHint, "remove the extra end rule"),
					logging.String(logging.FieldImpact, "marker dropped from output"),
				)
				continue
			}
			out = append(out, RawSegment{Kind: RawAnnotation, Blocks: acc})
			inside = false
			acc = nil
			continue
		}
		if inside {
			acc = append(acc, block)
			continue
		}
		out = append(out, RawSegment{Kind: RawTranscript, Blocks: []document.Block{block}})
	}

	if inside {
		diag.UnclosedAnnotations++
		logging.WarnWithContext(logger, "annotation left open at end of document; dropping it", "annotation_unclosed",
			logging.Alert("annotation_dropped"),
			logging.Int("discarded_blocks", len(acc)),
			logging.Int("unclosed_annotations", diag.UnclosedAnnotations),
			logging.String(logging.FieldErrorHint, "close the last annotation with an end rule"),
			logging.String(logging.FieldImpact, "annotation content is not published"),
		)
	}
	return out
}
