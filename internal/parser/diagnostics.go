package parser

// Diagnostics counts the recoverable conditions met during a parse.
type Diagnostics struct {
	TranscriptBlocks    int      `json:"transcript_blocks"`
	Annotations         int      `json:"annotations"`
	UnresolvedSpeakers  int      `json:"unresolved_speakers"`
	UnresolvedAuthors   int      `json:"unresolved_authors"`
	MalformedMetadata   int      `json:"malformed_metadata"`
	ExtractionMismatch  int      `json:"extraction_mismatch"`
	UnclosedAnnotations int      `json:"unclosed_annotations"`
	StrayEndMarkers     int      `json:"stray_end_markers"`
	RestartedSpans      int      `json:"restarted_spans"`
	DuplicateSlugs      []string `json:"duplicate_slugs,omitempty"`
}

// Clean reports whether nothing needed recovering.
func (d Diagnostics) Clean() bool {
	return d.UnresolvedAuthors == 0 &&
		d.MalformedMetadata == 0 &&
		d.ExtractionMismatch == 0 &&
		d.UnclosedAnnotations == 0 &&
		d.StrayEndMarkers == 0 &&
		d.RestartedSpans == 0 &&
		len(d.DuplicateSlugs) == 0
}
