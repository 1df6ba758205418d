package store

import (
	"time"

	"annodocs/internal/parser"
)

// Run is one recorded parse of a document.
type Run struct {
	ID          string             `json:"id"`
	Document    string             `json:"document"`
	ContentHash string             `json:"content_hash"`
	Status      parser.Status      `json:"status"`
	Diagnostics parser.Diagnostics `json:"diagnostics"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// AnnotationRecord is the journal row for one annotation of a run.
type AnnotationRecord struct {
	RunID          string `json:"run_id"`
	Position       int    `json:"position"`
	Slug           string `json:"slug"`
	AuthorInitials string `json:"author_initials,omitempty"`
	AuthorName     string `json:"author_name,omitempty"`
	AuthorResolved bool   `json:"author_resolved"`
	Published      bool   `json:"published"`
}

// FromResult builds the run and annotation rows for a finished parse. The
// run id is left empty for RecordRun to assign.
func FromResult(document, contentHash string, result *parser.Result, started, finished time.Time) (Run, []AnnotationRecord) {
	run := Run{
		Document:    document,
		ContentHash: contentHash,
		StartedAt:   started,
		FinishedAt:  finished,
	}
	if result == nil {
		return run, nil
	}
	run.Status = result.Status
	run.Diagnostics = result.Diagnostics

	var records []AnnotationRecord
	for _, seg := range result.Segments {
		a := seg.Annotation
		if a == nil {
			continue
		}
		records = append(records, AnnotationRecord{
			Position:       seg.Position,
			Slug:           a.Slug,
			AuthorInitials: a.Author.Initials,
			AuthorName:     a.Author.Name,
			AuthorResolved: a.AuthorResolved,
			Published:      a.Metadata.IsPublished(),
		})
	}
	return run, records
}
