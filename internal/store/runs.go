package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"annodocs/internal/parser"
)

// timeLayout sorts lexically in chronological order for UTC values.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, document, content_hash, status, diagnostics_json, started_at, finished_at"

// RecordRun stores run and its annotations in one transaction. A missing
// run id is filled with a new UUID; the stored run is returned.
func (s *Store) RecordRun(ctx context.Context, run Run, annotations []AnnotationRecord) (Run, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(run.Document) == "" {
		return Run{}, errors.New("record run: document path is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()

	diagnostics, err := json.Marshal(run.Diagnostics)
	if err != nil {
		return Run{}, fmt.Errorf("marshal diagnostics: %w", err)
	}

	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (
                id, document, content_hash, status, transcript_blocks, annotations,
                unclosed_annotations, duplicate_slugs, diagnostics_json, started_at, finished_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Document,
			run.ContentHash,
			run.Status.String(),
			run.Diagnostics.TranscriptBlocks,
			run.Diagnostics.Annotations,
			run.Diagnostics.UnclosedAnnotations,
			strings.Join(run.Diagnostics.DuplicateSlugs, ","),
			string(diagnostics),
			run.StartedAt.Format(timeLayout),
			run.FinishedAt.Format(timeLayout),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, a := range annotations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_annotations (
                    run_id, position, slug, author_initials, author_name, author_resolved, published
                ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				run.ID,
				a.Position,
				a.Slug,
				nullableString(a.AuthorInitials),
				nullableString(a.AuthorName),
				boolToInt(a.AuthorResolved),
				boolToInt(a.Published),
			); err != nil {
				return fmt.Errorf("insert annotation %s: %w", a.Slug, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recent run of document, or nil when the
// document has never been recorded.
func (s *Store) LatestRun(ctx context.Context, document string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE document = ? ORDER BY finished_at DESC, rowid DESC LIMIT 1`,
		document,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns
// every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY finished_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunAnnotations returns the annotation rows of a run in document order.
func (s *Store) RunAnnotations(ctx context.Context, runID string) ([]AnnotationRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, position, slug, author_initials, author_name, author_resolved, published
         FROM run_annotations WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("run annotations: %w", err)
	}
	defer rows.Close()

	var records []AnnotationRecord
	for rows.Next() {
		var (
			rec       AnnotationRecord
			initials  sql.NullString
			name      sql.NullString
			resolved  int
			published int
		)
		if err := rows.Scan(&rec.RunID, &rec.Position, &rec.Slug, &initials, &name, &resolved, &published); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		rec.AuthorInitials = initials.String
		rec.AuthorName = name.String
		rec.AuthorResolved = resolved != 0
		rec.Published = published != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		statusStr   string
		diagnostics sql.NullString
		startedRaw  string
		finishedRaw string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Document,
		&run.ContentHash,
		&statusStr,
		&diagnostics,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	status, err := parser.ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}
	run.Status = status
	if diagnostics.Valid && diagnostics.String != "" {
		if err := json.Unmarshal([]byte(diagnostics.String), &run.Diagnostics); err != nil {
			return nil, fmt.Errorf("decode diagnostics: %w", err)
		}
	}
	if run.StartedAt, err = time.Parse(timeLayout, startedRaw); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finishedRaw); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
