package store

import (
	"context"
	"fmt"
	"time"
)

// Outcome is the journal record of one processed operation.
type Outcome struct {
	ID        string
	Seq       int64
	Operation string
	Output    string
	ErrorKind string
	StartedAt time.Time
	Duration  time.Duration
}

// RecordOutcome appends an outcome.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a duplicate ID is silently ignored.
func (s *Store) RecordOutcome(ctx context.Context, o Outcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outcomes
		(id, seq, operation, output, error_kind, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		o.ID,
		o.Seq,
		o.Operation,
		o.Output,
		o.ErrorKind,
		o.StartedAt.UTC().Format(time.RFC3339Nano),
		o.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns the most recent outcomes, newest first.
// A limit of zero or less returns every outcome.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListOutcomes(ctx context.Context, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, operation, output, error_kind, started_at, duration_ms
		FROM outcomes
		ORDER BY seq DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []Outcome{}
	for rows.Next() {
		var (
			o         Outcome
			startedAt string
			ms        int64
		)
		if err := rows.Scan(&o.ID, &o.Seq, &o.Operation, &o.Output, &o.ErrorKind, &startedAt, &ms); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at for %s: %w", o.ID, err)
		}
		o.Duration = time.Duration(ms) * time.Millisecond
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	return outcomes, nil
}

// LastSeq returns the highest journaled sequence number, or zero.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM outcomes`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq, nil
}
