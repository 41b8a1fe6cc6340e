package jobs

import (
	"context"
	"fmt"
	"time"
)

// MarkRunning moves a pending job to running.
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	return s.transition(ctx, id, StatusRunning,
		`UPDATE jobs SET status = ?, started_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusRunning, now, now, id, StatusPending)
}

// MarkSucceeded records a finished job and where its output lives.
func (s *Store) MarkSucceeded(ctx context.Context, id, outputPath, outputURL string) error {
	now := formatTime(time.Now())
	return s.transition(ctx, id, StatusSucceeded,
		`UPDATE jobs SET status = ?, output_path = ?, output_url = ?, finished_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusSucceeded, outputPath, nullableString(outputURL), now, now, id, StatusRunning)
}

// MarkFailed records a failure. Pending and running jobs may fail.
func (s *Store) MarkFailed(ctx context.Context, id, kind, message string) error {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error_kind = ?, error_message = ?, finished_at = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		StatusFailed, nullableString(kind), nullableString(message), now, now, id, StatusPending, StatusRunning)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return s.checkTransition(ctx, res, id, StatusFailed)
}

// FailInterrupted marks jobs left running by a previous process as failed.
func (s *Store) FailInterrupted(ctx context.Context) (int64, error) {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error_kind = ?, error_message = ?, finished_at = ?, updated_at = ?
         WHERE status IN (?, ?)`,
		StatusFailed, "transient", "interrupted by daemon restart", now, now, StatusPending, StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

// Prune deletes finished jobs older than cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE status IN (?, ?) AND created_at < ?`,
		StatusSucceeded, StatusFailed, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) transition(ctx context.Context, id string, to Status, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark job %s: %w", to, err)
	}
	return s.checkTransition(ctx, res, id, to)
}
