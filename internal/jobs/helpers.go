package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const jobColumns = "id, status, video_name, video_path, subtitle_path, output_path, output_url, active_color, span_count, event_count, error_kind, error_message, request_id, created_at, updated_at, started_at, finished_at"

// ErrInvalidTransition is returned when a status update does not apply to
// the job's current state.
var ErrInvalidTransition = errors.New("invalid job transition")

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           string
		status       string
		videoName    sql.NullString
		videoPath    sql.NullString
		subtitlePath sql.NullString
		outputPath   sql.NullString
		outputURL    sql.NullString
		activeColor  sql.NullString
		spanCount    int
		eventCount   int
		errorKind    sql.NullString
		errorMessage sql.NullString
		requestID    sql.NullString
		createdRaw   string
		updatedRaw   string
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&id, &status, &videoName, &videoPath, &subtitlePath, &outputPath, &outputURL,
		&activeColor, &spanCount, &eventCount, &errorKind, &errorMessage, &requestID,
		&createdRaw, &updatedRaw, &startedRaw, &finishedRaw,
	); err != nil {
		return nil, err
	}
	return &Job{
		ID:           id,
		Status:       Status(status),
		VideoName:    videoName.String,
		VideoPath:    videoPath.String,
		SubtitlePath: subtitlePath.String,
		OutputPath:   outputPath.String,
		OutputURL:    outputURL.String,
		ActiveColor:  activeColor.String,
		SpanCount:    spanCount,
		EventCount:   eventCount,
		ErrorKind:    errorKind.String,
		ErrorMessage: errorMessage.String,
		RequestID:    requestID.String,
		CreatedAt:    parseTime(createdRaw),
		UpdatedAt:    parseTime(updatedRaw),
		StartedAt:    parseTime(startedRaw.String),
		FinishedAt:   parseTime(finishedRaw.String),
	}, nil
}

func (s *Store) checkTransition(ctx context.Context, res sql.Result, id string, to Status) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: job %s is %s, cannot become %s", ErrInvalidTransition, id, job.Status, to)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
