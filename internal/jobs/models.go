package jobs

import "time"

// Status is the lifecycle state of a burn job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the job has finished.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ParseStatus converts a user-supplied status name. The second return is
// false for unknown names.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPending, StatusRunning, StatusSucceeded, StatusFailed:
		return Status(value), true
	default:
		return "", false
	}
}

// Job is one recorded burn request.
type Job struct {
	ID           string
	Status       Status
	VideoName    string
	VideoPath    string
	SubtitlePath string
	OutputPath   string
	OutputURL    string
	ActiveColor  string
	SpanCount    int
	EventCount   int
	ErrorKind    string
	ErrorMessage string
	RequestID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Elapsed returns how long the job ran, or zero if it never started.
func (j *Job) Elapsed() time.Duration {
	if j == nil || j.StartedAt.IsZero() {
		return 0
	}
	end := j.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(j.StartedAt)
}

// NewJob describes the fields known when a job is first recorded.
type NewJob struct {
	ID           string
	VideoName    string
	VideoPath    string
	SubtitlePath string
	OutputPath   string
	ActiveColor  string
	SpanCount    int
	EventCount   int
	RequestID    string
}
