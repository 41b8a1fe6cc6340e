package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ProcessVideoResponse is returned by POST /process-video on success.
type ProcessVideoResponse struct {
	URL   string `json:"url"`
	JobID string `json:"jobId"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Job describes a burn job in a transport-friendly format.
type Job struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	VideoName    string  `json:"videoName,omitempty"`
	OutputPath   string  `json:"outputPath,omitempty"`
	OutputURL    string  `json:"outputUrl,omitempty"`
	ActiveColor  string  `json:"activeColor,omitempty"`
	SpanCount    int     `json:"spanCount"`
	EventCount   int     `json:"eventCount"`
	ErrorKind    string  `json:"errorKind,omitempty"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
	RequestID    string  `json:"requestId,omitempty"`
	CreatedAt    string  `json:"createdAt,omitempty"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
	StartedAt    string  `json:"startedAt,omitempty"`
	FinishedAt   string  `json:"finishedAt,omitempty"`
	ElapsedSec   float64 `json:"elapsedSeconds,omitempty"`
}

// JobListResponse wraps a collection of jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult reports a directory or font check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running        bool               `json:"running"`
	PID            int                `json:"pid"`
	StartedAt      string             `json:"startedAt,omitempty"`
	UptimeSec      float64            `json:"uptimeSeconds"`
	JobsDBPath     string             `json:"jobsDbPath"`
	LockFilePath   string             `json:"lockFilePath"`
	FontFamily     string             `json:"fontFamily"`
	DefaultColor   string             `json:"defaultActiveColor"`
	MetricsEnabled bool               `json:"metricsEnabled"`
	JobCounts      map[string]int     `json:"jobCounts"`
	Dependencies   []DependencyStatus `json:"dependencies"`
	Checks         []CheckResult      `json:"checks"`
}
