package api

import (
	"time"

	"captionburn/internal/deps"
	"captionburn/internal/jobs"
	"captionburn/internal/preflight"
)

// FromJob converts a stored job into its API representation.
func FromJob(job *jobs.Job) Job {
	if job == nil {
		return Job{}
	}
	return Job{
		ID:           job.ID,
		Status:       string(job.Status),
		VideoName:    job.VideoName,
		OutputPath:   job.OutputPath,
		OutputURL:    job.OutputURL,
		ActiveColor:  job.ActiveColor,
		SpanCount:    job.SpanCount,
		EventCount:   job.EventCount,
		ErrorKind:    job.ErrorKind,
		ErrorMessage: job.ErrorMessage,
		RequestID:    job.RequestID,
		CreatedAt:    formatTime(job.CreatedAt),
		UpdatedAt:    formatTime(job.UpdatedAt),
		StartedAt:    formatTime(job.StartedAt),
		FinishedAt:   formatTime(job.FinishedAt),
		ElapsedSec:   job.Elapsed().Seconds(),
	}
}

// FromJobs converts a slice of stored jobs.
func FromJobs(list []*jobs.Job) []Job {
	out := make([]Job, 0, len(list))
	for _, job := range list {
		if job == nil {
			continue
		}
		out = append(out, FromJob(job))
	}
	return out
}

// FromDependencies converts dependency statuses.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

// FromChecks converts preflight results.
func FromChecks(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, len(results))
	for i, r := range results {
		out[i] = CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail}
	}
	return out
}

// JobCounts converts per-status counts into a map with every status present.
func JobCounts(counts map[jobs.Status]int) map[string]int {
	out := map[string]int{
		string(jobs.StatusPending):   0,
		string(jobs.StatusRunning):   0,
		string(jobs.StatusSucceeded): 0,
		string(jobs.StatusFailed):    0,
	}
	for status, n := range counts {
		out[string(status)] += n
	}
	return out
}

// ParseTime reads a timestamp produced by this package.
func ParseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateTimeFormat, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
