// Package api defines the wire-format types of the captionburn HTTP API and
// a small client used by the CLI.
//
// DTOs use camelCase JSON tags. Job statuses are exposed as lowercase strings
// and timestamps use RFC3339 with milliseconds. The upload response keeps the
// {"url", "jobId"} shape so existing front ends continue to work.
package api
