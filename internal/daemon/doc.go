// Package daemon hosts the captionburn HTTP service.
//
// The daemon acquires a flock-based lock in the log directory so only one
// instance runs per configuration, then serves:
//
//   - POST /process-video: multipart upload of a video plus JSON captions
//   - GET /outputs/<file>: finished videos
//   - GET /api/jobs, /api/jobs/<id>, /api/status: job history and health,
//     behind bearer authentication when paths.api_token is set
//   - GET /metrics: Prometheus scrape endpoint when metrics are enabled
//
// Every request carries an X-Request-ID that is echoed back and attached to
// log lines and job records.
package daemon
