// Package jobs records burn job history in SQLite.
//
// Each request becomes a row that moves from pending to running and ends as
// succeeded or failed. The store backs the /api/jobs endpoints and the
// `captionburn jobs` command; it is not a work queue, jobs run as soon as
// they are submitted.
package jobs
