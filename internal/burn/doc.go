// Package burn orchestrates a caption burn job.
//
// Processor.Process validates the caption spans, checks the font, compiles
// and writes the ASS track into the uploads directory, runs ffmpeg, and
// records the outcome in job history, metrics, and notifications. Validation
// happens before anything touches disk.
package burn
