// Package transcode burns an ASS subtitle track into a video with ffmpeg.
//
// Runner.Start launches one ffmpeg process per request and returns a Task.
// Tasks move through Pending, Running, and exactly one of Succeeded or
// Failed. Observers see a start event carrying the command line, one event
// per stderr line, and a single terminal event. Failures are never retried.
package transcode
