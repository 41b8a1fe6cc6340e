package testsupport

import "captionburn/internal/subtitles"

// SampleSpans returns two short caption spans.
func SampleSpans() []subtitles.Span {
	return []subtitles.Span{
		{Text: "Hello world", StartTime: 0, EndTime: 2},
		{Text: "again", StartTime: 2, EndTime: 3.5},
	}
}

// SampleCaptionsJSON is SampleSpans in the upload wire format.
const SampleCaptionsJSON = `[{"text":"Hello world","startTime":0,"endTime":2},{"text":"again","startTime":2,"endTime":3.5}]`
