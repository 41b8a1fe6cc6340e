package subtitles

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"captionburn/internal/services"
)

// Span is one timed caption block. Text holds space-delimited words; times are
// absolute seconds from the start of the video.
type Span struct {
	Text      string  `json:"text" yaml:"text"`
	StartTime float64 `json:"startTime" yaml:"startTime"`
	EndTime   float64 `json:"endTime" yaml:"endTime"`
}

// Duration returns the length of the span in seconds.
func (s Span) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Words splits caption text on single spaces. Runs of spaces yield empty
// words, which ValidateSpans rejects.
func Words(text string) []string {
	return strings.Split(text, " ")
}

// ValidationError reports the first span that cannot be compiled.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "captions: " + e.Reason
	}
	return fmt.Sprintf("caption %d: %s", e.Index, e.Reason)
}

// Unwrap ties every ValidationError to services.ErrValidation.
func (e *ValidationError) Unwrap() error {
	return services.ErrValidation
}

// reservedChars open or escape override blocks, or end a Dialogue line.
const reservedChars = "{}\\\n\r"

// ValidateSpans checks every span before compilation. Override-syntax
// characters are rejected rather than escaped because renderers disagree on
// escape sequences inside dialogue text.
func ValidateSpans(spans []Span) error {
	if len(spans) == 0 {
		return &ValidationError{Index: -1, Reason: "at least one caption is required"}
	}
	for i, span := range spans {
		if err := validateSpan(span); err != nil {
			return &ValidationError{Index: i, Reason: err.Error()}
		}
	}
	return nil
}

func validateSpan(span Span) error {
	for _, v := range []float64{span.StartTime, span.EndTime} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("times must be finite numbers")
		}
	}
	if span.StartTime < 0 {
		return fmt.Errorf("startTime %.3f is negative", span.StartTime)
	}
	if span.EndTime <= span.StartTime {
		return fmt.Errorf("endTime %.3f must be greater than startTime %.3f", span.EndTime, span.StartTime)
	}
	if span.Text == "" {
		return errors.New("text is empty")
	}
	if idx := strings.IndexAny(span.Text, reservedChars); idx >= 0 {
		return fmt.Errorf("text contains reserved character %q", span.Text[idx])
	}
	for pos, word := range Words(span.Text) {
		if word == "" {
			return fmt.Errorf("word %d is empty (leading, trailing, or repeated space)", pos)
		}
	}
	return nil
}
