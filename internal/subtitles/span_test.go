package subtitles

import (
	"errors"
	"math"
	"strings"
	"testing"

	"captionburn/internal/services"
)

func TestWordsSplitsOnSingleSpaces(t *testing.T) {
	got := Words("Hello,  world!")
	want := []string{"Hello,", "", "world!"}
	if len(got) != len(want) {
		t.Fatalf("expected %d words, got %d (%q)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestValidateSpansRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		spans []Span
		want  string
	}{
		{"empty list", nil, "at least one caption"},
		{"zero duration", []Span{{Text: "hi", StartTime: 1, EndTime: 1}}, "greater than startTime"},
		{"negative duration", []Span{{Text: "hi", StartTime: 2, EndTime: 1}}, "greater than startTime"},
		{"negative start", []Span{{Text: "hi", StartTime: -1, EndTime: 1}}, "negative"},
		{"nan", []Span{{Text: "hi", StartTime: 0, EndTime: math.NaN()}}, "finite"},
		{"empty text", []Span{{Text: "", StartTime: 0, EndTime: 1}}, "text is empty"},
		{"double space", []Span{{Text: "a  b", StartTime: 0, EndTime: 1}}, "word 1 is empty"},
		{"trailing space", []Span{{Text: "a ", StartTime: 0, EndTime: 1}}, "word 1 is empty"},
		{"brace", []Span{{Text: "a {b}", StartTime: 0, EndTime: 1}}, "reserved character"},
		{"backslash", []Span{{Text: `a\Nb`, StartTime: 0, EndTime: 1}}, "reserved character"},
		{"newline", []Span{{Text: "a\nb", StartTime: 0, EndTime: 1}}, "reserved character"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSpans(tc.spans)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidateSpansReportsIndex(t *testing.T) {
	err := ValidateSpans([]Span{
		{Text: "ok", StartTime: 0, EndTime: 1},
		{Text: "bad", StartTime: 3, EndTime: 2},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Index != 1 {
		t.Fatalf("expected index 1, got %d", verr.Index)
	}
	if !strings.HasPrefix(err.Error(), "caption 1:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestStyleValidate(t *testing.T) {
	cases := []struct {
		name  string
		style Style
		ok    bool
	}{
		{"default", DefaultStyle("Lilita One", "&H00FF00"), true},
		{"any colour token", DefaultStyle("Lilita One", "not-a-colour"), true},
		{"empty font", DefaultStyle(" ", "&H00FF00"), false},
		{"comma font", DefaultStyle("A,B", "&H00FF00"), false},
		{"zero size", Style{FontFamily: "A", ActiveColor: "&H00FF00"}, false},
		{"empty colour", DefaultStyle("A", ""), false},
		{"brace colour", DefaultStyle("A", "&H00FF00}"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.style.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
