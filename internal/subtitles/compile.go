package subtitles

import (
	"fmt"
	"strings"
)

const (
	scriptTitle = "Active Word Highlighting"

	styleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"
	eventFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"

	primaryWhite = "&H00FFFFFF"
	// Reset colour written after the active word; the renderer reads it as BGR.
	resetColor = "&HFFFFFF&"
)

// Event is one Dialogue line: a single word's highlight window.
type Event struct {
	Layer int
	Start float64
	End   float64
	Style string
	Text  string
}

// Line renders the event in the Events section field order
// Layer,Start,End,Style,Name,MarginL,MarginR,MarginV,Effect,Text.
func (e Event) Line() string {
	return fmt.Sprintf("Dialogue: %d,%s,%s,%s,,0,0,0,,%s",
		e.Layer, FormatTime(e.Start), FormatTime(e.End), e.Style, e.Text)
}

// Track is a compiled subtitle script.
type Track struct {
	Style  Style
	Events []Event
}

// BuildEvents expands every span into one event per word. A span of N words
// is divided into N equal slots; word i is shown, highlighted, during
// [start + i*d, start + (i+1)*d) with d = duration/N.
func BuildEvents(spans []Span, style Style) ([]Event, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSpans(spans); err != nil {
		return nil, err
	}

	total := 0
	for _, span := range spans {
		total += len(Words(span.Text))
	}
	events := make([]Event, 0, total)

	for _, span := range spans {
		words := Words(span.Text)
		wordDuration := span.Duration() / float64(len(words))
		for i := range words {
			start := span.StartTime + float64(i)*wordDuration
			events = append(events, Event{
				Layer: 0,
				Start: start,
				End:   start + wordDuration,
				Style: StyleDefault,
				Text:  highlightLine(words, i, style.ActiveColor),
			})
		}
	}
	return events, nil
}

// highlightLine joins the words with the one at active wrapped in bold and
// colour overrides that are reverted immediately after it.
func highlightLine(words []string, active int, activeColor string) string {
	var b strings.Builder
	if active > 0 {
		b.WriteString(strings.Join(words[:active], " "))
		b.WriteByte(' ')
	}
	b.WriteString(`{\1c`)
	b.WriteString(activeColor)
	b.WriteString(`\b1}`)
	b.WriteString(words[active])
	b.WriteString(`{\b0\1c`)
	b.WriteString(resetColor)
	b.WriteString(`}`)
	if active < len(words)-1 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(words[active+1:], " "))
	}
	return b.String()
}

// NewTrack validates and compiles spans into a Track.
func NewTrack(spans []Span, style Style) (*Track, error) {
	events, err := BuildEvents(spans, style)
	if err != nil {
		return nil, err
	}
	return &Track{Style: style, Events: events}, nil
}

// String renders the complete script: header, styles, and events.
func (t *Track) String() string {
	var b strings.Builder
	b.Grow(1024 + 96*len(t.Events))

	b.WriteString("[Script Info]\n")
	b.WriteString("Title: " + scriptTitle + "\n")
	b.WriteString("ScriptType: v4.00+\n")
	b.WriteString("Collisions: Normal\n")
	b.WriteString("PlayDepth: 0\n")
	b.WriteString("\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString(styleFormat + "\n")
	b.WriteString(styleLine(StyleDefault, t.Style, primaryWhite, false))
	b.WriteString(styleLine(StyleHighlight, t.Style, t.Style.ActiveColor, true))
	b.WriteString("\n")

	b.WriteString("[Events]\n")
	b.WriteString(eventFormat + "\n")
	for _, event := range t.Events {
		b.WriteString(event.Line())
		b.WriteByte('\n')
	}
	return b.String()
}

func styleLine(name string, style Style, primary string, bold bool) string {
	boldFlag := 0
	if bold {
		boldFlag = 1
	}
	return fmt.Sprintf("Style: %s,%s,%d,%s,&H000000FF,&H00000000,&H64000000,%d,0,0,0,100,100,0,0,1,1,0,2,10,10,10,1\n",
		name, style.FontFamily, style.FontSize, primary, boldFlag)
}

// Compile converts caption spans into a standalone ASS script. It is pure and
// deterministic: identical inputs always produce byte-identical output.
func Compile(spans []Span, style Style) (string, error) {
	track, err := NewTrack(spans, style)
	if err != nil {
		return "", err
	}
	return track.String(), nil
}
