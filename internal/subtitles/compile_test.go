package subtitles

import (
	"math"
	"strings"
	"testing"
)

const tolerance = 1e-9

var testStyle = DefaultStyle("Lilita One", "&H00FF00")

func dialogueLines(t *testing.T, script string) []string {
	t.Helper()
	var out []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(line, "Dialogue: ") {
			out = append(out, line)
		}
	}
	return out
}

func TestCompileSingleWord(t *testing.T) {
	script, err := Compile([]Span{{Text: "Hello", StartTime: 0, EndTime: 2}}, testStyle)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	lines := dialogueLines(t, script)
	if len(lines) != 1 {
		t.Fatalf("expected 1 dialogue line, got %d", len(lines))
	}
	want := `Dialogue: 0,00:00:00.00,00:00:02.00,Default,,0,0,0,,{\1c&H00FF00\b1}Hello{\b0\1c&HFFFFFF&}`
	if lines[0] != want {
		t.Fatalf("unexpected line:\n got %s\nwant %s", lines[0], want)
	}
}

func TestCompileTwoWords(t *testing.T) {
	script, err := Compile([]Span{{Text: "Hello World", StartTime: 0, EndTime: 2}}, testStyle)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	lines := dialogueLines(t, script)
	want := []string{
		`Dialogue: 0,00:00:00.00,00:00:01.00,Default,,0,0,0,,{\1c&H00FF00\b1}Hello{\b0\1c&HFFFFFF&} World`,
		`Dialogue: 0,00:00:01.00,00:00:02.00,Default,,0,0,0,,Hello {\1c&H00FF00\b1}World{\b0\1c&HFFFFFF&}`,
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d:\n got %s\nwant %s", i, lines[i], want[i])
		}
	}
}

func TestBuildEventsSlotsAreContiguous(t *testing.T) {
	spans := []Span{{Text: "one two three four five six seven", StartTime: 1.37, EndTime: 9.91}}
	events, err := BuildEvents(spans, testStyle)
	if err != nil {
		t.Fatalf("BuildEvents: %v", err)
	}
	if len(events) != 7 {
		t.Fatalf("expected 7 events, got %d", len(events))
	}
	if math.Abs(events[0].Start-spans[0].StartTime) > tolerance {
		t.Fatalf("first word should start at span start, got %v", events[0].Start)
	}
	if math.Abs(events[len(events)-1].End-spans[0].EndTime) > tolerance {
		t.Fatalf("last word should end at span end, got %v", events[len(events)-1].End)
	}
	for i := 0; i < len(events)-1; i++ {
		if math.Abs(events[i].End-events[i+1].Start) > tolerance {
			t.Fatalf("gap between word %d and %d: %v vs %v", i, i+1, events[i].End, events[i+1].Start)
		}
	}
	for _, ev := range events {
		if ev.Layer != 0 || ev.Style != StyleDefault {
			t.Fatalf("unexpected layer/style: %+v", ev)
		}
	}
}

func TestBuildEventsPreservesSpanAndWordOrder(t *testing.T) {
	spans := []Span{
		{Text: "a b", StartTime: 0, EndTime: 1},
		{Text: "c", StartTime: 1, EndTime: 2},
		{Text: "d e f", StartTime: 0.5, EndTime: 3.5},
	}
	events, err := BuildEvents(spans, testStyle)
	if err != nil {
		t.Fatalf("BuildEvents: %v", err)
	}
	wantActive := []string{"a", "b", "c", "d", "e", "f"}
	if len(events) != len(wantActive) {
		t.Fatalf("expected %d events, got %d", len(wantActive), len(events))
	}
	for i, word := range wantActive {
		marker := `\b1}` + word + `{\b0`
		if !strings.Contains(events[i].Text, marker) {
			t.Fatalf("event %d should highlight %q: %s", i, word, events[i].Text)
		}
		if strings.Count(events[i].Text, `\b1}`) != 1 {
			t.Fatalf("event %d should highlight exactly one word: %s", i, events[i].Text)
		}
	}
	if events[3].Start != 0.5 {
		t.Fatalf("overlapping span should keep its own timing, got %v", events[3].Start)
	}
}

func TestCompileMiddleWordHasBothSegments(t *testing.T) {
	events, err := BuildEvents([]Span{{Text: "x y z", StartTime: 0, EndTime: 3}}, testStyle)
	if err != nil {
		t.Fatalf("BuildEvents: %v", err)
	}
	want := `x {\1c&H00FF00\b1}y{\b0\1c&HFFFFFF&} z`
	if events[1].Text != want {
		t.Fatalf("got %s want %s", events[1].Text, want)
	}
}

func TestCompileHeaderDeclaresTwoStyles(t *testing.T) {
	style := Style{FontFamily: "Roboto Condensed", FontSize: 36, ActiveColor: "&H0000FFFF"}
	script, err := Compile([]Span{{Text: "hi", StartTime: 0, EndTime: 1}}, style)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, section := range []string{"[Script Info]\n", "[V4+ Styles]\n", "[Events]\n", "ScriptType: v4.00+\n"} {
		if !strings.Contains(script, section) {
			t.Fatalf("missing %q in script", section)
		}
	}

	var styles []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(line, "Style: ") {
			styles = append(styles, line)
		}
	}
	if len(styles) != 2 {
		t.Fatalf("expected exactly 2 styles, got %d", len(styles))
	}
	wantDefault := "Style: Default,Roboto Condensed,36,&H00FFFFFF,&H000000FF,&H00000000,&H64000000,0,0,0,0,100,100,0,0,1,1,0,2,10,10,10,1"
	wantHighlight := "Style: Highlight,Roboto Condensed,36,&H0000FFFF,&H000000FF,&H00000000,&H64000000,1,0,0,0,100,100,0,0,1,1,0,2,10,10,10,1"
	if styles[0] != wantDefault {
		t.Fatalf("default style:\n got %s\nwant %s", styles[0], wantDefault)
	}
	if styles[1] != wantHighlight {
		t.Fatalf("highlight style:\n got %s\nwant %s", styles[1], wantHighlight)
	}
	if !strings.Contains(script, `{\1c&H0000FFFF\b1}hi`) {
		t.Fatalf("active colour not substituted into override: %s", script)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	spans := []Span{
		{Text: "The quick brown fox", StartTime: 0.1, EndTime: 2.7},
		{Text: "jumps over", StartTime: 2.7, EndTime: 4.05},
	}
	first, err := Compile(spans, testStyle)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := Compile(spans, testStyle)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if first != second {
		t.Fatal("expected byte-identical output")
	}
	if got := len(dialogueLines(t, first)); got != 6 {
		t.Fatalf("expected 6 dialogue lines, got %d", got)
	}
}

func TestCompileRejectsInvalidInput(t *testing.T) {
	if _, err := Compile([]Span{{Text: "hi", StartTime: 1, EndTime: 0}}, testStyle); err == nil {
		t.Fatal("expected error for inverted span")
	}
	if _, err := Compile([]Span{{Text: "hi", StartTime: 0, EndTime: 1}}, Style{}); err == nil {
		t.Fatal("expected error for empty style")
	}
}
