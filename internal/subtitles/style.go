package subtitles

import (
	"fmt"
	"strings"
)

const (
	// DefaultFontSize is the point size used by both generated styles.
	DefaultFontSize = 36

	// StyleDefault names the plain white style every event is assigned to.
	StyleDefault = "Default"
	// StyleHighlight names the bold, coloured style declared for the active word.
	StyleHighlight = "Highlight"
)

// Style carries the parameters that apply to the whole generated track.
// ActiveColor is passed through verbatim in the renderer's native encoding
// (e.g. "&H00FF00").
type Style struct {
	FontFamily  string
	FontSize    int
	ActiveColor string
}

// DefaultStyle returns a style at the standard font size.
func DefaultStyle(fontFamily, activeColor string) Style {
	return Style{FontFamily: fontFamily, FontSize: DefaultFontSize, ActiveColor: activeColor}
}

// Validate rejects values that would corrupt the comma-separated Style lines
// or the inline override block.
func (s Style) Validate() error {
	if strings.TrimSpace(s.FontFamily) == "" {
		return &ValidationError{Index: -1, Reason: "font family is required"}
	}
	if strings.ContainsAny(s.FontFamily, ",\n\r") {
		return &ValidationError{Index: -1, Reason: fmt.Sprintf("font family %q must not contain commas or line breaks", s.FontFamily)}
	}
	if s.FontSize <= 0 {
		return &ValidationError{Index: -1, Reason: "font size must be positive"}
	}
	if strings.TrimSpace(s.ActiveColor) == "" {
		return &ValidationError{Index: -1, Reason: "active colour is required"}
	}
	if strings.ContainsAny(s.ActiveColor, ","+reservedChars) {
		return &ValidationError{Index: -1, Reason: fmt.Sprintf("active colour %q contains reserved characters", s.ActiveColor)}
	}
	return nil
}
