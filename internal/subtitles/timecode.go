package subtitles

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as HH:MM:SS.CC with every field zero-padded to two
// digits. Centiseconds are truncated, never rounded: 0.005 renders as
// "00:00:00.00". Negative input clamps to zero.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	h := int64(math.Floor(seconds / 3600))
	m := int64(math.Floor(math.Mod(seconds, 3600) / 60))
	s := int64(math.Floor(math.Mod(seconds, 60)))
	cs := int64(math.Floor(math.Mod(seconds, 1) * 100))
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, s, cs)
}
