package transcode

import "strings"

// escapeFilterValue escapes a value for use as a filter option inside a
// filtergraph: once for the option parser, once for the graph parser.
func escapeFilterValue(value string) string {
	return escapeChars(escapeChars(value, `\':`), `\'[],;`)
}

func escapeChars(value, special string) string {
	if !strings.ContainsAny(value, special) {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 8)
	for _, r := range value {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// subtitleFilter builds the -vf argument that overlays the ASS track. The
// path is referenced exactly as written so the renderer reads the same file.
func subtitleFilter(subtitlePath, fontsDir string) string {
	filter := "ass=" + escapeFilterValue(subtitlePath)
	if strings.TrimSpace(fontsDir) != "" {
		filter += ":fontsdir=" + escapeFilterValue(fontsDir)
	}
	return filter
}
