package subtitles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// DecodeJSON parses a JSON array of caption spans. Unknown fields are rejected.
// Text is normalized to NFC so combining sequences reach the renderer as
// composed glyphs.
func DecodeJSON(r io.Reader) ([]Span, error) {
	var spans []Span
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spans); err != nil {
		return nil, &ValidationError{Index: -1, Reason: fmt.Sprintf("malformed caption JSON: %v", err)}
	}
	if dec.More() {
		return nil, &ValidationError{Index: -1, Reason: "malformed caption JSON: trailing data after array"}
	}
	return normalizeSpans(spans), nil
}

// DecodeYAML parses a YAML sequence of caption spans using the same field
// names as the JSON form.
func DecodeYAML(r io.Reader) ([]Span, error) {
	var spans []Span
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spans); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Index: -1, Reason: "caption YAML is empty"}
		}
		return nil, &ValidationError{Index: -1, Reason: fmt.Sprintf("malformed caption YAML: %v", err)}
	}
	return normalizeSpans(spans), nil
}

// ParseJSONString decodes the multipart "captions" form value.
func ParseJSONString(payload string) ([]Span, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, &ValidationError{Index: -1, Reason: "captions field is required"}
	}
	return DecodeJSON(strings.NewReader(payload))
}

// LoadFile reads captions from disk, choosing the decoder by extension
// (.yaml/.yml, everything else as JSON).
func LoadFile(path string) ([]Span, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(data))
	default:
		return DecodeJSON(bytes.NewReader(data))
	}
}

func normalizeSpans(spans []Span) []Span {
	for i := range spans {
		spans[i].Text = norm.NFC.String(spans[i].Text)
	}
	return spans
}
