// Package subtitles compiles timed caption spans into an ASS subtitle script
// with per-word highlighting.
//
// Each caption span is divided into equal word slots. For every word the
// compiler emits one Dialogue event covering that slot, rendering the whole
// caption with the active word wrapped in bold and colour override codes. The
// script declares exactly two styles, Default and Highlight, sharing one font.
//
// Compilation is pure: it performs no I/O, holds no shared state, and returns
// byte-identical output for identical input. Malformed captions are rejected
// with a *ValidationError (which matches services.ErrValidation) instead of
// producing a partial track. Overlapping spans are compiled independently;
// layering them is left to the renderer.
package subtitles
