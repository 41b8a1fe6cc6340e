// Package preflight verifies directories, the caption font, and external
// binaries before the daemon accepts work.
package preflight
