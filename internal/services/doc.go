// Package services defines shared utilities consumed by the burn pipeline and
// the HTTP daemon.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent HTTP statuses and job failure kinds.
package services
