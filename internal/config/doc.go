// Package config loads, normalizes, and validates captionburn configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CAPTIONBURN_API_TOKEN and NTFY_TOPIC. The Config type centralizes the
// directories the daemon writes to, the subtitle style applied to generated
// tracks, and the ffmpeg settings used for burn-in.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
