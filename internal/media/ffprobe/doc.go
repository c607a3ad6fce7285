// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and returns a Result; VideoDimensions reports the
// displayed resolution the subtitle script must be laid out for, accounting
// for rotation metadata.
package ffprobe
