package ssa

import (
	"fmt"
	"strings"
)

var textEscaper = strings.NewReplacer(
	"\r\n", `\N`,
	"\n", `\N`,
	"{", "{{",
	"}", "}}",
)

// EscapeText prepares cue text for a Dialogue line: real newlines become the
// hard break \N and braces are doubled so they cannot open an override block.
// It must run before override blocks are prepended.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// FormatTime renders milliseconds as H:MM:SS.CC. Hours are not padded or
// bounded. Negative values clamp to zero.
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	centis := (ms % 1000) / 10
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}
