package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTranscriptText returns s in Unicode NFC with surrounding
// whitespace removed. Provider text and word tokens pass through it so that
// composed and decomposed forms of the same character compare equal during
// alignment.
func NormalizeTranscriptText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
