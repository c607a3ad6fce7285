package textutil

import (
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxFileNameBytes keeps downloaded names well under common filesystem
// limits once the job directory is prefixed.
const maxFileNameBytes = 120

// SanitizeFileName makes name safe to create inside a job directory.
// Path separators, colons and asterisks become dashes; shell-hostile
// punctuation and control runes are dropped. Leading dots are removed so the
// result is never hidden and never a parent reference.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			return '-'
		case strings.ContainsRune(`?"<>|`, r) || unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	return strings.TrimSpace(strings.TrimLeft(cleaned, "."))
}

// FileNameFromURL derives a local file name for a download from the last
// path segment of raw. Names without an extension borrow fallback's
// extension; unusable URLs yield fallback itself.
func FileNameFromURL(raw, fallback string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return fallback
	}
	name := SanitizeFileName(base)
	if name == "" {
		return fallback
	}
	if path.Ext(name) == "" {
		name += path.Ext(fallback)
	}
	return truncateStem(name, maxFileNameBytes)
}

// truncateStem shortens name to at most limit bytes, keeping its extension
// and never splitting a rune.
func truncateStem(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	ext := path.Ext(name)
	stem := name[:len(name)-len(ext)]
	keep := limit - len(ext)
	for keep > 0 && !utf8.RuneStart(stem[keep]) {
		keep--
	}
	return stem[:keep] + ext
}
