package ssa

import (
	"strings"
)

// HexToColor converts "#RRGGBB" or "#AARRGGBB" into an SSA colour literal
// ("&HBBGGRR&" or "&HAABBGGRR&"). The second result is false when the input
// is empty, lacks the leading '#', has the wrong length or holds non-hex
// digits; callers then omit the colour override.
func HexToColor(hex string) (string, bool) {
	digits, ok := strings.CutPrefix(hex, "#")
	if !ok || !isHex(digits) {
		return "", false
	}
	digits = strings.ToUpper(digits)
	switch len(digits) {
	case 6:
		r, g, b := digits[0:2], digits[2:4], digits[4:6]
		return "&H" + b + g + r + "&", true
	case 8:
		a, r, g, b := digits[0:2], digits[2:4], digits[4:6], digits[6:8]
		return "&H" + a + b + g + r + "&", true
	default:
		return "", false
	}
}

// ColorToHex is the inverse of HexToColor.
func ColorToHex(token string) (string, bool) {
	body, ok := strings.CutPrefix(token, "&H")
	if !ok {
		return "", false
	}
	body, ok = strings.CutSuffix(body, "&")
	if !ok || !isHex(body) {
		return "", false
	}
	body = strings.ToUpper(body)
	switch len(body) {
	case 6:
		b, g, r := body[0:2], body[2:4], body[4:6]
		return "#" + r + g + b, true
	case 8:
		a, b, g, r := body[0:2], body[2:4], body[4:6], body[6:8]
		return "#" + a + r + g + b, true
	default:
		return "", false
	}
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
