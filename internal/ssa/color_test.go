package ssa

import (
	"fmt"
	"strings"
	"testing"
)

func TestHexToColor(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"#112233", "&H332211&", true},
		{"#ff0000", "&H0000FF&", true},
		{"#FF0000", "&H0000FF&", true},
		{"#80112233", "&H80332211&", true},
		{"112233", "", false},
		{"", "", false},
		{"#12345", "", false},
		{"#1122334", "", false},
		{"#GG2233", "", false},
		{"#", "", false},
	}
	for _, tt := range tests {
		got, ok := HexToColor(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("HexToColor(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestColorRoundTrip(t *testing.T) {
	for _, v := range []int{0x000000, 0x112233, 0xabcdef, 0xFF00FF, 0x7f7f7f, 0xFFFFFF} {
		for _, hex := range []string{fmt.Sprintf("#%06x", v), fmt.Sprintf("#%06X", v)} {
			token, ok := HexToColor(hex)
			if !ok {
				t.Fatalf("HexToColor(%q) failed", hex)
			}
			back, ok := ColorToHex(token)
			if !ok {
				t.Fatalf("ColorToHex(%q) failed", token)
			}
			if back != strings.ToUpper(hex) {
				t.Fatalf("round trip %q -> %q -> %q", hex, token, back)
			}
		}
	}
}

func TestColorToHexRejectsMalformed(t *testing.T) {
	for _, token := range []string{"", "&H332211", "H332211&", "&H3322&", "&HXX2211&"} {
		if _, ok := ColorToHex(token); ok {
			t.Errorf("ColorToHex(%q) unexpectedly succeeded", token)
		}
	}
}
