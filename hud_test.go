package main

import (
	"testing"
	"unicode"
)

func TestHUDLineFitsBasicFont(t *testing.T) {
	h := &HUD{}
	h.PublishStats(2, 7230.36)
	line := h.Line()
	if line != "Shapes: 2  Area: 7230.36 px^2" {
		t.Fatalf("line = %q", line)
	}
	for _, r := range line {
		if r > unicode.MaxASCII || r < 0x20 {
			t.Fatalf("rune %q is outside the HUD font range", r)
		}
	}
}
