package common

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"inside", 2.5, 0, 5, 2.5},
		{"below", -1, 0, 5, 0},
		{"above", 9, 0, 5, 5},
		{"edge", 5, 0, 5, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Clamp(c.v, c.lo, c.hi); got != c.want {
				t.Fatalf("Clamp(%v) = %v, want %v", c.v, got, c.want)
			}
		})
	}
	if got := Clamp(12, 1, 10); got != 10 {
		t.Fatalf("int clamp = %d", got)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(520, 880, 0.5); got != 700 {
		t.Fatalf("Lerp = %v", got)
	}
	if got := Lerp(3, 7, 0); got != 3 {
		t.Fatalf("Lerp at 0 = %v", got)
	}
}
