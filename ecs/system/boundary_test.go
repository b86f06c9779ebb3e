package system

import (
	"testing"

	"github.com/jakecoffman/cp"
)

func TestBoundaryRebuild(t *testing.T) {
	space := cp.NewSpace()
	b := NewBoundaries(space, 0.3, 0.2)

	layouts := []Layout{
		{Width: 800, Height: 600, Thickness: 100, TopOffset: 250, BottomOffset: 18.75},
		{Width: 400, Height: 700, Thickness: 100, TopOffset: 150, BottomOffset: 12.5},
		{Width: 1920, Height: 1080, Thickness: 100, TopOffset: 250, BottomOffset: 18.75},
	}

	var previous [sideCount]*cp.Body
	for i, l := range layouts {
		b.Rebuild(l)
		if got := b.Count(); got != 4 {
			t.Fatalf("rebuild %d: expected 4 walls, got %d", i, got)
		}
		for side, old := range previous {
			if old != nil && space.ContainsBody(old) {
				t.Fatalf("rebuild %d: old %s wall still in space", i, Side(side))
			}
		}
		walls := l.Walls()
		for side := Side(0); side < sideCount; side++ {
			pos := b.Body(side).Position()
			if pos.X != walls[side].CenterX || pos.Y != walls[side].CenterY {
				t.Fatalf("rebuild %d: %s at %v, want (%v, %v)", i, side, pos, walls[side].CenterX, walls[side].CenterY)
			}
			previous[side] = b.Body(side)
		}
	}

	b.Remove()
	b.Remove()
	if b.Count() != 0 {
		t.Fatalf("expected no walls after remove, got %d", b.Count())
	}
}

func TestLayoutWalls(t *testing.T) {
	l := Layout{Width: 800, Height: 600, Thickness: 100, TopOffset: 250, BottomOffset: 20}
	w := l.Walls()

	cases := []struct {
		side Side
		want Wall
	}{
		{SideLeft, Wall{CenterX: -50, CenterY: 300, Width: 100, Height: 600}},
		{SideRight, Wall{CenterX: 850, CenterY: 300, Width: 100, Height: 600}},
		{SideTop, Wall{CenterX: 400, CenterY: -300, Width: 1000, Height: 100}},
		{SideBottom, Wall{CenterX: 400, CenterY: 670, Width: 1000, Height: 100}},
	}
	for _, c := range cases {
		t.Run(c.side.String(), func(t *testing.T) {
			if w[c.side] != c.want {
				t.Fatalf("got %+v want %+v", w[c.side], c.want)
			}
		})
	}
}
