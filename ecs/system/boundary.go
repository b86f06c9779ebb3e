package system

import (
	"github.com/jakecoffman/cp"
)

// Side names one playfield wall.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
	sideCount
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	}
	return "unknown"
}

// Wall is the box backing one side, in world pixels.
type Wall struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
}

// Layout places the four walls around a W×H view. topOffset is how far
// above y=0 the top wall's lower face sits; bottomOffset is how far below H
// the floor's upper face sits.
type Layout struct {
	Width        float64
	Height       float64
	Thickness    float64
	TopOffset    float64
	BottomOffset float64
}

// Walls computes the wall boxes for the layout.
func (l Layout) Walls() [sideCount]Wall {
	t := l.Thickness
	span := l.Width + 2*t
	var walls [sideCount]Wall
	walls[SideLeft] = Wall{CenterX: -t / 2, CenterY: l.Height / 2, Width: t, Height: l.Height}
	walls[SideRight] = Wall{CenterX: l.Width + t/2, CenterY: l.Height / 2, Width: t, Height: l.Height}
	walls[SideTop] = Wall{CenterX: l.Width / 2, CenterY: -l.TopOffset - t/2, Width: span, Height: t}
	walls[SideBottom] = Wall{CenterX: l.Width / 2, CenterY: l.Height + l.BottomOffset + t/2, Width: span, Height: t}
	return walls
}

// Boundaries keeps four static bodies congruent with the viewport. The
// bodies are never entities.
type Boundaries struct {
	space      *cp.Space
	friction   float64
	elasticity float64
	layout     Layout
	bodies     [sideCount]*cp.Body
	shapes     [sideCount]*cp.Shape
}

func NewBoundaries(space *cp.Space, friction, elasticity float64) *Boundaries {
	return &Boundaries{space: space, friction: friction, elasticity: elasticity}
}

// Rebuild removes the current walls and adds four new ones for l.
func (b *Boundaries) Rebuild(l Layout) {
	if b == nil || b.space == nil {
		return
	}
	b.Remove()
	for side, wall := range l.Walls() {
		body := cp.NewStaticBody()
		body.SetPosition(cp.Vector{X: wall.CenterX, Y: wall.CenterY})
		shape := cp.NewBox(body, wall.Width, wall.Height, 0)
		shape.SetFriction(b.friction)
		shape.SetElasticity(b.elasticity)
		b.space.AddBody(body)
		b.space.AddShape(shape)
		b.bodies[side] = body
		b.shapes[side] = shape
	}
	b.layout = l
}

// Remove takes every wall out of the space. Safe to call repeatedly.
func (b *Boundaries) Remove() {
	if b == nil {
		return
	}
	for side := range b.bodies {
		if b.space != nil {
			if s := b.shapes[side]; s != nil && b.space.ContainsShape(s) {
				b.space.RemoveShape(s)
			}
			if body := b.bodies[side]; body != nil && b.space.ContainsBody(body) {
				b.space.RemoveBody(body)
			}
		}
		b.bodies[side] = nil
		b.shapes[side] = nil
	}
}

// Count is the number of walls currently in the space.
func (b *Boundaries) Count() int {
	if b == nil || b.space == nil {
		return 0
	}
	n := 0
	for _, body := range b.bodies {
		if body != nil && b.space.ContainsBody(body) {
			n++
		}
	}
	return n
}

func (b *Boundaries) Body(side Side) *cp.Body {
	if b == nil || side < 0 || side >= sideCount {
		return nil
	}
	return b.bodies[side]
}

func (b *Boundaries) Layout() Layout {
	if b == nil {
		return Layout{}
	}
	return b.layout
}
