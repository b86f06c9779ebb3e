package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
)

const outlineWidth = 1.5

// RenderSystem fills each render node as a triangle fan around its origin.
// Every outline in use is star-shaped about the origin, so a centre fan
// covers concave stars too.
type RenderSystem struct {
	white *ebiten.Image
	verts []ebiten.Vertex
	inds  []uint16

	Outline      bool
	OutlineColor color.NRGBA
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{
		Outline:      true,
		OutlineColor: color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
	}
}

func (r *RenderSystem) whitePixel() *ebiten.Image {
	if r.white == nil {
		r.white = ebiten.NewImage(1, 1)
		r.white.Fill(color.White)
	}
	return r.white
}

// Draw paints entities in the given order, so later entries end up on top.
func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image, order []ecs.Entity) {
	if r == nil || w == nil || screen == nil {
		return
	}
	for _, e := range order {
		node, ok := ecs.Get(w, e, component.RenderNodeComponent.Kind())
		if !ok || !node.Visible || node.Alpha <= 0 {
			continue
		}
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		r.drawNode(screen, node, t)
	}
}

func (r *RenderSystem) drawNode(screen *ebiten.Image, node *component.RenderNode, t *component.Transform) {
	n := len(node.Outline)
	if n < 3 {
		return
	}
	sin, cos := math.Sincos(t.Rotation)
	world := func(i int) (float32, float32) {
		p := node.Outline[i%n]
		return float32(t.X + p.X*cos - p.Y*sin), float32(t.Y + p.X*sin + p.Y*cos)
	}

	cr := float32(node.Fill.R) / 0xff
	cg := float32(node.Fill.G) / 0xff
	cb := float32(node.Fill.B) / 0xff
	ca := float32(node.Fill.A) / 0xff * float32(node.Alpha)

	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	r.verts = append(r.verts, ebiten.Vertex{
		DstX: float32(t.X), DstY: float32(t.Y),
		ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
	})
	for i := 0; i < n; i++ {
		x, y := world(i)
		r.verts = append(r.verts, ebiten.Vertex{
			DstX: x, DstY: y,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		})
		next := uint16(i+1)%uint16(n) + 1
		r.inds = append(r.inds, 0, uint16(i+1), next)
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	screen.DrawTriangles(r.verts, r.inds, r.whitePixel(), op)

	if !r.Outline {
		return
	}
	oc := r.OutlineColor
	oc.A = uint8(float64(oc.A) * node.Alpha)
	for i := 0; i < n; i++ {
		x0, y0 := world(i)
		x1, y1 := world(i + 1)
		vector.StrokeLine(screen, x0, y0, x1, y1, outlineWidth, oc, true)
	}
}
