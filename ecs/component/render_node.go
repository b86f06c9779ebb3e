package component

import (
	"image/color"

	"github.com/milk9111/shapefall/shapes"
)

// RenderNode is the drawable side of a shape: a closed local outline
// filled with one colour.
type RenderNode struct {
	Outline []shapes.Point
	Fill    color.NRGBA
	Alpha   float64
	Visible bool
}

// Draw rebuilds the node from s, replacing any previous outline and fill.
func (n *RenderNode) Draw(s *shapes.Shape) {
	if n == nil {
		return
	}
	if s == nil {
		n.Outline = nil
		n.Visible = false
		return
	}
	n.Outline = s.Outline()
	n.Fill = s.Color
	n.Visible = len(n.Outline) >= 3
}

var RenderNodeComponent = NewComponent[RenderNode]()
