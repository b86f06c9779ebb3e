package component

import "github.com/milk9111/shapefall/shapes"

// Shape wraps the geometry model of a registry entry.
type Shape struct {
	*shapes.Shape
}

var ShapeComponent = NewComponent[Shape]()
