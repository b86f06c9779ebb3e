package component

// Transform is a render node's placement. Once the node has a body, the
// physics sync is its only writer.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
