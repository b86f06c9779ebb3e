package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores the Chipmunk2D body and collider backing one shape.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Mass       float64
	Friction   float64
	Elasticity float64
	// Fallback is set when the hull was degenerate and a default triangle
	// was used instead.
	Fallback bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
