package system

import (
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/shapefall/common"
	"github.com/milk9111/shapefall/config"
	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
	"github.com/milk9111/shapefall/shapes"
)

const (
	MinGravity = 0.0
	MaxGravity = 5.0
)

// PhysicsSystem owns the Chipmunk space. It steps the space once per tick
// and mirrors every body's position and angle onto its entity transform.
type PhysicsSystem struct {
	space   *cp.Space
	spec    config.PhysicsSpec
	gravity float64
	bodies  map[ecs.Entity]*component.PhysicsBody
	debug   bool
}

func NewPhysicsSystem(spec config.PhysicsSpec) (*PhysicsSystem, error) {
	if spec.Timestep <= 0 || math.IsNaN(spec.Timestep) {
		return nil, fmt.Errorf("physics: new system: %w", config.ErrBadTimestep)
	}
	if spec.Iterations <= 0 {
		spec.Iterations = 10
	}
	if spec.GravityScale <= 0 {
		spec.GravityScale = 1000
	}

	space := cp.NewSpace()
	space.Iterations = uint(spec.Iterations)
	ps := &PhysicsSystem{
		space:  space,
		spec:   spec,
		bodies: make(map[ecs.Entity]*component.PhysicsBody),
	}
	ps.SetGravity(spec.Gravity)
	return ps, nil
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// SetDebug enables logging of hull fallbacks.
func (ps *PhysicsSystem) SetDebug(on bool) {
	if ps != nil {
		ps.debug = on
	}
}

// Timestep is the fixed virtual step in seconds.
func (ps *PhysicsSystem) Timestep() float64 {
	if ps == nil {
		return 0
	}
	return ps.spec.Timestep
}

// SetSpec applies reloaded tunables. Existing bodies keep their material.
func (ps *PhysicsSystem) SetSpec(spec config.PhysicsSpec) {
	if ps == nil || spec.Timestep <= 0 {
		return
	}
	if spec.Iterations <= 0 {
		spec.Iterations = ps.spec.Iterations
	}
	if spec.GravityScale <= 0 {
		spec.GravityScale = ps.spec.GravityScale
	}
	ps.spec = spec
	if ps.space != nil {
		ps.space.Iterations = uint(spec.Iterations)
	}
	ps.SetGravity(ps.gravity)
}

// SetGravity clamps v to [MinGravity, MaxGravity]; the space picks it up on
// the next step.
func (ps *PhysicsSystem) SetGravity(v float64) {
	if ps == nil {
		return
	}
	ps.gravity = ClampGravity(v)
	if ps.space != nil {
		ps.space.SetGravity(cp.Vector{X: 0, Y: ps.gravity * ps.spec.GravityScale})
	}
}

func (ps *PhysicsSystem) Gravity() float64 {
	if ps == nil {
		return 0
	}
	return ps.gravity
}

func ClampGravity(v float64) float64 {
	if math.IsNaN(v) {
		return MinGravity
	}
	return common.Clamp(v, MinGravity, MaxGravity)
}

// Update advances one fixed step then syncs transforms.
func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || ps.space == nil {
		return
	}
	ps.Step()
	ps.SyncTransforms(w)
}

// Step advances the space by exactly one timestep. Late frames are not
// caught up with extra sub-steps.
func (ps *PhysicsSystem) Step() {
	if ps == nil || ps.space == nil {
		return
	}
	ps.space.Step(ps.spec.Timestep)
}

func (ps *PhysicsSystem) SyncTransforms(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, body *component.PhysicsBody, t *component.Transform) {
		if body.Body == nil {
			return
		}
		pos := body.Body.Position()
		t.X = pos.X
		t.Y = pos.Y
		t.Rotation = body.Body.Angle()
	})
}

// AddBody builds the collider for s, adds it to the space and attaches a
// PhysicsBody component to e.
func (ps *PhysicsSystem) AddBody(w *ecs.World, e ecs.Entity, s *shapes.Shape) (*component.PhysicsBody, error) {
	if ps == nil || ps.space == nil {
		return nil, fmt.Errorf("physics: add body: space closed")
	}
	if s == nil {
		return nil, fmt.Errorf("physics: add body %s: nil shape", e)
	}

	mass := ps.spec.Density * s.Area()
	if mass <= 0 || math.IsNaN(mass) {
		mass = 1
	}

	comp := &component.PhysicsBody{
		Mass:       mass,
		Friction:   ps.spec.Friction,
		Elasticity: ps.spec.Elasticity,
	}

	hull := s.Hull()
	var body *cp.Body
	var shape *cp.Shape
	switch hull.Kind {
	case shapes.HullCircle:
		body = cp.NewBody(mass, cp.MomentForCircle(mass, 0, hull.Radius, cp.Vector{}))
		shape = cp.NewCircle(body, hull.Radius, cp.Vector{})
	case shapes.HullBox:
		body = cp.NewBody(mass, cp.MomentForBox(mass, hull.Width, hull.Height))
		shape = cp.NewBox(body, hull.Width, hull.Height, 0)
	default:
		pts := hull.Vertices
		if len(pts) < 3 {
			pts = shapes.DefaultHull(s.BoundingRadius())
			comp.Fallback = true
			if ps.debug {
				log.Printf("physics: %s hull for %s has %d vertices, using default triangle", s.Kind, e, len(hull.Vertices))
			}
		}
		verts := toVectors(pts)
		body = cp.NewBody(mass, cp.MomentForPoly(mass, len(verts), verts, cp.Vector{}, 0))
		shape = cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0)
	}

	body.SetPosition(cp.Vector{X: s.X, Y: s.Y})
	shape.SetFriction(ps.spec.Friction)
	shape.SetElasticity(ps.spec.Elasticity)
	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	comp.Body = body
	comp.Shape = shape
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), comp); err != nil {
		ps.space.RemoveShape(shape)
		ps.space.RemoveBody(body)
		return nil, fmt.Errorf("physics: add body %s: %w", e, err)
	}
	ps.bodies[e] = comp
	return comp, nil
}

// RemoveBody takes e's body and collider out of the space and drops the
// component. It reports whether anything was removed.
func (ps *PhysicsSystem) RemoveBody(w *ecs.World, e ecs.Entity) bool {
	if ps == nil {
		return false
	}
	comp, ok := ps.bodies[e]
	if !ok {
		comp, ok = ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	}
	if !ok || comp == nil {
		return false
	}
	ps.detach(comp)
	delete(ps.bodies, e)
	ecs.Remove(w, e, component.PhysicsBodyComponent.Kind())
	return true
}

func (ps *PhysicsSystem) detach(comp *component.PhysicsBody) {
	if ps.space == nil {
		return
	}
	if comp.Shape != nil && ps.space.ContainsShape(comp.Shape) {
		ps.space.RemoveShape(comp.Shape)
	}
	if comp.Body != nil && ps.space.ContainsBody(comp.Body) {
		ps.space.RemoveBody(comp.Body)
	}
}

// BodyCount is the number of dynamic bodies owned by the system.
func (ps *PhysicsSystem) BodyCount() int {
	if ps == nil {
		return 0
	}
	return len(ps.bodies)
}

// Close removes every remaining dynamic body and releases the space.
// Calling it twice is a no-op.
func (ps *PhysicsSystem) Close() {
	if ps == nil || ps.space == nil {
		return
	}
	for e, comp := range ps.bodies {
		ps.detach(comp)
		delete(ps.bodies, e)
	}
	ps.space = nil
}

func toVectors(pts []shapes.Point) []cp.Vector {
	out := make([]cp.Vector, len(pts))
	for i, p := range pts {
		out[i] = cp.Vector{X: p.X, Y: p.Y}
	}
	return out
}
