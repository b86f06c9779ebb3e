package system

import (
	"errors"
	"image/color"
	"testing"

	"github.com/milk9111/shapefall/config"
	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
	"github.com/milk9111/shapefall/shapes"
)

func testPhysicsSpec() config.PhysicsSpec {
	return config.PhysicsSpec{
		Timestep:     1.0 / 60,
		Iterations:   10,
		Gravity:      1,
		GravityScale: 1000,
		Density:      0.001,
		Friction:     0.3,
		Elasticity:   0.2,
	}
}

func TestNewPhysicsSystemRejectsBadTimestep(t *testing.T) {
	spec := testPhysicsSpec()
	spec.Timestep = 0
	if _, err := NewPhysicsSystem(spec); !errors.Is(err, config.ErrBadTimestep) {
		t.Fatalf("expected ErrBadTimestep, got %v", err)
	}
}

func TestGravityClamp(t *testing.T) {
	ps, err := NewPhysicsSystem(testPhysicsSpec())
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		in, want float64
	}{
		{-3, 0},
		{99, 5},
		{2.5, 2.5},
		{0, 0},
		{5, 5},
	}
	for _, c := range cases {
		ps.SetGravity(c.in)
		if got := ps.Gravity(); got != c.want {
			t.Fatalf("SetGravity(%v): Gravity() = %v, want %v", c.in, got, c.want)
		}
		if got := ps.Space().Gravity().Y; got != c.want*1000 {
			t.Fatalf("SetGravity(%v): space gravity = %v", c.in, got)
		}
	}
}

func addShape(t *testing.T, w *ecs.World, ps *PhysicsSystem, kind shapes.Kind, x, y float64) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	s := shapes.New(kind, x, y, 60, color.NRGBA{A: 255})
	if err := ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{Shape: s}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		t.Fatal(err)
	}
	if _, err := ps.AddBody(w, e, s); err != nil {
		t.Fatalf("add body %s: %v", kind, err)
	}
	return e
}

func TestAddBodyEveryKind(t *testing.T) {
	ps, err := NewPhysicsSystem(testPhysicsSpec())
	if err != nil {
		t.Fatal(err)
	}
	w := ecs.NewWorld()
	for i, kind := range shapes.Kinds() {
		e := addShape(t, w, ps, kind, float64(i*100), 0)
		body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok || body.Body == nil || body.Shape == nil {
			t.Fatalf("%s: body component missing", kind)
		}
		if body.Fallback {
			t.Fatalf("%s: unexpected hull fallback", kind)
		}
		if !ps.Space().ContainsBody(body.Body) || !ps.Space().ContainsShape(body.Shape) {
			t.Fatalf("%s: body not in space", kind)
		}
		if body.Mass <= 0 {
			t.Fatalf("%s: mass %v", kind, body.Mass)
		}
	}
	if ps.BodyCount() != len(shapes.Kinds()) {
		t.Fatalf("expected %d bodies, got %d", len(shapes.Kinds()), ps.BodyCount())
	}
}

func TestDegenerateHullFallsBack(t *testing.T) {
	ps, err := NewPhysicsSystem(testPhysicsSpec())
	if err != nil {
		t.Fatal(err)
	}
	w := ecs.NewWorld()
	e := w.CreateEntity()
	s := shapes.New(shapes.KindIrregular, 0, 0, 60, color.NRGBA{})
	s.Vertices = s.Vertices[:2]
	body, err := ps.AddBody(w, e, s)
	if err != nil {
		t.Fatalf("add body: %v", err)
	}
	if !body.Fallback {
		t.Fatalf("expected default triangle fallback")
	}
}

func TestStepMovesBodiesAndSyncsTransforms(t *testing.T) {
	ps, err := NewPhysicsSystem(testPhysicsSpec())
	if err != nil {
		t.Fatal(err)
	}
	w := ecs.NewWorld()
	e := addShape(t, w, ps, shapes.KindCircle, 100, 0)

	for i := 0; i < 10; i++ {
		ps.Update(w)
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if tr.Y <= 0 {
		t.Fatalf("expected shape to fall, y = %v", tr.Y)
	}
	if tr.X != body.Body.Position().X || tr.Y != body.Body.Position().Y {
		t.Fatalf("transform %v out of sync with body %v", tr, body.Body.Position())
	}
}

func TestRemoveBody(t *testing.T) {
	ps, err := NewPhysicsSystem(testPhysicsSpec())
	if err != nil {
		t.Fatal(err)
	}
	w := ecs.NewWorld()
	e := addShape(t, w, ps, shapes.KindSquare, 0, 0)
	body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	b := body.Body

	if !ps.RemoveBody(w, e) {
		t.Fatalf("expected removal")
	}
	if ps.RemoveBody(w, e) {
		t.Fatalf("second removal should report false")
	}
	if ps.Space().ContainsBody(b) {
		t.Fatalf("body still in space")
	}
	if ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
		t.Fatalf("component still attached")
	}
	ps.Close()
	ps.Close()
	if ps.Space() != nil {
		t.Fatalf("space should be released")
	}
}
