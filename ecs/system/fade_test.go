package system

import (
	"testing"

	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
)

func TestFadeIn(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.RenderNodeComponent.Kind(), &component.RenderNode{Visible: true}); err != nil {
		t.Fatal(err)
	}
	if err := StartFade(w, e, 0.25); err != nil {
		t.Fatal(err)
	}
	node, _ := ecs.Get(w, e, component.RenderNodeComponent.Kind())
	if node.Alpha != 0 {
		t.Fatalf("fade should start transparent, got %v", node.Alpha)
	}

	f := NewFadeSystem(1.0 / 60)
	f.Update(w)
	if node.Alpha <= 0 || node.Alpha >= 1 {
		t.Fatalf("expected partial alpha, got %v", node.Alpha)
	}
	for i := 0; i < 30; i++ {
		f.Update(w)
	}
	if node.Alpha != 1 {
		t.Fatalf("expected opaque after fade, got %v", node.Alpha)
	}
	if ecs.Has(w, e, component.FadeInComponent.Kind()) {
		t.Fatalf("fade component should be removed when done")
	}
}

func TestFadeDisabled(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	node := &component.RenderNode{Visible: true}
	if err := ecs.Add(w, e, component.RenderNodeComponent.Kind(), node); err != nil {
		t.Fatal(err)
	}
	if err := StartFade(w, e, 0); err != nil {
		t.Fatal(err)
	}
	if node.Alpha != 1 || ecs.Has(w, e, component.FadeInComponent.Kind()) {
		t.Fatalf("zero duration should leave node opaque without a tween")
	}
}
