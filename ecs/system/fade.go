package system

import (
	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FadeSystem eases new render nodes from transparent to opaque.
type FadeSystem struct {
	dt float32
}

// NewFadeSystem advances tweens by dt seconds per tick.
func NewFadeSystem(dt float64) *FadeSystem {
	return &FadeSystem{dt: float32(dt)}
}

// StartFade attaches a fade-in of the given duration to e. A non-positive
// duration leaves the node fully opaque.
func StartFade(w *ecs.World, e ecs.Entity, seconds float64) error {
	node, ok := ecs.Get(w, e, component.RenderNodeComponent.Kind())
	if !ok {
		return nil
	}
	if seconds <= 0 {
		node.Alpha = 1
		return nil
	}
	node.Alpha = 0
	return ecs.Add(w, e, component.FadeInComponent.Kind(), &component.FadeIn{
		Tween: gween.New(0, 1, float32(seconds), ease.OutQuad),
	})
}

func (f *FadeSystem) Update(w *ecs.World) {
	if f == nil || w == nil {
		return
	}
	ecs.ForEach2(w, component.FadeInComponent.Kind(), component.RenderNodeComponent.Kind(), func(e ecs.Entity, fade *component.FadeIn, node *component.RenderNode) {
		if fade.Tween == nil {
			node.Alpha = 1
			ecs.Remove(w, e, component.FadeInComponent.Kind())
			return
		}
		val, done := fade.Tween.Update(f.dt)
		node.Alpha = float64(val)
		if done {
			node.Alpha = 1
			ecs.Remove(w, e, component.FadeInComponent.Kind())
		}
	})
}
