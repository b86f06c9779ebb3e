package engine

import (
	"log"

	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
	"github.com/milk9111/shapefall/shapes"
)

// ClickResult says what a click did.
type ClickResult int

const (
	ClickIgnored ClickResult = iota
	ClickStarted
	ClickDeleted
	ClickSpawned
)

func (r ClickResult) String() string {
	switch r {
	case ClickStarted:
		return "started"
	case ClickDeleted:
		return "deleted"
	case ClickSpawned:
		return "spawned"
	}
	return "ignored"
}

// Key is a key code the engine reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
)

// HandleClick resolves a click at canvas pixel (px, py). Before the session
// starts the click only starts it. Afterwards the topmost shape whose
// outline contains the point is deleted; if none does, the click spawns
// the selected type there.
func (e *Engine) HandleClick(px, py float64) ClickResult {
	if !e.live() {
		return ClickIgnored
	}
	if e.session == notStarted {
		e.Start()
		return ClickStarted
	}
	if ent, ok := e.HitTest(px, py); ok {
		e.deleteEntity(ent)
		return ClickDeleted
	}
	if len(e.SpawnAt(px, py, e.selected)) == 0 {
		return ClickIgnored
	}
	return ClickSpawned
}

// HitTest returns the newest shape whose drawn outline contains (px, py).
func (e *Engine) HitTest(px, py float64) (ecs.Entity, bool) {
	if !e.live() {
		return 0, false
	}
	for _, ent := range e.registry.Newest() {
		sh, ok := ecs.Get(e.world, ent, component.ShapeComponent.Kind())
		if !ok || sh.Shape == nil {
			continue
		}
		t, ok := ecs.Get(e.world, ent, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		lx, ly := shapes.ToLocal(px, py, t.X, t.Y, t.Rotation)
		if sh.ContainsLocal(lx, ly) {
			return ent, true
		}
	}
	return 0, false
}

func (e *Engine) deleteEntity(ent ecs.Entity) {
	var kind shapes.Kind
	if sh, ok := ecs.Get(e.world, ent, component.ShapeComponent.Kind()); ok {
		kind = sh.Kind
	}
	e.unregister(ent)
	e.stats.Refresh(e.world)
	e.world.Events().Push(ecs.Event{Type: ecs.EventShapeRemoved, Entity: ent, Data: kind})
	if e.debug {
		log.Printf("engine: deleted %s %s", kind, ent)
	}
}

// HandleKey maps Escape to clear-all and Enter to start.
func (e *Engine) HandleKey(k Key) {
	switch k {
	case KeyEscape:
		e.ClearCanvas()
	case KeyEnter:
		e.Start()
	}
}
