package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/shapefall/ecs/component"
)

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				e := ents[c.destroyIndex]
				if !DestroyEntity(w, e) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, e) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, e) {
					t.Fatalf("second DestroyEntity should return false")
				}
				if w.Len() != c.create-1 {
					t.Fatalf("expected %d live, got %d", c.create-1, w.Len())
				}
			}
		})
	}
}

func TestRecycledIDGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	old := CreateEntity(w)
	DestroyEntity(w, old)
	fresh := CreateEntity(w)

	if fresh.id() != old.id() {
		t.Fatalf("expected id reuse, got %v and %v", old, fresh)
	}
	if fresh == old {
		t.Fatalf("recycled entity must differ from the stale handle")
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle should not be alive")
	}

	h := component.NewComponent[int]()
	if err := Add(w, old, h.Kind(), intPtr(1)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func TestComponentsTable(t *testing.T) {
	w := NewWorld()
	hInt := component.NewComponent[int]()
	hStr := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, hInt.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, hInt.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
			},
			teardown: func() bool { return Remove(w, e1, hInt.Kind()) },
		},
		{
			name: "add_str_to_both",
			setup: func() error {
				if err := Add(w, e1, hStr.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, hStr.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				if !Has(w, e1, hStr.Kind()) || !Has(w, e2, hStr.Kind()) {
					t.Fatalf("expected both entities to have string component")
				}
			},
			teardown: func() bool { return Remove(w, e1, hStr.Kind()) },
		},
		{
			name: "mutate_in_place",
			setup: func() error {
				if err := Add(w, e2, hInt.Kind(), intPtr(1)); err != nil {
					return err
				}
				v, _ := Get(w, e2, hInt.Kind())
				*v = 42
				return nil
			},
			check: func(t *testing.T) {
				v, ok := Get(w, e2, hInt.Kind())
				if !ok || *v != 42 {
					t.Fatalf("expected in-place update to 42, got %v", v)
				}
			},
			teardown: func() bool { return Remove(w, e2, hInt.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}
}

func TestAddRejectsNil(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	h := component.NewComponent[int]()
	if err := Add(w, e, h.Kind(), nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
	var zero component.ComponentKind[int]
	if err := Add(w, e, zero, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)

	if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var ents []Entity
	ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })
	set := toSet(ents)

	if _, ok := set[e1]; !ok {
		t.Fatalf("expected e1 in ForEach result")
	}
	if _, ok := set[e3]; !ok {
		t.Fatalf("expected e3 in ForEach result")
	}
	if _, ok := set[e2]; ok {
		t.Fatalf("did not expect e2 in ForEach result")
	}
}

func TestForEach2IgnoresDeadEntities(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[string]()
	if err := Add(w, e, ka, intPtr(1)); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, e, kb, stringPtr("x")); err != nil {
		t.Fatal(err)
	}
	if !DestroyEntity(w, e) {
		t.Fatal("failed to destroy entity")
	}
	called := false
	ForEach2(w, ka, kb, func(Entity, *int, *string) { called = true })
	if called {
		t.Fatalf("callback should not run for destroyed entity")
	}
	if len(w.Query(ka.ID())) != 0 {
		t.Fatalf("destroyed entity components should be gone")
	}
}

func TestEvents(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)

	w.Events().Push(Event{Type: EventShapeSpawned, Entity: e})
	w.Events().Push(Event{Type: EventShapeRemoved, Entity: e})
	evts := w.Events().Drain()
	if len(evts) != 2 || evts[0].Type != EventShapeSpawned {
		t.Fatalf("unexpected events %v", evts)
	}
	if w.Events().Drain() != nil {
		t.Fatalf("queue should be empty after drain")
	}
}

type countSystem struct{ n *int }

func (c countSystem) Update(*World) { *c.n++ }

func TestSchedulerOrder(t *testing.T) {
	var order []int
	a, b := 0, 0
	s := NewScheduler(countSystem{&a}, nil, countSystem{&b})
	if len(s.Systems()) != 2 {
		t.Fatalf("nil systems should be skipped, got %d", len(s.Systems()))
	}
	s.Update(NewWorld())
	s.Update(nil)
	order = append(order, a, b)
	if order[0] != 1 || order[1] != 1 {
		t.Fatalf("expected each system once, got %v", order)
	}
}
