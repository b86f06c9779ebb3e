package engine

import "github.com/milk9111/shapefall/ecs"

// Registry is the ordered list of live shape entities, oldest first. Index
// order is z-order.
type Registry struct {
	entries []ecs.Entity
}

func (r *Registry) Append(e ecs.Entity) {
	r.entries = append(r.entries, e)
}

// Remove splices e out, keeping the order of the rest.
func (r *Registry) Remove(e ecs.Entity) bool {
	for i, v := range r.entries {
		if v == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Entities returns a copy in draw order.
func (r *Registry) Entities() []ecs.Entity {
	return append([]ecs.Entity(nil), r.entries...)
}

// Newest returns a copy in hit-test order, newest first.
func (r *Registry) Newest() []ecs.Entity {
	out := make([]ecs.Entity, len(r.entries))
	for i, e := range r.entries {
		out[len(r.entries)-1-i] = e
	}
	return out
}

// Reset empties the registry and returns what it held.
func (r *Registry) Reset() []ecs.Entity {
	out := r.entries
	r.entries = nil
	return out
}
