package ecs

// EventType names a world event.
type EventType string

const (
	EventShapeSpawned  EventType = "shape_spawned"
	EventShapeRemoved  EventType = "shape_removed"
	EventCanvasCleared EventType = "canvas_cleared"
)

// Event is a world event payload. Data is event specific.
type Event struct {
	Type   EventType
	Entity Entity
	Data   any
}

// EventQueue is a FIFO drained once per frame by the game loop.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
