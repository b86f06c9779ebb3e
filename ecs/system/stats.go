package system

import (
	"time"

	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
)

// DefaultStatsInterval caps sink writes at five per second.
const DefaultStatsInterval = 200 * time.Millisecond

// Snapshot is the derived (count, total area) pair.
type Snapshot struct {
	Count int
	Area  float64
}

// StatsSink receives throttled snapshots.
type StatsSink interface {
	PublishStats(count int, area float64)
}

// StatsSinkFunc adapts a function to StatsSink.
type StatsSinkFunc func(count int, area float64)

func (f StatsSinkFunc) PublishStats(count int, area float64) { f(count, area) }

// StatsSystem sums shape areas over the world and forwards the result to
// its sinks no more often than its interval.
type StatsSystem struct {
	interval  time.Duration
	now       func() time.Time
	last      time.Time
	published bool
	pending   bool
	snap      Snapshot

	sinks  map[int]StatsSink
	order  []int
	nextID int
}

func NewStatsSystem(interval time.Duration) *StatsSystem {
	if interval <= 0 {
		interval = DefaultStatsInterval
	}
	return &StatsSystem{
		interval: interval,
		now:      time.Now,
		sinks:    make(map[int]StatsSink),
	}
}

// SetClock replaces the time source.
func (s *StatsSystem) SetClock(now func() time.Time) {
	if s != nil && now != nil {
		s.now = now
	}
}

func (s *StatsSystem) SetInterval(d time.Duration) {
	if s != nil && d > 0 {
		s.interval = d
	}
}

// Compute derives the snapshot from the world's shape components.
func Compute(w *ecs.World) Snapshot {
	var snap Snapshot
	ecs.ForEach(w, component.ShapeComponent.Kind(), func(_ ecs.Entity, sh *component.Shape) {
		if sh.Shape == nil {
			return
		}
		snap.Count++
		snap.Area += sh.Area()
	})
	return snap
}

// Update publishes on the tick when the interval has elapsed.
func (s *StatsSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if !s.windowOpen() {
		return
	}
	s.snap = Compute(w)
	s.publish()
}

// Refresh recomputes right away after a delete or clear. Sinks see the new
// value immediately if the window is open, otherwise on the next tick that
// opens it.
func (s *StatsSystem) Refresh(w *ecs.World) Snapshot {
	if s == nil {
		return Compute(w)
	}
	s.snap = Compute(w)
	s.pending = true
	if s.windowOpen() {
		s.publish()
	}
	return s.snap
}

// Snapshot is the most recently computed value.
func (s *StatsSystem) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return s.snap
}

// Pending reports whether a refreshed value is still waiting for the window.
func (s *StatsSystem) Pending() bool {
	return s != nil && s.pending
}

// AddSink registers sink. The returned func detaches it and may be called
// any number of times.
func (s *StatsSystem) AddSink(sink StatsSink) (remove func()) {
	if s == nil || sink == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.sinks[id] = sink
	s.order = append(s.order, id)
	return func() { s.removeSink(id) }
}

func (s *StatsSystem) removeSink(id int) {
	if _, ok := s.sinks[id]; !ok {
		return
	}
	delete(s.sinks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// SinkCount is the number of attached sinks.
func (s *StatsSystem) SinkCount() int {
	if s == nil {
		return 0
	}
	return len(s.sinks)
}

// DetachAll drops every sink.
func (s *StatsSystem) DetachAll() {
	if s == nil {
		return
	}
	s.sinks = make(map[int]StatsSink)
	s.order = nil
}

func (s *StatsSystem) windowOpen() bool {
	if !s.published {
		return true
	}
	return s.now().Sub(s.last) >= s.interval
}

func (s *StatsSystem) publish() {
	s.last = s.now()
	s.published = true
	s.pending = false
	for _, id := range append([]int(nil), s.order...) {
		if sink, ok := s.sinks[id]; ok {
			sink.PublishStats(s.snap.Count, s.snap.Area)
		}
	}
}
