package engine

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/milk9111/shapefall/config"
	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
	"github.com/milk9111/shapefall/ecs/system"
	"github.com/milk9111/shapefall/shapes"
)

func loadConfig(t *testing.T) *config.Engine {
	t.Helper()
	config.SetDir(t.TempDir())
	t.Cleanup(func() { config.SetDir("config") })
	cfg, err := config.LoadEngine()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.FadeIn = 0
	return cfg
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	e := New(loadConfig(t), opts...)
	if err := e.Initialize(context.Background(), StaticHost{ID: "canvas", Width: 1280, Height: 720}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(e.Destroy)
	return e
}

func assertConsistent(t *testing.T, e *Engine) {
	t.Helper()
	snap := e.Stats()
	var area float64
	for _, ent := range e.Entities() {
		s, ok := e.Shape(ent)
		if !ok {
			t.Fatalf("registry entry %s has no shape", ent)
		}
		area += s.Area()
	}
	if snap.Count != e.Len() {
		t.Fatalf("count %d != registry length %d", snap.Count, e.Len())
	}
	if math.Abs(snap.Area-area) > 1e-6 {
		t.Fatalf("area %v != sum %v", snap.Area, area)
	}
	if got := e.physics.BodyCount(); got != e.Len() {
		t.Fatalf("body count %d != registry length %d", got, e.Len())
	}
}

func TestInitializeErrors(t *testing.T) {
	cases := []struct {
		name   string
		host   Host
		mutate func(*config.Engine)
		want   error
	}{
		{"nil_host", nil, nil, ErrHostNotFound},
		{"empty_id", StaticHost{Width: 100, Height: 100}, nil, ErrHostNotFound},
		{"zero_viewport", StaticHost{ID: "c", Width: 0, Height: 100}, nil, ErrInvalidViewport},
		{"bad_palette", StaticHost{ID: "c", Width: 100, Height: 100}, func(c *config.Engine) { c.Palette = nil }, ErrBackend},
		{"bad_timestep", StaticHost{ID: "c", Width: 100, Height: 100}, func(c *config.Engine) { c.Physics.Timestep = 0 }, ErrBackend},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := loadConfig(t)
			if c.mutate != nil {
				c.mutate(cfg)
			}
			e := New(cfg)
			err := e.Initialize(context.Background(), c.host)
			var initErr *InitError
			if !errors.As(err, &initErr) {
				t.Fatalf("expected *InitError, got %v", err)
			}
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			if e.WallCount() != 0 || e.Len() != 0 || e.IsRunning() || e.Space() != nil {
				t.Fatalf("failed initialize left state behind")
			}
			if _, ok := e.CreateShape(10, 10, "circle"); ok {
				t.Fatalf("unmounted engine should not spawn")
			}
			e.Destroy()
		})
	}
}

func TestInitializeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(loadConfig(t)).Initialize(ctx, StaticHost{ID: "c", Width: 10, Height: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEndToEndAreas(t *testing.T) {
	e := newEngine(t)
	e.Start()

	circle, ok := e.CreateShape(300, 200, "circle")
	if !ok {
		t.Fatalf("circle spawn failed")
	}
	cs, _ := e.Shape(circle)
	if math.Abs(cs.Area()-4417.9) > 0.05 {
		t.Fatalf("circle area = %v", cs.Area())
	}

	rect, ok := e.CreateShape(800, 200, "rectangle")
	if !ok {
		t.Fatalf("rectangle spawn failed")
	}
	rs, _ := e.Shape(rect)
	if rs.Area() != 2812.5 {
		t.Fatalf("rectangle area = %v", rs.Area())
	}

	snap := e.Stats()
	if snap.Count != 2 || math.Abs(snap.Area-7230.4) > 0.05 {
		t.Fatalf("unexpected stats %+v", snap)
	}

	if got := e.HandleClick(cs.X, cs.Y); got != ClickDeleted {
		t.Fatalf("click on circle centre = %v", got)
	}
	if e.Len() != 1 || e.Entities()[0] != rect {
		t.Fatalf("expected only the rectangle to remain, got %v", e.Entities())
	}
	assertConsistent(t, e)
}

func TestClickDeletesTopmostOnly(t *testing.T) {
	e := newEngine(t)
	e.Start()

	var ents []ecs.Entity
	for i := 0; i < 3; i++ {
		ent, ok := e.CreateShape(400, 0, "circle")
		if !ok {
			t.Fatal("spawn failed")
		}
		ents = append(ents, ent)
	}
	s, _ := e.Shape(ents[0])

	for want := 2; want >= 0; want-- {
		if got := e.HandleClick(s.X, s.Y); got != ClickDeleted {
			t.Fatalf("expected delete, got %v", got)
		}
		if e.Len() != want {
			t.Fatalf("expected %d left, got %d", want, e.Len())
		}
		for i, ent := range e.Entities() {
			if ent != ents[i] {
				t.Fatalf("newest entry should go first; remaining %v", e.Entities())
			}
		}
		assertConsistent(t, e)
	}
}

func TestClickAfterPhysicsUsesSyncedTransform(t *testing.T) {
	e := newEngine(t)
	e.Start()
	ent, _ := e.CreateShape(640, 0, "square")
	for i := 0; i < 30; i++ {
		e.Tick()
	}
	s, _ := e.Shape(ent)
	if e.HandleClick(s.X, s.Y) == ClickDeleted {
		t.Fatalf("spawn point should be empty after the square fell")
	}
	if e.Len() != e.ShapesPerAction()+1 {
		t.Fatalf("miss should have spawned, len = %d", e.Len())
	}
}

func TestClickHitsRotatedOutline(t *testing.T) {
	e := newEngine(t)
	e.Start()
	e.SetGravity(0)
	e.SetShapesPerAction(1)
	ent := e.SpawnAt(640, 360, "rectangle")[0]

	body, ok := ecs.Get(e.world, ent, component.PhysicsBodyComponent.Kind())
	if !ok || body.Body == nil {
		t.Fatalf("rectangle has no body")
	}
	body.Body.SetAngle(math.Pi / 2)
	e.Tick()

	// Standing on end, the 75x37.5 box covers 30px below its centre but not
	// 30px to the side.
	if got := e.HandleClick(670, 360); got == ClickDeleted {
		t.Fatalf("click beside the rotated rectangle should miss")
	}
	if got := e.HandleClick(640, 390); got != ClickDeleted {
		t.Fatalf("click inside the rotated rectangle = %v", got)
	}
	for _, other := range e.Entities() {
		if other == ent {
			t.Fatalf("rotated rectangle should be gone")
		}
	}
	assertConsistent(t, e)
}

func TestFirstClickOnlyStarts(t *testing.T) {
	e := newEngine(t)
	if e.IsRunning() {
		t.Fatalf("engine should start NotStarted")
	}
	if got := e.HandleClick(100, 100); got != ClickStarted {
		t.Fatalf("first click = %v", got)
	}
	if !e.IsRunning() || e.Len() != 0 {
		t.Fatalf("first click should start without spawning")
	}
	if got := e.HandleClick(100, 100); got != ClickSpawned {
		t.Fatalf("second click = %v", got)
	}
	s, _ := e.Shape(e.Entities()[0])
	if s.X != 100 || s.Y != 100 {
		t.Fatalf("random click spawn should land on the click, got (%v, %v)", s.X, s.Y)
	}
}

func TestSelectedTypeSpawnsAtClick(t *testing.T) {
	e := newEngine(t)
	e.Start()
	e.SetSelectedType("Hexagon")
	if got := e.HandleClick(300, 400); got != ClickSpawned {
		t.Fatalf("click = %v", got)
	}
	s, _ := e.Shape(e.Entities()[0])
	if s.Kind != shapes.KindHexagon || s.X != 300 || s.Y != 400 {
		t.Fatalf("expected hexagon at the click, got %s at (%v, %v)", s.Kind, s.X, s.Y)
	}
}

func TestDropSpawnsAbove(t *testing.T) {
	cases := []struct {
		name string
		kind string
	}{
		{"explicit", "Hexagon"},
		{"random", shapes.Random},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := newEngine(t)
			e.Start()
			e.SetShapesPerAction(2)
			got := e.Drop(500, c.kind)
			if len(got) != 2 {
				t.Fatalf("drop spawned %d shapes, want 2", len(got))
			}
			for _, ent := range got {
				s, _ := e.Shape(ent)
				if s.X != 500 || s.Y != -100 {
					t.Fatalf("expected shape above view at x=500, got (%v, %v)", s.X, s.Y)
				}
			}
			assertConsistent(t, e)
		})
	}
}

func TestCreateShapeExplicitSpawnsAbove(t *testing.T) {
	e := newEngine(t)
	e.Start()
	ent, ok := e.CreateShape(300, 400, "pentagon")
	if !ok {
		t.Fatalf("create failed")
	}
	s, _ := e.Shape(ent)
	if s.Y != -100 {
		t.Fatalf("explicit create should start above view, got y=%v", s.Y)
	}
}

func TestClearCanvas(t *testing.T) {
	e := newEngine(t)
	e.Start()
	for i := 0; i < 5; i++ {
		e.SpawnAt(float64(100+i*100), 300, shapes.Random)
	}
	assertConsistent(t, e)
	e.Events()

	e.ClearCanvas()
	if snap := e.Stats(); snap.Count != 0 || snap.Area != 0 {
		t.Fatalf("expected empty stats, got %+v", snap)
	}
	if !e.IsRunning() {
		t.Fatalf("clear should keep the session running")
	}
	assertConsistent(t, e)
	evts := e.Events()
	if len(evts) != 1 || evts[0].Type != ecs.EventCanvasCleared || evts[0].Data != 5 {
		t.Fatalf("unexpected events %+v", evts)
	}
}

func TestHandleKey(t *testing.T) {
	e := newEngine(t)
	e.HandleKey(KeyEnter)
	if !e.IsRunning() {
		t.Fatalf("enter should start")
	}
	e.SpawnAt(100, 100, "star")
	e.HandleKey(KeyEscape)
	if e.Len() != 0 {
		t.Fatalf("escape should clear")
	}
	e.HandleKey(KeyNone)
}

func TestResizeRebuildsWalls(t *testing.T) {
	e := newEngine(t)
	sizes := [][2]int{{800, 600}, {500, 900}, {1920, 1080}, {1920, 1080}}
	for _, sz := range sizes {
		before := e.bounds.Body(system.SideLeft)
		e.Resize(sz[0], sz[1])
		if got := e.WallCount(); got != 4 {
			t.Fatalf("resize %v: %d walls", sz, got)
		}
		l := e.bounds.Layout()
		if l.Width != float64(sz[0]) || l.Height != float64(sz[1]) {
			t.Fatalf("walls built for %vx%v, want %v", l.Width, l.Height, sz)
		}
		if after := e.bounds.Body(system.SideLeft); after != before && e.Space().ContainsBody(before) {
			t.Fatalf("old wall left in space")
		}
	}
	l := e.bounds.Layout()
	if l.TopOffset != 250 || l.BottomOffset != 75.0/4 {
		t.Fatalf("unexpected wide offsets %+v", l)
	}
	e.Resize(500, 900)
	if l := e.bounds.Layout(); l.TopOffset != 150 || l.BottomOffset != 12.5 {
		t.Fatalf("unexpected narrow offsets %+v", l)
	}
	e.Resize(0, 10)
	if e.WallCount() != 4 {
		t.Fatalf("invalid resize should be ignored")
	}
}

func TestGravity(t *testing.T) {
	e := newEngine(t)
	cases := []struct{ in, want float64 }{{-3, 0}, {99, 5}, {2.5, 2.5}}
	for _, c := range cases {
		e.SetGravity(c.in)
		if got := e.Gravity(); got != c.want {
			t.Fatalf("SetGravity(%v) -> %v, want %v", c.in, got, c.want)
		}
	}
}

func TestShapesPerAction(t *testing.T) {
	e := newEngine(t)
	e.SetShapesPerAction(3)
	if got := len(e.SpawnAt(50, 50, "circle")); got != 3 {
		t.Fatalf("expected 3 shapes, got %d", got)
	}
	e.SetShapesPerAction(0)
	if e.ShapesPerAction() != 1 {
		t.Fatalf("lower clamp failed")
	}
	e.SetShapesPerAction(99)
	if e.ShapesPerAction() != 10 {
		t.Fatalf("upper clamp failed")
	}
	assertConsistent(t, e)
}

func TestApplyConfigShapesPerAction(t *testing.T) {
	e := newEngine(t)
	e.SetShapesPerAction(4)

	same := loadConfig(t)
	same.ShapesPerAction = e.cfg.ShapesPerAction
	if err := e.ApplyConfig(same); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := e.ShapesPerAction(); got != 4 {
		t.Fatalf("unchanged key should keep the panel value, got %d", got)
	}

	changed := loadConfig(t)
	changed.ShapesPerAction = same.ShapesPerAction + 2
	if err := e.ApplyConfig(changed); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := e.ShapesPerAction(); got != changed.ShapesPerAction {
		t.Fatalf("per action = %d, want %d", got, changed.ShapesPerAction)
	}
}

type countingSink struct{ n int }

func (c *countingSink) PublishStats(int, float64) { c.n++ }

func TestStatsSinkRate(t *testing.T) {
	now := time.Unix(100, 0)
	e := newEngine(t, WithClock(func() time.Time { return now }))
	sink := &countingSink{}
	remove := e.AddStatsSink(sink)
	defer remove()

	e.SpawnAt(100, 100, "square")
	for i := 0; i < 60; i++ {
		e.Tick()
		now = now.Add(time.Second / 60)
	}
	if sink.n < 1 || sink.n > 5 {
		t.Fatalf("expected at most 5 publishes in a second, got %d", sink.n)
	}
}

func TestDestroy(t *testing.T) {
	var never Engine
	never.Destroy()

	e := newEngine(t)
	sink := &countingSink{}
	e.AddStatsSink(sink)
	e.Start()
	e.SpawnAt(100, 100, "triangle")
	space := e.Space()

	e.Destroy()
	e.Destroy()
	if e.IsRunning() || e.Len() != 0 || e.WallCount() != 0 {
		t.Fatalf("destroy left state behind")
	}
	if e.stats.SinkCount() != 0 {
		t.Fatalf("sinks still attached")
	}
	if space == nil {
		t.Fatalf("expected a space before destroy")
	}
	before := sink.n
	e.Tick()
	if e.HandleClick(1, 1) != ClickIgnored || sink.n != before {
		t.Fatalf("destroyed engine should ignore input and ticks")
	}
}
