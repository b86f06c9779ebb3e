package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/shapefall/common"
	"github.com/milk9111/shapefall/config"
	"github.com/milk9111/shapefall/ecs"
	"github.com/milk9111/shapefall/ecs/component"
	"github.com/milk9111/shapefall/ecs/system"
	"github.com/milk9111/shapefall/shapes"
)

const (
	MinShapesPerAction = 1
	MaxShapesPerAction = 10
)

// Snapshot is the derived (count, total area) pair.
type Snapshot = system.Snapshot

// StatsSink receives count and area at most five times a second.
type StatsSink = system.StatsSink

type session int

const (
	notStarted session = iota
	running
)

// Engine owns the shape registry, the physics space and the walls. All of
// its methods run on the game goroutine.
type Engine struct {
	cfg   *config.Engine
	debug bool
	rng   *rand.Rand
	clock func() time.Time

	world     *ecs.World
	physics   *system.PhysicsSystem
	bounds    *system.Boundaries
	stats     *system.StatsSystem
	render    *system.RenderSystem
	scheduler *ecs.Scheduler
	factory   *shapes.Factory
	registry  Registry

	width, height float64
	session       session
	selected      string
	perAction     int
	mounted       bool
	destroyed     bool
}

type Option func(*Engine)

// WithDebug turns on verbose spawn and delete logging.
func WithDebug(on bool) Option {
	return func(e *Engine) { e.debug = on }
}

// WithRand fixes the random source used for kinds and colours.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock replaces the stats throttle's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

func New(cfg *config.Engine, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, selected: shapes.Random, perAction: MinShapesPerAction}
	if cfg != nil && cfg.ShapesPerAction > 0 {
		e.perAction = common.Clamp(cfg.ShapesPerAction, MinShapesPerAction, MaxShapesPerAction)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize mounts the engine into host and builds the physics and render
// backends. On failure it returns an *InitError and leaves nothing behind.
// Calling it again after success is a no-op.
func (e *Engine) Initialize(ctx context.Context, host Host) error {
	if e.mounted {
		return nil
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return initError("context", err)
		}
	}
	if host == nil || host.HostID() == "" {
		return initError("host", ErrHostNotFound)
	}
	w, h := host.Viewport()
	if w <= 0 || h <= 0 {
		return initError("viewport", fmt.Errorf("%w: %dx%d", ErrInvalidViewport, w, h))
	}
	if err := e.cfg.Validate(); err != nil {
		return initError("config", fmt.Errorf("%w: %w", ErrBackend, err))
	}
	physics, err := system.NewPhysicsSystem(e.cfg.Physics)
	if err != nil {
		return initError("physics", fmt.Errorf("%w: %w", ErrBackend, err))
	}
	physics.SetDebug(e.debug)

	stats := system.NewStatsSystem(time.Duration(e.cfg.Stats.IntervalMS) * time.Millisecond)
	if e.clock != nil {
		stats.SetClock(e.clock)
	}

	e.world = ecs.NewWorld()
	e.physics = physics
	e.bounds = system.NewBoundaries(physics.Space(), e.cfg.Physics.Friction, e.cfg.Physics.Elasticity)
	e.stats = stats
	e.render = system.NewRenderSystem()
	e.factory = shapes.NewFactory(e.cfg, e.rng)
	e.scheduler = ecs.NewScheduler(
		physics,
		system.NewFadeSystem(physics.Timestep()),
		stats,
	)
	e.mounted = true
	e.destroyed = false
	e.session = notStarted
	e.Resize(w, h)

	log.Printf("engine: mounted into %q at %dx%d", host.HostID(), w, h)
	return nil
}

func (e *Engine) live() bool {
	return e != nil && e.mounted && !e.destroyed
}

// Tick advances one fixed physics step, syncs transforms, runs fades and
// lets the stats throttle publish.
func (e *Engine) Tick() {
	if !e.live() {
		return
	}
	e.scheduler.Update(e.world)
}

// Resize rebuilds the walls for a new viewport.
func (e *Engine) Resize(width, height int) {
	if !e.live() || width <= 0 || height <= 0 {
		return
	}
	if float64(width) == e.width && float64(height) == e.height && e.bounds.Count() == 4 {
		return
	}
	e.width, e.height = float64(width), float64(height)
	e.factory.SetViewport(e.width)
	narrow := e.factory.Narrow()
	e.bounds.Rebuild(system.Layout{
		Width:        e.width,
		Height:       e.height,
		Thickness:    e.cfg.Boundary.Thickness,
		TopOffset:    e.cfg.Boundary.TopOffset.Pick(narrow),
		BottomOffset: e.factory.Size() / 4,
	})
	if e.debug {
		log.Printf("engine: resized to %dx%d (narrow=%v)", width, height, narrow)
	}
}

// ApplyConfig swaps in reloaded tunables. Live shapes keep their geometry.
// A changed shapes_per_action replaces the current per-action count.
func (e *Engine) ApplyConfig(cfg *config.Engine) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("engine: apply config: %w", err)
	}
	prev := e.cfg
	e.cfg = cfg
	if prev == nil || prev.ShapesPerAction != cfg.ShapesPerAction {
		e.SetShapesPerAction(cfg.ShapesPerAction)
	}
	if !e.live() {
		return nil
	}
	e.factory.SetConfig(cfg)
	e.physics.SetSpec(cfg.Physics)
	e.stats.SetInterval(time.Duration(cfg.Stats.IntervalMS) * time.Millisecond)
	w, h := int(e.width), int(e.height)
	e.width, e.height = 0, 0
	e.Resize(w, h)
	return nil
}

// SpawnAt places shapes-per-action copies of kind at (x, y). This is the
// click-to-place path: the point is kept even for an explicit type.
func (e *Engine) SpawnAt(x, y float64, kind string) []ecs.Entity {
	return e.spawnMany(func() (*shapes.Shape, bool) {
		return e.factory.Place(x, y, kind)
	})
}

// Drop spawns shapes-per-action copies of kind above the visible area at x,
// to fall in.
func (e *Engine) Drop(x float64, kind string) []ecs.Entity {
	return e.spawnMany(func() (*shapes.Shape, bool) {
		return e.factory.Create(x, e.factory.SpawnY(), kind)
	})
}

func (e *Engine) spawnMany(build func() (*shapes.Shape, bool)) []ecs.Entity {
	if !e.live() {
		return nil
	}
	out := make([]ecs.Entity, 0, e.perAction)
	for i := 0; i < e.perAction; i++ {
		if ent, ok := e.spawn(build()); ok {
			out = append(out, ent)
		}
	}
	return out
}

// CreateShape spawns exactly one shape. An explicit kind starts above the
// visible area; random keeps (x, y).
func (e *Engine) CreateShape(x, y float64, kind string) (ecs.Entity, bool) {
	if !e.live() {
		return 0, false
	}
	return e.spawn(e.factory.Create(x, y, kind))
}

func (e *Engine) spawn(s *shapes.Shape, ok bool) (ecs.Entity, bool) {
	if !ok {
		return 0, false
	}
	ent, err := e.register(s)
	if err != nil {
		log.Printf("engine: spawn %s: %v", s.Kind, err)
		return 0, false
	}
	return ent, true
}

// register creates the entity, its render node and its body together.
func (e *Engine) register(s *shapes.Shape) (ecs.Entity, error) {
	ent := e.world.CreateEntity()
	node := &component.RenderNode{Alpha: 1}
	node.Draw(s)

	err := ecs.Add(e.world, ent, component.ShapeComponent.Kind(), &component.Shape{Shape: s})
	if err == nil {
		err = ecs.Add(e.world, ent, component.TransformComponent.Kind(), &component.Transform{X: s.X, Y: s.Y})
	}
	if err == nil {
		err = ecs.Add(e.world, ent, component.RenderNodeComponent.Kind(), node)
	}
	if err == nil {
		_, err = e.physics.AddBody(e.world, ent, s)
	}
	if err == nil {
		err = system.StartFade(e.world, ent, e.cfg.FadeIn)
	}
	if err != nil {
		e.physics.RemoveBody(e.world, ent)
		e.world.DestroyEntity(ent)
		return 0, err
	}

	e.registry.Append(ent)
	e.world.Events().Push(ecs.Event{Type: ecs.EventShapeSpawned, Entity: ent, Data: s.Kind})
	if e.debug {
		log.Printf("engine: spawned %s %s at (%.0f, %.0f) size %.0f", s.Kind, ent, s.X, s.Y, s.Size)
	}
	return ent, nil
}

// unregister removes the node, the body and the registry entry together.
func (e *Engine) unregister(ent ecs.Entity) {
	e.physics.RemoveBody(e.world, ent)
	e.world.DestroyEntity(ent)
	e.registry.Remove(ent)
}

// ClearCanvas removes every live shape with a single stats recompute.
func (e *Engine) ClearCanvas() {
	if !e.live() {
		return
	}
	n := e.registry.Len()
	for _, ent := range e.registry.Reset() {
		e.physics.RemoveBody(e.world, ent)
		e.world.DestroyEntity(ent)
	}
	e.stats.Refresh(e.world)
	e.world.Events().Push(ecs.Event{Type: ecs.EventCanvasCleared, Data: n})
	if e.debug {
		log.Printf("engine: cleared %d shapes", n)
	}
}

func (e *Engine) SetGravity(v float64) {
	if e == nil || e.physics == nil {
		return
	}
	e.physics.SetGravity(v)
}

func (e *Engine) Gravity() float64 {
	if e == nil || e.physics == nil {
		return 0
	}
	return e.physics.Gravity()
}

func (e *Engine) IsRunning() bool {
	return e.live() && e.session == running
}

// Start moves the session from NotStarted to Running.
func (e *Engine) Start() {
	if !e.live() || e.session == running {
		return
	}
	e.session = running
	log.Printf("engine: session started")
}

// SetSelectedType sets the kind used for click spawns. Unknown names fall
// back to random at spawn time.
func (e *Engine) SetSelectedType(kind string) {
	if e != nil {
		e.selected = kind
	}
}

func (e *Engine) SelectedType() string {
	if e == nil {
		return shapes.Random
	}
	return e.selected
}

func (e *Engine) SetShapesPerAction(n int) {
	if e != nil {
		e.perAction = common.Clamp(n, MinShapesPerAction, MaxShapesPerAction)
	}
}

func (e *Engine) ShapesPerAction() int {
	if e == nil {
		return 0
	}
	return e.perAction
}

// AddStatsSink attaches sink. The returned func detaches it and is safe to
// call repeatedly.
func (e *Engine) AddStatsSink(sink StatsSink) (remove func()) {
	if !e.live() {
		return func() {}
	}
	return e.stats.AddSink(sink)
}

// Stats derives the snapshot from the registry.
func (e *Engine) Stats() Snapshot {
	if !e.live() {
		return Snapshot{}
	}
	return system.Compute(e.world)
}

// Len is the number of live shapes.
func (e *Engine) Len() int {
	if !e.live() {
		return 0
	}
	return e.registry.Len()
}

// Entities returns the registry in z-order, oldest first.
func (e *Engine) Entities() []ecs.Entity {
	if !e.live() {
		return nil
	}
	return e.registry.Entities()
}

// Shape returns the geometry of a live entity.
func (e *Engine) Shape(ent ecs.Entity) (*shapes.Shape, bool) {
	if !e.live() {
		return nil, false
	}
	sh, ok := ecs.Get(e.world, ent, component.ShapeComponent.Kind())
	if !ok {
		return nil, false
	}
	return sh.Shape, true
}

// Events drains world events raised since the last call.
func (e *Engine) Events() []ecs.Event {
	if !e.live() {
		return nil
	}
	return e.world.Events().Drain()
}

func (e *Engine) Size() (float64, float64) {
	if e == nil {
		return 0, 0
	}
	return e.width, e.height
}

// ShapeSize is the nominal size for the current viewport tier.
func (e *Engine) ShapeSize() float64 {
	if !e.live() {
		return 0
	}
	return e.factory.Size()
}

// WallCount is the number of boundary bodies in the space.
func (e *Engine) WallCount() int {
	if !e.live() {
		return 0
	}
	return e.bounds.Count()
}

func (e *Engine) Space() *cp.Space {
	if !e.live() {
		return nil
	}
	return e.physics.Space()
}

// Draw paints every shape in registry order.
func (e *Engine) Draw(screen *ebiten.Image) {
	if !e.live() {
		return
	}
	e.render.Draw(e.world, screen, e.registry.Entities())
}

// DrawDebug overlays the physics colliders.
func (e *Engine) DrawDebug(screen *ebiten.Image) {
	if !e.live() {
		return
	}
	system.DrawPhysicsDebug(e.physics.Space(), screen)
	system.DrawPhysicsCounters(e.physics, e.bounds, screen)
}

// Destroy tears everything down. It is idempotent and safe before
// Initialize.
func (e *Engine) Destroy() {
	if e == nil || !e.mounted || e.destroyed {
		return
	}
	e.stats.DetachAll()
	for _, ent := range e.registry.Reset() {
		e.physics.RemoveBody(e.world, ent)
		e.world.DestroyEntity(ent)
	}
	e.bounds.Remove()
	e.physics.Close()
	e.session = notStarted
	e.destroyed = true
	e.mounted = false
	log.Printf("engine: destroyed")
}
