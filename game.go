package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/shapefall/assets"
	"github.com/milk9111/shapefall/autospawn"
	"github.com/milk9111/shapefall/config"
	"github.com/milk9111/shapefall/engine"
	"github.com/milk9111/shapefall/sfx"
	"github.com/milk9111/shapefall/statsfeed"
)

// Game is the ebiten host for the engine.
type Game struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg     *config.Engine
	engine  *engine.Engine
	spawner *autospawn.Spawner
	sounds  *sfx.Bank
	hud     *HUD
	ui      *Controls
	watcher *config.Watcher
	feed    *statsfeed.Hub

	debug       bool
	frames      int
	width       int
	height      int
	mounted     bool
	initErr     error
	touchIDs    []ebiten.TouchID
	startupType string
	startupRate float64
}

type Options struct {
	Debug     bool
	StatsAddr string
	Type      string
	AutoSpawn float64
	Mute      bool
}

func NewGame(cfg *config.Engine, opts Options) *Game {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		ctx:         ctx,
		cancel:      cancel,
		cfg:         cfg,
		debug:       opts.Debug,
		hud:         NewHUD(),
		startupType: opts.Type,
		startupRate: opts.AutoSpawn,
	}

	g.engine = engine.New(cfg, engine.WithDebug(opts.Debug))
	g.spawner = autospawn.New(g.engine, cfg.Physics.Timestep)
	if err := g.spawner.Load(cfg.AutoSpawn.Script); err != nil {
		log.Printf("game: %v", err)
	}

	audioSpec := cfg.Audio
	if opts.Mute {
		audioSpec.Enabled = false
	}
	g.sounds = sfx.NewBank(assets.AudioContext(), audioSpec)

	if opts.StatsAddr != "" {
		g.feed = statsfeed.NewHub()
		go func() {
			if err := statsfeed.Serve(ctx, opts.StatsAddr, g.feed); err != nil {
				log.Printf("game: %v", err)
			}
		}()
		log.Printf("game: stats feed on ws://%s%s", opts.StatsAddr, statsfeed.Path)
	}

	dirs := []string{config.Dir(), filepath.Join(config.Dir(), "scripts")}
	w, err := config.NewWatcher(dirs...)
	if err != nil {
		log.Printf("game: config hot reload disabled: %v", err)
	} else {
		g.watcher = w
	}

	return g
}

// HostID and Viewport make the game window the engine's host.
func (g *Game) HostID() string { return "window" }

func (g *Game) Viewport() (int, int) { return g.width, g.height }

func (g *Game) mount() {
	if err := g.engine.Initialize(g.ctx, g); err != nil {
		g.initErr = err
		log.Printf("game: %v", err)
		return
	}
	g.mounted = true
	g.engine.AddStatsSink(g.hud)
	if g.feed != nil {
		g.engine.AddStatsSink(g.feed)
	}
	if g.startupType != "" {
		g.engine.SetSelectedType(g.startupType)
	}
	g.engine.SetShapesPerAction(g.cfg.ShapesPerAction)
	rate := g.cfg.AutoSpawn.Rate
	if g.startupRate > 0 {
		rate = g.startupRate
	}
	g.spawner.SetRate(rate)
	g.ui = NewControls(g.engine, g.spawner)
}

func (g *Game) Update() error {
	g.frames++
	if !g.mounted {
		if g.initErr != nil || g.width == 0 {
			return nil
		}
		g.mount()
		if !g.mounted {
			return nil
		}
	}

	if g.engine.IsRunning() {
		g.ui.Update()
	}
	g.handleInput()

	g.engine.Tick()
	g.spawner.Update()
	for _, ev := range g.engine.Events() {
		g.sounds.HandleEvent(ev)
	}

	g.pollWatcher()
	g.ui.Sync()
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.sounds.SetEnabled(!g.sounds.Enabled())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.engine.HandleKey(engine.KeyEscape)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.engine.HandleKey(engine.KeyEnter)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.click(ebiten.CursorPosition())
	}
	g.touchIDs = inpututil.AppendJustPressedTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		g.click(ebiten.TouchPosition(id))
	}
}

func (g *Game) click(x, y int) {
	if g.ui.Contains(x, y) && g.engine.IsRunning() {
		return
	}
	res := g.engine.HandleClick(float64(x), float64(y))
	if g.debug {
		log.Printf("game: click (%d, %d) -> %s", x, y, res)
	}
}

// pollWatcher applies edits to engine.yaml and the spawn script.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case c, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(c)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("game: watch: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) reload(c config.Change) {
	switch c.Kind {
	case config.ChangeEngine:
		g.reloadEngine(c.Path)
	case config.ChangeScript:
		if !g.spawner.Matches(c.Path) {
			return
		}
		if err := g.spawner.Load(g.cfg.AutoSpawn.Script); err != nil {
			log.Printf("game: %v", err)
			return
		}
		log.Printf("game: reloaded %s", c.Path)
	}
}

func (g *Game) reloadEngine(path string) {
	cfg, err := config.LoadEngine()
	if err != nil {
		log.Printf("game: reload %s: %v", path, err)
		return
	}
	if err := g.engine.ApplyConfig(cfg); err != nil {
		log.Printf("game: %v", err)
		return
	}
	if err := g.spawner.ApplyConfig(g.cfg.AutoSpawn, cfg.AutoSpawn); err != nil {
		log.Printf("game: %v", err)
	}
	if cfg.Audio != g.cfg.Audio {
		g.sounds.Close()
		g.sounds = sfx.NewBank(assets.AudioContext(), cfg.Audio)
	}
	g.cfg = cfg
	log.Printf("game: reloaded %s", path)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	if !g.mounted {
		if g.initErr != nil {
			ebitenutil.DebugPrint(screen, g.initErr.Error())
		}
		return
	}

	g.engine.Draw(screen)
	if g.debug {
		g.engine.DrawDebug(screen)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.2f  TPS: %.2f", ebiten.ActualFPS(), ebiten.ActualTPS()), 10, g.height-20)
	}

	if !g.engine.IsRunning() {
		g.hud.DrawStartScreen(screen)
		return
	}
	g.hud.Draw(screen)
	g.ui.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		if g.mounted {
			g.engine.Resize(outsideWidth, outsideHeight)
		}
	}
	return outsideWidth, outsideHeight
}

// Close releases everything the game started.
func (g *Game) Close() {
	g.engine.Destroy()
	g.sounds.Close()
	if err := g.watcher.Close(); err != nil {
		log.Printf("game: close watcher: %v", err)
	}
	g.cancel()
}
