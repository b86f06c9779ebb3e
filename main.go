package main

import (
	"flag"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/shapefall/config"
)

var backgroundColor = color.NRGBA{R: 0x1a, G: 0x1b, B: 0x26, A: 0xff}

func main() {
	debug := flag.Bool("debug", false, "enable debug mode")
	configDir := flag.String("config", "config", "directory searched for engine.yaml and scripts before the embedded copies")
	statsAddr := flag.String("stats-addr", "", "serve the stats websocket feed on this address (e.g. localhost:8089)")
	width := flag.Int("w", 1280, "window width")
	height := flag.Int("h", 720, "window height")
	shapeType := flag.String("type", "", "initial shape type (random, circle, square, ...)")
	autoRate := flag.Float64("autospawn", 0, "auto-spawn rate per second, overrides engine.yaml")
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()

	config.SetDir(*configDir)
	cfg, err := config.LoadEngine()
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("shapefall")
	ebiten.SetTPS(int(1/cfg.Physics.Timestep + 0.5))

	game := NewGame(cfg, Options{
		Debug:     *debug,
		StatsAddr: *statsAddr,
		Type:      *shapeType,
		AutoSpawn: *autoRate,
		Mute:      *mute,
	})

	err = ebiten.RunGame(game)
	game.Close()
	if err != nil {
		log.Fatal(err)
	}
}
