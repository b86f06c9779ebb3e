package main

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/shapefall/assets"
)

// HUD is the on-screen stats sink plus the start overlay.
type HUD struct {
	face text.Face

	mu    sync.Mutex
	count int
	area  float64
}

func NewHUD() *HUD {
	return &HUD{face: assets.HUDFace()}
}

func (h *HUD) PublishStats(count int, area float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count = count
	h.area = area
}

func (h *HUD) Line() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fmt.Sprintf("Shapes: %d  Area: %.2f px^2", h.count, h.area)
}

func (h *HUD) Draw(screen *ebiten.Image) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(10, 8)
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, h.Line(), h.face, op)
}

// DrawStartScreen dims the playfield and asks for the first click.
func (h *HUD) DrawStartScreen(screen *ebiten.Image) {
	b := screen.Bounds()
	w, ht := float32(b.Dx()), float32(b.Dy())
	vector.DrawFilledRect(screen, 0, 0, w, ht, color.NRGBA{A: 160}, false)

	lines := []string{
		"Click anywhere to start",
		"Click empty space to drop shapes, click a shape to remove it",
		"Esc clears the canvas, F3 shows colliders",
	}
	for i, line := range lines {
		tw, th := text.Measure(line, h.face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(w)/2-tw/2, float64(ht)/2-th*2+float64(i)*(th+8))
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(screen, line, h.face, op)
	}
}
