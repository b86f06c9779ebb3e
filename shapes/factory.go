package shapes

import (
	"image/color"
	"math/rand/v2"

	"github.com/milk9111/shapefall/config"
)

// Factory turns spawn requests into fully initialised shapes.
type Factory struct {
	cfg       *config.Engine
	palette   []color.NRGBA
	rng       *rand.Rand
	viewportW float64
}

// NewFactory creates a factory. A nil rng gets a randomly seeded source.
func NewFactory(cfg *config.Engine, rng *rand.Rand) *Factory {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	f := &Factory{rng: rng}
	f.SetConfig(cfg)
	return f
}

// SetConfig swaps in new tunables.
func (f *Factory) SetConfig(cfg *config.Engine) {
	if f == nil || cfg == nil {
		return
	}
	f.cfg = cfg
	f.palette = cfg.Colors()
}

// SetViewport records the visible width used for tier selection.
func (f *Factory) SetViewport(width float64) {
	if f == nil {
		return
	}
	f.viewportW = width
}

// Narrow reports whether the viewport is in the narrow tier.
func (f *Factory) Narrow() bool {
	if f == nil || f.cfg == nil {
		return false
	}
	return f.viewportW < f.cfg.NarrowWidth
}

// Size is the nominal shape size for the current tier.
func (f *Factory) Size() float64 {
	if f == nil || f.cfg == nil {
		return 0
	}
	return f.cfg.ShapeSize.Pick(f.Narrow())
}

// SpawnY is where explicitly typed shapes appear: above the visible area.
func (f *Factory) SpawnY() float64 {
	if f == nil || f.cfg == nil {
		return 0
	}
	return -f.cfg.SpawnAbove.Pick(f.Narrow())
}

// ResolveKind maps a requested type name to a kind. Unknown names and
// "random" fall back to a uniform pick; explicit reports whether the
// request named a real kind.
func (f *Factory) ResolveKind(requested string) (kind Kind, explicit bool) {
	if k, ok := ParseKind(requested); ok {
		return k, true
	}
	return Kind(f.rng.IntN(int(kindCount))), false
}

// Create builds a shape for a selection request: an explicitly typed shape
// starts above the visible area at x, a random one at (x, y). The second
// result is false only if the kind could not be resolved, which cannot
// happen for known names.
func (f *Factory) Create(x, y float64, requested string) (*Shape, bool) {
	return f.build(x, y, requested, false)
}

// Place builds a shape exactly at (x, y) whatever type was requested.
func (f *Factory) Place(x, y float64, requested string) (*Shape, bool) {
	return f.build(x, y, requested, true)
}

func (f *Factory) build(x, y float64, requested string, placed bool) (*Shape, bool) {
	if f == nil || f.cfg == nil {
		return nil, false
	}
	kind, explicit := f.ResolveKind(requested)
	if !kind.Valid() {
		return nil, false
	}
	if explicit && !placed {
		y = f.SpawnY()
	}

	s := New(kind, x, y, f.Size(), f.pickColor())
	s.HullSegments = f.cfg.EllipseSegments.Pick(f.Narrow())
	return s, true
}

func (f *Factory) pickColor() color.NRGBA {
	if len(f.palette) == 0 {
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return f.palette[f.rng.IntN(len(f.palette))]
}
