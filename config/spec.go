package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// EngineFile is the tunables file name, on disk or embedded.
const EngineFile = "engine.yaml"

var (
	ErrEmptyPalette = errors.New("config: palette is empty")
	ErrBadTimestep  = errors.New("config: physics timestep must be positive")
	ErrBadTier      = errors.New("config: tier values must be positive")
	ErrTopOffset    = errors.New("config: top offset must exceed spawn distance plus shape size")
)

// Tier holds a value for narrow and wide viewports.
type Tier struct {
	Narrow float64 `yaml:"narrow"`
	Wide   float64 `yaml:"wide"`
}

// Pick returns the narrow or wide value.
func (t Tier) Pick(narrow bool) float64 {
	if narrow {
		return t.Narrow
	}
	return t.Wide
}

// IntTier is Tier for counts.
type IntTier struct {
	Narrow int `yaml:"narrow"`
	Wide   int `yaml:"wide"`
}

func (t IntTier) Pick(narrow bool) int {
	if narrow {
		return t.Narrow
	}
	return t.Wide
}

type PhysicsSpec struct {
	Timestep     float64 `yaml:"timestep"`
	Iterations   int     `yaml:"iterations"`
	Gravity      float64 `yaml:"gravity"`
	GravityScale float64 `yaml:"gravity_scale"`
	Density      float64 `yaml:"density"`
	Friction     float64 `yaml:"friction"`
	Elasticity   float64 `yaml:"elasticity"`
}

type BoundarySpec struct {
	Thickness float64 `yaml:"thickness"`
	TopOffset Tier    `yaml:"top_offset"`
}

type StatsSpec struct {
	IntervalMS int `yaml:"interval_ms"`
}

type AutoSpawnSpec struct {
	Script string  `yaml:"script"`
	Rate   float64 `yaml:"rate"`
}

type AudioSpec struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// Engine is the full set of engine tunables.
type Engine struct {
	NarrowWidth     float64       `yaml:"narrow_width"`
	ShapeSize       Tier          `yaml:"shape_size"`
	SpawnAbove      Tier          `yaml:"spawn_above"`
	EllipseSegments IntTier       `yaml:"ellipse_segments"`
	ShapesPerAction int           `yaml:"shapes_per_action"`
	FadeIn          float64       `yaml:"fade_in"`
	Boundary        BoundarySpec  `yaml:"boundary"`
	Physics         PhysicsSpec   `yaml:"physics"`
	Stats           StatsSpec     `yaml:"stats"`
	AutoSpawn       AutoSpawnSpec `yaml:"autospawn"`
	Audio           AudioSpec     `yaml:"audio"`
	Palette         []YAMLColor   `yaml:"palette"`
}

// LoadEngine reads and validates the engine tunables.
func LoadEngine() (*Engine, error) {
	spec, err := LoadSpec[Engine](EngineFile)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate %s: %w", EngineFile, err)
	}
	return &spec, nil
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("config: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("config: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Validate checks the invariants the engine relies on.
func (e *Engine) Validate() error {
	if e == nil {
		return errors.New("config: nil engine spec")
	}
	if len(e.Palette) == 0 {
		return ErrEmptyPalette
	}
	if e.Physics.Timestep <= 0 {
		return ErrBadTimestep
	}
	for _, t := range []Tier{e.ShapeSize, e.SpawnAbove, e.Boundary.TopOffset} {
		if t.Narrow <= 0 || t.Wide <= 0 {
			return ErrBadTier
		}
	}
	if e.EllipseSegments.Narrow < 3 || e.EllipseSegments.Wide < 3 {
		return fmt.Errorf("%w: ellipse segments below 3", ErrBadTier)
	}
	for _, narrow := range []bool{true, false} {
		if e.Boundary.TopOffset.Pick(narrow) <= e.SpawnAbove.Pick(narrow)+e.ShapeSize.Pick(narrow) {
			return ErrTopOffset
		}
	}
	return nil
}

// Colors returns the palette as concrete colours.
func (e *Engine) Colors() []color.NRGBA {
	out := make([]color.NRGBA, 0, len(e.Palette))
	for _, c := range e.Palette {
		out = append(out, c.NRGBA)
	}
	return out
}

// YAMLColor accepts "#RRGGBB", "#RRGGBBAA" or a colornames name.
type YAMLColor struct {
	color.NRGBA
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.NRGBA = parsed
	return nil
}

// ParseColor parses a hex colour or a colornames name.
func ParseColor(raw string) (color.NRGBA, error) {
	v := strings.TrimSpace(raw)
	if named, ok := colornames.Map[strings.ToLower(v)]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}

	s := strings.TrimPrefix(v, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", raw)
	}

	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}

	r, err := parse(0)
	if err != nil {
		return color.NRGBA{}, err
	}
	g, err := parse(2)
	if err != nil {
		return color.NRGBA{}, err
	}
	b, err := parse(4)
	if err != nil {
		return color.NRGBA{}, err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return color.NRGBA{}, err
		}
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
