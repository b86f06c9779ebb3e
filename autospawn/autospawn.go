package autospawn

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/shapefall/common"
	"github.com/milk9111/shapefall/config"
	"github.com/milk9111/shapefall/ecs"
)

const (
	MaxRate = 10.0
	// maxPerTick bounds catch-up after a rate change.
	maxPerTick = 4
)

const dispatchScript = `
if __run {
	spawn(__engine)
}
`

// Target is the slice of the engine a spawn script may drive.
type Target interface {
	Size() (float64, float64)
	ShapeSize() float64
	SelectedType() string
	IsRunning() bool
	CreateShape(x, y float64, kind string) (ecs.Entity, bool)
}

// Spawner runs a tengo spawn script at a fixed rate per second of ticks.
type Spawner struct {
	target   Target
	dt       float64
	rate     float64
	acc      float64
	path     string
	compiled *tengo.Compiled
}

// New creates a spawner advanced by dt seconds per Update.
func New(target Target, dt float64) *Spawner {
	return &Spawner{target: target, dt: dt}
}

// Load compiles the named script from the config scripts directory.
func (s *Spawner) Load(name string) error {
	src, err := config.LoadScript(name)
	if err != nil {
		return fmt.Errorf("autospawn: load %s: %w", name, err)
	}
	return s.Compile(name, src)
}

// Compile installs script source. On error the previous script stays.
func (s *Spawner) Compile(name string, src []byte) error {
	script := tengo.NewScript([]byte(string(src) + "\n" + dispatchScript))
	if err := script.Add("__run", false); err != nil {
		return fmt.Errorf("autospawn: compile %s: %w", name, err)
	}
	if err := script.Add("__engine", map[string]any{}); err != nil {
		return fmt.Errorf("autospawn: compile %s: %w", name, err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("autospawn: compile %s: %w", name, err)
	}
	// A dry run surfaces top-level runtime errors before the script goes live.
	if err := compiled.Run(); err != nil {
		return fmt.Errorf("autospawn: run %s: %w", name, err)
	}
	if !compiled.IsDefined("spawn") {
		return fmt.Errorf("autospawn: %s does not define spawn", name)
	}
	s.compiled = compiled
	s.path = name
	return nil
}

// ApplyConfig applies a reloaded autospawn section. The script is
// recompiled only when its name changed and the rate only when the
// configured rate changed, so a rate set from the panel survives unrelated
// edits.
func (s *Spawner) ApplyConfig(prev, next config.AutoSpawnSpec) error {
	if next.Rate != prev.Rate {
		s.SetRate(next.Rate)
	}
	if next.Script != prev.Script {
		return s.Load(next.Script)
	}
	return nil
}

// Path is the currently loaded script name.
func (s *Spawner) Path() string {
	return s.path
}

// Matches reports whether a changed file is the loaded script.
func (s *Spawner) Matches(changed string) bool {
	if s.path == "" {
		return false
	}
	changed = strings.ReplaceAll(changed, "\\", "/")
	return strings.HasSuffix(changed, "/"+strings.TrimPrefix(s.path, "scripts/")) || changed == s.path
}

// SetRate sets shapes per second, clamped to [0, MaxRate].
func (s *Spawner) SetRate(r float64) {
	if math.IsNaN(r) {
		r = 0
	}
	s.rate = common.Clamp(r, 0, MaxRate)
	if s.rate == 0 {
		s.acc = 0
	}
}

func (s *Spawner) Rate() float64 {
	return s.rate
}

// Update accumulates time and fires the script when due. Nothing happens
// until the session is running.
func (s *Spawner) Update() {
	if s == nil || s.rate <= 0 || s.compiled == nil || s.target == nil || !s.target.IsRunning() {
		return
	}
	s.acc += s.dt * s.rate
	fired := 0
	for s.acc >= 1 && fired < maxPerTick {
		s.acc--
		fired++
		if err := s.Fire(); err != nil {
			log.Printf("autospawn: %v", err)
			s.acc = 0
			return
		}
	}
	if s.acc > 1 {
		s.acc = 1
	}
}

// Fire runs the script's spawn function once.
func (s *Spawner) Fire() error {
	if s.compiled == nil {
		return fmt.Errorf("no script loaded")
	}
	if err := s.compiled.Set("__run", true); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.engineObject()); err != nil {
		return err
	}
	defer func() { _ = s.compiled.Set("__run", false) }()
	if err := s.compiled.Run(); err != nil {
		return fmt.Errorf("run %s: %w", s.path, err)
	}
	return nil
}

func (s *Spawner) engineObject() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["width"] = &tengo.UserFunction{Name: "width", Value: func(args ...tengo.Object) (tengo.Object, error) {
		w, _ := s.target.Size()
		return &tengo.Float{Value: w}, nil
	}}
	values["height"] = &tengo.UserFunction{Name: "height", Value: func(args ...tengo.Object) (tengo.Object, error) {
		_, h := s.target.Size()
		return &tengo.Float{Value: h}, nil
	}}
	values["size"] = &tengo.UserFunction{Name: "size", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: s.target.ShapeSize()}, nil
	}}
	values["selected"] = &tengo.UserFunction{Name: "selected", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: s.target.SelectedType()}, nil
	}}
	values["spawn"] = &tengo.UserFunction{Name: "spawn", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		x, okX := tengo.ToFloat64(args[0])
		y, okY := tengo.ToFloat64(args[1])
		if !okX || !okY {
			return nil, tengo.ErrInvalidArgumentType{Name: "x/y", Expected: "float", Found: args[0].TypeName()}
		}
		kind := ""
		if len(args) > 2 {
			kind = objectAsString(args[2])
		}
		if _, ok := s.target.CreateShape(x, y, kind); !ok {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
