package sim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Versifine/stride/internal/kcc"
	"github.com/Versifine/stride/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Scenario lists the characters of a headless run and what drives them.
type Scenario struct {
	Ticks  int        `yaml:"ticks"`
	Bodies []BodySpec `yaml:"bodies"`
}

// BodySpec places one character at a named scene spawn or an explicit
// position. It is driven by a tengo script or a timeline, never both.
type BodySpec struct {
	ID       string      `yaml:"id"`
	Spawn    string      `yaml:"spawn"`
	Position *mgl64.Vec3 `yaml:"position"`
	Script   string      `yaml:"script"`
	Timeline Timeline    `yaml:"timeline"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range sc.Bodies {
		if p := sc.Bodies[i].Script; p != "" && !filepath.IsAbs(p) {
			sc.Bodies[i].Script = filepath.Join(dir, p)
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(sc.Bodies))
	for i, b := range sc.Bodies {
		if b.ID == "" {
			errs = append(errs, fmt.Errorf("bodies[%d]: id is empty", i))
		} else if seen[b.ID] {
			errs = append(errs, fmt.Errorf("bodies[%d]: %w: %s", i, ErrDuplicateBody, b.ID))
		}
		seen[b.ID] = true
		if b.Script != "" && len(b.Timeline) > 0 {
			errs = append(errs, fmt.Errorf("body %s: script and timeline are exclusive", b.ID))
		}
		if b.Spawn == "" && b.Position == nil {
			errs = append(errs, fmt.Errorf("body %s: needs a spawn or a position", b.ID))
		}
		if err := b.Timeline.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("body %s: %w", b.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Populate spawns every body of the scenario into s. Scripts shared by several
// bodies are compiled once.
func (sc *Scenario) Populate(s *Simulation, scene *world.Scene, cfg kcc.Config) error {
	scripts := make(map[string]*Script)
	for _, spec := range sc.Bodies {
		feet, err := spec.feet(scene)
		if err != nil {
			return err
		}

		var driver Driver = Idle
		switch {
		case spec.Script != "":
			script, ok := scripts[spec.Script]
			if !ok {
				script, err = LoadScript(spec.Script)
				if err != nil {
					return fmt.Errorf("body %s: %w", spec.ID, err)
				}
				scripts[spec.Script] = script
			}
			driver = script.Driver()
		case len(spec.Timeline) > 0:
			driver = spec.Timeline
		}

		if _, err := s.Spawn(spec.ID, feet, cfg, driver); err != nil {
			return err
		}
	}
	return nil
}

func (b BodySpec) feet(scene *world.Scene) (mgl64.Vec3, error) {
	if b.Position != nil {
		return *b.Position, nil
	}
	if scene == nil {
		return mgl64.Vec3{}, fmt.Errorf("body %s: spawn %q needs a scene", b.ID, b.Spawn)
	}
	p, ok := scene.Spawn(b.Spawn)
	if !ok {
		return mgl64.Vec3{}, fmt.Errorf("body %s: unknown spawn %q", b.ID, b.Spawn)
	}
	return p, nil
}
