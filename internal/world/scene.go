package world

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Scene is the static level description loaded from YAML. Coordinates are
// metres with +Y up.
type Scene struct {
	Name   string                `yaml:"name"`
	Blocks []BlockRegion         `yaml:"blocks"`
	Boxes  []Box                 `yaml:"boxes"`
	Planes []PlaneSpec           `yaml:"planes"`
	Stairs []Flight              `yaml:"stairs"`
	Spawns map[string]mgl64.Vec3 `yaml:"spawns"`
}

// BlockRegion fills every unit voxel between From and To, inclusive.
type BlockRegion struct {
	From [3]int `yaml:"from"`
	To   [3]int `yaml:"to"`
}

type Box struct {
	Min mgl64.Vec3 `yaml:"min"`
	Max mgl64.Vec3 `yaml:"max"`
}

// PlaneSpec is a solid half-space. Tilted planes make slopes.
type PlaneSpec struct {
	Normal mgl64.Vec3 `yaml:"normal"`
	Point  mgl64.Vec3 `yaml:"point"`
}

type Flight struct {
	Base   mgl64.Vec3 `yaml:"base"`
	Ascend mgl64.Vec3 `yaml:"ascend"`
	Steps  int        `yaml:"steps"`
	Rise   float64    `yaml:"rise"`
	Run    float64    `yaml:"run"`
	Width  float64    `yaml:"width"`
}

// maxRegionBlocks bounds a single block region so a typo cannot allocate
// millions of boxes.
const maxRegionBlocks = 1 << 16

func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	scene, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return scene, nil
}

func ParseScene(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return &scene, nil
}

func (s *Scene) Validate() error {
	var errs []error
	for i, r := range s.Blocks {
		if n := r.count(); n > maxRegionBlocks {
			errs = append(errs, fmt.Errorf("blocks[%d]: %d blocks exceeds limit %d", i, n, maxRegionBlocks))
		}
	}
	for i, p := range s.Planes {
		if p.Normal.Len() == 0 {
			errs = append(errs, fmt.Errorf("planes[%d]: normal is zero", i))
		}
	}
	for i, f := range s.Stairs {
		if f.Steps <= 0 || f.Rise <= 0 || f.Run <= 0 || f.Width <= 0 {
			errs = append(errs, fmt.Errorf("stairs[%d]: steps, rise, run and width must be positive", i))
		}
		if (mgl64.Vec3{f.Ascend.X(), 0, f.Ascend.Z()}).Len() == 0 {
			errs = append(errs, fmt.Errorf("stairs[%d]: ascend has no horizontal component", i))
		}
	}
	return errors.Join(errs...)
}

// Build creates a collision world holding the scene geometry.
func (s *Scene) Build() *physics.World {
	w := physics.NewWorld()
	for _, r := range s.Blocks {
		lo, hi := r.bounds()
		for x := lo[0]; x <= hi[0]; x++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for z := lo[2]; z <= hi[2]; z++ {
					w.AddBlock(x, y, z)
				}
			}
		}
	}
	for _, b := range s.Boxes {
		w.AddBox(b.Min, b.Max)
	}
	for _, p := range s.Planes {
		w.AddPlane(p.Normal, p.Point)
	}
	for _, f := range s.Stairs {
		w.AddStairs(f.Base, f.Ascend, f.Steps, f.Rise, f.Run, f.Width)
	}
	return w
}

// Spawn returns the named spawn point's feet position.
func (s *Scene) Spawn(name string) (mgl64.Vec3, bool) {
	p, ok := s.Spawns[name]
	return p, ok
}

// SpawnNames lists spawn points in a stable order.
func (s *Scene) SpawnNames() []string {
	names := make([]string, 0, len(s.Spawns))
	for name := range s.Spawns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r BlockRegion) bounds() (lo, hi [3]int) {
	for i := 0; i < 3; i++ {
		lo[i], hi[i] = min(r.From[i], r.To[i]), max(r.From[i], r.To[i])
	}
	return lo, hi
}

func (r BlockRegion) count() int {
	lo, hi := r.bounds()
	n := 1
	for i := 0; i < 3; i++ {
		n *= hi[i] - lo[i] + 1
		if n > maxRegionBlocks {
			return n
		}
	}
	return n
}
