package kcc

import (
	"errors"
	"math"
	"testing"

	"github.com/Versifine/stride/internal/physics"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative speed", func(c *Config) { c.MaxGroundSpeed = -1 }},
		{"negative friction", func(c *Config) { c.GroundFriction = -0.1 }},
		{"NaN gravity", func(c *Config) { c.Gravity = math.NaN() }},
		{"zero standing height", func(c *Config) { c.StandingHeight = 0 }},
		{"negative half width", func(c *Config) { c.HalfWidth = -0.3 }},
		{"crouch taller than standing", func(c *Config) { c.CrouchHeight = c.StandingHeight + 0.1 }},
		{"step as tall as the shape", func(c *Config) { c.StepHeight = c.CrouchHeight }},
		{"flat max slope", func(c *Config) { c.MaxSlopeAngle = 0 }},
		{"vertical max slope", func(c *Config) { c.MaxSlopeAngle = 90 }},
		{"negative coyote window", func(c *Config) { c.CoyoteWindow = -1 }},
		{"zero iterations", func(c *Config) { c.SolverMaxIterations = 0 }},
		{"unknown shape", func(c *Config) { c.Shape = physics.ShapeKind(42) }},
		{"crouching sphere", func(c *Config) { c.Shape = physics.ShapeSphere }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want an error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want it to wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigValidate_SphereWithoutCrouch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shape = physics.ShapeSphere
	cfg.CrouchHeight = cfg.StandingHeight
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestConfigValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = -1
	cfg.SolverMaxIterations = 0

	err := cfg.Validate()
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("Validate() = %T, want a joined error", err)
	}
	if n := len(joined.Unwrap()); n != 2 {
		t.Fatalf("errors = %d, want 2: %v", n, err)
	}
}

func TestConfigMustValidatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustValidate did not panic on an invalid config")
		}
	}()
	cfg := DefaultConfig()
	cfg.StandingHeight = -1
	cfg.MustValidate()
}
