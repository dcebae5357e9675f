package kcc

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid controller config")

// Config holds the per-character tuning. It is read-only while ticking.
// Distances are metres, speeds metres per second, MaxSlopeAngle degrees.
type Config struct {
	Shape          physics.ShapeKind `yaml:"shape"`
	StandingHeight float64           `yaml:"standing_height"`
	CrouchHeight   float64           `yaml:"crouch_height"`
	HalfWidth      float64           `yaml:"half_width"`

	MaxGroundSpeed     float64 `yaml:"max_ground_speed"`
	GroundAcceleration float64 `yaml:"ground_acceleration"`
	GroundFriction     float64 `yaml:"ground_friction"`
	StopSpeed          float64 `yaml:"stop_speed"`
	CrouchSpeedScale   float64 `yaml:"crouch_speed_scale"`

	AirAcceleration float64 `yaml:"air_acceleration"`
	AirSpeedCap     float64 `yaml:"air_speed_cap"`

	Gravity       float64 `yaml:"gravity"`
	JumpHeight    float64 `yaml:"jump_height"`
	AutoJump      bool    `yaml:"auto_jump"`
	MaxSpeed      float64 `yaml:"max_speed"`
	UngroundSpeed float64 `yaml:"unground_speed"`

	MaxSlopeAngle         float64 `yaml:"max_slope_angle"`
	StepHeight            float64 `yaml:"step_height"`
	MinStepLedgeSpace     float64 `yaml:"min_step_ledge_space"`
	StepFromAir           bool    `yaml:"step_from_air"`
	SkinWidth             float64 `yaml:"skin_width"`
	GroundMargin          float64 `yaml:"ground_margin"`
	SnapDistance          float64 `yaml:"snap_distance"`
	StepDownEventDistance float64 `yaml:"step_down_event_distance"`

	CoyoteWindow     time.Duration `yaml:"coyote_window"`
	JumpBufferWindow time.Duration `yaml:"jump_buffer_window"`

	SolverMaxIterations int `yaml:"solver_max_iterations"`

	StandingViewHeight float64 `yaml:"standing_view_height"`
	CrouchViewHeight   float64 `yaml:"crouch_view_height"`
}

func DefaultConfig() Config {
	return Config{
		Shape:          physics.ShapeCylinder,
		StandingHeight: 1.8,
		CrouchHeight:   1.3,
		HalfWidth:      0.35,

		MaxGroundSpeed:     10,
		GroundAcceleration: 50,
		GroundFriction:     4,
		StopSpeed:          2.54,
		CrouchSpeedScale:   1.0 / 3.0,

		AirAcceleration: 120,
		AirSpeedCap:     0.76,

		Gravity:       20.3,
		JumpHeight:    1.5,
		MaxSpeed:      100,
		UngroundSpeed: 10,

		MaxSlopeAngle:         40,
		StepHeight:            0.5,
		MinStepLedgeSpace:     0.2,
		SkinWidth:             0.0075,
		GroundMargin:          0.05,
		SnapDistance:          0.5,
		StepDownEventDistance: 0.1,

		CoyoteWindow:     150 * time.Millisecond,
		JumpBufferWindow: 150 * time.Millisecond,

		SolverMaxIterations: 4,

		StandingViewHeight: 1.7,
		CrouchViewHeight:   1.2,
	}
}

// Validate reports every problem with the config, each wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"standing_height", c.StandingHeight},
		{"crouch_height", c.CrouchHeight},
		{"half_width", c.HalfWidth},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			fail("%s must be positive, got %v", p.name, p.value)
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"max_ground_speed", c.MaxGroundSpeed},
		{"ground_acceleration", c.GroundAcceleration},
		{"ground_friction", c.GroundFriction},
		{"stop_speed", c.StopSpeed},
		{"crouch_speed_scale", c.CrouchSpeedScale},
		{"air_acceleration", c.AirAcceleration},
		{"air_speed_cap", c.AirSpeedCap},
		{"gravity", c.Gravity},
		{"jump_height", c.JumpHeight},
		{"max_speed", c.MaxSpeed},
		{"unground_speed", c.UngroundSpeed},
		{"step_height", c.StepHeight},
		{"min_step_ledge_space", c.MinStepLedgeSpace},
		{"skin_width", c.SkinWidth},
		{"ground_margin", c.GroundMargin},
		{"snap_distance", c.SnapDistance},
		{"step_down_event_distance", c.StepDownEventDistance},
		{"standing_view_height", c.StandingViewHeight},
		{"crouch_view_height", c.CrouchViewHeight},
	}
	for _, n := range nonNegative {
		if n.value < 0 || math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			fail("%s must be a finite non-negative number, got %v", n.name, n.value)
		}
	}

	if c.CrouchHeight > c.StandingHeight {
		fail("crouch_height %.3f exceeds standing_height %.3f", c.CrouchHeight, c.StandingHeight)
	}
	if c.Shape == physics.ShapeSphere && c.CrouchHeight < c.StandingHeight {
		fail("a sphere keeps one size, crouch_height %.3f must equal standing_height %.3f", c.CrouchHeight, c.StandingHeight)
	}
	if usable := c.CrouchHeight; c.StepHeight >= usable {
		fail("step_height %.3f must be below the usable shape height %.3f", c.StepHeight, usable)
	}
	if c.MaxSlopeAngle <= 0 || c.MaxSlopeAngle >= 90 {
		fail("max_slope_angle must be within (0, 90) degrees, got %v", c.MaxSlopeAngle)
	}
	if c.CoyoteWindow < 0 || c.JumpBufferWindow < 0 {
		fail("coyote_window and jump_buffer_window must not be negative")
	}
	if c.SolverMaxIterations < 1 {
		fail("solver_max_iterations must be at least 1, got %d", c.SolverMaxIterations)
	}
	switch c.Shape {
	case physics.ShapeCuboid, physics.ShapeCylinder, physics.ShapeCapsule, physics.ShapeSphere:
	default:
		fail("unsupported shape %v", c.Shape)
	}

	return errors.Join(errs...)
}

// MustValidate panics on an invalid config. Bad tuning is a programmer error
// that no runtime state can produce.
func (c Config) MustValidate() Config {
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

// JumpSpeed is the launch velocity that reaches JumpHeight under Gravity.
func (c Config) JumpSpeed() float64 {
	return math.Sqrt(2 * c.Gravity * c.JumpHeight)
}

func (c Config) minWalkCos() float64 {
	return math.Cos(mgl64.DegToRad(c.MaxSlopeAngle))
}

// ShapeFor returns the collider for the given crouch state.
func (c Config) ShapeFor(crouched bool) physics.Shape {
	height := c.StandingHeight
	if crouched {
		height = c.CrouchHeight
	}
	return physics.Shape{Kind: c.Shape, Height: height, HalfWidth: c.HalfWidth}
}
