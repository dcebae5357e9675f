package kcc

import (
	"math"
	"time"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Input is one tick of intent. Move is in the character's ground plane:
// X strafes right, Y walks forward. Yaw is in radians, 0 looks down -Z.
type Input struct {
	Move          mgl64.Vec2
	Yaw           float64
	JumpPressed   bool
	JumpHeld      bool
	CrouchPressed bool
	CrouchHeld    bool
}

func (in Input) normalized() Input {
	if math.IsNaN(in.Move.X()) || math.IsNaN(in.Move.Y()) || math.IsInf(in.Move.X(), 0) || math.IsInf(in.Move.Y(), 0) {
		in.Move = mgl64.Vec2{}
	}
	if l := in.Move.Len(); l > 1 {
		in.Move = in.Move.Mul(1 / l)
	}
	if math.IsNaN(in.Yaw) || math.IsInf(in.Yaw, 0) {
		in.Yaw = 0
	}
	return in
}

// State is everything that persists between ticks for one character.
// Position is the centre of Shape.
type State struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3

	Grounded bool
	// GroundNormal is the zero vector unless Grounded.
	GroundNormal mgl64.Vec3

	Crouched bool

	CoyoteTimer     time.Duration
	JumpBufferTimer time.Duration

	Shape physics.Shape
}

// NewState places a standing, airborne character with its feet at feet.
func NewState(feet mgl64.Vec3, cfg Config) State {
	shape := cfg.ShapeFor(false)
	return State{
		Position: feet.Add(mgl64.Vec3{0, shape.HalfHeight(), 0}),
		Shape:    shape,
	}
}

// Reshape applies the collider of cfg while keeping the feet where they are.
func (s State) Reshape(cfg Config) State {
	feet := s.Feet()
	s.Shape = cfg.ShapeFor(s.Crouched)
	s.Position = feet.Add(mgl64.Vec3{0, s.Shape.HalfHeight(), 0})
	return s
}

func (s State) Feet() mgl64.Vec3 {
	return s.Position.Sub(mgl64.Vec3{0, s.Shape.HalfHeight(), 0})
}

// HorizontalSpeed is the ground-plane speed, the quantity air strafing grows.
func (s State) HorizontalSpeed() float64 {
	return horizontal(s.Velocity).Len()
}

// CrouchRatio is 0 standing and 1 fully crouched.
func (s State) CrouchRatio(cfg Config) float64 {
	span := cfg.StandingHeight - cfg.CrouchHeight
	if span <= 0 {
		if s.Crouched {
			return 1
		}
		return 0
	}
	return mgl64.Clamp((cfg.StandingHeight-s.Shape.Height)/span, 0, 1)
}

// Output is the read-only view handed to camera and rendering code.
type Output struct {
	Position    mgl64.Vec3
	EyePosition mgl64.Vec3
	CrouchRatio float64
	Grounded    bool
}

func (s State) Output(cfg Config) Output {
	ratio := s.CrouchRatio(cfg)
	eye := cfg.StandingViewHeight + (cfg.CrouchViewHeight-cfg.StandingViewHeight)*ratio
	return Output{
		Position:    s.Position,
		EyePosition: s.Feet().Add(mgl64.Vec3{0, eye, 0}),
		CrouchRatio: ratio,
		Grounded:    s.Grounded,
	}
}
