package kcc

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Tick advances one character by one fixed step. It is a pure function of its
// arguments: the returned state replaces the old one and the events describe
// what happened, in order.
//
// Stages run strictly in this order: depenetration, jump decision and
// velocity, move and slide, step-up, depenetration, ground detection, ground
// snap, then the grounded/crouch state machine.
func Tick(state State, cfg Config, in Input, dt time.Duration, q ShapeQuery) (State, []Event) {
	if dt <= 0 || q == nil {
		return state, nil
	}

	t := &tick{
		cfg:         cfg,
		in:          in.normalized(),
		dt:          dt,
		sec:         dt.Seconds(),
		q:           q,
		s:           state,
		wasGrounded: state.Grounded,
	}
	if t.s.Shape != cfg.ShapeFor(t.s.Crouched) {
		t.s = t.s.Reshape(cfg)
	}

	t.depenetrate(true)
	t.decideJump()
	t.updateVelocity()
	start, vel := t.s.Position, t.s.Velocity
	slide := t.move()
	t.stepUp(start, vel, slide)
	t.depenetrate(false)
	t.updateGround()
	t.updateAirState()
	t.updateTimers()
	t.updateCrouch()

	return t.s, t.events
}

type tick struct {
	cfg Config
	in  Input
	dt  time.Duration
	sec float64
	q   ShapeQuery

	s      State
	events []Event

	wasGrounded bool
	jumped      bool
	// bufferedNow marks a jump buffer started this tick, which is not counted down.
	bufferedNow bool
	disp        mgl64.Vec3
}

func (t *tick) emit(kind EventKind, normal mgl64.Vec3, height float64) {
	t.events = append(t.events, Event{
		Kind:     kind,
		Position: t.s.Feet(),
		Normal:   normal,
		Height:   height,
	})
}

func (t *tick) updateVelocity() {
	dir, amount := wishDirection(t.in)
	speed := wishSpeed(amount, t.s.Crouched, t.cfg)

	v := t.s.Velocity
	if t.s.Grounded {
		v[1] = 0
		v = applyFriction(v, t.cfg, t.sec)
		v = groundAccelerate(v, dir, speed, amount, t.cfg, t.sec)
	} else {
		v = airAccelerate(v, dir, speed, amount, t.cfg, t.sec)
		if !t.jumped {
			v[1] -= t.cfg.Gravity * t.sec
		}
	}
	t.s.Velocity = clampVelocity(v, t.cfg)
}

func (t *tick) move() SlideResult {
	t.disp = t.s.Velocity.Mul(t.sec)
	if t.s.Grounded {
		t.disp[1] = 0
	}
	slide := MoveAndSlide(t.q, t.s.Shape, t.s.Position, t.s.Velocity, t.disp, t.cfg)
	t.s.Position = slide.Position
	t.s.Velocity = slide.Velocity
	if slide.Clamped {
		t.emit(EventSolverClamped, mgl64.Vec3{}, 0)
	}
	return slide
}

func (t *tick) stepUp(start, vel mgl64.Vec3, slide SlideResult) {
	if !t.s.Grounded && !t.cfg.StepFromAir {
		return
	}
	if !blockedByWall(slide.Contacts, t.cfg) {
		return
	}
	step, ok := StepUp(t.q, t.s.Shape, start, vel, t.disp, slide, t.cfg)
	if !ok {
		return
	}
	t.s.Position = step.Position
	t.s.Velocity = step.Velocity
	t.emit(EventSteppedUp, step.Ground.Normal, step.Height)
}

// updateGround runs the detector and, when it reports airborne right after
// being grounded, tries to snap back down.
func (t *tick) updateGround() {
	probe := DetectGround(t.q, t.s.Shape, t.s.Position, t.s.Velocity.Y(), t.cfg)
	grounded := probe.Grounded && !t.jumped
	normal := probe.Hit.Normal
	if grounded && probe.Hit.Distance > t.cfg.SkinWidth {
		// Settle onto the contact so the character never hovers within the margin.
		t.s.Position = t.s.Position.Add(down.Mul(probe.Hit.Distance - t.cfg.SkinWidth))
	}

	if !grounded && t.wasGrounded && !t.jumped && t.s.Velocity.Y() <= 0 {
		if snap, ok := SnapToGround(t.q, t.s.Shape, t.s.Position, t.cfg); ok {
			t.s.Position = snap.Position
			grounded = true
			normal = snap.Ground.Normal
			if snap.Drop > t.cfg.StepDownEventDistance {
				t.emit(EventSteppedDown, normal, snap.Drop)
			}
		}
	}

	t.s.Grounded = grounded
	if grounded {
		t.s.GroundNormal = normal
		t.s.Velocity = clipInto(t.s.Velocity, normal)
	} else {
		t.s.GroundNormal = mgl64.Vec3{}
	}
}
