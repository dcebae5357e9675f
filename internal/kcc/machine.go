package kcc

import (
	"github.com/go-gl/mathgl/mgl64"
)

// decideJump runs before the velocity model so a jump on the first tick of
// ground contact skips friction.
func (t *tick) decideJump() {
	s := &t.s
	switch {
	case t.in.JumpPressed && (s.Grounded || s.CoyoteTimer > 0):
		t.jump()
	case t.in.JumpPressed:
		s.JumpBufferTimer = t.cfg.JumpBufferWindow
		t.bufferedNow = true
	case t.cfg.AutoJump && t.in.JumpHeld && s.Grounded:
		t.jump()
	}
}

func (t *tick) jump() {
	s := &t.s
	s.Velocity[1] = t.cfg.JumpSpeed()
	s.Grounded = false
	s.GroundNormal = mgl64.Vec3{}
	s.CoyoteTimer = 0
	s.JumpBufferTimer = 0
	t.jumped = true
	t.emit(EventJumped, mgl64.Vec3{}, 0)
}

// updateAirState handles the grounded/airborne transitions of this tick.
func (t *tick) updateAirState() {
	s := &t.s
	switch {
	case !t.wasGrounded && s.Grounded:
		t.emit(EventLanded, s.GroundNormal, 0)
		s.CoyoteTimer = 0
		if s.JumpBufferTimer > 0 {
			t.jump()
		}
	case t.wasGrounded && !s.Grounded && !t.jumped:
		t.emit(EventLeftGround, mgl64.Vec3{}, 0)
		s.CoyoteTimer = t.cfg.CoyoteWindow
	}
}

// updateTimers counts both windows down by one tick. The coyote window counts
// the tick that started it; the jump buffer does not.
func (t *tick) updateTimers() {
	s := &t.s
	if !s.Grounded && s.CoyoteTimer > 0 {
		s.CoyoteTimer = max(s.CoyoteTimer-t.dt, 0)
	}
	if s.JumpBufferTimer > 0 && !t.bufferedNow {
		s.JumpBufferTimer = max(s.JumpBufferTimer-t.dt, 0)
	}
}

// updateCrouch switches the collider height with the feet kept in place.
// Standing up waits until the standing shape fits.
func (t *tick) updateCrouch() {
	s := &t.s
	want := t.in.CrouchPressed || t.in.CrouchHeld
	standing := t.cfg.ShapeFor(false)
	crouched := t.cfg.ShapeFor(true)
	lift := t.crouchLift()

	switch {
	case want && !s.Crouched:
		s.Position = s.Position.Sub(lift)
		s.Crouched = true
		s.Shape = crouched
		t.emit(EventCrouched, mgl64.Vec3{}, 0)
	case !want && s.Crouched:
		pos := s.Position.Add(lift)
		if t.q.Overlap(standing, pos) {
			return
		}
		s.Position = pos
		s.Crouched = false
		s.Shape = standing
		t.emit(EventStood, mgl64.Vec3{}, 0)
	}
}

// crouchLift is how far the centre rises when going from crouched to standing.
func (t *tick) crouchLift() mgl64.Vec3 {
	return mgl64.Vec3{0, t.cfg.ShapeFor(false).HalfHeight() - t.cfg.ShapeFor(true).HalfHeight(), 0}
}
