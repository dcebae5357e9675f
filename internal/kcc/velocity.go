package kcc

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// wishDirection turns the local move input into a world-space unit direction
// on the ground plane. amount is the input magnitude in [0, 1].
func wishDirection(in Input) (dir mgl64.Vec3, amount float64) {
	amount = in.Move.Len()
	if amount < minMoveDistance {
		return mgl64.Vec3{}, 0
	}
	sin, cos := math.Sincos(in.Yaw)
	forward := mgl64.Vec3{-sin, 0, -cos}
	right := mgl64.Vec3{cos, 0, -sin}
	dir = forward.Mul(in.Move.Y()).Add(right.Mul(in.Move.X()))
	return dir.Normalize(), math.Min(amount, 1)
}

func wishSpeed(amount float64, crouched bool, cfg Config) float64 {
	speed := amount * cfg.MaxGroundSpeed
	if crouched {
		speed *= cfg.CrouchSpeedScale
	}
	return speed
}

// applyFriction slows horizontal velocity. Below StopSpeed the drop is
// computed as if moving at StopSpeed, so slow drift stops quickly.
func applyFriction(v mgl64.Vec3, cfg Config, dt float64) mgl64.Vec3 {
	h := horizontal(v)
	speed := h.Len()
	if speed < minMoveDistance {
		return withY(mgl64.Vec3{}, v.Y())
	}
	drop := math.Max(speed, cfg.StopSpeed) * cfg.GroundFriction * dt
	scaled := h.Mul(math.Max(speed-drop, 0) / speed)
	return withY(scaled, v.Y())
}

// groundAccelerate pushes horizontal velocity along wishDir. The result never
// exceeds wishSpeed unless the character was already faster, in which case
// the speed is kept and only the direction changes.
func groundAccelerate(v, wishDir mgl64.Vec3, wishSpeed, amount float64, cfg Config, dt float64) mgl64.Vec3 {
	if amount <= 0 {
		return v
	}
	h := horizontal(v)
	limit := math.Max(wishSpeed, h.Len())
	h = h.Add(wishDir.Mul(cfg.GroundAcceleration * dt * amount))
	if speed := h.Len(); speed > limit {
		h = h.Mul(limit / speed)
	}
	return withY(h, v.Y())
}

// airAccelerate only limits the velocity component along wishDir. Speed
// perpendicular to it is untouched, which is what makes strafing gain speed.
func airAccelerate(v, wishDir mgl64.Vec3, wishSpeed, amount float64, cfg Config, dt float64) mgl64.Vec3 {
	if amount <= 0 {
		return v
	}
	current := v.Dot(wishDir)
	add := math.Min(wishSpeed, cfg.AirSpeedCap) - current
	if add <= 0 {
		return v
	}
	accel := math.Min(cfg.AirAcceleration*dt*amount, add)
	return v.Add(wishDir.Mul(accel))
}

func clampVelocity(v mgl64.Vec3, cfg Config) mgl64.Vec3 {
	if !finite(v) {
		slog.Warn("non-finite velocity reset", "velocity", v)
		return mgl64.Vec3{}
	}
	if speed := v.Len(); cfg.MaxSpeed > 0 && speed > cfg.MaxSpeed {
		return v.Mul(cfg.MaxSpeed / speed)
	}
	return v
}
