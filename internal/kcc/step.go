package kcc

import (
	"math"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

type StepResult struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	// Ground is the surface the character settled on.
	Ground physics.Hit
	// Height is the vertical gain over the starting position.
	Height float64
}

// blockedByWall reports whether a slide pass touched a surface too steep to
// walk on that is not a ceiling.
func blockedByWall(contacts []physics.Hit, cfg Config) bool {
	for _, c := range contacts {
		if isWall(c.Normal, cfg) {
			return true
		}
	}
	return false
}

// StepUp retries the horizontal part of disp from start after lifting the
// shape by up to StepHeight, then settles back down. It reports false when
// the lifted route is no better than slide, which then stands.
func StepUp(q ShapeQuery, shape physics.Shape, start, vel, disp mgl64.Vec3, slide SlideResult, cfg Config) (StepResult, bool) {
	move := horizontal(disp)
	if q == nil || cfg.StepHeight <= 0 || move.Len() < minMoveDistance {
		return StepResult{}, false
	}

	lift := cfg.StepHeight
	if hit, ok := q.Cast(shape, start, up, cfg.StepHeight+cfg.SkinWidth); ok {
		lift = math.Min(lift, hit.Distance-cfg.SkinWidth)
	}
	if lift < minMoveDistance {
		return StepResult{}, false
	}
	raised := start.Add(up.Mul(lift))

	if cfg.MinStepLedgeSpace > 0 {
		if _, ok := q.Cast(shape, raised, move.Normalize(), cfg.MinStepLedgeSpace); ok {
			return StepResult{}, false
		}
	}

	upper := MoveAndSlide(q, shape, raised, horizontal(vel), move, cfg)

	ground, ok := q.Cast(shape, upper.Position, down, lift+cfg.contactDistance())
	if !ok || !walkable(ground.Normal, cfg) {
		return StepResult{}, false
	}
	settled := upper.Position.Add(down.Mul(math.Max(ground.Distance-cfg.SkinWidth, 0)))

	gain := settled.Y() - start.Y()
	if gain < minMoveDistance || gain > cfg.StepHeight+cfg.SkinWidth {
		return StepResult{}, false
	}
	if distanceXZ(settled, start) <= distanceXZ(slide.Position, start)+minMoveDistance {
		return StepResult{}, false
	}

	return StepResult{
		Position: settled,
		Velocity: withY(upper.Velocity, slide.Velocity.Y()),
		Ground:   ground,
		Height:   gain,
	}, true
}
