package kcc

import (
	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// GroundProbe is the result of one downward ground query.
type GroundProbe struct {
	Hit    physics.Hit
	HasHit bool
	// Walkable is true when the surface is no steeper than MaxSlopeAngle.
	Walkable bool
	Grounded bool
}

// DetectGround casts the shape down by StepHeight plus the contact distance.
// The long reach lets callers see ground a step below; Grounded only holds
// for walkable surfaces within SkinWidth+GroundMargin, and never while the
// character rises faster than UngroundSpeed.
func DetectGround(q ShapeQuery, shape physics.Shape, pos mgl64.Vec3, velY float64, cfg Config) GroundProbe {
	var probe GroundProbe
	if q == nil {
		return probe
	}

	reach := cfg.StepHeight + cfg.contactDistance()
	hit, ok := q.Cast(shape, pos, down, reach)
	if !ok {
		return probe
	}
	probe.Hit = hit
	probe.HasHit = true
	probe.Walkable = walkable(hit.Normal, cfg)
	probe.Grounded = probe.Walkable &&
		hit.Distance <= cfg.contactDistance() &&
		velY <= cfg.UngroundSpeed
	return probe
}

func (c Config) contactDistance() float64 {
	return c.SkinWidth + c.GroundMargin
}
