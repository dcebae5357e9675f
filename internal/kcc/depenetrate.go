package kcc

import (
	"log/slog"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// maxDepenetrationSteps bounds how many separate overlaps one call resolves.
const maxDepenetrationSteps = 8

type DepenetrationResult struct {
	Position mgl64.Vec3
	// Push is the total correction applied.
	Push mgl64.Vec3
	// Resolved is false when the shape is still inside geometry, e.g. wedged
	// into a gap smaller than itself. Position is then the least embedded
	// spot found.
	Resolved bool
}

// Depenetrate moves shape out of solid geometry one overlap at a time, each
// time along the overlap's separating normal to SkinWidth of clearance.
func Depenetrate(q ShapeQuery, shape physics.Shape, pos mgl64.Vec3, cfg Config) DepenetrationResult {
	res := DepenetrationResult{Position: pos, Resolved: true}
	if q == nil {
		return res
	}

	bestPos, bestDepth := pos, -1.0
	cur := pos
	for i := 0; i < maxDepenetrationSteps; i++ {
		p, ok := q.Penetration(shape, cur)
		if !ok {
			res.Position = cur
			res.Push = cur.Sub(pos)
			return res
		}
		if bestDepth < 0 || p.Depth < bestDepth {
			bestPos, bestDepth = cur, p.Depth
		}
		cur = cur.Add(p.Normal.Mul(p.Depth + cfg.SkinWidth))
	}
	if _, ok := q.Penetration(shape, cur); !ok {
		res.Position = cur
		res.Push = cur.Sub(pos)
		return res
	}

	res.Position = bestPos
	res.Push = bestPos.Sub(pos)
	res.Resolved = false
	return res
}

// depenetrate runs at the start of the tick and after movement. At the start,
// a standing character whose collider no longer fits but whose crouched one
// does is crouched instead of pushed; standing up then waits for room as
// usual.
func (t *tick) depenetrate(allowCrouch bool) {
	s := &t.s
	if _, ok := t.q.Penetration(s.Shape, s.Position); !ok {
		return
	}

	if allowCrouch && !s.Crouched {
		crouched := t.cfg.ShapeFor(true)
		lowered := s.Position.Sub(t.crouchLift())
		if crouched != s.Shape && !t.q.Overlap(crouched, lowered) {
			s.Position = lowered
			s.Crouched = true
			s.Shape = crouched
			t.emit(EventCrouched, mgl64.Vec3{}, 0)
			return
		}
	}

	res := Depenetrate(t.q, s.Shape, s.Position, t.cfg)
	s.Position = res.Position
	if push := res.Push; push.Len() > minMoveDistance {
		s.Velocity = clipInto(s.Velocity, push.Normalize())
	}
	if !res.Resolved {
		slog.Debug("character still embedded after depenetration", "pos", s.Position)
	}
}
