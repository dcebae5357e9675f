package kcc

import (
	"log/slog"
	"math"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// SlideResult is the outcome of one move-and-slide pass.
type SlideResult struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	// Contacts lists every surface touched, in order.
	Contacts   []physics.Hit
	Iterations int
	// Clamped is set when the iteration cap stopped the pass with
	// displacement left over.
	Clamped bool
}

// MoveAndSlide moves shape from pos by disp, sliding along whatever it hits.
// vel is clipped against the same planes so the returned velocity agrees
// with the motion actually made.
func MoveAndSlide(q ShapeQuery, shape physics.Shape, pos, vel, disp mgl64.Vec3, cfg Config) SlideResult {
	res := SlideResult{Position: pos, Velocity: vel}
	if q == nil {
		return res
	}

	remaining := disp
	planes := make([]mgl64.Vec3, 0, cfg.SolverMaxIterations)
	for res.Iterations < cfg.SolverMaxIterations {
		length := remaining.Len()
		if length < minMoveDistance {
			return res
		}
		res.Iterations++

		dir := remaining.Mul(1 / length)
		hit, ok := q.Cast(shape, res.Position, dir, length)
		if !ok {
			res.Position = res.Position.Add(remaining)
			return res
		}

		advance := math.Max(hit.Distance-cfg.SkinWidth, 0)
		res.Position = res.Position.Add(dir.Mul(advance))
		res.Contacts = append(res.Contacts, hit)

		var blocked bool
		remaining, blocked = clipAgainst(dir.Mul(length-advance), hit.Normal, planes)
		res.Velocity, _ = clipAgainst(res.Velocity, hit.Normal, planes)
		if blocked {
			res.Velocity = mgl64.Vec3{}
			return res
		}
		planes = append(planes, hit.Normal)
	}

	if remaining.Len() >= minMoveDistance {
		res.Clamped = true
		slog.Debug("move and slide ran out of iterations",
			"iterations", res.Iterations,
			"remaining", remaining.Len(),
		)
	}
	return res
}

// clipAgainst clips v onto the plane n. When the result still runs into an
// earlier plane of the same pass, v is instead projected onto the crease
// between the two planes; if the crease itself runs into a third plane the
// motion is blocked and the zero vector is returned.
func clipAgainst(v, n mgl64.Vec3, planes []mgl64.Vec3) (mgl64.Vec3, bool) {
	v = clipInto(v, n)
	for i, prev := range planes {
		if v.Dot(prev) >= -slideTolerance {
			continue
		}

		crease := n.Cross(prev)
		if crease.Len() < parallelTolerance {
			// Opposing walls: only motion along both survives.
			v = v.Sub(n.Mul(v.Dot(n)))
			continue
		}
		crease = crease.Normalize()
		v = crease.Mul(v.Dot(crease))

		for j, other := range planes {
			if j != i && v.Dot(other) < -slideTolerance {
				return mgl64.Vec3{}, true
			}
		}
		return v, false
	}
	return v, false
}
