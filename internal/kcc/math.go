package kcc

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// minMoveDistance is the shortest displacement worth casting.
	minMoveDistance = 1e-7

	// slideTolerance is how far a vector may point into a plane and still count as tangent.
	slideTolerance = 1e-9

	// parallelTolerance bounds |n1 x n2| below which two contact normals are treated as parallel.
	parallelTolerance = 1e-6

	// wallTolerance keeps overhangs and ceilings out of the step-up trigger.
	wallTolerance = 1e-6
)

var (
	up   = mgl64.Vec3{0, 1, 0}
	down = mgl64.Vec3{0, -1, 0}
)

func horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

func withY(v mgl64.Vec3, y float64) mgl64.Vec3 {
	v[1] = y
	return v
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// clipInto removes the part of v that points into the plane with normal n.
// Motion away from or along the plane is left alone.
func clipInto(v, n mgl64.Vec3) mgl64.Vec3 {
	if d := v.Dot(n); d < 0 {
		return v.Sub(n.Mul(d))
	}
	return v
}

func walkable(n mgl64.Vec3, cfg Config) bool {
	return n.Y() >= cfg.minWalkCos()-slideTolerance
}

func isWall(n mgl64.Vec3, cfg Config) bool {
	return !walkable(n, cfg) && n.Y() >= -wallTolerance
}

func distanceXZ(a, b mgl64.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}
