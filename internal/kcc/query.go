package kcc

import (
	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// ShapeQuery is the read-only view of collision geometry the controller needs.
// Implementations must be deterministic and free of side effects while a tick
// runs; physics.World satisfies it.
type ShapeQuery interface {
	// Cast sweeps shape from origin along the unit vector dir for at most
	// maxDist. ok is false when nothing is hit.
	Cast(shape physics.Shape, origin, dir mgl64.Vec3, maxDist float64) (hit physics.Hit, ok bool)
	// Overlap reports whether shape placed at pos intersects solid geometry.
	Overlap(shape physics.Shape, pos mgl64.Vec3) bool
	// Penetration reports the deepest overlap of shape at pos, with the
	// direction and distance that would separate it.
	Penetration(shape physics.Shape, pos mgl64.Vec3) (physics.Penetration, bool)
}

var _ ShapeQuery = (*physics.World)(nil)
