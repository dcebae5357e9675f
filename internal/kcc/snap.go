package kcc

import (
	"math"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

type SnapResult struct {
	Position mgl64.Vec3
	Ground   physics.Hit
	// Drop is how far the character was pulled down.
	Drop float64
}

// SnapToGround looks for walkable ground within SnapDistance below pos and,
// if found, returns the position resting on it at skin distance.
func SnapToGround(q ShapeQuery, shape physics.Shape, pos mgl64.Vec3, cfg Config) (SnapResult, bool) {
	if q == nil || cfg.SnapDistance <= 0 {
		return SnapResult{}, false
	}
	hit, ok := q.Cast(shape, pos, down, cfg.SnapDistance+cfg.SkinWidth)
	if !ok || !walkable(hit.Normal, cfg) {
		return SnapResult{}, false
	}
	drop := math.Max(hit.Distance-cfg.SkinWidth, 0)
	return SnapResult{
		Position: pos.Add(down.Mul(drop)),
		Ground:   hit,
		Drop:     drop,
	}, true
}
