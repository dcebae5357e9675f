package kcc

import (
	"math"
	"testing"
	"time"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	testDT = time.Second / 60
	// yawPlusX makes "forward" point down +X.
	yawPlusX = -math.Pi / 2
)

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// blockedQuery forces Overlap to report solid geometry while blocked is set.
type blockedQuery struct {
	ShapeQuery
	blocked bool
}

func (q *blockedQuery) Overlap(shape physics.Shape, pos mgl64.Vec3) bool {
	return q.blocked || q.ShapeQuery.Overlap(shape, pos)
}

// countingQuery counts casts so tests can check work done.
type countingQuery struct {
	ShapeQuery
	casts int
}

func (q *countingQuery) Cast(shape physics.Shape, origin, dir mgl64.Vec3, maxDist float64) (physics.Hit, bool) {
	q.casts++
	return q.ShapeQuery.Cast(shape, origin, dir, maxDist)
}

func floorWorld() *physics.World {
	w := physics.NewWorld()
	w.AddBox(mgl64.Vec3{-50, -1, -50}, mgl64.Vec3{50, 0, 50})
	return w
}

// groundedAt returns a standing character resting on flat ground at feet.
func groundedAt(feet mgl64.Vec3, cfg Config) State {
	s := NewState(feet.Add(mgl64.Vec3{0, cfg.SkinWidth, 0}), cfg)
	s.Grounded = true
	s.GroundNormal = up
	return s
}

func forwardInput(yaw float64) Input {
	return Input{Move: mgl64.Vec2{0, 1}, Yaw: yaw}
}

func run(s State, cfg Config, in Input, q ShapeQuery, ticks int) (State, []Event) {
	var all []Event
	for i := 0; i < ticks; i++ {
		var events []Event
		s, events = Tick(s, cfg, in, testDT, q)
		all = append(all, events...)
	}
	return s, all
}
