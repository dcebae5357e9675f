package kcc

import (
	"testing"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

func boxShape() physics.Shape {
	return physics.Shape{Kind: physics.ShapeCuboid, Height: 1.8, HalfWidth: 0.35}
}

func TestMoveAndSlide_NoObstacle(t *testing.T) {
	cfg := DefaultConfig()
	w := physics.NewWorld()

	start := mgl64.Vec3{1, 2, 3}
	disp := mgl64.Vec3{1.5, -0.3, 2}
	res := MoveAndSlide(w, boxShape(), start, disp, disp, cfg)

	want := start.Add(disp)
	for i := 0; i < 3; i++ {
		approxEqual(t, res.Position[i], want[i], 1e-12, "position")
	}
	if len(res.Contacts) != 0 || res.Clamped {
		t.Fatalf("contacts=%d clamped=%v, want a free move", len(res.Contacts), res.Clamped)
	}
	if res.Velocity != disp {
		t.Fatalf("velocity = %v, want unchanged %v", res.Velocity, disp)
	}
}

func TestMoveAndSlide_ZeroDisplacementSkipsCasting(t *testing.T) {
	q := &countingQuery{ShapeQuery: floorWorld()}
	res := MoveAndSlide(q, boxShape(), mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, mgl64.Vec3{}, DefaultConfig())
	if q.casts != 0 || res.Iterations != 0 {
		t.Fatalf("casts=%d iterations=%d, want none", q.casts, res.Iterations)
	}
}

func TestMoveAndSlide_SinglePlane(t *testing.T) {
	cfg := DefaultConfig()
	w := physics.NewWorld()
	w.AddPlane(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{2, 0, 0})

	vel := mgl64.Vec3{8, 0, 2}
	disp := mgl64.Vec3{4, 0, 1}
	res := MoveAndSlide(w, boxShape(), mgl64.Vec3{}, vel, disp, cfg)

	approxEqual(t, res.Velocity.X(), 0, 1e-9, "velocity along normal")
	approxEqual(t, res.Velocity.Z(), 2, 1e-9, "tangential velocity")
	approxEqual(t, res.Position.Z(), 1, 1e-9, "tangential displacement")
	if x := res.Position.X(); x > 2-0.35+1e-9 || x < 2-0.35-cfg.SkinWidth-1e-9 {
		t.Fatalf("x = %.8f, want within skin of the wall", x)
	}
}

func TestMoveAndSlide_Corner(t *testing.T) {
	cfg := DefaultConfig()
	w := physics.NewWorld()
	w.AddBox(mgl64.Vec3{1, -1, -5}, mgl64.Vec3{2, 3, 5})
	w.AddBox(mgl64.Vec3{-5, -1, 1}, mgl64.Vec3{5, 3, 2})

	start := mgl64.Vec3{0, 1, 0}
	disp := mgl64.Vec3{2, 0, 2}
	res := MoveAndSlide(w, boxShape(), start, disp, disp, cfg)

	limit := 1 - 0.35 + 1e-9
	if res.Position.X() > limit || res.Position.Z() > limit {
		t.Fatalf("position = %v, penetrates a wall", res.Position)
	}
	if moved := res.Position.Sub(start).Len(); moved > disp.Len() {
		t.Fatalf("moved %.6f, more than the requested %.6f", moved, disp.Len())
	}
	if res.Velocity.X() > 1e-9 || res.Velocity.Z() > 1e-9 {
		t.Fatalf("velocity = %v, still points into a wall", res.Velocity)
	}
	if res.Clamped {
		t.Fatalf("corner should resolve within the iteration cap")
	}
}

func TestMoveAndSlide_Crease(t *testing.T) {
	cfg := DefaultConfig()
	w := physics.NewWorld()
	n1 := mgl64.Vec3{1, 1, 0}.Normalize()
	n2 := mgl64.Vec3{-1, 1, 0}.Normalize()
	w.AddPlane(n1, mgl64.Vec3{})
	w.AddPlane(n2, mgl64.Vec3{})

	ball := physics.Shape{Kind: physics.ShapeSphere, Height: 1, HalfWidth: 0.5}
	disp := mgl64.Vec3{0, -3, 2}
	res := MoveAndSlide(w, ball, mgl64.Vec3{0, 3, 0}, disp, disp, cfg)

	approxEqual(t, res.Position.X(), 0, 1e-9, "x")
	approxEqual(t, res.Position.Z(), 2, 1e-9, "z")
	for i, n := range []mgl64.Vec3{n1, n2} {
		if gap := n.Dot(res.Position) - 0.5; gap < -1e-9 {
			t.Fatalf("plane %d penetrated by %.8f", i, -gap)
		}
	}
	approxEqual(t, res.Velocity.X(), 0, 1e-9, "velocity.x")
	approxEqual(t, res.Velocity.Y(), 0, 1e-9, "velocity.y")
	approxEqual(t, res.Velocity.Z(), 2, 1e-9, "velocity.z")
}

func TestClipAgainst(t *testing.T) {
	n1 := mgl64.Vec3{1, 1, 0}.Normalize()
	n2 := mgl64.Vec3{-1, 1, 0}.Normalize()
	wall := mgl64.Vec3{0, 0, -1}
	v := mgl64.Vec3{-0.2, -1, 0.7}

	got, blocked := clipAgainst(v, n2, []mgl64.Vec3{n1})
	if blocked {
		t.Fatalf("two planes should leave the crease open")
	}
	approxEqual(t, got.X(), 0, 1e-12, "crease.x")
	approxEqual(t, got.Y(), 0, 1e-12, "crease.y")
	approxEqual(t, got.Z(), 0.7, 1e-12, "crease.z")

	got, blocked = clipAgainst(v, n2, []mgl64.Vec3{n1, wall})
	if !blocked || got != (mgl64.Vec3{}) {
		t.Fatalf("clipAgainst with three planes = %v blocked=%v, want zero and blocked", got, blocked)
	}

	got, blocked = clipAgainst(mgl64.Vec3{1, 0, 1}, mgl64.Vec3{-1, 0, 0}, nil)
	if blocked || got != (mgl64.Vec3{0, 0, 1}) {
		t.Fatalf("single plane clip = %v, want (0 0 1)", got)
	}
}

func TestMoveAndSlide_IterationCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SolverMaxIterations = 1
	w := physics.NewWorld()
	w.AddPlane(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0})

	res := MoveAndSlide(w, boxShape(), mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{2, 0, 2}, cfg)
	if !res.Clamped {
		t.Fatalf("expected the pass to be clamped")
	}
	// Stopped at the first contact: nothing of the slide was applied.
	approxEqual(t, res.Position.X(), res.Position.Z(), 1e-12, "diagonal stop")
	if res.Position.X() > 1-0.35 {
		t.Fatalf("x = %.8f, past the wall", res.Position.X())
	}
}
