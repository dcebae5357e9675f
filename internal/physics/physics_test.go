package physics

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	up   = mgl64.Vec3{0, 1, 0}
	down = mgl64.Vec3{0, -1, 0}
)

func playerShape() Shape {
	return Shape{Kind: ShapeCuboid, Height: 1.8, HalfWidth: 0.4}
}

func addFloor(w *World, minX, maxX, minZ, maxZ, y int) {
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			w.AddBlock(x, y, z)
		}
	}
}

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func TestWorldCast_PlaneHeadOn(t *testing.T) {
	w := NewWorld()
	w.AddPlane(up, mgl64.Vec3{})

	hit, ok := w.Cast(playerShape(), mgl64.Vec3{0, 2, 0}, down, 5)
	if !ok {
		t.Fatalf("expected a hit against the floor plane")
	}
	approxEqual(t, hit.Distance, 1.1, 1e-9, "distance")
	approxEqual(t, hit.Normal.Y(), 1, 1e-9, "normal.y")
	approxEqual(t, hit.Point.Y(), 0, 1e-9, "point.y")
}

func TestWorldCast_PlaneOutOfRange(t *testing.T) {
	w := NewWorld()
	w.AddPlane(up, mgl64.Vec3{})

	if _, ok := w.Cast(playerShape(), mgl64.Vec3{0, 2, 0}, down, 1.0); ok {
		t.Fatalf("hit reported beyond max distance")
	}
}

func TestWorldCast_MovingAlongPlaneMisses(t *testing.T) {
	w := NewWorld()
	w.AddPlane(up, mgl64.Vec3{})

	if _, ok := w.Cast(playerShape(), mgl64.Vec3{0, 0.9, 0}, mgl64.Vec3{1, 0, 0}, 10); ok {
		t.Fatalf("sliding along a touched plane must not report a hit")
	}
}

func TestWorldCast_BoxSideFace(t *testing.T) {
	w := NewWorld()
	w.AddBox(mgl64.Vec3{2, 0, -1}, mgl64.Vec3{3, 2, 1})

	hit, ok := w.Cast(playerShape(), mgl64.Vec3{0, 0.9, 0}, mgl64.Vec3{1, 0, 0}, 5)
	if !ok {
		t.Fatalf("expected a hit against the box")
	}
	approxEqual(t, hit.Distance, 1.6, 1e-9, "distance")
	approxEqual(t, hit.Normal.X(), -1, 1e-9, "normal.x")
	approxEqual(t, hit.Point.X(), 2, 1e-9, "point.x")
}

func TestWorldCast_RestingOnBlocksSlidesFreely(t *testing.T) {
	w := NewWorld()
	addFloor(w, -2, 2, -2, 2, -1)

	// Feet exactly on the block tops: touching, not colliding.
	if _, ok := w.Cast(playerShape(), mgl64.Vec3{0.5, 0.9, 0.5}, mgl64.Vec3{0, 0, 1}, 1); ok {
		t.Fatalf("horizontal cast across the floor reported a hit")
	}
	hit, ok := w.Cast(playerShape(), mgl64.Vec3{0.5, 0.9, 0.5}, down, 1)
	if !ok || hit.Distance != 0 {
		t.Fatalf("downward cast = %+v ok=%v, want hit at 0", hit, ok)
	}
}

func TestWorldCast_OverlapMovingOutIsIgnored(t *testing.T) {
	w := NewWorld()
	w.AddBox(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 0, 1})

	pos := mgl64.Vec3{0, 0.85, 0} // 5cm inside the top face
	if _, ok := w.Cast(playerShape(), pos, up, 1); ok {
		t.Fatalf("moving out of an overlap must not be blocked")
	}
	hit, ok := w.Cast(playerShape(), pos, down, 1)
	if !ok || hit.Distance != 0 {
		t.Fatalf("moving deeper = %+v ok=%v, want hit at 0", hit, ok)
	}
	approxEqual(t, hit.Normal.Y(), 1, 1e-9, "normal.y")
}

func TestWorldCast_NearestAndHeadOnWins(t *testing.T) {
	w := NewWorld()
	w.AddBox(mgl64.Vec3{5, 0, -1}, mgl64.Vec3{6, 2, 1})
	w.AddBox(mgl64.Vec3{2, 0, -1}, mgl64.Vec3{3, 2, 1})
	w.AddPlane(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{2.4, 0, 0})

	hit, ok := w.Cast(playerShape(), mgl64.Vec3{0, 0.9, 0}, mgl64.Vec3{1, 0, 0}, 10)
	if !ok {
		t.Fatalf("expected a hit")
	}
	approxEqual(t, hit.Distance, 1.6, 1e-9, "distance")
}

func TestShapeSupportRadius(t *testing.T) {
	diag := mgl64.Vec3{1, 1, 0}.Normalize()
	tests := []struct {
		name  string
		shape Shape
		n     mgl64.Vec3
		want  float64
	}{
		{"cuboid up", Shape{Kind: ShapeCuboid, Height: 2, HalfWidth: 0.5}, up, 1},
		{"cuboid diagonal", Shape{Kind: ShapeCuboid, Height: 2, HalfWidth: 0.5}, diag, (0.5 + 1) / math.Sqrt2},
		{"cylinder side", Shape{Kind: ShapeCylinder, Height: 2, HalfWidth: 0.5}, mgl64.Vec3{0, 0, 1}, 0.5},
		{"capsule up", Shape{Kind: ShapeCapsule, Height: 2, HalfWidth: 0.5}, up, 1},
		{"capsule side", Shape{Kind: ShapeCapsule, Height: 2, HalfWidth: 0.5}, mgl64.Vec3{1, 0, 0}, 0.5},
		{"sphere", Shape{Kind: ShapeSphere, Height: 1, HalfWidth: 0.5}, diag, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approxEqual(t, tt.shape.SupportRadius(tt.n), tt.want, 1e-9, "support")
		})
	}
}

func TestWorldOverlap(t *testing.T) {
	w := NewWorld()
	addFloor(w, -1, 1, -1, 1, -1)
	w.AddBox(mgl64.Vec3{-1, 1.5, -1}, mgl64.Vec3{1, 2, 1})

	crouched := playerShape().WithHeight(1.3)
	standing := playerShape()

	if w.Overlap(crouched, mgl64.Vec3{0, 0.65 + 0.01, 0}) {
		t.Fatalf("crouched shape under the ceiling should be free")
	}
	if !w.Overlap(standing, mgl64.Vec3{0, 0.9 + 0.01, 0}) {
		t.Fatalf("standing shape should hit the ceiling")
	}
	if w.Overlap(standing, mgl64.Vec3{5, 0.9, 5}) {
		t.Fatalf("open space reported as overlapping")
	}
}

func TestWorldAddStairs(t *testing.T) {
	w := NewWorld()
	w.AddStairs(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, 4, 0.25, 0.5, 2)

	if w.Len() != 4 {
		t.Fatalf("boxes = %d, want 4", w.Len())
	}
	probe := Shape{Kind: ShapeCuboid, Height: 0.2, HalfWidth: 0.05}
	for i := 0; i < 4; i++ {
		x := 1 + 0.25 + float64(i)*0.5
		hit, ok := w.Cast(probe, mgl64.Vec3{x, 5, 0}, down, 10)
		if !ok {
			t.Fatalf("step %d: no hit", i)
		}
		approxEqual(t, hit.Point.Y(), float64(i+1)*0.25, 1e-9, "step top")
	}
}

func TestWorldConcurrentReaders(t *testing.T) {
	w := NewWorld()
	addFloor(w, -4, 4, -4, 4, -1)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := w.Cast(playerShape(), mgl64.Vec3{0.5, 3, 0.5}, down, 10); !ok {
					t.Errorf("cast missed the floor")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestShapeKindUnmarshalText(t *testing.T) {
	var k ShapeKind
	if err := k.UnmarshalText([]byte("Capsule")); err != nil || k != ShapeCapsule {
		t.Fatalf("UnmarshalText(Capsule) = %v, %v", k, err)
	}
	if err := k.UnmarshalText([]byte("torus")); err == nil {
		t.Fatalf("UnmarshalText(torus) should fail")
	}
}


func TestWorldPenetration(t *testing.T) {
	w := NewWorld()
	w.AddBox(mgl64.Vec3{-5, -1, -5}, mgl64.Vec3{5, 0, 5})
	w.AddPlane(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{3, 0, 0})

	tests := []struct {
		name      string
		pos       mgl64.Vec3
		wantHit   bool
		wantNorm  mgl64.Vec3
		wantDepth float64
	}{
		{"resting on top", mgl64.Vec3{0, 0.9, 0}, false, mgl64.Vec3{}, 0},
		{"sunk into box", mgl64.Vec3{0, 0.7, 0}, true, up, 0.2},
		{"deeper in plane wins", mgl64.Vec3{2.9, 0.85, 0}, true, mgl64.Vec3{-1, 0, 0}, 0.3},
		{"open air", mgl64.Vec3{0, 3, 0}, false, mgl64.Vec3{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := w.Penetration(playerShape(), tt.pos)
			if ok != tt.wantHit {
				t.Fatalf("ok = %v, want %v (%+v)", ok, tt.wantHit, p)
			}
			if !ok {
				return
			}
			if p.Normal != tt.wantNorm {
				t.Fatalf("normal = %v, want %v", p.Normal, tt.wantNorm)
			}
			approxEqual(t, p.Depth, tt.wantDepth, 1e-9, "depth")
		})
	}
}
