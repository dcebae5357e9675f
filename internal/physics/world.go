package physics

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// World is a static collision world made of axis-aligned boxes and solid
// half-space planes. Queries take a read lock, so any number of characters
// may cast against it concurrently as long as nobody adds geometry mid-tick.
type World struct {
	mu     sync.RWMutex
	boxes  []AABB
	planes []Plane
}

func NewWorld() *World {
	return &World{}
}

func (w *World) AddBox(min, max mgl64.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.boxes = append(w.boxes, NewAABB(min, max))
}

// AddBlock adds the unit voxel whose minimum corner is (x, y, z).
func (w *World) AddBlock(x, y, z int) {
	min := mgl64.Vec3{float64(x), float64(y), float64(z)}
	w.AddBox(min, min.Add(mgl64.Vec3{1, 1, 1}))
}

// AddPlane adds a solid half-space whose surface passes through point and
// faces along normal.
func (w *World) AddPlane(normal, point mgl64.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.planes = append(w.planes, NewPlane(normal, point))
}

// AddStairs builds a flight of solid steps rising along the horizontal unit
// axis ascend, starting at base (the bottom front centre of the first step).
func (w *World) AddStairs(base, ascend mgl64.Vec3, steps int, rise, run, width float64) {
	ascend = mgl64.Vec3{ascend.X(), 0, ascend.Z()}
	if steps <= 0 || ascend.Len() == 0 {
		return
	}
	ascend = ascend.Normalize()
	side := mgl64.Vec3{ascend.Z(), 0, -ascend.X()}.Mul(width / 2)

	for i := 0; i < steps; i++ {
		front := base.Add(ascend.Mul(float64(i) * run))
		back := front.Add(ascend.Mul(run))
		top := float64(i+1) * rise
		a := front.Add(side)
		b := back.Sub(side).Add(mgl64.Vec3{0, top, 0})
		w.AddBox(a, b)
	}
}

func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.boxes) + len(w.planes)
}

// Cast sweeps shape from origin along the unit direction dir for at most
// maxDist and returns the nearest contact.
func (w *World) Cast(shape Shape, origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	if maxDist < 0 || dir.Len() < CollisionAxisTolerance {
		return Hit{}, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	var best Hit
	found := false
	consider := func(hit Hit) {
		if !found || hit.Distance < best.Distance-TieTolerance {
			best, found = hit, true
			return
		}
		if math.Abs(hit.Distance-best.Distance) <= TieTolerance && hit.Normal.Dot(dir) < best.Normal.Dot(dir) {
			best = hit
		}
	}

	for _, box := range w.boxes {
		if hit, ok := castBox(shape, box, origin, dir, maxDist); ok {
			consider(hit)
		}
	}
	for _, plane := range w.planes {
		if hit, ok := castPlane(shape, plane, origin, dir, maxDist); ok {
			consider(hit)
		}
	}
	return best, found
}

func (w *World) Overlap(shape Shape, pos mgl64.Vec3) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, box := range w.boxes {
		if overlapsBox(shape, box, pos) {
			return true
		}
	}
	for _, plane := range w.planes {
		if overlapsPlane(shape, plane, pos) {
			return true
		}
	}
	return false
}

// Penetration returns the deepest overlap between shape at pos and any solid
// geometry. ok is false when the shape is free.
func (w *World) Penetration(shape Shape, pos mgl64.Vec3) (Penetration, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var deepest Penetration
	found := false
	consider := func(p Penetration, ok bool) {
		if ok && (!found || p.Depth > deepest.Depth) {
			deepest, found = p, true
		}
	}
	for _, box := range w.boxes {
		consider(penetrateBox(shape, box, pos))
	}
	for _, plane := range w.planes {
		consider(penetratePlane(shape, plane, pos))
	}
	return deepest, found
}
