package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Hit is the first contact found by a shape cast.
type Hit struct {
	// Distance travelled along the cast direction before touching.
	Distance float64
	// Normal is the unit surface normal, pointing out of the surface.
	Normal mgl64.Vec3
	Point  mgl64.Vec3
}

// Penetration describes a shape sunk into solid geometry: moving it Depth
// along Normal separates it from that piece of geometry.
type Penetration struct {
	Normal mgl64.Vec3
	Depth  float64
}

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func NewAABB(a, b mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y()), math.Min(a.Z(), b.Z())},
		Max: mgl64.Vec3{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y()), math.Max(a.Z(), b.Z())},
	}
}

func (b AABB) Expand(h mgl64.Vec3) AABB {
	return AABB{Min: b.Min.Sub(h), Max: b.Max.Add(h)}
}

// Plane is a solid half-space: every point x with Normal·x < D is inside.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

func NewPlane(normal, point mgl64.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: n.Dot(point)}
}

func castBox(shape Shape, box AABB, origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	expanded := box.Expand(shape.HalfExtents())

	tEnter := math.Inf(-1)
	tExit := math.Inf(1)
	var normal mgl64.Vec3

	for axis := 0; axis < 3; axis++ {
		c := origin[axis]
		d := dir[axis]
		if math.Abs(d) < CollisionAxisTolerance {
			if c <= expanded.Min[axis] || c >= expanded.Max[axis] {
				return Hit{}, false
			}
			continue
		}

		near := (expanded.Min[axis] - c) / d
		far := (expanded.Max[axis] - c) / d
		faceSign := -1.0
		if near > far {
			near, far = far, near
			faceSign = 1.0
		}
		if near > tEnter {
			tEnter = near
			normal = mgl64.Vec3{}
			normal[axis] = faceSign
		}
		if far < tExit {
			tExit = far
		}
	}

	if tEnter > tExit || tExit <= 0 {
		return Hit{}, false
	}

	if tEnter < 0 {
		// Already overlapping: report a contact only when moving deeper.
		normal, _ = boxPenetration(expanded, origin)
		if normal.Dot(dir) >= 0 {
			return Hit{}, false
		}
		tEnter = 0
	}
	if tEnter > maxDist {
		return Hit{}, false
	}

	at := origin.Add(dir.Mul(tEnter))
	return Hit{
		Distance: tEnter,
		Normal:   normal,
		Point:    clampToBox(at, box),
	}, true
}

func castPlane(shape Shape, plane Plane, origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	r := shape.SupportRadius(plane.Normal)
	gap := plane.Normal.Dot(origin) - r - plane.D
	rate := plane.Normal.Dot(dir)

	var t float64
	switch {
	case gap < -OverlapTolerance:
		if rate >= 0 {
			return Hit{}, false
		}
		t = 0
	case rate >= -CollisionAxisTolerance:
		return Hit{}, false
	default:
		t = math.Max(gap/-rate, 0)
	}
	if t > maxDist {
		return Hit{}, false
	}

	return Hit{
		Distance: t,
		Normal:   plane.Normal,
		Point:    origin.Add(dir.Mul(t)).Sub(plane.Normal.Mul(r)),
	}, true
}

func overlapsBox(shape Shape, box AABB, pos mgl64.Vec3) bool {
	return intersects(shape.Bounds(pos), box)
}

func overlapsPlane(shape Shape, plane Plane, pos mgl64.Vec3) bool {
	gap := plane.Normal.Dot(pos) - shape.SupportRadius(plane.Normal) - plane.D
	return gap < -OverlapTolerance
}

func intersects(a, b AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if a.Min[axis] >= b.Max[axis]-OverlapTolerance || a.Max[axis] <= b.Min[axis]+OverlapTolerance {
			return false
		}
	}
	return true
}

// boxPenetration returns the face of the expanded box nearest to p and how
// far p sits inside it along that face's normal.
func boxPenetration(box AABB, p mgl64.Vec3) (mgl64.Vec3, float64) {
	best := math.Inf(1)
	var normal mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		if depth := p[axis] - box.Min[axis]; depth < best {
			best = depth
			normal = mgl64.Vec3{}
			normal[axis] = -1
		}
		if depth := box.Max[axis] - p[axis]; depth < best {
			best = depth
			normal = mgl64.Vec3{}
			normal[axis] = 1
		}
	}
	return normal, best
}

func penetrateBox(shape Shape, box AABB, pos mgl64.Vec3) (Penetration, bool) {
	if !overlapsBox(shape, box, pos) {
		return Penetration{}, false
	}
	normal, depth := boxPenetration(box.Expand(shape.HalfExtents()), pos)
	return Penetration{Normal: normal, Depth: depth}, true
}

func penetratePlane(shape Shape, plane Plane, pos mgl64.Vec3) (Penetration, bool) {
	gap := plane.Normal.Dot(pos) - shape.SupportRadius(plane.Normal) - plane.D
	if gap >= -OverlapTolerance {
		return Penetration{}, false
	}
	return Penetration{Normal: plane.Normal, Depth: -gap}, true
}

func clampToBox(p mgl64.Vec3, box AABB) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p.X(), box.Min.X(), box.Max.X()),
		mgl64.Clamp(p.Y(), box.Min.Y(), box.Max.Y()),
		mgl64.Clamp(p.Z(), box.Min.Z(), box.Max.Z()),
	}
}
