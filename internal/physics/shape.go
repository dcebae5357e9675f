package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind selects the collider variant of a character. All variants are
// upright; rotation is not modelled.
type ShapeKind uint8

const (
	ShapeCuboid ShapeKind = iota
	ShapeCylinder
	// ShapeSphere has a radius of min(HalfWidth, Height/2) and so cannot
	// change height to crouch.
	ShapeSphere
	ShapeCapsule
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCuboid:
		return "cuboid"
	case ShapeCylinder:
		return "cylinder"
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	default:
		return fmt.Sprintf("shape(%d)", uint8(k))
	}
}

func (k ShapeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ShapeKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "cuboid", "box":
		*k = ShapeCuboid
	case "cylinder":
		*k = ShapeCylinder
	case "sphere":
		*k = ShapeSphere
	case "capsule":
		*k = ShapeCapsule
	default:
		return fmt.Errorf("unknown shape kind %q", string(text))
	}
	return nil
}

// Shape describes a character collider. The origin of a shape is its centre,
// so the feet sit at origin.Y - Height/2.
type Shape struct {
	Kind      ShapeKind
	Height    float64
	HalfWidth float64
}

func (s Shape) WithHeight(height float64) Shape {
	s.Height = height
	return s
}

func (s Shape) HalfHeight() float64 {
	if s.Kind == ShapeSphere {
		return s.radius()
	}
	return s.Height / 2
}

// HalfExtents returns the half size of the shape's bounding box.
func (s Shape) HalfExtents() mgl64.Vec3 {
	if s.Kind == ShapeSphere {
		r := s.radius()
		return mgl64.Vec3{r, r, r}
	}
	return mgl64.Vec3{s.HalfWidth, s.Height / 2, s.HalfWidth}
}

// SupportRadius is the extent of the shape from its centre along the unit
// direction n.
func (s Shape) SupportRadius(n mgl64.Vec3) float64 {
	hh := s.Height / 2
	switch s.Kind {
	case ShapeCylinder:
		return s.HalfWidth*math.Hypot(n.X(), n.Z()) + math.Abs(n.Y())*hh
	case ShapeSphere:
		return s.radius()
	case ShapeCapsule:
		segment := math.Max(hh-s.HalfWidth, 0)
		return s.HalfWidth + math.Abs(n.Y())*segment
	default:
		return math.Abs(n.X())*s.HalfWidth + math.Abs(n.Y())*hh + math.Abs(n.Z())*s.HalfWidth
	}
}

func (s Shape) Bounds(center mgl64.Vec3) AABB {
	h := s.HalfExtents()
	return AABB{Min: center.Sub(h), Max: center.Add(h)}
}

func (s Shape) radius() float64 {
	return math.Min(s.HalfWidth, s.Height/2)
}
