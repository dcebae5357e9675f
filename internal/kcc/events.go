package kcc

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type EventKind uint8

const (
	EventJumped EventKind = iota + 1
	EventLanded
	EventLeftGround
	EventSteppedUp
	EventSteppedDown
	EventCrouched
	EventStood
	EventSolverClamped
)

func (k EventKind) String() string {
	switch k {
	case EventJumped:
		return "jumped"
	case EventLanded:
		return "landed"
	case EventLeftGround:
		return "left_ground"
	case EventSteppedUp:
		return "stepped_up"
	case EventSteppedDown:
		return "stepped_down"
	case EventCrouched:
		return "crouched"
	case EventStood:
		return "stood"
	case EventSolverClamped:
		return "solver_clamped"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is appended to a tick's output queue. The host drains it after the
// tick; the controller never calls back into the host.
type Event struct {
	Kind EventKind
	// Feet position when the event happened.
	Position mgl64.Vec3
	// Ground or contact normal, when there is one.
	Normal mgl64.Vec3
	// Height climbed or dropped for step events.
	Height float64
}
