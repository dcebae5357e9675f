package event

import (
	"github.com/Versifine/stride/internal/kcc"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	EventJumped        = "kcc.jumped"
	EventLanded        = "kcc.landed"
	EventLeftGround    = "kcc.left_ground"
	EventSteppedUp     = "kcc.stepped_up"
	EventSteppedDown   = "kcc.stepped_down"
	EventCrouched      = "kcc.crouched"
	EventStood         = "kcc.stood"
	EventSolverClamped = "kcc.solver_clamped"

	EventConfigReloaded = "config.reloaded"
)

// Name maps a controller event kind to its bus event name.
func Name(kind kcc.EventKind) string {
	return "kcc." + kind.String()
}

// CharacterEvent is the payload of every kcc.* event.
type CharacterEvent struct {
	Body     string
	Tick     uint64
	Kind     kcc.EventKind
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Height   float64
}

func NewCharacterEvent(body string, tick uint64, e kcc.Event) CharacterEvent {
	return CharacterEvent{
		Body:     body,
		Tick:     tick,
		Kind:     e.Kind,
		Position: e.Position,
		Normal:   e.Normal,
		Height:   e.Height,
	}
}

type ConfigReloadedEvent struct {
	Path string
}
