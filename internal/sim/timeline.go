package sim

import (
	"context"
	"fmt"

	"github.com/Versifine/stride/internal/kcc"
	"github.com/go-gl/mathgl/mgl64"
)

// Keyframe holds an input over the tick range [From, To). To == 0 leaves the
// range open. Jump and crouch count as pressed on the first tick of the range
// and held for the rest of it.
type Keyframe struct {
	From   uint64     `yaml:"from"`
	To     uint64     `yaml:"to"`
	Move   mgl64.Vec2 `yaml:"move"`
	YawDeg float64    `yaml:"yaw"`
	Jump   bool       `yaml:"jump"`
	Crouch bool       `yaml:"crouch"`
}

func (k Keyframe) covers(tick uint64) bool {
	return tick >= k.From && (k.To == 0 || tick < k.To)
}

// Timeline replays keyframes. When ranges overlap the later keyframe wins.
type Timeline []Keyframe

func (tl Timeline) Validate() error {
	for i, k := range tl {
		if k.To != 0 && k.To <= k.From {
			return fmt.Errorf("keyframe %d: to %d must be after from %d", i, k.To, k.From)
		}
	}
	return nil
}

func (tl Timeline) Intent(_ context.Context, tick uint64, _ kcc.State) (kcc.Input, error) {
	var in kcc.Input
	for _, k := range tl {
		if !k.covers(tick) {
			continue
		}
		first := tick == k.From
		in = kcc.Input{
			Move:          k.Move,
			Yaw:           mgl64.DegToRad(k.YawDeg),
			JumpPressed:   k.Jump && first,
			JumpHeld:      k.Jump,
			CrouchPressed: k.Crouch && first,
			CrouchHeld:    k.Crouch,
		}
	}
	return in, nil
}
