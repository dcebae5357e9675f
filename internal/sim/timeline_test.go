package sim

import (
	"context"
	"math"
	"testing"

	"github.com/Versifine/stride/internal/kcc"
	"github.com/go-gl/mathgl/mgl64"
)

func TestTimelineIntent(t *testing.T) {
	tl := Timeline{
		{From: 0, To: 10, Move: mgl64.Vec2{0, 1}},
		{From: 5, To: 8, Move: mgl64.Vec2{1, 0}, YawDeg: 90, Jump: true},
		{From: 20, Crouch: true},
	}

	tests := []struct {
		tick        uint64
		move        mgl64.Vec2
		yaw         float64
		jumpPressed bool
		jumpHeld    bool
		crouch      bool
	}{
		{tick: 0, move: mgl64.Vec2{0, 1}},
		{tick: 5, move: mgl64.Vec2{1, 0}, yaw: math.Pi / 2, jumpPressed: true, jumpHeld: true},
		{tick: 6, move: mgl64.Vec2{1, 0}, yaw: math.Pi / 2, jumpHeld: true},
		{tick: 8, move: mgl64.Vec2{0, 1}},
		{tick: 12},
		{tick: 500, crouch: true},
	}
	for _, tt := range tests {
		in, err := tl.Intent(context.Background(), tt.tick, kcc.State{})
		if err != nil {
			t.Fatalf("tick %d: %v", tt.tick, err)
		}
		if in.Move != tt.move || math.Abs(in.Yaw-tt.yaw) > 1e-12 {
			t.Fatalf("tick %d: move=%v yaw=%v, want %v %v", tt.tick, in.Move, in.Yaw, tt.move, tt.yaw)
		}
		if in.JumpPressed != tt.jumpPressed || in.JumpHeld != tt.jumpHeld {
			t.Fatalf("tick %d: jump pressed=%v held=%v", tt.tick, in.JumpPressed, in.JumpHeld)
		}
		if in.CrouchHeld != tt.crouch {
			t.Fatalf("tick %d: crouch=%v, want %v", tt.tick, in.CrouchHeld, tt.crouch)
		}
	}
}

func TestTimelineValidate(t *testing.T) {
	if err := (Timeline{{From: 3, To: 3}}).Validate(); err == nil {
		t.Fatalf("empty range accepted")
	}
	if err := (Timeline{{From: 3}, {From: 1, To: 2}}).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
