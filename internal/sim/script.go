package sim

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Versifine/stride/internal/kcc"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
)

// scriptTimeout bounds one Intent call so a runaway loop cannot stall a step.
const scriptTimeout = 50 * time.Millisecond

var (
	scriptInputs = []string{
		"tick", "grounded", "crouched",
		"pos_x", "pos_y", "pos_z",
		"vel_x", "vel_y", "vel_z",
		"speed",
	}
	scriptOutputs = map[string]any{
		"move_x": 0.0,
		"move_y": 0.0,
		"yaw":    0.0,
		"jump":   false,
		"crouch": false,
	}
)

// Script is a compiled tengo intent script. The script reads the body's
// state from predeclared globals and assigns its intent to move_x, move_y,
// yaw (degrees), jump and crouch. Outputs are reset before every run.
type Script struct {
	path     string
	compiled *tengo.Compiled
}

func LoadScript(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := CompileScript(src)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	s.path = path
	return s, nil
}

func CompileScript(src []byte) (*Script, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math", "rand"))
	for _, name := range scriptInputs {
		if err := script.Add(name, 0); err != nil {
			return nil, err
		}
	}
	for name, v := range scriptOutputs {
		if err := script.Add(name, v); err != nil {
			return nil, err
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}
	return &Script{compiled: compiled}, nil
}

// Driver returns an independent instance of the script for one body.
func (s *Script) Driver() *ScriptDriver {
	return &ScriptDriver{path: s.path, compiled: s.compiled.Clone()}
}

type ScriptDriver struct {
	path     string
	compiled *tengo.Compiled
	prevJump bool
	prevDuck bool
}

func (d *ScriptDriver) Intent(ctx context.Context, tick uint64, state kcc.State) (kcc.Input, error) {
	inputs := map[string]any{
		"tick":     int64(tick),
		"grounded": state.Grounded,
		"crouched": state.Crouched,
		"pos_x":    state.Position.X(),
		"pos_y":    state.Position.Y(),
		"pos_z":    state.Position.Z(),
		"vel_x":    state.Velocity.X(),
		"vel_y":    state.Velocity.Y(),
		"vel_z":    state.Velocity.Z(),
		"speed":    state.HorizontalSpeed(),
	}
	for name, v := range inputs {
		if err := d.compiled.Set(name, v); err != nil {
			return kcc.Input{}, fmt.Errorf("set %s: %w", name, err)
		}
	}
	for name, v := range scriptOutputs {
		if err := d.compiled.Set(name, v); err != nil {
			return kcc.Input{}, fmt.Errorf("reset %s: %w", name, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()
	if err := d.compiled.RunContext(ctx); err != nil {
		return kcc.Input{}, fmt.Errorf("run script %s at tick %d: %w", d.path, tick, err)
	}

	jump := d.compiled.Get("jump").Bool()
	crouch := d.compiled.Get("crouch").Bool()
	in := kcc.Input{
		Move:          mgl64.Vec2{d.compiled.Get("move_x").Float(), d.compiled.Get("move_y").Float()},
		Yaw:           mgl64.DegToRad(d.compiled.Get("yaw").Float()),
		JumpPressed:   jump && !d.prevJump,
		JumpHeld:      jump,
		CrouchPressed: crouch && !d.prevDuck,
		CrouchHeld:    crouch,
	}
	d.prevJump, d.prevDuck = jump, crouch
	return in, nil
}
