package sim

import (
	"context"

	"github.com/Versifine/stride/internal/kcc"
)

// Driver produces one tick of input for a body. Intent is called from a
// worker goroutine, at most once per tick per body.
type Driver interface {
	Intent(ctx context.Context, tick uint64, state kcc.State) (kcc.Input, error)
}

type DriverFunc func(ctx context.Context, tick uint64, state kcc.State) (kcc.Input, error)

func (f DriverFunc) Intent(ctx context.Context, tick uint64, state kcc.State) (kcc.Input, error) {
	return f(ctx, tick, state)
}

// Idle never moves.
var Idle Driver = DriverFunc(func(context.Context, uint64, kcc.State) (kcc.Input, error) {
	return kcc.Input{}, nil
})
