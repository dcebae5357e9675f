package body

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Versifine/stride/internal/kcc"
	"github.com/go-gl/mathgl/mgl64"
)

// Body owns one character's controller state and ticks it at a fixed rate.
// All methods are safe for concurrent use; the shared world must not be
// mutated while any body is ticking.
type Body struct {
	mu    sync.Mutex
	id    string
	state kcc.State
	cfg   kcc.Config
	query kcc.ShapeQuery
	dt    time.Duration
	ticks uint64
}

func New(id string, feet mgl64.Vec3, cfg kcc.Config, query kcc.ShapeQuery, dt time.Duration) (*Body, error) {
	if query == nil {
		return nil, errors.New("shape query is nil")
	}
	if dt <= 0 {
		return nil, fmt.Errorf("tick duration must be positive, got %v", dt)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("body %s: %w", id, err)
	}
	return &Body{
		id:    id,
		state: kcc.NewState(feet, cfg),
		cfg:   cfg,
		query: query,
		dt:    dt,
	}, nil
}

// Tick advances the body by one fixed step and returns the events it produced.
func (b *Body) Tick(input kcc.Input) ([]kcc.Event, error) {
	if b == nil {
		return nil, fmt.Errorf("body is nil")
	}

	b.mu.Lock()
	next, events := kcc.Tick(b.state, b.cfg, input, b.dt, b.query)
	b.state = next
	b.ticks++
	tick := b.ticks
	b.mu.Unlock()

	for _, e := range events {
		slog.Debug("character event",
			"body", b.id,
			"tick", tick,
			"event", e.Kind.String(),
			"pos", e.Position,
		)
	}
	return events, nil
}

func (b *Body) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

func (b *Body) State() kcc.State {
	if b == nil {
		return kcc.State{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Body) Output() kcc.Output {
	if b == nil {
		return kcc.Output{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Output(b.cfg)
}

func (b *Body) Config() kcc.Config {
	if b == nil {
		return kcc.Config{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// Ticks is the number of completed ticks.
func (b *Body) Ticks() uint64 {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ticks
}

// Teleport moves the feet to feet and drops all motion and timers.
func (b *Body) Teleport(feet mgl64.Vec3) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = kcc.NewState(feet, b.cfg)
	slog.Debug("body teleported", "body", b.id, "feet", feet)
}

// SetConfig swaps the tuning between ticks. The collider is resized around
// the current feet position.
func (b *Body) SetConfig(cfg kcc.Config) error {
	if b == nil {
		return fmt.Errorf("body is nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("body %s: %w", b.id, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
	b.state = b.state.Reshape(cfg)
	return nil
}
