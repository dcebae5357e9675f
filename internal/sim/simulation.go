package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Versifine/stride/internal/body"
	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/kcc"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

var ErrDuplicateBody = errors.New("duplicate body id")

type Options struct {
	TickDuration time.Duration
	// Workers caps concurrent body ticks; 0 means one per CPU.
	Workers int
}

type agent struct {
	body   *body.Body
	driver Driver
}

// Simulation steps many characters against one shared world. The world must
// not change while Step runs; geometry edits belong between steps.
type Simulation struct {
	query kcc.ShapeQuery
	bus   *event.Bus
	opts  Options

	mu     sync.Mutex
	agents []agent
	byID   map[string]int
	tick   uint64
}

func New(query kcc.ShapeQuery, bus *event.Bus, opts Options) (*Simulation, error) {
	if query == nil {
		return nil, errors.New("shape query is nil")
	}
	if opts.TickDuration <= 0 {
		return nil, fmt.Errorf("tick duration must be positive, got %v", opts.TickDuration)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if bus == nil {
		bus = event.NewBus()
	}
	return &Simulation{
		query: query,
		bus:   bus,
		opts:  opts,
		byID:  make(map[string]int),
	}, nil
}

// Spawn adds a body with its feet at feet. A nil driver leaves it idle.
func (s *Simulation) Spawn(id string, feet mgl64.Vec3, cfg kcc.Config, driver Driver) (*body.Body, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBody, id)
	}
	b, err := body.New(id, feet, cfg, s.query, s.opts.TickDuration)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		driver = Idle
	}
	s.byID[id] = len(s.agents)
	s.agents = append(s.agents, agent{body: b, driver: driver})
	slog.Debug("body spawned", "body", id, "feet", feet)
	return b, nil
}

func (s *Simulation) Body(id string) (*body.Body, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.agents[i].body, true
}

// SetDriver replaces the driver of a spawned body from the next step on.
func (s *Simulation) SetDriver(id string, driver Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("unknown body %s", id)
	}
	if driver == nil {
		driver = Idle
	}
	s.agents[i].driver = driver
	return nil
}

// Bodies returns the bodies in spawn order.
func (s *Simulation) Bodies() []*body.Body {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*body.Body, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.body
	}
	return out
}

// Tick is the number of completed steps.
func (s *Simulation) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

func (s *Simulation) Bus() *event.Bus {
	return s.bus
}

// SetConfig applies cfg to every body. It is all or nothing: an invalid
// config leaves every body untouched, and a step never sees some bodies on
// the old config and some on the new.
func (s *Simulation) SetConfig(cfg kcc.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agents {
		if err := a.body.SetConfig(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Step ticks every body once. Bodies tick concurrently, each from its own
// driver's intent; their events are published afterwards in spawn order.
func (s *Simulation) Step(ctx context.Context) error {
	events, err := s.step(ctx)
	if err != nil {
		return err
	}
	// Handlers run on this goroutine and may call back into the simulation.
	for _, e := range events {
		s.bus.Publish(event.Name(e.Kind), e)
	}
	return nil
}

func (s *Simulation) step(ctx context.Context) ([]event.CharacterEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tick := s.tick
	produced := make([][]kcc.Event, len(s.agents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, a := range s.agents {
		i, a := i, a
		g.Go(func() error {
			in, err := a.driver.Intent(gctx, tick, a.body.State())
			if err != nil {
				return fmt.Errorf("body %s intent: %w", a.body.ID(), err)
			}
			events, err := a.body.Tick(in)
			if err != nil {
				return fmt.Errorf("body %s tick: %w", a.body.ID(), err)
			}
			produced[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.tick++
	var out []event.CharacterEvent
	for i, events := range produced {
		id := s.agents[i].body.ID()
		for _, e := range events {
			out = append(out, event.NewCharacterEvent(id, s.tick, e))
		}
	}
	return out, nil
}

// Run steps ticks times, or until ctx is done when ticks <= 0.
func (s *Simulation) Run(ctx context.Context, ticks int) error {
	for i := 0; ticks <= 0 || i < ticks; i++ {
		if err := s.Step(ctx); err != nil {
			if ticks <= 0 && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
	}
	return nil
}

// RunRealtime steps once per tick duration until ctx is done.
func (s *Simulation) RunRealtime(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Step(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}
