package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/debug"
	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/kcc"
	"github.com/Versifine/stride/internal/logger"
	"github.com/Versifine/stride/internal/sim"
	"github.com/Versifine/stride/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

const playerID = "player"

type options struct {
	configPath  string
	scene       string
	scenario    string
	ticks       int
	interactive bool
	watch       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "configs/config.yaml", "config file")
	flag.StringVar(&opts.scene, "scene", "", "scene file (overrides sim.scene)")
	flag.StringVar(&opts.scenario, "scenario", "", "scenario file (overrides sim.scenario)")
	flag.IntVar(&opts.ticks, "ticks", 0, "ticks to simulate headless (0 uses the scenario's)")
	flag.BoolVar(&opts.interactive, "interactive", false, "drive the player body from the terminal")
	flag.BoolVar(&opts.watch, "watch", false, "hot reload controller settings when the config file changes")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	out, err := logger.OpenOutput(cfg.Logging.File)
	if err != nil {
		slog.Error("Failed to open log output", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("Simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	if opts.scene != "" {
		cfg.Sim.Scene = opts.scene
	}
	if opts.scenario != "" {
		cfg.Sim.Scenario = opts.scenario
	}

	var scene *world.Scene
	if cfg.Sim.Scene != "" {
		var err error
		scene, err = world.LoadScene(cfg.Sim.Scene)
		if err != nil {
			return err
		}
	} else {
		scene = &world.Scene{Blocks: []world.BlockRegion{{From: [3]int{-16, -1, -16}, To: [3]int{16, -1, 16}}}}
	}
	geometry := scene.Build()

	bus := event.NewBus()
	log := logger.Component("sim")
	var rec *sim.Recorder
	if opts.interactive {
		rec = sim.NewRecorder(bus, nil)
	} else {
		rec = sim.NewRecorder(bus, log)
	}

	s, err := sim.New(geometry, bus, sim.Options{
		TickDuration: cfg.Sim.TickDuration(),
		Workers:      cfg.Sim.Workers,
	})
	if err != nil {
		return err
	}

	ticks := opts.ticks
	if cfg.Sim.Scenario != "" {
		sc, err := sim.LoadScenario(cfg.Sim.Scenario)
		if err != nil {
			return err
		}
		if err := sc.Populate(s, scene, cfg.Controller); err != nil {
			return err
		}
		if ticks == 0 {
			ticks = sc.Ticks
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	if opts.watch {
		w, err := config.Watch(opts.configPath)
		if err != nil {
			return err
		}
		defer w.Close()
		g.Go(func() error {
			reload(ctx, w, s, bus, opts.configPath)
			return nil
		})
	}

	if opts.interactive {
		console, err := attachConsole(s, scene, geometry, cfg.Controller)
		if err != nil {
			return err
		}
		g.Go(func() error { return s.RunRealtime(ctx) })
		g.Go(func() error {
			defer cancel()
			return console.Start(ctx)
		})
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	if ticks <= 0 {
		return fmt.Errorf("nothing to run: set -ticks or a scenario with ticks")
	}
	log.Info("Running scenario", "bodies", len(s.Bodies()), "ticks", ticks, "dt", cfg.Sim.TickDuration())
	g.Go(func() error {
		defer cancel()
		return s.Run(ctx, ticks)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	summarize(log, s, rec)
	return nil
}

// attachConsole hands the player body to the terminal, spawning it when the
// scenario did not.
func attachConsole(s *sim.Simulation, scene *world.Scene, query kcc.ShapeQuery, cfg kcc.Config) (*debug.Console, error) {
	b, ok := s.Body(playerID)
	if !ok {
		feet, found := scene.Spawn(playerID)
		if !found {
			feet = mgl64.Vec3{0.5, 0, 0.5}
		}
		var err error
		b, err = s.Spawn(playerID, feet, cfg, nil)
		if err != nil {
			return nil, err
		}
	}
	console := debug.NewConsole(b, query)
	if err := s.SetDriver(playerID, console); err != nil {
		return nil, err
	}
	return console, nil
}

func reload(ctx context.Context, w *config.Watcher, s *sim.Simulation, bus *event.Bus, path string) {
	log := logger.Component("config")
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-w.Changes:
			if !ok {
				return
			}
			if err := s.SetConfig(cfg.Controller); err != nil {
				log.Warn("Rejected reloaded controller config", "error", err)
				continue
			}
			log.Info("Controller config reloaded")
			bus.Publish(event.EventConfigReloaded, event.ConfigReloadedEvent{Path: path})
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("Config reload failed", "error", err)
		}
	}
}

func summarize(log *slog.Logger, s *sim.Simulation, rec *sim.Recorder) {
	counts := rec.Counts()
	for _, b := range s.Bodies() {
		out := b.Output()
		attrs := []any{
			"body", b.ID(),
			"pos", out.Position,
			"speed", b.State().HorizontalSpeed(),
			"grounded", out.Grounded,
		}
		kinds := make([]kcc.EventKind, 0, len(counts[b.ID()]))
		for k := range counts[b.ID()] {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			attrs = append(attrs, k.String(), counts[b.ID()][k])
		}
		log.Info("Body summary", attrs...)
	}
}
