package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Versifine/stride/internal/kcc"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Controller kcc.Config    `yaml:"controller"`
	Sim        SimConfig     `yaml:"sim"`
	Logging    LoggingConfig `yaml:"logging"`
}

type SimConfig struct {
	// TickRate is the fixed simulation rate in Hz.
	TickRate int `yaml:"tick_rate"`
	// Workers caps concurrent body ticks; 0 means one per CPU.
	Workers  int    `yaml:"workers"`
	Scene    string `yaml:"scene"`
	Scenario string `yaml:"scenario"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func (s SimConfig) TickDuration() time.Duration {
	if s.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(s.TickRate)
}

func Default() *Config {
	return &Config{
		Controller: kcc.DefaultConfig(),
		Sim: SimConfig{
			TickRate: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Relative scene and scenario paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Sim.Scene = resolve(dir, cfg.Sim.Scene)
	cfg.Sim.Scenario = resolve(dir, cfg.Sim.Scenario)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Controller.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Sim.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick_rate must be positive, got %d", c.Sim.TickRate))
	}
	if c.Sim.Workers < 0 {
		errs = append(errs, fmt.Errorf("sim.workers must not be negative, got %d", c.Sim.Workers))
	}
	return errors.Join(errs...)
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
