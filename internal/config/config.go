package config

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/integrators"
	"github.com/san-kum/adexsim/internal/sim"
)

const (
	DefaultIntegrator = integrators.NameRK4
	DefaultDt         = 1e-5
	DefaultDuration   = 0.1
	DefaultMaxSpikes  = 1
)

const (
	ControllerNone       = "none"
	ControllerMaxSpikes  = "max-spikes"
	ControllerQuiescence = "quiescence"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Model          []string         `yaml:"model,flow"`
	Integrator     string           `yaml:"integrator"`
	Controller     string           `yaml:"controller"`
	Dt             float64          `yaml:"dt"`
	Duration       float64          `yaml:"duration"`
	ETar           float64          `yaml:"e_tar"`
	MaxSpikes      int              `yaml:"max_spikes"`
	RecordInterval float64          `yaml:"record_interval"`
	Params         adexp.Parameters `yaml:"params"`
	Spikes         []SpikeConfig    `yaml:"spikes,omitempty"`
	Train          *TrainConfig     `yaml:"train,omitempty"`
}

// SpikeConfig is one explicit input spike. Kind is empty, "normal",
// "force-output" or "set-voltage".
type SpikeConfig struct {
	T    float64 `yaml:"t"`
	W    float64 `yaml:"w"`
	Kind string  `yaml:"kind,omitempty"`
}

// TrainConfig generates Count spikes of weight W every Interval seconds
// from Start, each shifted by a uniform offset in [-Jitter, Jitter].
type TrainConfig struct {
	Start    float64 `yaml:"start"`
	Interval float64 `yaml:"interval"`
	Count    int     `yaml:"count"`
	W        float64 `yaml:"w"`
	Jitter   float64 `yaml:"jitter"`
	Seed     uint64  `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: DefaultIntegrator,
		Controller: ControllerNone,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		ETar:       integrators.DefaultETar,
		MaxSpikes:  DefaultMaxSpikes,
		Params:     adexp.DefaultParameters(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Model = slices.Clone(c.Model)
	out.Spikes = slices.Clone(c.Spikes)
	if c.Train != nil {
		train := *c.Train
		out.Train = &train
	}
	return &out
}

func (c *Config) Validate() error {
	if _, err := adexp.ParseModel(c.Model); err != nil {
		return err
	}
	if !slices.Contains(integrators.Names(), c.Integrator) {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownIntegrator, c.Integrator)
	}
	switch c.Controller {
	case ControllerNone, ControllerMaxSpikes, ControllerQuiescence:
	default:
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownController, c.Controller)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	if c.Dt < 0 {
		return fmt.Errorf("%w: dt must not be negative, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.RecordInterval < 0 {
		return fmt.Errorf("%w: record_interval must not be negative, got %g", ErrInvalidConfig, c.RecordInterval)
	}
	if c.Controller == ControllerMaxSpikes && c.MaxSpikes < 1 {
		return fmt.Errorf("%w: max_spikes must be at least 1, got %d", ErrInvalidConfig, c.MaxSpikes)
	}
	for i, s := range c.Spikes {
		if _, err := ParseSpikeKind(s.Kind); err != nil {
			return fmt.Errorf("spike %d: %w", i, err)
		}
	}
	if c.Train != nil && c.Train.Count > 0 && !(c.Train.Interval > 0) {
		return fmt.Errorf("%w: train interval must be positive", ErrInvalidConfig)
	}
	p := adexp.NewWorkingParameters(c.Params)
	return p.Validate()
}

// ModelFlags combines the configured model option names.
func (c *Config) ModelFlags() (adexp.Model, error) {
	return adexp.ParseModel(c.Model)
}

func (c *Config) TDelta() dynamo.Time { return dynamo.FromSec(c.Dt) }

func (c *Config) TEnd() dynamo.Time { return dynamo.FromSec(c.Duration) }

func (c *Config) RecordEvery() dynamo.Time { return dynamo.FromSec(c.RecordInterval) }

// SpikeTrain merges the explicit spikes and the generated train into one
// sorted SpikeVec.
func (c *Config) SpikeTrain() (sim.SpikeVec, error) {
	out := make(sim.SpikeVec, 0, len(c.Spikes))
	for i, s := range c.Spikes {
		kind, err := ParseSpikeKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("spike %d: %w", i, err)
		}
		out = append(out, sim.Spike{T: dynamo.FromSec(s.T), W: s.W, Kind: kind})
	}
	if tr := c.Train; tr != nil {
		rng := rand.New(rand.NewPCG(tr.Seed, tr.Seed^0x9e3779b97f4a7c15))
		for i := 0; i < tr.Count; i++ {
			t := tr.Start + float64(i)*tr.Interval
			if tr.Jitter > 0 {
				t += (2*rng.Float64() - 1) * tr.Jitter
			}
			out = append(out, sim.Spike{T: dynamo.FromSec(math.Max(t, 0)), W: tr.W})
		}
	}
	out.Sort()
	return out, nil
}

func ParseSpikeKind(name string) (sim.SpikeKind, error) {
	switch name {
	case "", "normal":
		return sim.Normal, nil
	case "force-output":
		return sim.ForceOutput, nil
	case "set-voltage":
		return sim.SetVoltage, nil
	}
	return 0, fmt.Errorf("%w: unknown spike kind %q", ErrInvalidConfig, name)
}
