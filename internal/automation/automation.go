package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/adexsim/internal/config"
	"github.com/san-kum/adexsim/internal/experiment"
	"github.com/san-kum/adexsim/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run of a scenario. The configuration starts from
// the defaults or Preset; Config overrides individual fields and Params
// individual physical parameters.
type ScenarioStep struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset"`
	Config yaml.Node          `yaml:"config"`
	Params map[string]float64 `yaml:"params"`
	Save   bool               `yaml:"save"`
}

// StepResult is the outcome of one scenario step. RunID is empty unless the
// step was saved.
type StepResult struct {
	Name    string
	RunID   string
	Config  *config.Config
	Outcome *experiment.Outcome
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &scenario, nil
}

// Resolve builds the run configuration of the step.
func (s *ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	for name, val := range s.Params {
		if !cfg.Params.SetParam(name, val) {
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
	}
	return cfg, nil
}

// RunScenario executes all steps in order. Steps marked for saving are
// stored in st, which may be nil when no step saves.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, log *slog.Logger) ([]StepResult, error) {
	if log == nil {
		log = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.Info("scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		out, err := experiment.New(cfg, experiment.WithLogger(log)).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepResult{Name: name, Config: cfg, Outcome: out}
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d: no store to save to", i+1)
			}
			if res.RunID, err = st.Save(cfg, out); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// MonteCarloConfig repeats a configuration with a differently seeded input
// train jitter per trial.
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	Jitter    float64
	Seed      uint64
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID      int
	Seed         uint64
	OutputSpikes int
	FirstSpike   float64 // -1 without output spikes
	Stable       bool
}

// RunMonteCarlo executes the trials sequentially. The base configuration
// must carry a spike train.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, log *slog.Logger) ([]MonteCarloResult, error) {
	if cfg.Base == nil || cfg.Base.Train == nil || cfg.Base.Train.Count == 0 {
		return nil, fmt.Errorf("%w: monte carlo needs a spike train", config.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		run := cfg.Base.Clone()
		run.Train.Seed = cfg.Seed + uint64(trial)
		if cfg.Jitter > 0 {
			run.Train.Jitter = cfg.Jitter
		}

		out, err := experiment.New(run, experiment.WithLogger(log)).Run(ctx)
		if err != nil {
			return results, err
		}

		first := -1.0
		if spikes := out.Trace.OutputSpikeTimes(); len(spikes) > 0 {
			first = spikes[0]
		}
		results = append(results, MonteCarloResult{
			TrialID:      trial,
			Seed:         run.Train.Seed,
			OutputSpikes: out.Result.OutputSpikes,
			FirstSpike:   first,
			Stable:       out.Metrics["stability"] == 1,
		})

		if (trial+1)%10 == 0 {
			log.Info("monte carlo progress", "done", trial+1, "trials", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (meanSpikes float64, stableCount int, unstableCount int) {
	for _, r := range results {
		meanSpikes += float64(r.OutputSpikes)
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	if len(results) > 0 {
		meanSpikes /= float64(len(results))
	}
	return
}
