// Package automation runs scripted batches of sphere simulations.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/experiment"
	"github.com/san-kum/spheresim/internal/logging"
	"github.com/san-kum/spheresim/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. The config starts from Preset of Model (or
// the model defaults) and Config is decoded over it.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Model  string    `yaml:"model"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
	Save   *bool     `yaml:"save"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name   string
	RunID  string
	Config *config.Config
	Result *dynamo.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds the validated config of the step.
func (s *ScenarioStep) Resolve() (*config.Config, error) {
	model := s.Model
	if model == "" {
		model = config.ModelDynamic
	}
	preset := s.Preset
	if preset == "" {
		preset = "default"
	}

	cfg := config.GetPreset(model, preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %s/%s", model, preset)
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *ScenarioStep) label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("step %d", i+1)
}

// RunScenario executes all steps in order. With a non-nil store every step
// whose save flag is not false is persisted. It stops at the first failing
// step and returns the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		name := step.label(i)
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}

		result, err := experiment.New(cfg, registry, logger).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s run: %w", name, err)
		}

		sr := StepResult{Name: name, Config: cfg, Result: result}
		if store != nil && (step.Save == nil || *step.Save) {
			id, err := store.Save(cfg, result)
			if err != nil {
				return results, fmt.Errorf("%s save: %w", name, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial velocity of a dynamic run.
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the half-width of the uniform noise added to each
	// velocity component.
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID         int
	InitVelocity    [3]float64
	Detachments     int
	ContactFraction float64
	MaxSpeed        float64
}

// Attached reports whether the trial never left the surface.
func (r MonteCarloResult) Attached() bool { return r.Detachments == 0 }

// RunMonteCarlo executes NumTrials runs with random velocity perturbations.
// A zero seed draws one from the clock.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if mc.Base == nil {
		return nil, fmt.Errorf("monte carlo needs a base config")
	}
	if mc.Base.Model != config.ModelDynamic {
		return nil, fmt.Errorf("monte carlo needs the %s model, got %s", config.ModelDynamic, mc.Base.Model)
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, 0, mc.NumTrials)
	for trial := 0; trial < mc.NumTrials; trial++ {
		cfg := *mc.Base
		for i, v := range cfg.InitState.Velocity {
			cfg.InitState.Velocity[i] = v + (rng.Float64()-0.5)*2*mc.Perturbation
		}

		result, err := experiment.New(&cfg, registry, nil).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			TrialID:         trial,
			InitVelocity:    cfg.InitState.Velocity,
			Detachments:     int(result.Metrics["detachments"]),
			ContactFraction: result.Metrics["contact_fraction"],
			MaxSpeed:        result.Metrics["max_speed"],
		})
	}

	return results, nil
}

// MonteCarloStats counts trials that stayed attached and those that flew.
func MonteCarloStats(results []MonteCarloResult) (attached int, detached int) {
	for _, r := range results {
		if r.Attached() {
			attached++
		} else {
			detached++
		}
	}
	return
}
