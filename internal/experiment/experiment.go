package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/logging"
	"github.com/san-kum/spheresim/internal/physics"
)

// Experiment binds a validated config to the runner of its model.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger
}

func New(cfg *config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.cfg == nil {
		return nil, fmt.Errorf("experiment has no config")
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	runner, err := e.registry.GetModel(e.cfg.Model)
	if err != nil {
		return nil, err
	}

	log := logging.For(ctx, e.logger)
	sim, err := e.cfg.Simulator(physics.WithLogger(log))
	if err != nil {
		return nil, err
	}

	result, err := runner(sim, e.cfg, e.registry.DefaultMetrics(e.cfg, sim))
	if err != nil {
		return nil, err
	}
	log.Info("run finished",
		"model", e.cfg.Model,
		"samples", result.Samples(),
		"stop_reason", result.StopReason,
		"transitions", len(result.Events))
	return result, nil
}

// SweepResult summarises one run of a drive force sweep.
type SweepResult struct {
	Force      float64
	Samples    int
	StopReason dynamo.StopReason
	Metrics    map[string]float64
	Err        error
}

// ForceRange returns n evenly spaced values in [lo, hi].
func ForceRange(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	forces := make([]float64, n)
	for i := range forces {
		forces[i] = lo + float64(i)*step
	}
	return forces
}

// Sweep runs cfg once per drive force. Runs are independent and execute in
// parallel; results keep the order of forces. Per-run failures are reported
// in SweepResult.Err, the returned error is only set for an invalid base
// config or a cancelled context.
func Sweep(ctx context.Context, cfg *config.Config, forces []float64, registry *Registry, logger *slog.Logger) ([]SweepResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewRegistry()
	}

	results := make([]SweepResult, len(forces))
	dynamo.ParallelFor(len(forces), func(i int) {
		results[i].Force = forces[i]
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			return
		}
		if math.IsNaN(forces[i]) {
			results[i].Err = dynamo.InvalidParameter("drive_force", forces[i], "drive force must be a number")
			return
		}

		runCfg := *cfg
		runCfg.DriveForce = forces[i]
		res, err := New(&runCfg, registry, logger).Run(ctx)
		if err != nil {
			results[i].Err = err
			return
		}
		results[i].Samples = res.Samples()
		results[i].StopReason = res.StopReason
		results[i].Metrics = res.Metrics
	})

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
