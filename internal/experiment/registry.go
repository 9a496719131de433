package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/integrators"
	"github.com/san-kum/spheresim/internal/metrics"
	"github.com/san-kum/spheresim/internal/physics"
)

// Runner performs one run of cfg on sim, feeding the given metrics.
type Runner func(sim *physics.SphereSimulator, cfg *config.Config, ms []dynamo.Metric) (*dynamo.Result, error)

type Registry struct {
	models map[string]Runner
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]Runner)}

	r.models[config.ModelDynamic] = func(sim *physics.SphereSimulator, cfg *config.Config, ms []dynamo.Metric) (*dynamo.Result, error) {
		return sim.Run(cfg.InitPosition(), cfg.InitVelocity(), cfg.DriveForce, cfg.Duration, cfg.Mass, ms...)
	}
	r.models[config.ModelSpiral] = func(sim *physics.SphereSimulator, cfg *config.Config, ms []dynamo.Metric) (*dynamo.Result, error) {
		return sim.RunSpiral(cfg.Spiral, cfg.Duration, cfg.Mass, ms...)
	}

	return r
}

func (r *Registry) GetModel(name string) (Runner, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownModel, name)
	}
	return fn, nil
}

func (r *Registry) GetIntegrator(name string) (integrators.Stepper, error) {
	integ, ok := integrators.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return integ, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metric instances for a run of cfg on sim.
// Gravity and tuning come from sim, which has already filled in defaults.
func (r *Registry) DefaultMetrics(cfg *config.Config, sim *physics.SphereSimulator) []dynamo.Metric {
	return metrics.Default(sim.Radius(), cfg.Mass, sim.Sphere().Gravity, cfg.DriveForce, sim.Tuning())
}
