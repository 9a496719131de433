package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/integrators"
	"github.com/san-kum/spheresim/internal/physics"
)

const (
	ModelDynamic = "dynamic"
	ModelSpiral  = "spiral"
)

const (
	DefaultRadius   = 4.0
	DefaultMass     = 1.0
	DefaultForce    = 15.0
	DefaultDuration = 15.0
	DefaultAccel    = 1.0
	DefaultPitch    = 0.2
)

type Config struct {
	Model      string          `yaml:"model"`
	Integrator string          `yaml:"integrator"`
	Radius     float64         `yaml:"radius"`
	Gravity    float64         `yaml:"gravity"`
	Mass       float64         `yaml:"mass"`
	DriveForce float64         `yaml:"drive_force"`
	Duration   float64         `yaml:"duration"`
	InitState  InitStateConfig `yaml:"init_state"`
	Spiral     physics.Spiral  `yaml:"spiral"`
	Tuning     physics.Tuning  `yaml:"tuning"`
}

type InitStateConfig struct {
	Position [3]float64 `yaml:"position,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      ModelDynamic,
		Integrator: "symplectic",
		Radius:     DefaultRadius,
		Gravity:    physics.StandardGravity,
		Mass:       DefaultMass,
		DriveForce: DefaultForce,
		Duration:   DefaultDuration,
		InitState: InitStateConfig{
			Position: [3]float64{0.1, -3.95, 0},
			Velocity: [3]float64{0, 0, 2},
		},
		Spiral: physics.Spiral{
			Acceleration: DefaultAccel,
			Pitch:        DefaultPitch,
		},
		Tuning: physics.DefaultTuning(),
	}
}

// Load reads a YAML file over DefaultConfig, so omitted keys keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

func (c *Config) InitPosition() mgl64.Vec3 { return mgl64.Vec3(c.InitState.Position) }
func (c *Config) InitVelocity() mgl64.Vec3 { return mgl64.Vec3(c.InitState.Velocity) }

// Validate rejects what the simulator would reject. Non-positive duration
// or mass pass: they produce an empty run.
func (c *Config) Validate() error {
	switch c.Model {
	case ModelDynamic, ModelSpiral:
	default:
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownModel, c.Model)
	}
	if _, ok := integrators.ByName(c.Integrator); !ok {
		return dynamo.InvalidParameter("integrator", c.Integrator, "unknown integrator")
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return dynamo.InvalidParameter("radius", c.Radius, "radius must be positive")
	}
	if math.IsNaN(c.Mass) || math.IsNaN(c.Duration) || math.IsNaN(c.DriveForce) {
		return dynamo.InvalidParameter("mass", c.Mass, "mass, duration and drive_force must be numbers")
	}
	if c.Model == ModelDynamic {
		p := c.InitPosition()
		tol := c.Tuning.OutsideTolerance
		if tol <= 0 {
			tol = physics.DefaultTuning().OutsideTolerance
		}
		if p.Dot(p) > c.Radius*c.Radius+tol {
			return dynamo.InvalidParameter("init_state.position", p, "initial position outside sphere")
		}
	}
	return nil
}

// Simulator builds the simulator described by c.
func (c *Config) Simulator(opts ...physics.Option) (*physics.SphereSimulator, error) {
	integ, ok := integrators.ByName(c.Integrator)
	if !ok {
		return nil, dynamo.InvalidParameter("integrator", c.Integrator, "unknown integrator")
	}
	base := []physics.Option{
		physics.WithTuning(c.Tuning),
		physics.WithGravity(c.Gravity),
		physics.WithIntegrator(integ),
	}
	return physics.New(c.Radius, append(base, opts...)...)
}
