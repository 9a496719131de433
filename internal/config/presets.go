package config

import (
	"math"
	"sort"

	"github.com/san-kum/spheresim/internal/physics"
)

func preset(apply func(c *Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

var Presets = map[string]map[string]*Config{
	ModelDynamic: {
		"default": DefaultConfig(),
		"equator_orbit": preset(func(c *Config) {
			c.DriveForce = 0
			c.Duration = 10
			c.InitState.Position = [3]float64{c.Radius, 0, 0}
			c.InitState.Velocity = [3]float64{0, 0, math.Sqrt(physics.StandardGravity * c.Radius)}
		}),
		"free_fall": preset(func(c *Config) {
			c.DriveForce = 0
			c.Duration = 3
			c.InitState.Position = [3]float64{}
			c.InitState.Velocity = [3]float64{}
		}),
		"lob": preset(func(c *Config) {
			c.DriveForce = 0
			c.Duration = 8
			c.InitState.Position = [3]float64{0, -2, 0}
			c.InitState.Velocity = [3]float64{3, 4, 0}
		}),
		"loop": preset(func(c *Config) {
			c.DriveForce = 40
			c.Duration = 15
		}),
		"coast": preset(func(c *Config) {
			c.DriveForce = 0
			c.Duration = 20
			c.InitState.Velocity = [3]float64{0, 0, 5}
		}),
	},
	ModelSpiral: {
		"default": preset(func(c *Config) {
			c.Model = ModelSpiral
		}),
		"steep": preset(func(c *Config) {
			c.Model = ModelSpiral
			c.Duration = 5
			c.Spiral = physics.Spiral{Acceleration: 4, Pitch: 10}
		}),
		"gentle": preset(func(c *Config) {
			c.Model = ModelSpiral
			c.Duration = 30
			c.Spiral = physics.Spiral{Acceleration: 0.1, Pitch: 1}
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, name string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListModels() []string {
	models := make([]string, 0, len(Presets))
	for m := range Presets {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}
