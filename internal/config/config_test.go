package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != ModelDynamic {
		t.Errorf("expected model dynamic, got %s", cfg.Model)
	}
	if cfg.Radius != 4 || cfg.Mass != 1 || cfg.DriveForce != 15 || cfg.Duration != 15 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.InitPosition() != (mgl64.Vec3{0.1, -3.95, 0}) {
		t.Errorf("unexpected initial position %v", cfg.InitPosition())
	}
	if cfg.InitVelocity() != (mgl64.Vec3{0, 0, 2}) {
		t.Errorf("unexpected initial velocity %v", cfg.InitVelocity())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte(`model: dynamic
radius: 2
drive_force: 3.5
init_state:
  position: [0, -1, 0]
  velocity: [1, 0, 0]
tuning:
  restitution: 0.5
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Radius != 2 || cfg.DriveForce != 3.5 {
		t.Errorf("values not loaded: %+v", cfg)
	}
	if cfg.Mass != DefaultMass || cfg.Duration != DefaultDuration {
		t.Errorf("omitted keys lost their defaults: mass=%v duration=%v", cfg.Mass, cfg.Duration)
	}
	if cfg.Tuning.Restitution != 0.5 || cfg.Tuning.Dt != 0.005 {
		t.Errorf("tuning not merged: %+v", cfg.Tuning)
	}
	if cfg.InitPosition() != (mgl64.Vec3{0, -1, 0}) {
		t.Errorf("position = %v", cfg.InitPosition())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	want := GetPreset(ModelSpiral, "steep")
	if err := Save(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"unknown model", func(c *Config) { c.Model = "pendulum" }, dynamo.ErrUnknownModel},
		{"unknown integrator", func(c *Config) { c.Integrator = "rk4" }, dynamo.ErrInvalidParameter},
		{"zero radius", func(c *Config) { c.Radius = 0 }, dynamo.ErrInvalidParameter},
		{"outside sphere", func(c *Config) { c.InitState.Position = [3]float64{5, 0, 0} }, dynamo.ErrInvalidParameter},
		{"zero duration is allowed", func(c *Config) { c.Duration = 0 }, nil},
		{"spiral ignores position", func(c *Config) {
			c.Model = ModelSpiral
			c.InitState.Position = [3]float64{5, 0, 0}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSimulatorUsesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Radius = 2
	cfg.Tuning.Dt = 0.01

	sim, err := cfg.Simulator()
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	if sim.Radius() != 2 || sim.Dt() != 0.01 {
		t.Errorf("radius=%v dt=%v", sim.Radius(), sim.Dt())
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset(ModelDynamic, "free_fall")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.DriveForce != 0 || cfg.InitPosition() != (mgl64.Vec3{}) {
		t.Errorf("unexpected free_fall preset: %+v", cfg)
	}

	cfg.Radius = 100
	if Presets[ModelDynamic]["free_fall"].Radius == 100 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset(ModelDynamic, "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "default") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, model := range ListModels() {
		names := ListPresets(model)
		if len(names) == 0 {
			t.Errorf("no presets for %s", model)
		}
		for _, name := range names {
			cfg := GetPreset(model, name)
			if cfg.Model != model {
				t.Errorf("%s/%s has model %s", model, name, cfg.Model)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s invalid: %v", model, name, err)
			}
		}
	}

	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent model")
	}
}
