// Package metrics holds per-sample observers for sphere runs.
package metrics

import (
	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/physics"
)

// Default returns the metric set reported by the CLI for a run.
func Default(radius, mass, gravity, drive float64, tuning physics.Tuning) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(mass, gravity, radius),
		NewEnergyDrift(mass, gravity, radius),
		NewMaxSpeed(),
		NewContactFraction(),
		NewSurfaceDeviation(radius),
		NewDetachments(),
		NewDriveWork(drive, tuning),
	}
}
