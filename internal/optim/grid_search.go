// Package optim searches run parameters for the best value of a metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/experiment"
)

// Params lists the config fields a search can vary.
var Params = []string{"force", "mass", "radius", "px", "py", "pz", "vx", "vy", "vz", "accel", "pitch"}

// Apply sets the named parameter on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "force":
		cfg.DriveForce = v
	case "mass":
		cfg.Mass = v
	case "radius":
		cfg.Radius = v
	case "px", "py", "pz":
		cfg.InitState.Position[name[1]-'x'] = v
	case "vx", "vy", "vz":
		cfg.InitState.Velocity[name[1]-'x'] = v
	case "accel":
		cfg.Spiral.Acceleration = v
	case "pitch":
		cfg.Spiral.Pitch = v
	default:
		return fmt.Errorf("unknown parameter %q (want one of %s)", name, strings.Join(Params, ", "))
	}
	return nil
}

// ParseRange reads "name=lo:hi:n" into n evenly spaced values, or
// "name=v" into a single value.
func ParseRange(arg string) (string, []float64, error) {
	name, rng, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("range %q: want name=lo:hi:n", arg)
	}
	parts := strings.Split(rng, ":")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", arg, err)
		}
		vals[i] = v
	}

	switch len(vals) {
	case 1:
		return name, vals, nil
	case 3:
		n := int(vals[2])
		if n < 1 || float64(n) != vals[2] {
			return "", nil, fmt.Errorf("range %q: count must be a positive integer", arg)
		}
		return name, experiment.ForceRange(vals[0], vals[1], n), nil
	}
	return "", nil, fmt.Errorf("range %q: want name=lo:hi:n", arg)
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	registry   *experiment.Registry
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, registry: experiment.NewRegistry()}
}

// Evaluations is the number of runs a full search performs.
func (g *GridSearch) Evaluations() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs base once per grid point and returns the parameters with the
// lowest metric value, or the highest when maximize is set. Grid points
// that fail validation are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string, maximize bool) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if err := Apply(config.DefaultConfig(), name, 0); err != nil {
			return nil, 0, err
		}
	}

	sign := 1.0
	if maximize {
		sign = -1
	}
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, sign, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, errors.New("no grid point produced the metric " + metricName)
	}
	return bestParams, sign * best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	sign float64,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := *base
		for k, v := range current {
			Apply(&cfg, k, v)
		}

		result, err := experiment.New(&cfg, g.registry, nil).Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			return nil
		}
		if sign*val < *best {
			*best = sign * val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, sign, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
