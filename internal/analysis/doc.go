// Package analysis extracts frequency and phase-space summaries from
// recorded trajectories.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation of a sampled signal
//   - [NewPhasePortrait]: height against radial velocity
//   - [Crossings]: upward crossings of a height level, interpolated in time
//
// The height signal of a particle circling inside the sphere oscillates once
// per revolution, so the dominant frequency of Heights(traj) is its orbital
// frequency:
//
//	f := analysis.DominantFrequency(analysis.Heights(traj), dt)
package analysis
