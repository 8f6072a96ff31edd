// Package score turns alignment results and stroke dynamics into the
// feedback handed back to the caller.
package score

import "math"

// TemporalAccuracy measures how regular the inter-sample time gaps are.
// 1.0 means perfectly even pacing, 0.0 means highly irregular.
func TemporalAccuracy(intervals []float64) float64 {
	return consistency(intervals)
}

// VelocityConsistency measures how steady the drawing speed is across
// segments.
func VelocityConsistency(velocities []float64) float64 {
	return consistency(velocities)
}

// PressureStability measures how steady the pen pressure is across samples.
func PressureStability(pressures []float64) float64 {
	return consistency(pressures)
}

// consistency computes 1 minus the coefficient of variation, clamped to
// [0, 1]. Fewer than two values cannot show variation and score a neutral
// 1.0, as does an all-zero series.
func consistency(values []float64) float64 {
	if len(values) < 2 {
		return 1.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 1.0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	cv := math.Sqrt(variance) / math.Abs(mean)
	return clamp(1-cv, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
