// Package stroke models captured pen strokes and their arc-length normal
// form.
package stroke

import (
	"errors"
	"fmt"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

// Stroke construction errors.
var (
	// ErrTooFewSamples reports input too small to describe a path. Callers
	// treat it as "not enough data yet" and skip the analysis quietly.
	ErrTooFewSamples = errors.New("stroke: need at least 2 samples")
	// ErrTimestamps reports sample times that go backwards.
	ErrTimestamps = errors.New("stroke: timestamps must be non-decreasing")
)

// Sample is one captured pen event.
type Sample struct {
	Pos      geom.Point
	Pressure float64
	// Time is seconds since the stroke started.
	Time float64
	// Velocity is units per second over the segment ending at this sample.
	// It is derived during construction and stays 0 on the first sample.
	Velocity float64
}

// Stroke is an ordered sequence of pen samples with non-decreasing
// timestamps.
type Stroke struct {
	Samples []Sample
}

// New builds a stroke from raw samples, deriving per-segment velocities.
// The input is copied; velocities present on the input are recomputed.
func New(samples []Sample) (Stroke, error) {
	if len(samples) < 2 {
		return Stroke{}, fmt.Errorf("%w, got %d", ErrTooFewSamples, len(samples))
	}
	out := make([]Sample, len(samples))
	copy(out, samples)
	out[0].Velocity = 0
	for i := 1; i < len(out); i++ {
		dt := out[i].Time - out[i-1].Time
		if dt < 0 {
			return Stroke{}, fmt.Errorf("%w: sample %d at %vs after %vs", ErrTimestamps, i, out[i].Time, out[i-1].Time)
		}
		if dt > 0 {
			out[i].Velocity = out[i].Pos.Distance(out[i-1].Pos) / dt
		} else {
			// Coincident timestamps carry the previous speed forward.
			out[i].Velocity = out[i-1].Velocity
		}
	}
	return Stroke{Samples: out}, nil
}

// FromPoints builds a stroke from parallel point, pressure, and time slices.
// Pressures may be nil, in which case a neutral 1.0 is assumed.
func FromPoints(points []geom.Point, pressures, times []float64) (Stroke, error) {
	if len(points) != len(times) {
		return Stroke{}, fmt.Errorf("stroke: %d points but %d times", len(points), len(times))
	}
	if pressures != nil && len(pressures) != len(points) {
		return Stroke{}, fmt.Errorf("stroke: %d points but %d pressures", len(points), len(pressures))
	}
	samples := make([]Sample, len(points))
	for i, p := range points {
		pressure := 1.0
		if pressures != nil {
			pressure = pressures[i]
		}
		samples[i] = Sample{Pos: p, Pressure: pressure, Time: times[i]}
	}
	return New(samples)
}

// Len returns the number of samples.
func (s Stroke) Len() int {
	return len(s.Samples)
}

// Points returns the sample positions in order.
func (s Stroke) Points() []geom.Point {
	points := make([]geom.Point, len(s.Samples))
	for i, sample := range s.Samples {
		points[i] = sample.Pos
	}
	return points
}

// Pressures returns the per-sample pressures in order.
func (s Stroke) Pressures() []float64 {
	pressures := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		pressures[i] = sample.Pressure
	}
	return pressures
}

// Velocities returns the derived per-segment velocities. The result has one
// entry per segment, so its length is Len()-1.
func (s Stroke) Velocities() []float64 {
	if len(s.Samples) < 2 {
		return nil
	}
	velocities := make([]float64, len(s.Samples)-1)
	for i := 1; i < len(s.Samples); i++ {
		velocities[i-1] = s.Samples[i].Velocity
	}
	return velocities
}

// Intervals returns the inter-sample time gaps in seconds, one per segment.
func (s Stroke) Intervals() []float64 {
	if len(s.Samples) < 2 {
		return nil
	}
	intervals := make([]float64, len(s.Samples)-1)
	for i := 1; i < len(s.Samples); i++ {
		intervals[i-1] = s.Samples[i].Time - s.Samples[i-1].Time
	}
	return intervals
}

// PathLength returns the cumulative length of the stroke polyline.
func (s Stroke) PathLength() float64 {
	return geom.PathLength(s.Points())
}

// Duration returns the stroke duration in seconds.
func (s Stroke) Duration() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return s.Samples[len(s.Samples)-1].Time - s.Samples[0].Time
}
