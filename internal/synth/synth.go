// Package synth generates practice strokes by tracing guide shapes with a
// simulated hand.
package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/stroke"
)

// Params controls how closely the simulated hand follows the guide.
type Params struct {
	// Noise is the wobble amplitude in world units. Zero traces the guide
	// exactly.
	Noise float64
	// SpeedJitter is the relative jitter on sample intervals, in [0, 0.9].
	SpeedJitter float64
	// PressureDrift is the random-walk step applied to pen pressure per
	// sample.
	PressureDrift float64
	// Rate is the sampling rate in samples per second.
	Rate float64
	// Speed is the tracing speed in world units per second.
	Speed float64
}

// DefaultParams returns parameters that mimic a reasonably steady hand.
func DefaultParams() Params {
	return Params{
		Noise:         4,
		SpeedJitter:   0.2,
		PressureDrift: 0.02,
		Rate:          60,
		Speed:         220,
	}
}

// Synth produces randomized guide tracings.
type Synth struct {
	rnd *rand.Rand
}

// New returns a Synth seeded with the current time.
func New() *Synth {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Synth with a fixed seed for reproducible traces.
func NewSeeded(seed int64) *Synth {
	return &Synth{rnd: rand.New(rand.NewSource(seed))}
}

// Trace draws the shape with a simulated hand. The pen follows the guide
// path at roughly Speed units per second while a damped random walk pushes
// it off course by up to Noise units. Sample count follows from path
// length, Speed, and Rate, clamped to [8, 512].
func (s *Synth) Trace(shape geom.Shape, p Params) (stroke.Stroke, error) {
	if p.Rate <= 0 || p.Speed <= 0 {
		return stroke.Stroke{}, fmt.Errorf("synth: rate %v and speed %v must be positive", p.Rate, p.Speed)
	}
	if err := shape.Validate(); err != nil {
		return stroke.Stroke{}, fmt.Errorf("failed to trace shape: %w", err)
	}

	fine, err := geom.Sample(shape, 128)
	if err != nil {
		return stroke.Stroke{}, fmt.Errorf("failed to sample guide: %w", err)
	}
	length := geom.PathLength(fine)
	count := int(length / p.Speed * p.Rate)
	if count < 8 {
		count = 8
	}
	if count > 512 {
		count = 512
	}
	path, err := stroke.Normalize(fine, count)
	if err != nil {
		return stroke.Stroke{}, fmt.Errorf("failed to normalize guide: %w", err)
	}

	jitter := p.SpeedJitter
	if jitter > 0.9 {
		jitter = 0.9
	}
	dt := 1 / p.Rate
	walkStep := p.Noise * 0.35

	samples := make([]stroke.Sample, count)
	var off geom.Point
	t := 0.0
	pressure := 0.7 + 0.15*s.rnd.Float64()
	for i, pos := range path {
		off = s.step(off, walkStep, p.Noise)
		samples[i] = stroke.Sample{
			Pos:      pos.Add(off),
			Pressure: pressure,
			Time:     t,
		}
		t += dt * (1 + jitter*(s.rnd.Float64()*2-1))
		pressure = clamp(pressure+s.rnd.NormFloat64()*p.PressureDrift, 0.05, 1)
	}
	return stroke.New(samples)
}

// step advances the wobble random walk, damping it toward the guide so the
// trace meanders instead of drifting away.
func (s *Synth) step(off geom.Point, step, limit float64) geom.Point {
	if limit <= 0 {
		return geom.Point{}
	}
	off = off.Mul(0.9)
	off.X += s.rnd.NormFloat64() * step
	off.Y += s.rnd.NormFloat64() * step
	off.X = clamp(off.X, -limit, limit)
	off.Y = clamp(off.Y, -limit, limit)
	return off
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
