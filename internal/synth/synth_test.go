package synth

import (
	"errors"
	"testing"

	"github.com/lmeritt/sketchtrace/internal/align"
	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/stroke"
)

func traceAccuracy(t *testing.T, seed int64, noise float64) float64 {
	t.Helper()
	shape := geom.Circle{Center: geom.Pt(100, 100), Radius: 60}
	p := DefaultParams()
	p.Noise = noise
	stk, err := NewSeeded(seed).Trace(shape, p)
	if err != nil {
		t.Fatalf("expected trace to succeed, got %v", err)
	}
	user, err := stroke.Normalize(stk.Points(), 32)
	if err != nil {
		t.Fatalf("expected normalize to succeed, got %v", err)
	}
	guide, err := geom.Sample(shape, 32)
	if err != nil {
		t.Fatalf("expected guide sampling to succeed, got %v", err)
	}
	res, err := align.DTW(user, guide, align.Options{})
	if err != nil {
		t.Fatalf("expected alignment to succeed, got %v", err)
	}
	return res.Accuracy
}

func TestTraceDeterministicWithSeed(t *testing.T) {
	shape := geom.Rectangle{Center: geom.Pt(50, 50), Width: 40, Height: 30}
	a, err := NewSeeded(7).Trace(shape, DefaultParams())
	if err != nil {
		t.Fatalf("expected trace to succeed, got %v", err)
	}
	b, err := NewSeeded(7).Trace(shape, DefaultParams())
	if err != nil {
		t.Fatalf("expected trace to succeed, got %v", err)
	}
	if a.Len() != b.Len() {
		t.Fatalf("expected equal sample counts, got %d and %d", a.Len(), b.Len())
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("expected sample %d to match, got %v and %v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestTraceZeroNoiseFollowsGuide(t *testing.T) {
	acc := traceAccuracy(t, 11, 0)
	if acc < 0.98 {
		t.Fatalf("expected near-perfect accuracy for zero noise, got %v", acc)
	}
}

func TestTraceNoiseDegradesAccuracy(t *testing.T) {
	levels := []float64{0, 6, 18}
	var accs []float64
	for _, noise := range levels {
		total := 0.0
		for seed := int64(1); seed <= 5; seed++ {
			total += traceAccuracy(t, seed, noise)
		}
		accs = append(accs, total/5)
	}
	if accs[0] < 0.97 {
		t.Fatalf("expected clean trace accuracy >= 0.97, got %v", accs[0])
	}
	if accs[2] >= accs[0] {
		t.Fatalf("expected accuracy to degrade with noise, got %v then %v", accs[0], accs[2])
	}
}

func TestTraceTimestampsIncrease(t *testing.T) {
	p := DefaultParams()
	p.SpeedJitter = 2 // clamped internally
	stk, err := NewSeeded(3).Trace(geom.Line{Start: geom.Pt(0, 0), End: geom.Pt(100, 0)}, p)
	if err != nil {
		t.Fatalf("expected trace to succeed, got %v", err)
	}
	for i := 1; i < stk.Len(); i++ {
		if stk.Samples[i].Time <= stk.Samples[i-1].Time {
			t.Fatalf("expected increasing timestamps, got %v then %v", stk.Samples[i-1].Time, stk.Samples[i].Time)
		}
	}
}

func TestTracePressureStaysInRange(t *testing.T) {
	p := DefaultParams()
	p.PressureDrift = 0.3
	stk, err := NewSeeded(9).Trace(geom.Circle{Center: geom.Pt(0, 0), Radius: 50}, p)
	if err != nil {
		t.Fatalf("expected trace to succeed, got %v", err)
	}
	for i, s := range stk.Samples {
		if s.Pressure < 0.05 || s.Pressure > 1 {
			t.Fatalf("expected pressure in [0.05, 1], got %v at sample %d", s.Pressure, i)
		}
	}
}

func TestTraceRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.Rate = 0
	if _, err := New().Trace(geom.Circle{Center: geom.Pt(0, 0), Radius: 10}, p); err == nil {
		t.Fatalf("expected error for zero rate, got nil")
	}
	if _, err := New().Trace(geom.Circle{}, DefaultParams()); !errors.Is(err, geom.ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape, got %v", err)
	}
}
