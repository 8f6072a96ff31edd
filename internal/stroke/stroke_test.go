package stroke

import (
	"errors"
	"testing"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

func TestNewDerivesVelocities(t *testing.T) {
	s, err := New([]Sample{
		{Pos: geom.Pt(0, 0), Time: 0},
		{Pos: geom.Pt(3, 4), Time: 0.5},
		{Pos: geom.Pt(3, 4), Time: 0.5},
		{Pos: geom.Pt(6, 8), Time: 1.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := s.Velocities()
	if len(v) != 3 {
		t.Fatalf("expected 3 segment velocities, got %d", len(v))
	}
	if !almostEqual(v[0], 10) {
		t.Fatalf("expected velocity 10, got %v", v[0])
	}
	// A zero-dt segment carries the previous speed forward.
	if !almostEqual(v[1], 10) {
		t.Fatalf("expected carried velocity 10, got %v", v[1])
	}
	if !almostEqual(v[2], 10) {
		t.Fatalf("expected velocity 10, got %v", v[2])
	}
}

func TestNewRejectsBackwardTimestamps(t *testing.T) {
	_, err := New([]Sample{
		{Pos: geom.Pt(0, 0), Time: 1},
		{Pos: geom.Pt(1, 1), Time: 0.5},
	})
	if !errors.Is(err, ErrTimestamps) {
		t.Fatalf("expected ErrTimestamps, got %v", err)
	}
}

func TestNewRejectsSingleSample(t *testing.T) {
	_, err := New([]Sample{{Pos: geom.Pt(0, 0)}})
	if !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestFromPointsDefaultsPressure(t *testing.T) {
	s, err := FromPoints(
		[]geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(2, 0)},
		nil,
		[]float64{0, 0.1, 0.2},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range s.Pressures() {
		if p != 1.0 {
			t.Fatalf("expected neutral pressure at %d, got %v", i, p)
		}
	}
	if !almostEqual(s.Duration(), 0.2) {
		t.Fatalf("expected duration 0.2, got %v", s.Duration())
	}
	if !almostEqual(s.PathLength(), 2) {
		t.Fatalf("expected path length 2, got %v", s.PathLength())
	}
}

func TestFromPointsRejectsMismatchedLengths(t *testing.T) {
	_, err := FromPoints([]geom.Point{geom.Pt(0, 0), geom.Pt(1, 1)}, nil, []float64{0})
	if err == nil {
		t.Fatalf("expected an error for mismatched lengths")
	}
}

func TestIntervals(t *testing.T) {
	s, err := FromPoints(
		[]geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(2, 0)},
		nil,
		[]float64{0, 0.25, 0.75},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	iv := s.Intervals()
	if len(iv) != 2 || !almostEqual(iv[0], 0.25) || !almostEqual(iv[1], 0.5) {
		t.Fatalf("unexpected intervals: %v", iv)
	}
}
