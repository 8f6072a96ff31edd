package stroke

import (
	"errors"
	"math"
	"testing"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNormalizeTwoSampleSegment(t *testing.T) {
	points := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 10)}
	out, err := Normalize(points, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("expected 8 points, got %d", len(out))
	}
	if out[0] != points[0] || !almostEqual(out[7].X, 10) || !almostEqual(out[7].Y, 10) {
		t.Fatalf("expected endpoints preserved, got %v and %v", out[0], out[7])
	}
	step := points[0].Distance(points[1]) / 7
	for i := 1; i < len(out); i++ {
		if !almostEqual(out[i].Distance(out[i-1]), step) {
			t.Fatalf("expected uniform spacing %v, got %v at %d", step, out[i].Distance(out[i-1]), i)
		}
		if !almostEqual(out[i].X, out[i].Y) {
			t.Fatalf("expected colinear points on y=x, got %v", out[i])
		}
	}
}

func TestNormalizeUniformSpacingAcrossCorner(t *testing.T) {
	// An L of total length 20: spacing must ignore the corner.
	points := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}
	out, err := Normalize(points, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(out); i++ {
		if !almostEqual(out[i].Distance(out[i-1]), 2) {
			t.Fatalf("expected spacing 2, got %v at %d", out[i].Distance(out[i-1]), i)
		}
	}
	if !almostEqual(out[10].X, 10) || !almostEqual(out[10].Y, 10) {
		t.Fatalf("expected final point (10,10), got %v", out[10])
	}
}

func TestNormalizeTapRepeatsPoint(t *testing.T) {
	points := []geom.Point{geom.Pt(5, 5), geom.Pt(5, 5), geom.Pt(5, 5)}
	out, err := Normalize(points, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 16 {
		t.Fatalf("expected 16 points, got %d", len(out))
	}
	for i, p := range out {
		if p != points[0] {
			t.Fatalf("expected tap point repeated, got %v at %d", p, i)
		}
	}
}

func TestNormalizeRejectsShortInput(t *testing.T) {
	if _, err := Normalize([]geom.Point{geom.Pt(1, 1)}, 8); !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
	if _, err := Normalize([]geom.Point{geom.Pt(1, 1), geom.Pt(2, 2)}, 1); !errors.Is(err, geom.ErrSampleCount) {
		t.Fatalf("expected ErrSampleCount, got %v", err)
	}
}

func TestNormalizeDownsamples(t *testing.T) {
	points := make([]geom.Point, 100)
	for i := range points {
		points[i] = geom.Pt(float64(i), 0)
	}
	out, err := Normalize(points, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("expected 10 points, got %d", len(out))
	}
	for i, p := range out {
		if !almostEqual(p.X, float64(i)*11) {
			t.Fatalf("expected x=%v, got %v", float64(i)*11, p.X)
		}
	}
}
