package geom

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestSampleLineEndpoints(t *testing.T) {
	line := Line{Start: Pt(0, 0), End: Pt(10, 0)}
	points, err := Sample(line, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	if points[0] != line.Start || points[4] != line.End {
		t.Fatalf("expected endpoints preserved, got %v and %v", points[0], points[4])
	}
	for i := 1; i < len(points); i++ {
		if !almostEqual(points[i].X-points[i-1].X, 2.5) {
			t.Fatalf("expected uniform spacing 2.5, got %v", points[i].X-points[i-1].X)
		}
	}
}

func TestSampleCircleOnRadius(t *testing.T) {
	circle := Circle{Center: Pt(100, 100), Radius: 50}
	points, err := Sample(circle, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 32 {
		t.Fatalf("expected 32 points, got %d", len(points))
	}
	for i, p := range points {
		if d := p.Distance(circle.Center); !almostEqual(d, 50) {
			t.Fatalf("point %d at distance %v, expected 50", i, d)
		}
	}
	// Closed shapes must not repeat the start point.
	if points[len(points)-1].Distance(points[0]) < eps {
		t.Fatalf("expected open final gap, got coincident first/last points")
	}
}

func TestSampleRectanglePerimeter(t *testing.T) {
	rect := Rectangle{Center: Pt(0, 0), Width: 40, Height: 20}
	points, err := Sample(rect, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range points {
		onX := almostEqual(math.Abs(p.X), 20) && math.Abs(p.Y) <= 10+1e-6
		onY := almostEqual(math.Abs(p.Y), 10) && math.Abs(p.X) <= 20+1e-6
		if !onX && !onY {
			t.Fatalf("point %d = %v not on rectangle perimeter", i, p)
		}
	}
}

func TestSamplePolygonProportionalToEdges(t *testing.T) {
	// A long thin triangle: the long edges should receive most samples.
	poly := Polygon{Vertices: []Point{Pt(0, 0), Pt(100, 0), Pt(50, 1)}}
	points, err := Sample(poly, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	onBase := 0
	for _, p := range points {
		if almostEqual(p.Y, 0) {
			onBase++
		}
	}
	if onBase < 20 {
		t.Fatalf("expected the 100-unit base edge to hold most samples, got %d of 50", onBase)
	}
}

func TestSampleCurvePassesEndpoints(t *testing.T) {
	curve := Curve{Start: Pt(0, 0), Control: Pt(50, 100), End: Pt(100, 0)}
	points, err := Sample(curve, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points[0] != curve.Start || points[len(points)-1] != curve.End {
		t.Fatalf("expected curve endpoints preserved, got %v and %v", points[0], points[len(points)-1])
	}
	mid := quadBezier(curve.Start, curve.Control, curve.End, 0.5)
	if !almostEqual(mid.Y, 50) {
		t.Fatalf("expected parabola apex y=50, got %v", mid.Y)
	}
}

func TestSampleRejectsSmallCount(t *testing.T) {
	_, err := Sample(Line{Start: Pt(0, 0), End: Pt(1, 1)}, 1)
	if !errors.Is(err, ErrSampleCount) {
		t.Fatalf("expected ErrSampleCount, got %v", err)
	}
}

func TestSampleRejectsInvalidShapes(t *testing.T) {
	cases := []struct {
		name  string
		shape Shape
	}{
		{"zero radius circle", Circle{Center: Pt(0, 0), Radius: 0}},
		{"negative oval", Oval{Center: Pt(0, 0), Width: -1, Height: 4}},
		{"flat rectangle", Rectangle{Center: Pt(0, 0), Width: 10, Height: 0}},
		{"point line", Line{Start: Pt(3, 3), End: Pt(3, 3)}},
		{"collapsed curve", Curve{Start: Pt(1, 1), Control: Pt(1, 1), End: Pt(1, 1)}},
		{"two-vertex polygon", Polygon{Vertices: []Point{Pt(0, 0), Pt(1, 1)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Sample(tc.shape, 16); !errors.Is(err, ErrInvalidShape) {
				t.Fatalf("expected ErrInvalidShape, got %v", err)
			}
		})
	}
}

func TestBoundsDiagonal(t *testing.T) {
	circle := Circle{Center: Pt(100, 100), Radius: 50}
	if d := circle.Bounds().Diagonal(); !almostEqual(d, 100*math.Sqrt2) {
		t.Fatalf("expected diagonal %v, got %v", 100*math.Sqrt2, d)
	}
}
