package geom

import (
	"fmt"
	"math"
)

// Sample converts a guide shape into count points in drawing order. The
// result is deterministic for equal inputs, so callers may cache it (see
// PathCache). Closed shapes are sampled over [0, 2π) or the full perimeter
// without repeating the start point; open shapes include both endpoints.
//
// Curves are sampled at uniform parameter t rather than uniform arc length.
// The deviation is small for the gentle curves lessons use and alignment
// tolerates it, so the cheaper form is kept.
func Sample(shape Shape, count int) ([]Point, error) {
	if count < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrSampleCount, count)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	switch s := shape.(type) {
	case Circle:
		return sampleEllipse(s.Center, s.Radius, s.Radius, count), nil
	case Oval:
		return sampleEllipse(s.Center, s.Width/2, s.Height/2, count), nil
	case Rectangle:
		half := Point{X: s.Width / 2, Y: s.Height / 2}
		corners := []Point{
			{X: s.Center.X - half.X, Y: s.Center.Y - half.Y},
			{X: s.Center.X + half.X, Y: s.Center.Y - half.Y},
			{X: s.Center.X + half.X, Y: s.Center.Y + half.Y},
			{X: s.Center.X - half.X, Y: s.Center.Y + half.Y},
		}
		return sampleLoop(corners, count), nil
	case Line:
		points := make([]Point, count)
		for i := range points {
			t := float64(i) / float64(count-1)
			points[i] = s.Start.Lerp(s.End, t)
		}
		return points, nil
	case Curve:
		points := make([]Point, count)
		for i := range points {
			t := float64(i) / float64(count-1)
			points[i] = quadBezier(s.Start, s.Control, s.End, t)
		}
		return points, nil
	case Polygon:
		return sampleLoop(s.Vertices, count), nil
	default:
		return nil, fmt.Errorf("%w: unsupported shape kind %q", ErrInvalidShape, shape.Kind())
	}
}

// sampleEllipse emits count points at uniform angles starting at the
// rightmost point and proceeding clockwise in screen coordinates.
func sampleEllipse(center Point, rx, ry float64, count int) []Point {
	points := make([]Point, count)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(count)
		points[i] = Point{
			X: center.X + rx*math.Cos(angle),
			Y: center.Y + ry*math.Sin(angle),
		}
	}
	return points
}

// sampleLoop walks the closed loop over vertices at uniform arc steps, so
// longer edges receive proportionally more samples.
func sampleLoop(vertices []Point, count int) []Point {
	edges := make([]float64, len(vertices))
	var perimeter float64
	for i, v := range vertices {
		next := vertices[(i+1)%len(vertices)]
		edges[i] = v.Distance(next)
		perimeter += edges[i]
	}

	points := make([]Point, count)
	edge := 0
	edgeStart := 0.0
	for i := range points {
		target := perimeter * float64(i) / float64(count)
		for edge < len(edges)-1 && target > edgeStart+edges[edge] {
			edgeStart += edges[edge]
			edge++
		}
		t := 0.0
		if edges[edge] > 0 {
			t = (target - edgeStart) / edges[edge]
		}
		next := vertices[(edge+1)%len(vertices)]
		points[i] = vertices[edge].Lerp(next, t)
	}
	return points
}

func quadBezier(start, control, end Point, t float64) Point {
	u := 1 - t
	return Point{
		X: u*u*start.X + 2*u*t*control.X + t*t*end.X,
		Y: u*u*start.Y + 2*u*t*control.Y + t*t*end.Y,
	}
}
