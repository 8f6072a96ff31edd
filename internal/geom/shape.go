package geom

import (
	"errors"
	"fmt"
)

// Shape validation and sampling errors.
var (
	// ErrInvalidShape reports malformed shape parameters in authored content.
	ErrInvalidShape = errors.New("geom: invalid shape")
	// ErrSampleCount reports a sample count too small to describe a path.
	ErrSampleCount = errors.New("geom: sample count must be at least 2")
)

// Kind identifies a guide shape variant.
type Kind string

// Guide shape kinds.
const (
	KindCircle    Kind = "circle"
	KindOval      Kind = "oval"
	KindRectangle Kind = "rectangle"
	KindLine      Kind = "line"
	KindCurve     Kind = "curve"
	KindPolygon   Kind = "polygon"
)

// Kinds lists every guide shape kind.
func Kinds() []Kind {
	return []Kind{KindCircle, KindOval, KindRectangle, KindLine, KindCurve, KindPolygon}
}

// KnownKind reports whether s names a guide shape kind.
func KnownKind(s string) bool {
	switch Kind(s) {
	case KindCircle, KindOval, KindRectangle, KindLine, KindCurve, KindPolygon:
		return true
	}
	return false
}

// Shape is the closed set of guide shapes a lesson step can ask the user to
// trace. Operations over shapes switch exhaustively on the concrete types;
// the unexported method seals the set.
type Shape interface {
	// Kind returns the variant tag for labels, storage, and tolerance lookup.
	Kind() Kind
	// Validate reports malformed parameters (zero radius, zero-size bounds,
	// too few vertices) as ErrInvalidShape.
	Validate() error
	// Bounds returns a rectangle containing the shape.
	Bounds() Rect

	isShape()
}

// Circle is a full circle around Center.
type Circle struct {
	Center Point
	Radius float64
}

// Oval is an axis-aligned ellipse around Center.
type Oval struct {
	Center Point
	Width  float64
	Height float64
}

// Rectangle is an axis-aligned rectangle around Center.
type Rectangle struct {
	Center Point
	Width  float64
	Height float64
}

// Line is a straight segment from Start to End.
type Line struct {
	Start, End Point
}

// Curve is a quadratic Bézier segment.
type Curve struct {
	Start, Control, End Point
}

// Polygon is a closed loop over Vertices in order.
type Polygon struct {
	Vertices []Point
}

func (Circle) isShape()    {}
func (Oval) isShape()      {}
func (Rectangle) isShape() {}
func (Line) isShape()      {}
func (Curve) isShape()     {}
func (Polygon) isShape()   {}

// Kind returns KindCircle.
func (Circle) Kind() Kind { return KindCircle }

// Kind returns KindOval.
func (Oval) Kind() Kind { return KindOval }

// Kind returns KindRectangle.
func (Rectangle) Kind() Kind { return KindRectangle }

// Kind returns KindLine.
func (Line) Kind() Kind { return KindLine }

// Kind returns KindCurve.
func (Curve) Kind() Kind { return KindCurve }

// Kind returns KindPolygon.
func (Polygon) Kind() Kind { return KindPolygon }

// Validate reports a non-positive radius.
func (s Circle) Validate() error {
	if s.Radius <= 0 {
		return fmt.Errorf("%w: circle radius %v must be positive", ErrInvalidShape, s.Radius)
	}
	return nil
}

// Validate reports non-positive dimensions.
func (s Oval) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: oval size %vx%v must be positive", ErrInvalidShape, s.Width, s.Height)
	}
	return nil
}

// Validate reports non-positive dimensions.
func (s Rectangle) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: rectangle size %vx%v must be positive", ErrInvalidShape, s.Width, s.Height)
	}
	return nil
}

// Validate reports coincident endpoints.
func (s Line) Validate() error {
	if s.Start == s.End {
		return fmt.Errorf("%w: line endpoints coincide at (%v, %v)", ErrInvalidShape, s.Start.X, s.Start.Y)
	}
	return nil
}

// Validate reports a curve collapsed to a single point.
func (s Curve) Validate() error {
	if s.Start == s.End && s.Start == s.Control {
		return fmt.Errorf("%w: curve collapsed to a point at (%v, %v)", ErrInvalidShape, s.Start.X, s.Start.Y)
	}
	return nil
}

// Validate reports too few vertices or a loop with no extent.
func (s Polygon) Validate() error {
	if len(s.Vertices) < 3 {
		return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidShape, len(s.Vertices))
	}
	if BoundsOf(s.Vertices).Diagonal() == 0 {
		return fmt.Errorf("%w: polygon has no extent", ErrInvalidShape)
	}
	return nil
}

// Bounds returns the circle bounding box.
func (s Circle) Bounds() Rect {
	r := Point{X: s.Radius, Y: s.Radius}
	return Rect{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// Bounds returns the oval bounding box.
func (s Oval) Bounds() Rect {
	half := Point{X: s.Width / 2, Y: s.Height / 2}
	return Rect{Min: s.Center.Sub(half), Max: s.Center.Add(half)}
}

// Bounds returns the rectangle itself.
func (s Rectangle) Bounds() Rect {
	half := Point{X: s.Width / 2, Y: s.Height / 2}
	return Rect{Min: s.Center.Sub(half), Max: s.Center.Add(half)}
}

// Bounds returns the segment bounding box.
func (s Line) Bounds() Rect {
	return BoundsOf([]Point{s.Start, s.End})
}

// Bounds returns the control-polygon bounding box, which contains the curve.
func (s Curve) Bounds() Rect {
	return BoundsOf([]Point{s.Start, s.Control, s.End})
}

// Bounds returns the vertex bounding box.
func (s Polygon) Bounds() Rect {
	return BoundsOf(s.Vertices)
}
