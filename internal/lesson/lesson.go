// Package lesson defines guided drawing lessons and loads them from TOML
// files.
package lesson

import (
	"fmt"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

// Step is one guide shape the user traces before moving on.
type Step struct {
	Name  string
	Shape geom.Shape
	// Tolerance overrides the configured alignment tolerance when positive.
	Tolerance float64
	// CompletionBar overrides the accuracy needed to begin completing the
	// step when positive.
	CompletionBar float64
}

// Lesson is an ordered sequence of steps.
type Lesson struct {
	// Slug is the short identifier used on the command line.
	Slug string
	// Name is the human-readable title.
	Name  string
	Steps []Step
}

// Validate checks the lesson structure and every step shape.
func (l Lesson) Validate() error {
	if l.Slug == "" {
		return fmt.Errorf("lesson has no slug")
	}
	if len(l.Steps) == 0 {
		return fmt.Errorf("lesson %q has no steps", l.Slug)
	}
	for i, step := range l.Steps {
		if step.Shape == nil {
			return fmt.Errorf("lesson %q step %d has no shape", l.Slug, i)
		}
		if err := step.Shape.Validate(); err != nil {
			return fmt.Errorf("lesson %q step %d: %w", l.Slug, i, err)
		}
	}
	return nil
}

// Builtin returns the lessons that ship with the binary. Shapes live in a
// 200x200 world space; the canvas scales them to the terminal.
func Builtin() []Lesson {
	return []Lesson{
		{
			Slug: "lines",
			Name: "Lines & Curves",
			Steps: []Step{
				{Name: "baseline", Shape: geom.Line{Start: geom.Pt(20, 160), End: geom.Pt(180, 160)}},
				{Name: "slope", Shape: geom.Line{Start: geom.Pt(30, 170), End: geom.Pt(170, 40)}},
				{Name: "arch", Shape: geom.Curve{Start: geom.Pt(20, 150), Control: geom.Pt(100, 20), End: geom.Pt(180, 150)}},
				{Name: "wave", Shape: geom.Curve{Start: geom.Pt(20, 100), Control: geom.Pt(100, 190), End: geom.Pt(180, 60)}},
			},
		},
		{
			Slug: "shapes",
			Name: "Closed Shapes",
			Steps: []Step{
				{Name: "circle", Shape: geom.Circle{Center: geom.Pt(100, 100), Radius: 70}},
				{Name: "oval", Shape: geom.Oval{Center: geom.Pt(100, 100), Width: 160, Height: 90}},
				{Name: "square", Shape: geom.Rectangle{Center: geom.Pt(100, 100), Width: 120, Height: 120}},
				{Name: "rectangle", Shape: geom.Rectangle{Center: geom.Pt(100, 100), Width: 160, Height: 90}},
			},
		},
		{
			Slug: "polygons",
			Name: "Corners & Polygons",
			Steps: []Step{
				{Name: "triangle", Shape: geom.Polygon{Vertices: []geom.Point{
					geom.Pt(100, 30), geom.Pt(175, 165), geom.Pt(25, 165),
				}}},
				{Name: "diamond", Shape: geom.Polygon{Vertices: []geom.Point{
					geom.Pt(100, 25), geom.Pt(170, 100), geom.Pt(100, 175), geom.Pt(30, 100),
				}}},
				{Name: "pentagon", Shape: geom.Polygon{Vertices: []geom.Point{
					geom.Pt(100, 28), geom.Pt(169, 78), geom.Pt(142, 159), geom.Pt(58, 159), geom.Pt(31, 78),
				}}, Tolerance: 0.3},
			},
		},
	}
}

// Find returns the builtin lesson with the given slug.
func Find(slug string) (Lesson, error) {
	for _, l := range Builtin() {
		if l.Slug == slug {
			return l, nil
		}
	}
	return Lesson{}, fmt.Errorf("unknown lesson %q", slug)
}
