package lesson

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

// lessonFile mirrors the TOML lesson layout.
type lessonFile struct {
	Name  string     `toml:"name"`
	Steps []stepFile `toml:"steps"`
}

// stepFile carries the union of all shape parameters; the shape field picks
// which of them apply.
type stepFile struct {
	Name          string      `toml:"name"`
	Shape         string      `toml:"shape"`
	Center        []float64   `toml:"center"`
	Radius        float64     `toml:"radius"`
	Width         float64     `toml:"width"`
	Height        float64     `toml:"height"`
	From          []float64   `toml:"from"`
	To            []float64   `toml:"to"`
	Control       []float64   `toml:"control"`
	Vertices      [][]float64 `toml:"vertices"`
	Tolerance     float64     `toml:"tolerance"`
	CompletionBar float64     `toml:"completion-bar"`
}

// Load reads one lesson from a TOML file. The slug is the file name without
// its extension.
func Load(path string) (Lesson, error) {
	var file lessonFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return Lesson{}, fmt.Errorf("failed to decode lesson %s: %w", path, err)
	}

	slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l := Lesson{Slug: slug, Name: file.Name}
	if l.Name == "" {
		l.Name = slug
	}
	for i, sf := range file.Steps {
		step, err := sf.toStep()
		if err != nil {
			return Lesson{}, fmt.Errorf("lesson %s step %d: %w", path, i, err)
		}
		l.Steps = append(l.Steps, step)
	}
	if err := l.Validate(); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

// LoadDir reads every *.toml lesson in dir, sorted by slug. A missing
// directory yields no lessons.
func LoadDir(dir string) ([]Lesson, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lessons dir: %w", err)
	}
	var lessons []Lesson
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		l, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Slug < lessons[j].Slug })
	return lessons, nil
}

// Resolve finds a lesson by builtin slug, by file slug in dir, or by a
// direct path to a TOML file, in that order.
func Resolve(name, dir string) (Lesson, error) {
	if l, err := Find(name); err == nil {
		return l, nil
	}
	fromDir, err := LoadDir(dir)
	if err != nil {
		return Lesson{}, err
	}
	for _, l := range fromDir {
		if l.Slug == name {
			return l, nil
		}
	}
	if strings.HasSuffix(name, ".toml") {
		return Load(name)
	}
	return Lesson{}, fmt.Errorf("unknown lesson %q", name)
}

func (sf stepFile) toStep() (Step, error) {
	shape, err := sf.toShape()
	if err != nil {
		return Step{}, err
	}
	return Step{
		Name:          sf.Name,
		Shape:         shape,
		Tolerance:     sf.Tolerance,
		CompletionBar: sf.CompletionBar,
	}, nil
}

func (sf stepFile) toShape() (geom.Shape, error) {
	switch geom.Kind(sf.Shape) {
	case geom.KindCircle:
		center, err := pointOf(sf.Center, "center")
		if err != nil {
			return nil, err
		}
		return geom.Circle{Center: center, Radius: sf.Radius}, nil
	case geom.KindOval:
		center, err := pointOf(sf.Center, "center")
		if err != nil {
			return nil, err
		}
		return geom.Oval{Center: center, Width: sf.Width, Height: sf.Height}, nil
	case geom.KindRectangle:
		center, err := pointOf(sf.Center, "center")
		if err != nil {
			return nil, err
		}
		return geom.Rectangle{Center: center, Width: sf.Width, Height: sf.Height}, nil
	case geom.KindLine:
		start, err := pointOf(sf.From, "from")
		if err != nil {
			return nil, err
		}
		end, err := pointOf(sf.To, "to")
		if err != nil {
			return nil, err
		}
		return geom.Line{Start: start, End: end}, nil
	case geom.KindCurve:
		start, err := pointOf(sf.From, "from")
		if err != nil {
			return nil, err
		}
		control, err := pointOf(sf.Control, "control")
		if err != nil {
			return nil, err
		}
		end, err := pointOf(sf.To, "to")
		if err != nil {
			return nil, err
		}
		return geom.Curve{Start: start, Control: control, End: end}, nil
	case geom.KindPolygon:
		vertices := make([]geom.Point, 0, len(sf.Vertices))
		for i, v := range sf.Vertices {
			p, err := pointOf(v, fmt.Sprintf("vertex %d", i))
			if err != nil {
				return nil, err
			}
			vertices = append(vertices, p)
		}
		return geom.Polygon{Vertices: vertices}, nil
	default:
		return nil, fmt.Errorf("unknown shape %q", sf.Shape)
	}
}

func pointOf(coords []float64, field string) (geom.Point, error) {
	if len(coords) != 2 {
		return geom.Point{}, fmt.Errorf("%s needs [x, y], got %v", field, coords)
	}
	return geom.Pt(coords[0], coords[1]), nil
}
