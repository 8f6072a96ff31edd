// Package strokeio persists captured practice runs as versioned JSON
// recordings.
package strokeio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/stroke"
)

// Version is the recording format version this package reads and writes.
const Version = 1

// ErrVersion reports a recording written by an unknown format version.
var ErrVersion = errors.New("strokeio: unsupported recording version")

// StrokeData is one recorded stroke, bound to the lesson step it was drawn
// for.
type StrokeData struct {
	Step      int          `json:"step"`
	Points    [][2]float64 `json:"points"`
	Pressures []float64    `json:"pressures,omitempty"`
	Times     []float64    `json:"times"`
}

// Recording is a captured practice run: the strokes drawn for each step of a
// lesson, in drawing order.
type Recording struct {
	Version int          `json:"version"`
	ID      string       `json:"id"`
	Lesson  string       `json:"lesson"`
	Strokes []StrokeData `json:"strokes"`
}

// NewRecording creates an empty recording for a lesson with a fresh ID.
func NewRecording(lessonSlug string) Recording {
	return Recording{Version: Version, ID: uuid.NewString(), Lesson: lessonSlug}
}

// FromStroke converts a captured stroke into its storable form.
func FromStroke(step int, stk stroke.Stroke) StrokeData {
	sd := StrokeData{
		Step:      step,
		Points:    make([][2]float64, stk.Len()),
		Pressures: make([]float64, stk.Len()),
		Times:     make([]float64, stk.Len()),
	}
	for i, s := range stk.Samples {
		sd.Points[i] = [2]float64{s.Pos.X, s.Pos.Y}
		sd.Pressures[i] = s.Pressure
		sd.Times[i] = s.Time
	}
	return sd
}

// Stroke rebuilds the captured stroke, rederiving velocities.
func (sd StrokeData) Stroke() (stroke.Stroke, error) {
	points := make([]geom.Point, len(sd.Points))
	for i, p := range sd.Points {
		points[i] = geom.Pt(p[0], p[1])
	}
	stk, err := stroke.FromPoints(points, sd.Pressures, sd.Times)
	if err != nil {
		return stroke.Stroke{}, fmt.Errorf("failed to rebuild stroke for step %d: %w", sd.Step, err)
	}
	return stk, nil
}

// ForStep returns the recorded strokes for one lesson step, in order.
func (r Recording) ForStep(step int) []StrokeData {
	var out []StrokeData
	for _, sd := range r.Strokes {
		if sd.Step == step {
			out = append(out, sd)
		}
	}
	return out
}

// Load reads a recording from path.
func Load(path string) (Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recording{}, fmt.Errorf("failed to read recording: %w", err)
	}
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return Recording{}, fmt.Errorf("failed to decode recording: %w", err)
	}
	if rec.Version != Version {
		return Recording{}, fmt.Errorf("%w: %d", ErrVersion, rec.Version)
	}
	return rec, nil
}

// Save writes the recording to path atomically: the JSON lands in a temp
// file first and replaces the destination with a rename.
func Save(path string, rec Recording) error {
	if rec.Version == 0 {
		rec.Version = Version
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create recording dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "recording-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp recording: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close recording: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}
