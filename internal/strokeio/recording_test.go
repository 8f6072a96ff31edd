package strokeio

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/stroke"
)

func sampleStroke(t *testing.T) stroke.Stroke {
	t.Helper()
	points := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 5), geom.Pt(20, 10), geom.Pt(30, 20)}
	pressures := []float64{0.8, 0.82, 0.79, 0.81}
	times := []float64{0, 0.05, 0.1, 0.15}
	stk, err := stroke.FromPoints(points, pressures, times)
	if err != nil {
		t.Fatalf("expected stroke construction to succeed, got %v", err)
	}
	return stk
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rec := NewRecording("shapes")
	if rec.ID == "" {
		t.Fatalf("expected a recording ID")
	}
	rec.Strokes = append(rec.Strokes, FromStroke(0, sampleStroke(t)))
	rec.Strokes = append(rec.Strokes, FromStroke(1, sampleStroke(t)))

	path := filepath.Join(t.TempDir(), "rec.json")
	if err := Save(path, rec); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if !reflect.DeepEqual(rec, loaded) {
		t.Fatalf("expected round trip to preserve the recording, got %+v and %+v", rec, loaded)
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rec.json")
	first := NewRecording("lines")
	if err := Save(path, first); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	second := NewRecording("shapes")
	if err := Save(path, second); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if loaded.Lesson != "shapes" {
		t.Fatalf("expected latest save to win, got lesson %q", loaded.Lesson)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("expected dir listing to succeed, got %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.json")
	if err := os.WriteFile(path, []byte(`{"version": 9, "id": "x", "lesson": "shapes"}`), 0o644); err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed JSON, got nil")
	}
}

func TestStrokeRoundTripKeepsSamples(t *testing.T) {
	stk := sampleStroke(t)
	rebuilt, err := FromStroke(2, stk).Stroke()
	if err != nil {
		t.Fatalf("expected rebuild to succeed, got %v", err)
	}
	if !reflect.DeepEqual(stk, rebuilt) {
		t.Fatalf("expected rebuilt stroke to match the original, got %+v and %+v", stk, rebuilt)
	}
}

func TestStrokeRejectsMismatchedSlices(t *testing.T) {
	sd := StrokeData{
		Step:   0,
		Points: [][2]float64{{0, 0}, {1, 1}, {2, 2}},
		Times:  []float64{0, 0.1},
	}
	if _, err := sd.Stroke(); err == nil {
		t.Fatalf("expected error for mismatched slice lengths, got nil")
	}
}

func TestForStepFiltersInOrder(t *testing.T) {
	rec := NewRecording("shapes")
	a := FromStroke(1, sampleStroke(t))
	b := FromStroke(0, sampleStroke(t))
	c := FromStroke(1, sampleStroke(t))
	c.Pressures[0] = 0.5
	rec.Strokes = []StrokeData{a, b, c}

	got := rec.ForStep(1)
	if len(got) != 2 {
		t.Fatalf("expected 2 strokes for step 1, got %d", len(got))
	}
	if got[1].Pressures[0] != 0.5 {
		t.Fatalf("expected strokes in recording order")
	}
}
