package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/score"
)

func TestWriteCreatesPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	sum := Summary{
		Lesson:         "shapes",
		StepsCompleted: 1,
		StepsTotal:     1,
		Attempts:       3,
		AvgAccuracy:    0.87,
		BestAccuracy:   0.92,
	}
	pages := []Page{{
		Title:  "circle",
		Kind:   "circle",
		Guide:  []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)},
		Stroke: []geom.Point{geom.Pt(0, 1), geom.Pt(10, 1), geom.Pt(11, 10)},
		Feedback: score.Feedback{
			Accuracy:    0.87,
			Correct:     true,
			Corrections: []geom.Point{geom.Pt(10, 0)},
			Suggestions: []string{"keep the radius steady"},
			Metrics: score.Metrics{
				PathAccuracy:        0.9,
				TemporalAccuracy:    0.85,
				VelocityConsistency: 0.8,
				PressureStability:   0.95,
			},
		},
		Attempts: 3,
	}}

	if err := Write(path, sum, pages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF file, got %q", data[:minLen(len(data), 8)])
	}
	if len(data) < 1000 {
		t.Fatalf("report suspiciously small: %d bytes", len(data))
	}
}

func TestWriteCoverOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := Write(path, Summary{Lesson: "lines"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat report: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty report")
	}
}

func minLen(a, b int) int {
	if a < b {
		return a
	}
	return b
}
