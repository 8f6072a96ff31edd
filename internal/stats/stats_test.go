package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lmeritt/sketchtrace/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	s := model.SessionAggregate{
		StepsCompleted: 3,
		StepsTotal:     4,
		Attempts:       12,
		AvgAccuracy:    0.82,
		DurationMs:     120000,
	}
	completion, spm, acc := SessionMetrics(s)
	if math.Abs(completion-0.75) > 1e-9 {
		t.Fatalf("expected completion 0.75, got %f", completion)
	}
	if math.Abs(spm-6) > 1e-9 {
		t.Fatalf("expected 6 strokes/min, got %f", spm)
	}
	if math.Abs(acc-0.82) > 1e-9 {
		t.Fatalf("expected accuracy 0.82, got %f", acc)
	}
}

func TestSessionMetricsZeroDuration(t *testing.T) {
	completion, spm, acc := SessionMetrics(model.SessionAggregate{StepsTotal: 2, StepsCompleted: 1, Attempts: 5})
	if completion != 0.5 {
		t.Fatalf("expected completion 0.5, got %f", completion)
	}
	if spm != 0 {
		t.Fatalf("expected zero strokes/min, got %f", spm)
	}
	if acc != 0 {
		t.Fatalf("expected zero accuracy, got %f", acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparklineConstantValues(t *testing.T) {
	got := Sparkline([]float64{2, 2, 2})
	if got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	sessions := []model.SessionAggregate{
		{SessionID: "a", StepsCompleted: 4, StepsTotal: 4, Attempts: 10, AvgAccuracy: 0.8, BestAccuracy: 0.92, DurationMs: 60000, EndedAt: time.Unix(0, 0)},
		{SessionID: "b", StepsCompleted: 2, StepsTotal: 4, Attempts: 6, AvgAccuracy: 0.6, BestAccuracy: 0.7, DurationMs: 60000, EndedAt: time.Unix(60, 0)},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Sessions: 2",
		"Avg Accuracy: 70.00%",
		"Best Accuracy: 92.00%",
		"Avg Completion: 75.00%",
		"Avg Strokes/min: 8.00",
		"Practice Time: 2.0 min",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary, got:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}
}

func TestRenderShapeTableSortsWeakestFirst(t *testing.T) {
	aggs := []model.ShapeAggregate{
		{ShapeKind: "circle", Attempts: 10, Correct: 9, AvgAccuracy: 0.91, BestAccuracy: 0.97},
		{ShapeKind: "curve", Attempts: 6, Correct: 2, AvgAccuracy: 0.55, BestAccuracy: 0.72},
	}
	var buf bytes.Buffer
	if err := RenderShapeTable(&buf, aggs); err != nil {
		t.Fatalf("RenderShapeTable failed: %v", err)
	}
	out := buf.String()
	curveIdx := strings.Index(out, "curve")
	circleIdx := strings.Index(out, "circle")
	if curveIdx < 0 || circleIdx < 0 {
		t.Fatalf("expected both shapes in table, got:\n%s", out)
	}
	if curveIdx > circleIdx {
		t.Fatalf("expected weakest shape first, got:\n%s", out)
	}
}

func TestRenderShapeCurves(t *testing.T) {
	sessions := []model.SessionAggregate{
		{SessionID: "a"},
		{SessionID: "b"},
	}
	perSession := map[string]map[string]model.ShapeAggregate{
		"a": {"circle": {ShapeKind: "circle", Attempts: 3, Correct: 1, AvgAccuracy: 0.6}},
		"b": {"circle": {ShapeKind: "circle", Attempts: 3, Correct: 3, AvgAccuracy: 0.9}},
	}
	var buf bytes.Buffer
	if err := RenderShapeCurvesWithSize(&buf, sessions, perSession, []string{"circle"}, 1, 40, 4, false); err != nil {
		t.Fatalf("RenderShapeCurves failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Shape circle") {
		t.Fatalf("expected shape title, got:\n%s", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend, got:\n%s", out)
	}
}
