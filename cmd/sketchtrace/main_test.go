package main

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lmeritt/sketchtrace/internal/engine"
	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/lesson"
	"github.com/lmeritt/sketchtrace/internal/model"
	"github.com/lmeritt/sketchtrace/internal/session"
	"github.com/lmeritt/sketchtrace/internal/stroke"
	"github.com/lmeritt/sketchtrace/internal/strokeio"
)

func guideTake(t *testing.T, shape geom.Shape, step int) strokeio.StrokeData {
	t.Helper()
	points, err := geom.Sample(shape, 48)
	if err != nil {
		t.Fatalf("expected guide sampling to succeed, got %v", err)
	}
	times := make([]float64, len(points))
	for i := range times {
		times[i] = float64(i) * 0.02
	}
	stk, err := stroke.FromPoints(points, nil, times)
	if err != nil {
		t.Fatalf("expected stroke construction to succeed, got %v", err)
	}
	return strokeio.FromStroke(step, stk)
}

func offGuideTake(t *testing.T, step int) strokeio.StrokeData {
	t.Helper()
	points := make([]geom.Point, 40)
	times := make([]float64, 40)
	for i := range points {
		points[i] = geom.Pt(300+float64(i)*2, 300)
		times[i] = float64(i) * 0.02
	}
	stk, err := stroke.FromPoints(points, nil, times)
	if err != nil {
		t.Fatalf("expected stroke construction to succeed, got %v", err)
	}
	return strokeio.FromStroke(step, stk)
}

func evalLessonFixture() lesson.Lesson {
	return lesson.Lesson{
		Slug: "fixture",
		Name: "Fixture",
		Steps: []lesson.Step{
			{Name: "circle", Shape: geom.Circle{Center: geom.Pt(100, 100), Radius: 60}},
			{Name: "line", Shape: geom.Line{Start: geom.Pt(0, 0), End: geom.Pt(200, 0)}},
		},
	}
}

func TestEvaluateRecordingCompletesLesson(t *testing.T) {
	lsn := evalLessonFixture()
	rec := strokeio.NewRecording(lsn.Slug)
	rec.Strokes = append(rec.Strokes,
		guideTake(t, lsn.Steps[0].Shape, 0),
		guideTake(t, lsn.Steps[1].Shape, 1),
	)

	an, err := engine.New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("expected analyzer construction to succeed, got %v", err)
	}
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	sessCfg := session.DefaultConfig()
	sessCfg.Now = clock.Now
	tr := session.New(lsn, sessCfg)

	results, attempts, err := evaluateRecording(an, tr, rec, sessCfg.Grace, clock)
	if err != nil {
		t.Fatalf("expected evaluation to succeed, got %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 scored attempts, got %d", len(attempts))
	}
	for i, res := range results {
		if !res.scored {
			t.Fatalf("expected step %d to be scored", i)
		}
		if len(res.accuracies) != 1 {
			t.Fatalf("expected one accuracy for step %d, got %d", i, len(res.accuracies))
		}
	}
	for i, st := range tr.Steps() {
		if st.Phase != session.PhaseCompleted {
			t.Fatalf("expected step %d completed, got %s", i, st.Phase)
		}
	}
	if !tr.Done() {
		t.Fatalf("expected lesson to be done")
	}
}

func TestEvaluateRecordingStopsWhenStepIncomplete(t *testing.T) {
	lsn := evalLessonFixture()
	rec := strokeio.NewRecording(lsn.Slug)
	rec.Strokes = append(rec.Strokes,
		offGuideTake(t, 0),
		guideTake(t, lsn.Steps[1].Shape, 1),
	)

	an, err := engine.New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("expected analyzer construction to succeed, got %v", err)
	}
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	sessCfg := session.DefaultConfig()
	sessCfg.Now = clock.Now
	tr := session.New(lsn, sessCfg)

	results, attempts, err := evaluateRecording(an, tr, rec, sessCfg.Grace, clock)
	if err != nil {
		t.Fatalf("expected evaluation to succeed, got %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 scored attempt, got %d", len(attempts))
	}
	if results[1].scored {
		t.Fatalf("expected step 1 to stay unscored after step 0 failed")
	}
	states := tr.Steps()
	if states[0].Phase == session.PhaseCompleted {
		t.Fatalf("expected off-guide stroke to leave step 0 incomplete")
	}
	if states[1].Attempts != 0 {
		t.Fatalf("expected no attempts on the unreached step, got %d", states[1].Attempts)
	}
}

func TestSessionRecordAggregates(t *testing.T) {
	lsn := evalLessonFixture()
	start := time.Unix(1700000000, 0)
	end := start.Add(90 * time.Second)
	states := []session.StepState{
		{Index: 0, Phase: session.PhaseCompleted, Attempts: 2, BestAccuracy: 0.92, TimeSpent: 40 * time.Second},
		{Index: 1, Phase: session.PhaseInProgress, Attempts: 1, BestAccuracy: 0.60, TimeSpent: 30 * time.Second},
	}
	attempts := []model.AttemptRecord{
		{StepIndex: 0, Attempt: 1, Accuracy: 0.80},
		{StepIndex: 0, Attempt: 2, Accuracy: 0.92, Correct: true},
		{StepIndex: 1, Attempt: 1, Accuracy: 0.60},
	}

	rec, steps := sessionRecord(lsn, states, attempts, start, end)
	if rec.ID == "" {
		t.Fatalf("expected a session id")
	}
	if rec.Lesson != "fixture" {
		t.Fatalf("expected lesson fixture, got %q", rec.Lesson)
	}
	if rec.StepsCompleted != 1 || rec.StepsTotal != 2 {
		t.Fatalf("expected 1/2 steps completed, got %d/%d", rec.StepsCompleted, rec.StepsTotal)
	}
	if rec.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", rec.Attempts)
	}
	wantAvg := (0.80 + 0.92 + 0.60) / 3
	if diff := rec.AvgAccuracy - wantAvg; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected avg accuracy %v, got %v", wantAvg, rec.AvgAccuracy)
	}
	if rec.BestAccuracy != 0.92 {
		t.Fatalf("expected best accuracy 0.92, got %v", rec.BestAccuracy)
	}
	if rec.DurationMs != 90000 {
		t.Fatalf("expected duration 90000ms, got %d", rec.DurationMs)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(steps))
	}
	if steps[0].ShapeKind != "circle" || !steps[0].Completed {
		t.Fatalf("expected completed circle step, got %+v", steps[0])
	}
	if steps[1].TimeSpentMs != 30000 {
		t.Fatalf("expected 30000ms on step 1, got %d", steps[1].TimeSpentMs)
	}
}

func TestReorderWeakFirst(t *testing.T) {
	l := lesson.Lesson{
		Slug: "mix",
		Steps: []lesson.Step{
			{Name: "c1", Shape: geom.Circle{Center: geom.Pt(0, 0), Radius: 10}},
			{Name: "l1", Shape: geom.Line{Start: geom.Pt(0, 0), End: geom.Pt(10, 0)}},
			{Name: "c2", Shape: geom.Circle{Center: geom.Pt(5, 5), Radius: 20}},
		},
	}
	got := reorderWeakFirst(l, map[string]struct{}{"line": {}})
	names := make([]string, len(got.Steps))
	for i, step := range got.Steps {
		names[i] = step.Name
	}
	want := []string{"l1", "c1", "c2"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected order %v, got %v", want, names)
	}

	unchanged := reorderWeakFirst(l, nil)
	if unchanged.Steps[0].Name != "c1" {
		t.Fatalf("expected empty weak set to keep order, got %q first", unchanged.Steps[0].Name)
	}
}

func TestSplitKinds(t *testing.T) {
	got := splitKinds(" Circle , line ,,OVAL ")
	want := []string{"circle", "line", "oval"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := splitKinds(""); len(got) != 0 {
		t.Fatalf("expected no kinds for empty input, got %v", got)
	}
}

func TestEvalTableMarksCompletion(t *testing.T) {
	lsn := evalLessonFixture()
	states := []session.StepState{
		{Index: 0, Phase: session.PhaseCompleted, Attempts: 2, BestAccuracy: 0.92, LastAccuracy: 0.92},
		{Index: 1, Phase: session.PhaseInProgress, Attempts: 1, BestAccuracy: 0.55, LastAccuracy: 0.55},
	}
	results := []stepResult{
		{accuracies: []float64{0.8, 0.92}, scored: true},
		{accuracies: []float64{0.55}, scored: true},
	}
	lines := evalTable(lsn, states, results)
	if len(lines) < 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if !containsAll(lines[1], "circle", "92.0%", "yes") {
		t.Fatalf("expected completed circle row, got %q", lines[1])
	}
	if !containsAll(lines[2], "line", "55.0%", "no") {
		t.Fatalf("expected incomplete line row, got %q", lines[2])
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
