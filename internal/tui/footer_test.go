package tui

import (
	"strings"
	"testing"

	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/lesson"
	"github.com/lmeritt/sketchtrace/internal/score"
	"github.com/lmeritt/sketchtrace/internal/session"
)

func testLesson() lesson.Lesson {
	return lesson.Lesson{
		Slug: "test",
		Name: "Test",
		Steps: []lesson.Step{
			{Name: "circle", Shape: geom.Circle{Center: geom.Pt(100, 100), Radius: 50}},
			{Name: "slope", Shape: geom.Line{Start: geom.Pt(20, 20), End: geom.Pt(180, 160)}},
		},
	}
}

func TestRenderFooterFormats(t *testing.T) {
	tr := session.New(testLesson(), session.DefaultConfig())
	m := &Model{
		tracker: tr,
		state: session.StepState{
			Phase:        session.PhaseInProgress,
			Attempts:     3,
			LastAccuracy: 0.84,
			BestAccuracy: 0.91,
		},
	}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Step 1/2 circle", "in progress", "Attempt 3", "Last 84%", "Best 91%", "Bar 70%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterShowsSuggestion(t *testing.T) {
	tr := session.New(testLesson(), session.DefaultConfig())
	m := &Model{
		tracker:      tr,
		hasFeedback:  true,
		lastFeedback: score.Feedback{Suggestions: []string{"slow down into the corners"}},
	}
	out := m.renderFooter()
	if !strings.Contains(out, "slow down into the corners") {
		t.Fatalf("expected suggestion in footer: %s", out)
	}
}

func TestRenderFooterLessonDone(t *testing.T) {
	tr := session.New(testLesson(), session.DefaultConfig())
	m := &Model{tracker: tr, lessonDone: true}
	out := m.renderFooter()
	if !strings.Contains(out, "lesson complete") {
		t.Fatalf("expected completion notice: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
