package statsui

import (
	"reflect"
	"testing"
)

func TestParseShapeKinds(t *testing.T) {
	got := parseShapeKinds(" Circle, line ,,CURVE ")
	want := []string{"circle", "line", "curve"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if parseShapeKinds("   ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestNormalizeShapeInput(t *testing.T) {
	if got := normalizeShapeInput("Circle, Line"); got != "circle,line" {
		t.Fatalf("expected %q, got %q", "circle,line", got)
	}
	if got := normalizeShapeInput(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{20, 25, 15},
	}
	for _, c := range cases {
		if got := nextCurveWindow(c.in); got != c.next {
			t.Fatalf("nextCurveWindow(%d): expected %d, got %d", c.in, c.next, got)
		}
		if got := prevCurveWindow(c.in); got != c.prev {
			t.Fatalf("prevCurveWindow(%d): expected %d, got %d", c.in, c.prev, got)
		}
	}
}
