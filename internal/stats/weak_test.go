package stats

import (
	"testing"

	"github.com/lmeritt/sketchtrace/internal/model"
)

func TestSelectWeakShapes(t *testing.T) {
	aggs := []model.ShapeAggregate{
		{ShapeKind: "circle", Attempts: 10, AvgAccuracy: 0.91},
		{ShapeKind: "curve", Attempts: 6, AvgAccuracy: 0.55},
		{ShapeKind: "rectangle", Attempts: 8, AvgAccuracy: 0.74},
	}
	weak := SelectWeakShapes(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak shapes, got %d", len(weak))
	}
	if _, ok := weak["curve"]; !ok {
		t.Fatalf("expected curve to be weak: %v", weak)
	}
	if _, ok := weak["rectangle"]; !ok {
		t.Fatalf("expected rectangle to be weak: %v", weak)
	}
}

func TestSelectWeakShapesTreatsUnseenAsStrong(t *testing.T) {
	aggs := []model.ShapeAggregate{
		{ShapeKind: "circle", Attempts: 0, AvgAccuracy: 0},
		{ShapeKind: "line", Attempts: 5, AvgAccuracy: 0.6},
	}
	weak := SelectWeakShapes(aggs, 1)
	if _, ok := weak["line"]; !ok {
		t.Fatalf("expected line to rank below unseen shapes: %v", weak)
	}
}

func TestSelectWeakShapesZeroTopSelectsAll(t *testing.T) {
	aggs := []model.ShapeAggregate{
		{ShapeKind: "circle", Attempts: 2, AvgAccuracy: 0.9},
		{ShapeKind: "line", Attempts: 2, AvgAccuracy: 0.8},
	}
	weak := SelectWeakShapes(aggs, 0)
	if len(weak) != 2 {
		t.Fatalf("expected all shapes selected, got %v", weak)
	}
}
