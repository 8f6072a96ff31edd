package stats

import (
	"sort"

	"github.com/lmeritt/sketchtrace/internal/model"
)

// SelectWeakShapes selects the lowest-accuracy shape kinds from aggregates.
func SelectWeakShapes(aggs []model.ShapeAggregate, top int) map[string]struct{} {
	weakSet := map[string]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.ShapeAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := shapeAccuracy(candidates[i])
		aj := shapeAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].ShapeKind < candidates[j].ShapeKind
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		if candidates[i].ShapeKind != "" {
			weakSet[candidates[i].ShapeKind] = struct{}{}
		}
	}
	return weakSet
}

func shapeAccuracy(agg model.ShapeAggregate) float64 {
	if agg.Attempts == 0 {
		return 1.0
	}
	return agg.AvgAccuracy
}
