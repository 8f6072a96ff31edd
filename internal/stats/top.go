// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/lmeritt/sketchtrace/internal/model"
)

// TopShapesByAttempts returns the top N shape kinds by total attempts.
func TopShapesByAttempts(aggs []model.ShapeAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	type item struct {
		kind     string
		attempts int
	}
	items := make([]item, 0, len(aggs))
	for _, agg := range aggs {
		items = append(items, item{
			kind:     agg.ShapeKind,
			attempts: agg.Attempts,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].attempts == items[j].attempts {
			return items[i].kind < items[j].kind
		}
		return items[i].attempts > items[j].attempts
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].kind)
	}
	return out
}
