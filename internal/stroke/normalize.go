package stroke

import (
	"fmt"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

// tapExtent is the path length below which a stroke counts as a stationary
// tap rather than a drawn path.
const tapExtent = 1e-9

// Normalize resamples a polyline to exactly count points spaced uniformly
// along its arc length, interpolating linearly between the raw points. The
// endpoints are preserved. A stroke with no extent (a tap) yields count
// copies of its first point, which alignment then scores against the full
// guide extent.
func Normalize(points []geom.Point, count int) ([]geom.Point, error) {
	if count < 2 {
		return nil, fmt.Errorf("%w, got %d", geom.ErrSampleCount, count)
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewSamples, len(points))
	}

	total := geom.PathLength(points)
	if total < tapExtent {
		out := make([]geom.Point, count)
		for i := range out {
			out[i] = points[0]
		}
		return out, nil
	}

	interval := total / float64(count-1)
	out := make([]geom.Point, 0, count)
	out = append(out, points[0])

	prev := points[0]
	var walked float64
	for i := 1; i < len(points); i++ {
		cur := points[i]
		d := prev.Distance(cur)
		for walked+d >= interval && len(out) < count {
			t := (interval - walked) / d
			q := prev.Lerp(cur, t)
			out = append(out, q)
			prev = q
			d = prev.Distance(cur)
			walked = 0
		}
		walked += d
		prev = cur
	}
	// Rounding can leave the final point short of emission.
	for len(out) < count {
		out = append(out, points[len(points)-1])
	}
	return out, nil
}
