// Package align implements dynamic time warping between a normalized stroke
// and a sampled guide path.
package align

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

// Alignment errors.
var (
	// ErrEmptyPath reports an empty user or guide path.
	ErrEmptyPath = errors.New("align: empty path")
	// ErrNoExtent reports a guide path with zero bounding extent, which
	// cannot anchor the scale-invariant cost.
	ErrNoExtent = errors.New("align: guide path has no extent")
)

// Defaults applied when the corresponding Options field is zero.
const (
	DefaultTolerance   = 0.25
	DefaultWorstLimit  = 3
	DefaultWorstFactor = 1.5
)

// Pair matches user point User to guide point Guide on the warping path.
type Pair struct {
	User, Guide int
}

// Options configures an alignment.
type Options struct {
	// Window constrains the warping path to |i-j| <= Window, the Sakoe-Chiba
	// band. Zero or negative disables it. When set, it widens automatically
	// to cover differing path lengths so a path always exists.
	Window int
	// SlopePenalty adds cost to insertion and deletion steps, biasing the
	// path toward the diagonal. Zero keeps classic DTW.
	SlopePenalty float64
	// Tolerance is the normalized cost at which accuracy reaches zero.
	// Zero selects DefaultTolerance.
	Tolerance float64
	// OpenEnd lets the path end at any guide index instead of the last one,
	// aligning a partial stroke against the guide prefix it has covered.
	OpenEnd bool
	// WorstLimit caps how many worst-matched guide indices are reported.
	// Zero selects DefaultWorstLimit.
	WorstLimit int
	// WorstFactor flags guide indices whose matched distance exceeds
	// WorstFactor times the path mean. Zero selects DefaultWorstFactor.
	WorstFactor float64
}

// Result carries the outcome of one alignment.
type Result struct {
	// Cost is the cumulative matched distance along the warping path.
	Cost float64
	// NormalizedCost is Cost averaged over the path pairs and divided by the
	// guide bounding-box diagonal, making it independent of sequence length
	// and drawing scale.
	NormalizedCost float64
	// Accuracy maps NormalizedCost through the tolerance onto [0, 1].
	Accuracy float64
	// Path is the optimal warping path from (0,0) to the path end.
	Path []Pair
	// WorstGuide lists the worst-matched guide indices in guide-path order.
	WorstGuide []int
	// GuideEnd is the guide index the path ends at. It equals the last
	// guide index unless OpenEnd selected an earlier one.
	GuideEnd int
}

// DTW aligns the user path against the guide path and scores the match.
// Sequences of different lengths are aligned directly; resampling to equal
// counts is not required.
func DTW(user, guide []geom.Point, opts Options) (Result, error) {
	n, m := len(user), len(guide)
	if n == 0 || m == 0 {
		return Result{}, fmt.Errorf("%w: user %d points, guide %d points", ErrEmptyPath, n, m)
	}
	extent := geom.BoundsOf(guide).Diagonal()
	if extent == 0 {
		return Result{}, ErrNoExtent
	}

	window := opts.Window
	if window > 0 && window < abs(n-m) {
		window = abs(n - m)
	}

	cum := cumulativeCost(user, guide, window, opts.SlopePenalty)

	endGuide := m - 1
	if opts.OpenEnd {
		endGuide = argminRow(cum[n-1])
	}
	cost := cum[n-1][endGuide]
	if math.IsInf(cost, 1) {
		// The band excluded every full path. Cannot happen once the window
		// is widened, but fail explicitly rather than score garbage.
		return Result{}, fmt.Errorf("align: no warping path within window %d", window)
	}

	path := backtrack(cum, opts.SlopePenalty, n-1, endGuide)

	mean := cost / float64(len(path))
	normalized := mean / extent

	tolerance := opts.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	accuracy := clamp01(1 - normalized/tolerance)

	return Result{
		Cost:           cost,
		NormalizedCost: normalized,
		Accuracy:       accuracy,
		Path:           path,
		WorstGuide:     worstGuideIndices(user, guide, path, opts),
		GuideEnd:       endGuide,
	}, nil
}

// cumulativeCost fills the DTW matrix. Cells outside the band stay +Inf.
func cumulativeCost(user, guide []geom.Point, window int, slopePenalty float64) [][]float64 {
	n, m := len(user), len(guide)
	cum := make([][]float64, n)
	for i := range cum {
		row := make([]float64, m)
		for j := range row {
			row[j] = math.Inf(1)
		}
		cum[i] = row
	}

	for i := 0; i < n; i++ {
		lo, hi := 0, m-1
		if window > 0 {
			if i-window > lo {
				lo = i - window
			}
			if i+window < hi {
				hi = i + window
			}
		}
		for j := lo; j <= hi; j++ {
			d := user[i].Distance(guide[j])
			if i == 0 && j == 0 {
				cum[0][0] = d
				continue
			}
			best := math.Inf(1)
			if i > 0 && j > 0 {
				best = cum[i-1][j-1]
			}
			if i > 0 {
				if c := cum[i-1][j] + slopePenalty; c < best {
					best = c
				}
			}
			if j > 0 {
				if c := cum[i][j-1] + slopePenalty; c < best {
					best = c
				}
			}
			cum[i][j] = d + best
		}
	}
	return cum
}

// backtrack recovers the warping path from (0,0) to (endUser, endGuide),
// preferring diagonal steps on ties.
func backtrack(cum [][]float64, slopePenalty float64, endUser, endGuide int) []Pair {
	path := []Pair{{User: endUser, Guide: endGuide}}
	i, j := endUser, endGuide
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag := cum[i-1][j-1]
			up := cum[i-1][j] + slopePenalty
			left := cum[i][j-1] + slopePenalty
			if diag <= up && diag <= left {
				i--
				j--
			} else if up <= left {
				i--
			} else {
				j--
			}
		}
		path = append(path, Pair{User: i, Guide: j})
	}
	for lo, hi := 0, len(path)-1; lo < hi; lo, hi = lo+1, hi-1 {
		path[lo], path[hi] = path[hi], path[lo]
	}
	return path
}

// worstGuideIndices selects the guide indices whose matched distance stands
// out from the rest of the path, in guide-path order.
func worstGuideIndices(user, guide []geom.Point, path []Pair, opts Options) []int {
	limit := opts.WorstLimit
	if limit == 0 {
		limit = DefaultWorstLimit
	}
	factor := opts.WorstFactor
	if factor == 0 {
		factor = DefaultWorstFactor
	}

	var sum float64
	dists := make([]float64, len(path))
	for k, pair := range path {
		dists[k] = user[pair.User].Distance(guide[pair.Guide])
		sum += dists[k]
	}
	threshold := factor * sum / float64(len(path))

	// Keep the largest distance seen per guide index.
	worst := make(map[int]float64)
	for k, pair := range path {
		if dists[k] > threshold && dists[k] > worst[pair.Guide] {
			worst[pair.Guide] = dists[k]
		}
	}
	if len(worst) == 0 {
		return nil
	}

	indices := make([]int, 0, len(worst))
	for j := range worst {
		indices = append(indices, j)
	}
	sort.Slice(indices, func(a, b int) bool {
		return worst[indices[a]] > worst[indices[b]]
	})
	if len(indices) > limit {
		indices = indices[:limit]
	}
	sort.Ints(indices)
	return indices
}

func argminRow(row []float64) int {
	best := 0
	for j := 1; j < len(row); j++ {
		if row[j] < row[best] {
			best = j
		}
	}
	return best
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
