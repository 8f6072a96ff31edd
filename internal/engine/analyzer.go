// Package engine assembles the analysis pipeline: it samples guide paths,
// aligns strokes against them, and composes the feedback handed to the
// progression layer.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/lmeritt/sketchtrace/internal/align"
	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/score"
	"github.com/lmeritt/sketchtrace/internal/stroke"
)

// Engine errors.
var (
	// ErrConfig reports an invalid engine configuration.
	ErrConfig = errors.New("engine: invalid configuration")
	// ErrInsufficient reports a stroke too short to score. Callers treat it
	// as "not enough data yet" and skip the analysis.
	ErrInsufficient = errors.New("engine: not enough samples to analyze")
)

// Defaults applied by DefaultConfig.
const (
	DefaultSampleCount  = 32
	DefaultMinSamples   = 5
	DefaultLiveInterval = 180 * time.Millisecond
	DefaultCacheSize    = 64
)

// Config holds the analyzer tunables. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// SampleCount is the number of points guide paths are sampled at and
	// strokes are normalized to. Must be at least 8.
	SampleCount int
	// MinSamples is the number of raw samples a stroke needs before it is
	// worth scoring.
	MinSamples int
	// Tolerance is the normalized alignment cost at which path accuracy
	// reaches zero. Per-kind entries in Tolerances take precedence; a
	// positive Target.Tolerance overrides both.
	Tolerance  float64
	Tolerances map[geom.Kind]float64
	// Window constrains completed-stroke alignment to the Sakoe-Chiba band.
	// Zero disables it. Live analysis is always unbanded because the guide
	// prefix a partial stroke covers is unknown.
	Window int
	// SlopePenalty biases alignment toward the diagonal. Zero keeps classic
	// DTW.
	SlopePenalty float64
	// Weights blends the component metrics into the composite accuracy.
	Weights score.Weights
	// LiveInterval throttles in-progress analysis.
	LiveInterval time.Duration
	// CacheSize bounds the sampled-guide cache.
	CacheSize int
	// Now is the clock used by the live-analysis gate. Nil uses time.Now.
	Now func() time.Time
}

// DefaultConfig returns the trainer tuning: straight guides are held to a
// tighter tolerance than freehand curves.
func DefaultConfig() Config {
	return Config{
		SampleCount: DefaultSampleCount,
		MinSamples:  DefaultMinSamples,
		Tolerance:   align.DefaultTolerance,
		Tolerances: map[geom.Kind]float64{
			geom.KindLine:      0.18,
			geom.KindRectangle: 0.22,
			geom.KindPolygon:   0.22,
			geom.KindCircle:    0.25,
			geom.KindOval:      0.25,
			geom.KindCurve:     0.30,
		},
		Window:       DefaultSampleCount / 4,
		Weights:      score.DefaultWeights(),
		LiveInterval: DefaultLiveInterval,
		CacheSize:    DefaultCacheSize,
	}
}

func (c Config) validate() error {
	if c.SampleCount < 8 {
		return fmt.Errorf("%w: sample count %d must be at least 8", ErrConfig, c.SampleCount)
	}
	if c.MinSamples < 2 {
		return fmt.Errorf("%w: min samples %d must be at least 2", ErrConfig, c.MinSamples)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance %v must be positive", ErrConfig, c.Tolerance)
	}
	if c.LiveInterval <= 0 {
		return fmt.Errorf("%w: live interval %v must be positive", ErrConfig, c.LiveInterval)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("%w: cache size %d must be positive", ErrConfig, c.CacheSize)
	}
	return nil
}

// Target is the guide a stroke is scored against together with the bars the
// feedback is measured by. Passing it explicitly keeps the analyzer free of
// per-step state.
type Target struct {
	Shape geom.Shape
	// Tolerance overrides the configured tolerance when positive.
	Tolerance float64
	// Threshold is the accuracy required for a correct verdict.
	Threshold float64
}

// Analyzer scores strokes against guide shapes. It is safe for concurrent
// use: analysis is pure and the guide cache is shared.
type Analyzer struct {
	cfg   Config
	cache *geom.PathCache
	gate  *Gate
}

// New validates the configuration and builds an analyzer.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cache, err := geom.NewPathCache(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	return &Analyzer{
		cfg:   cfg,
		cache: cache,
		gate:  NewGate(cfg.LiveInterval, cfg.Now),
	}, nil
}

// GuidePath returns the sampled guide path for the shape from the shared
// cache. The returned slice is shared and must not be modified.
func (a *Analyzer) GuidePath(shape geom.Shape) ([]geom.Point, error) {
	return a.cache.Sample(shape, a.cfg.SampleCount)
}

// AnalyzeStroke scores a completed stroke against the target guide. The
// same stroke and target always produce the same feedback.
func (a *Analyzer) AnalyzeStroke(stk stroke.Stroke, t Target) (score.Feedback, error) {
	if stk.Len() < a.cfg.MinSamples {
		return score.Feedback{}, fmt.Errorf("%w: got %d, need %d", ErrInsufficient, stk.Len(), a.cfg.MinSamples)
	}
	opts := align.Options{Window: a.cfg.Window, SlopePenalty: a.cfg.SlopePenalty}
	res, guide, err := a.alignPoints(stk.Points(), t, opts)
	if err != nil {
		return score.Feedback{}, err
	}
	m := score.Metrics{
		PathAccuracy:        res.Accuracy,
		TemporalAccuracy:    score.TemporalAccuracy(stk.Intervals()),
		VelocityConsistency: score.VelocityConsistency(stk.Velocities()),
		PressureStability:   score.PressureStability(stk.Pressures()),
	}
	fb := score.Compose(m, a.cfg.Weights, t.Threshold, t.Shape.Kind(), corrections(guide, res.WorstGuide))
	Logger().Debug("stroke analyzed",
		"kind", t.Shape.Kind(),
		"samples", stk.Len(),
		"accuracy", fb.Accuracy,
		"correct", fb.Correct)
	return fb, nil
}

// AnalyzeLive scores an in-progress stroke against the prefix of the guide
// it has covered so far. Runs are throttled by the configured live interval;
// a throttled call returns ok=false and no feedback. Pressures and
// velocities may be nil when the platform does not supply them, in which
// case their metrics stay neutral, as does the temporal metric: partial
// snapshots carry no timing.
func (a *Analyzer) AnalyzeLive(points []geom.Point, pressures, velocities []float64, t Target) (score.Feedback, bool, error) {
	if len(points) < a.cfg.MinSamples {
		return score.Feedback{}, false, fmt.Errorf("%w: got %d, need %d", ErrInsufficient, len(points), a.cfg.MinSamples)
	}
	if !a.gate.Allow() {
		return score.Feedback{}, false, nil
	}
	res, guide, err := a.alignPoints(points, t, align.Options{OpenEnd: true, SlopePenalty: a.cfg.SlopePenalty})
	if err != nil {
		return score.Feedback{}, false, err
	}
	m := score.Metrics{
		PathAccuracy:        res.Accuracy,
		TemporalAccuracy:    1,
		VelocityConsistency: score.VelocityConsistency(velocities),
		PressureStability:   score.PressureStability(pressures),
	}
	fb := score.Compose(m, a.cfg.Weights, t.Threshold, t.Shape.Kind(), corrections(guide, res.WorstGuide))
	Logger().Debug("live snapshot analyzed",
		"kind", t.Shape.Kind(),
		"points", len(points),
		"guide_end", res.GuideEnd,
		"accuracy", fb.Accuracy)
	return fb, true, nil
}

// alignPoints samples the guide, normalizes the user points to the same
// count, and aligns the two.
func (a *Analyzer) alignPoints(points []geom.Point, t Target, opts align.Options) (align.Result, []geom.Point, error) {
	guide, err := a.cache.Sample(t.Shape, a.cfg.SampleCount)
	if err != nil {
		return align.Result{}, nil, fmt.Errorf("failed to sample guide: %w", err)
	}
	user, err := stroke.Normalize(points, a.cfg.SampleCount)
	if err != nil {
		return align.Result{}, nil, fmt.Errorf("failed to normalize stroke: %w", err)
	}
	opts.Tolerance = a.tolerance(t)
	res, err := align.DTW(user, guide, opts)
	if err != nil {
		return align.Result{}, nil, fmt.Errorf("failed to align stroke: %w", err)
	}
	return res, guide, nil
}

func (a *Analyzer) tolerance(t Target) float64 {
	if t.Tolerance > 0 {
		return t.Tolerance
	}
	if tol, ok := a.cfg.Tolerances[t.Shape.Kind()]; ok {
		return tol
	}
	return a.cfg.Tolerance
}

// corrections maps the worst-aligned guide indices to guide points the user
// should aim for.
func corrections(guide []geom.Point, worst []int) []geom.Point {
	if len(worst) == 0 {
		return nil
	}
	points := make([]geom.Point, len(worst))
	for i, j := range worst {
		points[i] = guide[j]
	}
	return points
}
