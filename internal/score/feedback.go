package score

import "github.com/lmeritt/sketchtrace/internal/geom"

// Weights blends the component metrics into one accuracy value. The weights
// are normalized by their sum, so they need not add up to 1.
type Weights struct {
	Path     float64
	Temporal float64
	Velocity float64
	Pressure float64
}

// DefaultWeights favors path accuracy over the dynamics components.
// Pressure stability is reported but unweighted: capture hardware varies too
// much for it to gate correctness.
func DefaultWeights() Weights {
	return Weights{Path: 0.6, Temporal: 0.2, Velocity: 0.2, Pressure: 0}
}

// Metrics carries the per-component scores, each in [0, 1].
type Metrics struct {
	PathAccuracy        float64
	TemporalAccuracy    float64
	VelocityConsistency float64
	PressureStability   float64
}

// Feedback is the result of analyzing one stroke against a guide.
type Feedback struct {
	// Accuracy is the weighted composite in [0, 1].
	Accuracy float64
	// Correct reports whether Accuracy met the step threshold.
	Correct bool
	// Corrections are guide-path points where the stroke drifted furthest.
	Corrections []geom.Point
	// Suggestions are short tips addressing the weakest components.
	Suggestions []string
	// Metrics exposes the individual component scores.
	Metrics Metrics
}

// Composite blends the metrics under the weights into a single [0, 1] score.
func Composite(m Metrics, w Weights) float64 {
	total := w.Path + w.Temporal + w.Velocity + w.Pressure
	if total <= 0 {
		return 0
	}
	score := w.Path*clamp(m.PathAccuracy, 0, 1) +
		w.Temporal*clamp(m.TemporalAccuracy, 0, 1) +
		w.Velocity*clamp(m.VelocityConsistency, 0, 1) +
		w.Pressure*clamp(m.PressureStability, 0, 1)
	return clamp(score/total, 0, 1)
}

// Compose builds the feedback for one analyzed stroke. The threshold is the
// current correctness bar supplied by the progression layer; kind selects
// shape-specific suggestion wording.
func Compose(m Metrics, w Weights, threshold float64, kind geom.Kind, corrections []geom.Point) Feedback {
	accuracy := Composite(m, w)
	return Feedback{
		Accuracy:    accuracy,
		Correct:     accuracy >= threshold,
		Corrections: corrections,
		Suggestions: suggestions(m, w, kind),
		Metrics:     m,
	}
}
