package score

import (
	"sort"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

// suggestionBar is the component score below which a tip is offered.
const suggestionBar = 0.75

// maxSuggestions caps the tips per stroke so feedback stays readable.
const maxSuggestions = 2

var pathTips = map[geom.Kind]string{
	geom.KindCircle:    "keep an even distance from the center all the way around",
	geom.KindOval:      "follow the curve smoothly without flattening the sides",
	geom.KindRectangle: "keep the sides straight and turn sharply at the corners",
	geom.KindLine:      "keep the stroke straight from end to end",
	geom.KindCurve:     "follow the arc in one continuous motion",
	geom.KindPolygon:   "reach each corner before changing direction",
}

// suggestions picks tips for the components scoring below the bar, weakest
// first. Pressure earns a tip only when it is weighted or severely unstable.
func suggestions(m Metrics, w Weights, kind geom.Kind) []string {
	type candidate struct {
		score float64
		tip   string
	}
	var weak []candidate

	if m.PathAccuracy < suggestionBar {
		tip, ok := pathTips[kind]
		if !ok {
			tip = "trace closer to the guide"
		}
		weak = append(weak, candidate{m.PathAccuracy, tip})
	}
	if m.TemporalAccuracy < suggestionBar {
		weak = append(weak, candidate{m.TemporalAccuracy, "keep a steady rhythm as you draw"})
	}
	if m.VelocityConsistency < suggestionBar {
		weak = append(weak, candidate{m.VelocityConsistency, "move the pen at an even speed"})
	}
	if m.PressureStability < suggestionBar && (w.Pressure > 0 || m.PressureStability < 0.5) {
		weak = append(weak, candidate{m.PressureStability, "keep the pen pressure steady"})
	}

	if len(weak) == 0 {
		return nil
	}
	sort.SliceStable(weak, func(a, b int) bool {
		return weak[a].score < weak[b].score
	})
	if len(weak) > maxSuggestions {
		weak = weak[:maxSuggestions]
	}
	tips := make([]string, len(weak))
	for i, c := range weak {
		tips[i] = c.tip
	}
	return tips
}
