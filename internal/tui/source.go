package tui

import (
	"github.com/lmeritt/sketchtrace/internal/lesson"
	"github.com/lmeritt/sketchtrace/internal/stroke"
	"github.com/lmeritt/sketchtrace/internal/strokeio"
	"github.com/lmeritt/sketchtrace/internal/synth"
)

// StrokeSource supplies the stroke replayed for each practice attempt.
type StrokeSource interface {
	StrokeFor(stepIndex int, step lesson.Step, attempt int) (stroke.Stroke, error)
}

// SynthSource traces the guide with the simulated hand, producing a fresh
// randomized stroke on every attempt.
type SynthSource struct {
	Synth  *synth.Synth
	Params synth.Params
}

// StrokeFor implements StrokeSource.
func (s SynthSource) StrokeFor(_ int, step lesson.Step, _ int) (stroke.Stroke, error) {
	return s.Synth.Trace(step.Shape, s.Params)
}

// RecordingSource replays captured strokes, cycling through the takes
// recorded for a step. Steps with no recorded takes fall back to the
// synthesizer so a partial recording still covers the whole lesson.
type RecordingSource struct {
	Recording strokeio.Recording
	Fallback  SynthSource
}

// StrokeFor implements StrokeSource.
func (r RecordingSource) StrokeFor(stepIndex int, step lesson.Step, attempt int) (stroke.Stroke, error) {
	takes := r.Recording.ForStep(stepIndex)
	if len(takes) == 0 {
		return r.Fallback.StrokeFor(stepIndex, step, attempt)
	}
	return takes[attempt%len(takes)].Stroke()
}
