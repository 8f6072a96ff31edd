package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/lesson"
	"github.com/lmeritt/sketchtrace/internal/score"
	"github.com/lmeritt/sketchtrace/internal/session"
	"github.com/lmeritt/sketchtrace/internal/stroke"
)

// Outcome is one delivered analysis result. Live outcomes carry feedback
// only; completed strokes also carry the step state after the feedback was
// applied to the tracker.
type Outcome struct {
	Step     int
	Live     bool
	Feedback score.Feedback
	State    session.StepState
}

type strokeJob struct {
	epoch int
	step  lesson.Step
	stk   stroke.Stroke
}

type liveJob struct {
	epoch      int
	step       lesson.Step
	points     []geom.Point
	pressures  []float64
	velocities []float64
}

// Pipeline runs analysis off the caller's goroutine. Completed strokes are
// processed strictly in submission order; in-progress snapshots coalesce in
// a one-slot mailbox so a burst of pen moves costs at most one analysis.
// Each job is tagged with the step index current at submission; results that
// arrive after the step changed are dropped.
type Pipeline struct {
	an *Analyzer
	tr *session.Tracker

	jobs     chan strokeJob
	liveMu   sync.Mutex
	live     *liveJob
	liveWake chan struct{}
	outcomes chan Outcome

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewPipeline wires an analyzer to a progression tracker. Call Start before
// submitting work.
func NewPipeline(an *Analyzer, tr *session.Tracker) *Pipeline {
	return &Pipeline{
		an:       an,
		tr:       tr,
		jobs:     make(chan strokeJob, 64),
		liveWake: make(chan struct{}, 1),
		outcomes: make(chan Outcome, 16),
		done:     make(chan struct{}),
	}
}

// Start launches the worker. It stops when ctx is canceled or Close is
// called; the outcomes channel closes once the worker exits.
func (p *Pipeline) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	p.startOnce.Do(func() {
		Logger().Debug("pipeline started")
		go p.run(ctx)
	})
}

// Close stops the worker. Jobs still queued are dropped.
func (p *Pipeline) Close() {
	p.stopOnce.Do(func() { close(p.done) })
}

// Outcomes returns the channel analysis results are delivered on. It closes
// when the pipeline stops.
func (p *Pipeline) Outcomes() <-chan Outcome {
	return p.outcomes
}

// SubmitStroke queues a completed stroke for analysis against the step
// current at submission time.
func (p *Pipeline) SubmitStroke(stk stroke.Stroke) {
	epoch := p.tr.CurrentStepIndex()
	job := strokeJob{epoch: epoch, step: p.tr.Lesson().Steps[epoch], stk: stk}
	select {
	case p.jobs <- job:
	case <-p.done:
	}
}

// SubmitLive replaces any pending in-progress snapshot with this one. Only
// the newest snapshot is analyzed; superseded ones are never scored.
func (p *Pipeline) SubmitLive(points []geom.Point, pressures, velocities []float64) {
	epoch := p.tr.CurrentStepIndex()
	p.liveMu.Lock()
	p.live = &liveJob{
		epoch:      epoch,
		step:       p.tr.Lesson().Steps[epoch],
		points:     points,
		pressures:  pressures,
		velocities: velocities,
	}
	p.liveMu.Unlock()
	select {
	case p.liveWake <- struct{}{}:
	default:
	}
}

func (p *Pipeline) run(ctx context.Context) {
	defer close(p.outcomes)
	defer Logger().Debug("pipeline stopped")
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case j := <-p.jobs:
			p.processStroke(ctx, j)
		case <-p.liveWake:
			p.liveMu.Lock()
			j := p.live
			p.live = nil
			p.liveMu.Unlock()
			if j != nil {
				p.processLive(ctx, *j)
			}
		}
	}
}

func (p *Pipeline) processStroke(ctx context.Context, j strokeJob) {
	fb, err := p.an.AnalyzeStroke(j.stk, p.target(j.step))
	if err != nil {
		// Too-short strokes are normal; anything else points at a bad guide.
		if errors.Is(err, ErrInsufficient) {
			Logger().Debug("skipping short stroke", "step", j.epoch, "samples", j.stk.Len())
		} else {
			Logger().Warn("stroke analysis failed", "step", j.epoch, "error", err)
		}
		return
	}
	st, err := p.tr.Apply(j.epoch, fb)
	if err != nil {
		Logger().Debug("dropping stale result", "step", j.epoch, "current", p.tr.CurrentStepIndex())
		return
	}
	p.deliver(ctx, Outcome{Step: j.epoch, Feedback: fb, State: st})
}

func (p *Pipeline) processLive(ctx context.Context, j liveJob) {
	if j.epoch != p.tr.CurrentStepIndex() {
		return
	}
	fb, ok, err := p.an.AnalyzeLive(j.points, j.pressures, j.velocities, p.target(j.step))
	if err != nil || !ok {
		// Throttled or still too short to score; the next snapshot will do.
		return
	}
	p.deliver(ctx, Outcome{Step: j.epoch, Live: true, Feedback: fb})
}

func (p *Pipeline) target(step lesson.Step) Target {
	return Target{Shape: step.Shape, Tolerance: step.Tolerance, Threshold: p.tr.Threshold()}
}

func (p *Pipeline) deliver(ctx context.Context, out Outcome) {
	select {
	case p.outcomes <- out:
	case <-ctx.Done():
	case <-p.done:
	}
}
