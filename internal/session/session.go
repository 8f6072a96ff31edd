// Package session tracks progression through a lesson as strokes are
// scored.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/lmeritt/sketchtrace/internal/lesson"
	"github.com/lmeritt/sketchtrace/internal/score"
)

// ErrStale reports feedback that was computed for a step the session has
// already moved past. Callers drop it; it is not a failure.
var ErrStale = errors.New("session: stale result")

// Phase is the lifecycle of one step.
type Phase int

// Step phases, in order. A step only moves forward except through an
// explicit GoToPreviousStep.
const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseCompleting
	PhaseCompleted
)

// String returns the phase name for labels and logs.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseInProgress:
		return "in progress"
	case PhaseCompleting:
		return "completing"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// StepState accumulates progress on one step. It is frozen once the phase
// reaches PhaseCompleted, apart from attempt counting.
type StepState struct {
	Index        int
	Phase        Phase
	Attempts     int
	BestAccuracy float64
	LastAccuracy float64
	TimeSpent    time.Duration
}

// DifficultyAdapter adjusts the correctness threshold after each scored
// stroke. It runs inside the tracker's critical section and must not call
// back into the tracker.
type DifficultyAdapter func(fb score.Feedback, threshold float64) float64

// Config tunes progression behavior.
type Config struct {
	// Threshold is the initial accuracy bar for a correct stroke.
	Threshold float64
	// CompletionBar is the accuracy needed to begin completing a step.
	// Steps may override it.
	CompletionBar float64
	// Grace is how long a completing step waits for a disqualifying stroke
	// before it completes.
	Grace time.Duration
	// MinThreshold and MaxThreshold bound adapter adjustments.
	MinThreshold float64
	MaxThreshold float64
	// Now supplies the clock and defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the standard progression tuning.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.7,
		CompletionBar: 0.8,
		Grace:         1500 * time.Millisecond,
		MinThreshold:  0.5,
		MaxThreshold:  0.95,
	}
}

// Tracker is the step progression state machine for one lesson run. All
// methods are safe for concurrent use; Apply is the single point where
// feedback mutates session state, so feedback lands in call order.
type Tracker struct {
	mu        sync.Mutex
	lesson    lesson.Lesson
	cfg       Config
	now       func() time.Time
	steps     []StepState
	current   int
	threshold float64
	adapter   DifficultyAdapter

	completingSince time.Time
	stepStartedAt   time.Time
}

// New creates a tracker positioned on the first step of the lesson.
func New(l lesson.Lesson, cfg Config) *Tracker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	steps := make([]StepState, len(l.Steps))
	for i := range steps {
		steps[i].Index = i
	}
	return &Tracker{
		lesson:    l,
		cfg:       cfg,
		now:       cfg.Now,
		steps:     steps,
		threshold: cfg.Threshold,
	}
}

// Lesson returns the lesson being tracked.
func (t *Tracker) Lesson() lesson.Lesson {
	return t.lesson
}

// CurrentStepIndex returns the index of the active step.
func (t *Tracker) CurrentStepIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Threshold returns the current correctness bar.
func (t *Tracker) Threshold() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.threshold
}

// SetDifficultyAdapter installs the threshold adjustment callback. A nil
// adapter leaves the threshold fixed.
func (t *Tracker) SetDifficultyAdapter(adapter DifficultyAdapter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.adapter = adapter
}

// CurrentStep returns the active lesson step and its state.
func (t *Tracker) CurrentStep() (lesson.Step, StepState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promoteLocked(t.now())
	return t.lesson.Steps[t.current], t.steps[t.current]
}

// Steps returns a copy of all step states.
func (t *Tracker) Steps() []StepState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StepState, len(t.steps))
	copy(out, t.steps)
	return out
}

// Apply records scored feedback for the step it was computed against.
// Feedback for any other step returns ErrStale and changes nothing. The
// returned state is the step state after the update.
func (t *Tracker) Apply(stepIndex int, fb score.Feedback) (StepState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if stepIndex != t.current {
		return StepState{}, ErrStale
	}
	now := t.now()
	t.promoteLocked(now)

	st := &t.steps[t.current]
	if st.Phase == PhaseNotStarted {
		st.Phase = PhaseInProgress
		t.stepStartedAt = now
	}
	st.Attempts++
	st.LastAccuracy = fb.Accuracy
	if fb.Accuracy > st.BestAccuracy {
		st.BestAccuracy = fb.Accuracy
	}

	if t.adapter != nil {
		t.threshold = clampThreshold(t.adapter(fb, t.threshold), t.cfg)
	}

	switch st.Phase {
	case PhaseInProgress:
		if fb.Correct && fb.Accuracy >= t.completionBarLocked() {
			st.Phase = PhaseCompleting
			t.completingSince = now
		}
	case PhaseCompleting:
		if !fb.Correct {
			// A disqualifying stroke inside the grace window.
			st.Phase = PhaseInProgress
			t.completingSince = time.Time{}
		}
	}
	return *st, nil
}

// Tick promotes a completing step whose grace window has elapsed and
// returns the current step state. UIs call it once per frame.
func (t *Tracker) Tick() StepState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promoteLocked(t.now())
	return t.steps[t.current]
}

// CanProgressToNext reports whether the active step is completed and a next
// step exists.
func (t *Tracker) CanProgressToNext() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promoteLocked(t.now())
	return t.steps[t.current].Phase == PhaseCompleted && t.current+1 < len(t.steps)
}

// ProgressToNextStep advances to the next step if the active one is
// completed. It reports whether the move happened.
func (t *Tracker) ProgressToNextStep() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promoteLocked(t.now())
	if t.steps[t.current].Phase != PhaseCompleted || t.current+1 >= len(t.steps) {
		return false
	}
	t.current++
	t.completingSince = time.Time{}
	t.stepStartedAt = time.Time{}
	return true
}

// GoToPreviousStep moves back one step and reopens it for practice. The
// step's accumulated attempts and best accuracy are kept. It reports
// whether the move happened.
func (t *Tracker) GoToPreviousStep() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == 0 {
		return false
	}
	now := t.now()
	t.accumulateTimeLocked(now)
	t.current--
	st := &t.steps[t.current]
	st.Phase = PhaseInProgress
	t.completingSince = time.Time{}
	t.stepStartedAt = now
	return true
}

// Done reports whether every step in the lesson is completed.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promoteLocked(t.now())
	for _, st := range t.steps {
		if st.Phase != PhaseCompleted {
			return false
		}
	}
	return true
}

// promoteLocked completes the active step once its grace window has passed
// without a disqualifying stroke.
func (t *Tracker) promoteLocked(now time.Time) {
	st := &t.steps[t.current]
	if st.Phase != PhaseCompleting {
		return
	}
	if now.Sub(t.completingSince) < t.cfg.Grace {
		return
	}
	st.Phase = PhaseCompleted
	t.completingSince = time.Time{}
	t.accumulateTimeLocked(now)
}

// accumulateTimeLocked folds the elapsed practice time into the active step.
func (t *Tracker) accumulateTimeLocked(now time.Time) {
	if t.stepStartedAt.IsZero() {
		return
	}
	t.steps[t.current].TimeSpent += now.Sub(t.stepStartedAt)
	t.stepStartedAt = time.Time{}
}

// completionBarLocked returns the step's completion bar, honoring per-step
// overrides.
func (t *Tracker) completionBarLocked() float64 {
	step := t.lesson.Steps[t.current]
	if step.CompletionBar > 0 {
		return step.CompletionBar
	}
	return t.cfg.CompletionBar
}

func clampThreshold(v float64, cfg Config) float64 {
	if v < cfg.MinThreshold {
		return cfg.MinThreshold
	}
	if v > cfg.MaxThreshold {
		return cfg.MaxThreshold
	}
	return v
}
