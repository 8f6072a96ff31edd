// Package tui provides the Bubble Tea practice interface. It replays strokes
// over the guide shape, streams them through the analysis pipeline, and shows
// scoring feedback as the lesson progresses.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/lmeritt/sketchtrace/internal/engine"
	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/model"
	"github.com/lmeritt/sketchtrace/internal/score"
	"github.com/lmeritt/sketchtrace/internal/session"
	"github.com/lmeritt/sketchtrace/internal/stats"
	"github.com/lmeritt/sketchtrace/internal/store"
	"github.com/lmeritt/sketchtrace/internal/stroke"
)

const (
	frameInterval  = 33 * time.Millisecond
	betweenStrokes = 650 * time.Millisecond
	// liveEvery is how many new samples accumulate between live snapshots.
	liveEvery = 6
)

// Drawing layers. The stroke sits on the lowest layer so it wins the cell
// color where it crosses the guide.
const (
	layerStroke = iota
	layerGuide
	layerCorrections
)

const (
	defaultCanvasWidth  = 60
	defaultCanvasHeight = 16
	minCanvasWidth      = 24
	minCanvasHeight     = 8
)

// tickMsg drives the replay animation.
type tickMsg time.Time

// outcomeMsg delivers one analysis result from the pipeline.
type outcomeMsg struct {
	outcome engine.Outcome
}

// outcomesClosedMsg reports that the pipeline shut down.
type outcomesClosedMsg struct{}

// Model implements the Bubble Tea practice UI.
type Model struct {
	config  model.Config
	store   *store.Store
	an      *engine.Analyzer
	tracker *session.Tracker
	pipe    *engine.Pipeline
	source  StrokeSource

	width    int
	height   int
	useColor bool

	startedAt time.Time

	stepIndex int
	state     session.StepState
	guide     []geom.Point
	attempt   int

	current   stroke.Stroke
	cursor    int
	lastLive  int
	playStart time.Time
	nextAt    time.Time
	playing   bool

	paused   bool
	pausedAt time.Time

	lastFeedback score.Feedback
	hasFeedback  bool

	attempts    []model.AttemptRecord
	accuracySum float64
	accuracyN   int
	bestAcc     float64

	lessonDone bool
	saved      bool
	quitting   bool
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a practice TUI model. The pipeline must already be
// started; the model closes it when the user quits.
func NewModel(cfg model.Config, st *store.Store, an *engine.Analyzer, tracker *session.Tracker, pipe *engine.Pipeline, source StrokeSource) *Model {
	m := &Model{
		config:    cfg,
		store:     st,
		an:        an,
		tracker:   tracker,
		pipe:      pipe,
		source:    source,
		useColor:  stats.ShouldUseColor(os.Stdout, false),
		startedAt: time.Now(),
	}
	m.enterStep(tracker.CurrentStepIndex())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), listenOutcomes(m.pipe.Outcomes()))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.onTick(time.Time(msg))
		return m, tickCmd()
	case outcomeMsg:
		m.applyOutcome(msg.outcome)
		return m, listenOutcomes(m.pipe.Outcomes())
	case outcomesClosedMsg:
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	header := m.renderHeader()
	canvas := m.renderCanvas()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return header + "\n" + canvas + "\n" + footer
	}
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	headerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, header)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, canvas)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return headerLine + "\n" + body + "\n" + footerLine
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeySpace:
		m.togglePause()
		return m, nil
	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			return m.quit()
		case "n":
			if m.tracker.ProgressToNextStep() {
				m.enterStep(m.tracker.CurrentStepIndex())
			}
		case "p":
			if m.tracker.GoToPreviousStep() {
				m.enterStep(m.tracker.CurrentStepIndex())
			}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.finishSession()
	m.pipe.Close()
	return m, tea.Quit
}

func (m *Model) togglePause() {
	if m.lessonDone {
		return
	}
	if !m.paused {
		m.paused = true
		m.pausedAt = time.Now()
		return
	}
	// Shift the replay clocks by the pause duration so the animation
	// resumes where it stopped.
	delta := time.Since(m.pausedAt)
	m.playStart = m.playStart.Add(delta)
	m.nextAt = m.nextAt.Add(delta)
	m.paused = false
}

// onTick advances the replay by one frame: it promotes completing steps,
// auto-advances finished ones, starts the next attempt when the pause
// between strokes has elapsed, and feeds the pen position forward.
func (m *Model) onTick(now time.Time) {
	if m.lessonDone || m.paused {
		return
	}
	m.state = m.tracker.Tick()
	if m.tracker.Done() {
		m.lessonDone = true
		m.finishSession()
		return
	}
	if m.tracker.CanProgressToNext() {
		m.tracker.ProgressToNextStep()
	}
	if idx := m.tracker.CurrentStepIndex(); idx != m.stepIndex {
		m.enterStep(idx)
		return
	}
	if !m.playing {
		if now.Before(m.nextAt) {
			return
		}
		m.beginStroke(now)
		return
	}
	m.advance(now)
}

// enterStep points the model at a lesson step and samples its guide path.
func (m *Model) enterStep(idx int) {
	m.stepIndex = idx
	m.attempt = 0
	m.playing = false
	m.cursor = 0
	m.lastLive = 0
	m.current = stroke.Stroke{}
	m.hasFeedback = false
	m.guide = nil
	m.nextAt = time.Now().Add(betweenStrokes / 2)
	m.state = m.tracker.Steps()[idx]

	step := m.tracker.Lesson().Steps[idx]
	guide, err := m.an.GuidePath(step.Shape)
	if err != nil {
		logErrf("failed to sample guide: %v\n", err)
		return
	}
	m.guide = guide
}

func (m *Model) beginStroke(now time.Time) {
	step := m.tracker.Lesson().Steps[m.stepIndex]
	stk, err := m.source.StrokeFor(m.stepIndex, step, m.attempt)
	if err != nil {
		logErrf("failed to produce stroke: %v\n", err)
		m.nextAt = now.Add(betweenStrokes)
		return
	}
	m.attempt++
	m.current = stk
	m.cursor = 0
	m.lastLive = 0
	m.playStart = now
	m.playing = true
}

// advance moves the replay cursor to the sample whose timestamp the clock
// has reached, submitting live snapshots along the way and the completed
// stroke at the end.
func (m *Model) advance(now time.Time) {
	elapsed := now.Sub(m.playStart).Seconds()
	n := m.current.Len()
	k := m.cursor
	for k < n && m.current.Samples[k].Time <= elapsed {
		k++
	}
	if k == m.cursor {
		return
	}
	m.cursor = k
	if k >= n {
		m.pipe.SubmitStroke(m.current)
		m.playing = false
		m.nextAt = now.Add(betweenStrokes)
		return
	}
	if k-m.lastLive >= liveEvery {
		m.submitLive()
	}
}

func (m *Model) submitLive() {
	k := m.cursor
	if k < 2 {
		return
	}
	points := make([]geom.Point, k)
	pressures := make([]float64, k)
	velocities := make([]float64, 0, k-1)
	for i, s := range m.current.Samples[:k] {
		points[i] = s.Pos
		pressures[i] = s.Pressure
		if i > 0 {
			velocities = append(velocities, s.Velocity)
		}
	}
	m.pipe.SubmitLive(points, pressures, velocities)
	m.lastLive = k
}

// applyOutcome folds one analysis result into the model. Completed strokes
// are recorded for the session even when the UI has already moved to another
// step; feedback display only updates for the step on screen.
func (m *Model) applyOutcome(out engine.Outcome) {
	if out.Live {
		if out.Step == m.stepIndex {
			m.lastFeedback = out.Feedback
			m.hasFeedback = true
		}
		return
	}
	m.accuracySum += out.Feedback.Accuracy
	m.accuracyN++
	if out.Feedback.Accuracy > m.bestAcc {
		m.bestAcc = out.Feedback.Accuracy
	}
	m.attempts = append(m.attempts, model.AttemptRecord{
		StepIndex:           out.Step,
		Attempt:             out.State.Attempts,
		Accuracy:            out.Feedback.Accuracy,
		PathAccuracy:        out.Feedback.Metrics.PathAccuracy,
		TemporalAccuracy:    out.Feedback.Metrics.TemporalAccuracy,
		VelocityConsistency: out.Feedback.Metrics.VelocityConsistency,
		PressureStability:   out.Feedback.Metrics.PressureStability,
		Correct:             out.Feedback.Correct,
	})
	if out.Step == m.stepIndex {
		m.state = out.State
		m.lastFeedback = out.Feedback
		m.hasFeedback = true
	}
}

func (m *Model) renderHeader() string {
	l := m.tracker.Lesson()
	step := l.Steps[m.stepIndex]
	title := titleStyle.Render(fmt.Sprintf("%s · %s", l.Name, step.Name))
	kind := kindStyle.Render(string(step.Shape.Kind()))
	help := helpStyle.Render("q quit · space pause · n/p step")
	return title + " " + kind + "   " + help
}

func (m *Model) renderCanvas() string {
	w, h := m.canvasSize()
	c := stats.NewCanvas(w, h, 3)
	step := m.tracker.Lesson().Steps[m.stepIndex]
	c.SetWorld(padWorld(step.Shape.Bounds()))
	if len(m.guide) > 0 {
		c.Polyline(layerGuide, m.guide)
	}
	if m.cursor > 0 && m.current.Len() > 0 {
		points := make([]geom.Point, m.cursor)
		for i, s := range m.current.Samples[:m.cursor] {
			points[i] = s.Pos
		}
		c.Polyline(layerStroke, points)
	}
	if m.hasFeedback {
		for _, p := range m.lastFeedback.Corrections {
			c.MarkCross(layerCorrections, p)
		}
	}
	return strings.Join(c.RenderLines(m.useColor), "\n")
}

func (m *Model) renderFooter() string {
	l := m.tracker.Lesson()
	step := l.Steps[m.stepIndex]
	segments := []string{fmt.Sprintf("Step %d/%d %s", m.stepIndex+1, len(l.Steps), step.Name)}
	segments = append(segments, m.state.Phase.String())
	if m.state.Attempts > 0 {
		segments = append(segments, fmt.Sprintf("Attempt %d", m.state.Attempts))
		segments = append(segments, fmt.Sprintf("Last %.0f%% · Best %.0f%%",
			m.state.LastAccuracy*100, m.state.BestAccuracy*100))
	}
	segments = append(segments, fmt.Sprintf("Bar %.0f%%", m.tracker.Threshold()*100))
	if m.paused {
		segments = append(segments, "paused")
	}
	if m.lessonDone {
		segments = append(segments, "lesson complete · press q")
	} else if m.hasFeedback && len(m.lastFeedback.Suggestions) > 0 {
		segments = append(segments, m.lastFeedback.Suggestions[0])
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) canvasSize() (int, int) {
	w := defaultCanvasWidth
	h := defaultCanvasHeight
	if m.width > 0 {
		w = int(float64(m.width) * 0.70)
	}
	if m.height > 0 {
		h = m.height - 4
	}
	if w < minCanvasWidth {
		w = minCanvasWidth
	}
	if h < minCanvasHeight {
		h = minCanvasHeight
	}
	return w, h
}

// padWorld grows the guide bounds so wobble and overshoot stay on canvas.
func padWorld(r geom.Rect) geom.Rect {
	pad := r.Diagonal() * 0.08
	if pad < 4 {
		pad = 4
	}
	return geom.Rect{
		Min: geom.Pt(r.Min.X-pad, r.Min.Y-pad),
		Max: geom.Pt(r.Max.X+pad, r.Max.Y+pad),
	}
}

// finishSession persists the run. It fires once, on lesson completion or
// quit, whichever comes first; a run with no scored strokes is not saved.
func (m *Model) finishSession() {
	if m.saved {
		return
	}
	m.saved = true

	endedAt := time.Now()
	l := m.tracker.Lesson()
	states := m.tracker.Steps()
	steps := make([]model.StepResult, len(states))
	completed := 0
	totalAttempts := 0
	for i, st := range states {
		step := l.Steps[i]
		steps[i] = model.StepResult{
			StepIndex:    i,
			StepName:     step.Name,
			ShapeKind:    string(step.Shape.Kind()),
			Attempts:     st.Attempts,
			BestAccuracy: st.BestAccuracy,
			Completed:    st.Phase == session.PhaseCompleted,
			TimeSpentMs:  st.TimeSpent.Milliseconds(),
		}
		totalAttempts += st.Attempts
		if st.Phase == session.PhaseCompleted {
			completed++
		}
	}
	if totalAttempts == 0 {
		return
	}

	avg := 0.0
	if m.accuracyN > 0 {
		avg = m.accuracySum / float64(m.accuracyN)
	}
	rec := model.SessionRecord{
		ID:             uuid.NewString(),
		Lesson:         l.Slug,
		StartedAt:      m.startedAt,
		EndedAt:        endedAt,
		StepsCompleted: completed,
		StepsTotal:     len(l.Steps),
		Attempts:       totalAttempts,
		AvgAccuracy:    avg,
		BestAccuracy:   m.bestAcc,
		DurationMs:     endedAt.Sub(m.startedAt).Milliseconds(),
	}
	ctx := context.Background()
	if err := m.store.InsertSession(ctx, rec, steps, m.attempts); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenOutcomes waits for the next analysis result. Update re-arms it after
// every delivery; the closed-channel message ends the loop.
func listenOutcomes(ch <-chan engine.Outcome) tea.Cmd {
	return func() tea.Msg {
		out, ok := <-ch
		if !ok {
			return outcomesClosedMsg{}
		}
		return outcomeMsg{outcome: out}
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
