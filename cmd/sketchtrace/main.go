// Package main provides the CLI entrypoint for sketchtrace.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lmeritt/sketchtrace/internal/config"
	"github.com/lmeritt/sketchtrace/internal/engine"
	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/lesson"
	"github.com/lmeritt/sketchtrace/internal/model"
	"github.com/lmeritt/sketchtrace/internal/report"
	"github.com/lmeritt/sketchtrace/internal/score"
	"github.com/lmeritt/sketchtrace/internal/session"
	"github.com/lmeritt/sketchtrace/internal/stats"
	"github.com/lmeritt/sketchtrace/internal/statsui"
	"github.com/lmeritt/sketchtrace/internal/store"
	"github.com/lmeritt/sketchtrace/internal/strokeio"
	"github.com/lmeritt/sketchtrace/internal/synth"
	"github.com/lmeritt/sketchtrace/internal/tui"
)

const (
	defaultLesson      = "shapes"
	defaultTakes       = 3
	defaultWeakTop     = 3
	defaultWeakWindow  = 20
	defaultCurveWindow = 10
	defaultShapeCurves = 5
	defaultReportOut   = "sketchtrace-report.pdf"

	// Streak-based difficulty: three correct attempts in a row raise the
	// correctness bar by five points, three misses lower it.
	defaultStreakWindow = 3
	defaultStreakDelta  = 0.05

	// Gap the replay clock inserts between scored strokes so attempt
	// timestamps stay ordered.
	evalStrokeGap = 300 * time.Millisecond
)

var (
	practiceLesson     string
	practiceRecording  string
	practiceSeed       int64
	practiceNoise      float64
	practiceRate       float64
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakWindow int

	evalLesson    string
	evalRecording string
	evalSave      bool

	synthLesson string
	synthOut    string
	synthSeed   int64
	synthNoise  float64
	synthRate   float64
	synthTakes  int
	synthForce  bool

	statsLesson      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsShapes      string
	statsPlain       bool

	reportLesson    string
	reportRecording string
	reportOut       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := synth.DefaultParams()

	rootCmd := &cobra.Command{
		Use:           "sketchtrace",
		Short:         "TUI freehand drawing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceLesson, "lesson", "", "lesson slug, user lesson, or TOML path (default: shapes)")
	rootCmd.Flags().StringVar(&practiceRecording, "recording", "", "replay strokes from a recording instead of the synthesizer")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "synthesizer seed (0 seeds from the clock)")
	rootCmd.Flags().Float64Var(&practiceNoise, "noise", defaults.Noise, "synthesizer wobble amplitude in world units")
	rootCmd.Flags().Float64Var(&practiceRate, "rate", defaults.Rate, "synthesizer samples per second")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "move weak shape kinds to the front of the lesson")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak shape kinds to focus on")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak shapes")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSynthCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lesson", &practiceLesson, fileCfg.Practice.Lesson)
	applyStringConfig(cmd, "recording", &practiceRecording, fileCfg.Practice.Recording)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)
	applyFloatConfig(cmd, "noise", &practiceNoise, fileCfg.Practice.Noise)
	applyFloatConfig(cmd, "rate", &practiceRate, fileCfg.Practice.Rate)

	cfg := model.Config{
		Lesson:    practiceLesson,
		Recording: practiceRecording,
		Seed:      practiceSeed,
		Noise:     practiceNoise,
		Rate:      practiceRate,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if practiceWeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if practiceWeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}

	var rec *strokeio.Recording
	if cfg.Recording != "" {
		loaded, err := strokeio.Load(cfg.Recording)
		if err != nil {
			return fmt.Errorf("failed to load recording: %w", err)
		}
		rec = &loaded
	}

	lessonName := cfg.Lesson
	if lessonName == "" && rec != nil {
		lessonName = rec.Lesson
	}
	if lessonName == "" {
		lessonName = defaultLesson
	}
	lsn, err := lesson.Resolve(lessonName, config.DefaultLessonDir())
	if err != nil {
		return err
	}
	cfg.Lesson = lsn.Slug

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if practiceFocusWeak {
		aggs, err := st.GetWeakShapes(context.Background(), practiceWeakWindow, lsn.Slug)
		if err != nil {
			logErrf("failed to load weak shapes: %v\n", err)
		} else if weakSet := stats.SelectWeakShapes(aggs, practiceWeakTop); len(weakSet) == 0 {
			logErrln("no stats available for weak-shape focus yet; keeping lesson order")
		} else {
			lsn = reorderWeakFirst(lsn, weakSet)
		}
	}

	an, err := engine.New(engineConfig(fileCfg))
	if err != nil {
		return fmt.Errorf("failed to configure engine: %w", err)
	}
	tracker := session.New(lsn, sessionConfig(fileCfg))
	tracker.SetDifficultyAdapter(session.StreakAdapter(defaultStreakWindow, defaultStreakDelta))

	fallback := tui.SynthSource{Synth: newSynthesizer(cfg.Seed), Params: synthParams(cfg.Noise, cfg.Rate)}
	var source tui.StrokeSource = fallback
	if rec != nil {
		source = tui.RecordingSource{Recording: *rec, Fallback: fallback}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pipe := engine.NewPipeline(an, tracker)
	pipe.Start(ctx)

	m := tui.NewModel(cfg, st, an, tracker, pipe, source)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score a recording without the TUI",
		Args:  cobra.NoArgs,
		RunE:  runEvalCmd,
	}
	cmd.Flags().StringVar(&evalLesson, "lesson", "", "lesson slug, user lesson, or TOML path (default: the recording's lesson)")
	cmd.Flags().StringVar(&evalRecording, "recording", "", "recording to score")
	cmd.Flags().BoolVar(&evalSave, "save", true, "persist the session to the stats store")
	_ = cmd.MarkFlagRequired("recording")
	return cmd
}

func runEvalCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lesson", &evalLesson, fileCfg.Practice.Lesson)

	run, err := runRecording(evalRecording, evalLesson, fileCfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, line := range evalTable(run.lsn, run.states, run.results) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	completed, avg, best := summarize(run.states, run.attempts)
	if _, err := fmt.Fprintf(out, "\n%d/%d steps completed, %d strokes scored, avg %.1f%%, best %.1f%%\n",
		completed, len(run.states), len(run.attempts), avg*100, best*100); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if evalSave && len(run.attempts) > 0 {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		sessionRec, steps := sessionRecord(run.lsn, run.states, run.attempts, run.startedAt, run.clock.Now())
		if err := st.InsertSession(context.Background(), sessionRec, steps, run.attempts); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		if _, err := fmt.Fprintf(out, "saved session %s\n", sessionRec.ID); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if completed < len(run.states) {
		return fmt.Errorf("lesson incomplete: %d of %d steps completed", completed, len(run.states))
	}
	return nil
}

func newSynthCmd() *cobra.Command {
	defaults := synth.DefaultParams()

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a synthetic recording for a lesson",
		Args:  cobra.NoArgs,
		RunE:  runSynthCmd,
	}
	cmd.Flags().StringVar(&synthLesson, "lesson", "", "lesson slug, user lesson, or TOML path (default: shapes)")
	cmd.Flags().StringVar(&synthOut, "out", "", "output path (default: recording dir, named after the lesson)")
	cmd.Flags().Int64Var(&synthSeed, "seed", 0, "synthesizer seed (0 seeds from the clock)")
	cmd.Flags().Float64Var(&synthNoise, "noise", defaults.Noise, "wobble amplitude in world units")
	cmd.Flags().Float64Var(&synthRate, "rate", defaults.Rate, "samples per second")
	cmd.Flags().IntVar(&synthTakes, "takes", defaultTakes, "takes per step")
	cmd.Flags().BoolVar(&synthForce, "force", false, "overwrite an existing recording")
	return cmd
}

func runSynthCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lesson", &synthLesson, fileCfg.Practice.Lesson)
	applyInt64Config(cmd, "seed", &synthSeed, fileCfg.Practice.Seed)
	applyFloatConfig(cmd, "noise", &synthNoise, fileCfg.Practice.Noise)
	applyFloatConfig(cmd, "rate", &synthRate, fileCfg.Practice.Rate)

	if synthTakes <= 0 {
		return fmt.Errorf("--takes must be > 0")
	}
	if synthNoise < 0 {
		return fmt.Errorf("--noise must be >= 0")
	}
	if synthRate <= 0 {
		return fmt.Errorf("--rate must be > 0")
	}

	lessonName := synthLesson
	if lessonName == "" {
		lessonName = defaultLesson
	}
	lsn, err := lesson.Resolve(lessonName, config.DefaultLessonDir())
	if err != nil {
		return err
	}

	outPath := synthOut
	if outPath == "" {
		outPath = filepath.Join(config.DefaultRecordingDir(), lsn.Slug+".json")
	}
	if !synthForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("recording already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat recording: %w", err)
		}
	}

	sy := newSynthesizer(synthSeed)
	params := synthParams(synthNoise, synthRate)
	rec := strokeio.NewRecording(lsn.Slug)
	for i, step := range lsn.Steps {
		for t := 0; t < synthTakes; t++ {
			stk, err := sy.Trace(step.Shape, params)
			if err != nil {
				return fmt.Errorf("failed to trace step %d: %w", i, err)
			}
			rec.Strokes = append(rec.Strokes, strokeio.FromStroke(i, stk))
		}
	}
	if err := strokeio.Save(outPath, rec); err != nil {
		return fmt.Errorf("failed to save recording: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), outPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLesson, "lesson", "", "lesson filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsShapes, "shapes", "", "comma-separated shape kinds for per-shape curves")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print tables instead of the interactive dashboard")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Lesson:      statsLesson,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Shapes:      statsShapes,
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if statsPlain {
		return renderPlainStats(cmd, st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	ctx := context.Background()
	rep, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build stats report: %w", err)
	}

	w := cmd.OutOrStdout()
	if err := stats.RenderSummary(w, rep.Sessions); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderCurves(w, rep.Sessions, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	if err := stats.RenderShapeTable(w, rep.ShapeAggsWindow); err != nil {
		return fmt.Errorf("failed to render shape table: %w", err)
	}

	kinds := splitKinds(cfg.Shapes)
	for _, kind := range kinds {
		if !geom.KnownKind(kind) {
			return fmt.Errorf("unknown shape kind %q", kind)
		}
	}
	if len(kinds) == 0 {
		kinds = stats.TopShapesByAttempts(rep.ShapeAggsWindow, defaultShapeCurves)
	}
	if len(kinds) == 0 || len(rep.Sessions) == 0 {
		return nil
	}

	ids := make([]string, len(rep.Sessions))
	for i, s := range rep.Sessions {
		ids[i] = s.SessionID
	}
	perSession, err := st.ListShapeStatsForSessions(ctx, ids, kinds)
	if err != nil {
		return fmt.Errorf("failed to load shape stats: %w", err)
	}
	if err := stats.RenderShapeCurves(w, rep.Sessions, perSession, kinds, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to render shape curves: %w", err)
	}
	return nil
}

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List available lessons",
		Args:  cobra.NoArgs,
		RunE:  runLessonsCmd,
	}
}

func runLessonsCmd(cmd *cobra.Command, _ []string) error {
	userLessons, err := lesson.LoadDir(config.DefaultLessonDir())
	if err != nil {
		return fmt.Errorf("failed to load user lessons: %w", err)
	}

	headers := []string{"Slug", "Name", "Steps", "Source"}
	var rows [][]string
	for _, l := range lesson.Builtin() {
		rows = append(rows, []string{l.Slug, l.Name, fmt.Sprintf("%d", len(l.Steps)), "builtin"})
	}
	for _, l := range userLessons {
		rows = append(rows, []string{l.Slug, l.Name, fmt.Sprintf("%d", len(l.Steps)), "user"})
	}

	out := cmd.OutOrStdout()
	for _, line := range stats.FormatTable(headers, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a PDF report for a recording",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportLesson, "lesson", "", "lesson slug, user lesson, or TOML path (default: the recording's lesson)")
	cmd.Flags().StringVar(&reportRecording, "recording", "", "recording to report on")
	cmd.Flags().StringVar(&reportOut, "out", defaultReportOut, "output PDF path")
	_ = cmd.MarkFlagRequired("recording")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lesson", &reportLesson, fileCfg.Practice.Lesson)

	run, err := runRecording(reportRecording, reportLesson, fileCfg)
	if err != nil {
		return err
	}

	pages := make([]report.Page, len(run.lsn.Steps))
	for i, step := range run.lsn.Steps {
		guide, err := run.an.GuidePath(step.Shape)
		if err != nil {
			return fmt.Errorf("failed to sample guide: %w", err)
		}
		pages[i] = report.Page{
			Title:    step.Name,
			Kind:     string(step.Shape.Kind()),
			Guide:    guide,
			Attempts: run.states[i].Attempts,
		}
		if run.results[i].scored {
			pages[i].Stroke = run.results[i].points
			pages[i].Feedback = run.results[i].feedback
		}
	}

	completed, avg, best := summarize(run.states, run.attempts)
	sum := report.Summary{
		Lesson:         run.lsn.Slug,
		StepsCompleted: completed,
		StepsTotal:     len(run.states),
		Attempts:       len(run.attempts),
		AvgAccuracy:    avg,
		BestAccuracy:   best,
	}
	if err := report.Write(reportOut, sum, pages); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), reportOut); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// stepResult carries what eval and report need per step beyond the tracker
// state: the last scored stroke and feedback, and the attempt accuracies
// for the sparkline.
type stepResult struct {
	feedback   score.Feedback
	points     []geom.Point
	accuracies []float64
	scored     bool
}

// evalRun bundles the outcome of replaying a recording through a fresh
// analyzer and tracker.
type evalRun struct {
	lsn       lesson.Lesson
	an        *engine.Analyzer
	clock     *fakeClock
	results   []stepResult
	attempts  []model.AttemptRecord
	states    []session.StepState
	startedAt time.Time
}

func runRecording(recordingPath, lessonName string, fileCfg config.FileConfig) (*evalRun, error) {
	rec, err := strokeio.Load(recordingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load recording: %w", err)
	}
	if lessonName == "" {
		lessonName = rec.Lesson
	}
	if lessonName == "" {
		lessonName = defaultLesson
	}
	lsn, err := lesson.Resolve(lessonName, config.DefaultLessonDir())
	if err != nil {
		return nil, err
	}

	an, err := engine.New(engineConfig(fileCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to configure engine: %w", err)
	}
	clock := &fakeClock{now: time.Now()}
	sessCfg := sessionConfig(fileCfg)
	sessCfg.Now = clock.Now
	tracker := session.New(lsn, sessCfg)
	tracker.SetDifficultyAdapter(session.StreakAdapter(defaultStreakWindow, defaultStreakDelta))

	startedAt := clock.Now()
	results, attempts, err := evaluateRecording(an, tracker, rec, sessCfg.Grace, clock)
	if err != nil {
		return nil, err
	}
	return &evalRun{
		lsn:       lsn,
		an:        an,
		clock:     clock,
		results:   results,
		attempts:  attempts,
		states:    tracker.Steps(),
		startedAt: startedAt,
	}, nil
}

// evaluateRecording replays a recording through the analyzer and tracker in
// step order. The clock advances by each stroke's duration plus a fixed gap,
// and past the grace window between steps, so completion behaves as it does
// live. Replay stops when a step never completes; later steps are
// unreachable then, exactly as in a live session.
func evaluateRecording(an *engine.Analyzer, tr *session.Tracker, rec strokeio.Recording, grace time.Duration, clock *fakeClock) ([]stepResult, []model.AttemptRecord, error) {
	steps := tr.Lesson().Steps
	results := make([]stepResult, len(steps))
	var attempts []model.AttemptRecord

	for i, step := range steps {
		for _, take := range rec.ForStep(i) {
			stk, err := take.Stroke()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to decode stroke for step %d: %w", i, err)
			}
			target := engine.Target{
				Shape:     step.Shape,
				Tolerance: step.Tolerance,
				Threshold: tr.Threshold(),
			}
			fb, err := an.AnalyzeStroke(stk, target)
			if err != nil {
				if errors.Is(err, engine.ErrInsufficient) {
					continue
				}
				return nil, nil, fmt.Errorf("failed to analyze stroke for step %d: %w", i, err)
			}
			clock.Advance(time.Duration(stk.Duration()*float64(time.Second)) + evalStrokeGap)
			st, err := tr.Apply(i, fb)
			if err != nil {
				continue
			}
			attempts = append(attempts, model.AttemptRecord{
				StepIndex:           i,
				Attempt:             st.Attempts,
				Accuracy:            fb.Accuracy,
				PathAccuracy:        fb.Metrics.PathAccuracy,
				TemporalAccuracy:    fb.Metrics.TemporalAccuracy,
				VelocityConsistency: fb.Metrics.VelocityConsistency,
				PressureStability:   fb.Metrics.PressureStability,
				Correct:             fb.Correct,
			})
			results[i].feedback = fb
			results[i].points = stk.Points()
			results[i].accuracies = append(results[i].accuracies, fb.Accuracy)
			results[i].scored = true
		}
		clock.Advance(grace + time.Millisecond)
		tr.Tick()
		if i+1 < len(steps) && !tr.ProgressToNextStep() {
			break
		}
	}
	return results, attempts, nil
}

func evalTable(lsn lesson.Lesson, states []session.StepState, results []stepResult) []string {
	headers := []string{"Step", "Shape", "Attempts", "Best", "Last", "Done", "Curve"}
	rows := make([][]string, len(states))
	for i, st := range states {
		done := "no"
		if st.Phase == session.PhaseCompleted {
			done = "yes"
		}
		rows[i] = []string{
			lsn.Steps[i].Name,
			string(lsn.Steps[i].Shape.Kind()),
			fmt.Sprintf("%d", st.Attempts),
			fmt.Sprintf("%.1f%%", st.BestAccuracy*100),
			fmt.Sprintf("%.1f%%", st.LastAccuracy*100),
			done,
			stats.Sparkline(results[i].accuracies),
		}
	}
	return stats.FormatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true})
}

func summarize(states []session.StepState, attempts []model.AttemptRecord) (completed int, avg, best float64) {
	for _, st := range states {
		if st.Phase == session.PhaseCompleted {
			completed++
		}
	}
	for _, a := range attempts {
		avg += a.Accuracy
		if a.Accuracy > best {
			best = a.Accuracy
		}
	}
	if len(attempts) > 0 {
		avg /= float64(len(attempts))
	}
	return completed, avg, best
}

func sessionRecord(lsn lesson.Lesson, states []session.StepState, attempts []model.AttemptRecord, startedAt, endedAt time.Time) (model.SessionRecord, []model.StepResult) {
	steps := make([]model.StepResult, len(states))
	completed := 0
	totalAttempts := 0
	for i, st := range states {
		steps[i] = model.StepResult{
			StepIndex:    i,
			StepName:     lsn.Steps[i].Name,
			ShapeKind:    string(lsn.Steps[i].Shape.Kind()),
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
	var avg, best float64
	for _, a := range attempts {
		avg += a.Accuracy
		if a.Accuracy > best {
			best = a.Accuracy
		}
	}
	if len(attempts) > 0 {
		avg /= float64(len(attempts))
	}
	rec := model.SessionRecord{
		ID:             uuid.NewString(),
		Lesson:         lsn.Slug,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		StepsCompleted: completed,
		StepsTotal:     len(states),
		Attempts:       totalAttempts,
		AvgAccuracy:    avg,
		BestAccuracy:   best,
		DurationMs:     endedAt.Sub(startedAt).Milliseconds(),
	}
	return rec, steps
}

// fakeClock stands in for the wall clock during recording replay so grace
// windows elapse deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// reorderWeakFirst moves steps whose shape kind ranks weak to the front,
// keeping the relative order within both groups.
func reorderWeakFirst(l lesson.Lesson, weak map[string]struct{}) lesson.Lesson {
	if len(weak) == 0 {
		return l
	}
	front := make([]lesson.Step, 0, len(l.Steps))
	var rest []lesson.Step
	for _, step := range l.Steps {
		if _, ok := weak[string(step.Shape.Kind())]; ok {
			front = append(front, step)
		} else {
			rest = append(rest, step)
		}
	}
	l.Steps = append(front, rest...)
	return l
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

func newSynthesizer(seed int64) *synth.Synth {
	if seed != 0 {
		return synth.NewSeeded(seed)
	}
	return synth.New()
}

func synthParams(noise, rate float64) synth.Params {
	p := synth.DefaultParams()
	p.Noise = noise
	p.Rate = rate
	return p
}

func splitKinds(input string) []string {
	parts := strings.Split(input, ",")
	kinds := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		kinds = append(kinds, part)
	}
	return kinds
}

func engineConfig(fileCfg config.FileConfig) engine.Config {
	cfg := engine.DefaultConfig()
	if v := fileCfg.Engine.SampleCount; v != nil {
		cfg.SampleCount = *v
	}
	if v := fileCfg.Engine.MinSamples; v != nil {
		cfg.MinSamples = *v
	}
	if v := fileCfg.Engine.LiveIntervalMs; v != nil {
		cfg.LiveInterval = time.Duration(*v) * time.Millisecond
	}
	if v := fileCfg.Engine.CacheSize; v != nil {
		cfg.CacheSize = *v
	}
	if v := fileCfg.Scoring.Tolerance; v != nil {
		cfg.Tolerance = *v
	}
	if v := fileCfg.Scoring.PathWeight; v != nil {
		cfg.Weights.Path = *v
	}
	if v := fileCfg.Scoring.TemporalWeight; v != nil {
		cfg.Weights.Temporal = *v
	}
	if v := fileCfg.Scoring.VelocityWeight; v != nil {
		cfg.Weights.Velocity = *v
	}
	if v := fileCfg.Scoring.PressureWeight; v != nil {
		cfg.Weights.Pressure = *v
	}
	return cfg
}

func sessionConfig(fileCfg config.FileConfig) session.Config {
	cfg := session.DefaultConfig()
	if v := fileCfg.Scoring.Threshold; v != nil {
		cfg.Threshold = *v
	}
	if v := fileCfg.Scoring.CompletionBar; v != nil {
		cfg.CompletionBar = *v
	}
	if v := fileCfg.Scoring.GraceMs; v != nil {
		cfg.Grace = time.Duration(*v) * time.Millisecond
	}
	return cfg
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	engCfg := engine.DefaultConfig()
	sessCfg := session.DefaultConfig()
	params := synth.DefaultParams()
	return fmt.Sprintf(`# sketchtrace configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# lesson = %q        # Lesson slug, user lesson, or TOML path
# recording = ""          # Replay a recording instead of the synthesizer
# seed = 0                # Synthesizer seed (0 seeds from the clock)
# noise = %.1f             # Wobble amplitude in world units
# rate = %.1f            # Samples per second

[engine]
# sample-count = %d       # Points per resampled path
# min-samples = %d         # Samples required before scoring
# live-interval-ms = %d   # Throttle for live analysis
# cache-size = %d         # Sampled-guide cache entries

[scoring]
# tolerance = %.2f        # Fallback alignment tolerance
# path-weight = %.1f       # Composite weight: path accuracy
# temporal-weight = %.1f   # Composite weight: temporal accuracy
# velocity-weight = %.1f   # Composite weight: velocity consistency
# pressure-weight = %.1f   # Composite weight: pressure stability
# threshold = %.2f        # Initial correctness bar
# completion-bar = %.2f   # Accuracy that starts a step completing
# grace-ms = %d         # Completion grace window
`,
		defaultLesson,
		params.Noise,
		params.Rate,
		engCfg.SampleCount,
		engCfg.MinSamples,
		engCfg.LiveInterval.Milliseconds(),
		engCfg.CacheSize,
		engCfg.Tolerance,
		engCfg.Weights.Path,
		engCfg.Weights.Temporal,
		engCfg.Weights.Velocity,
		engCfg.Weights.Pressure,
		sessCfg.Threshold,
		sessCfg.CompletionBar,
		sessCfg.Grace.Milliseconds(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Noise < 0 {
		return fmt.Errorf("--noise must be >= 0")
	}
	if cfg.Rate <= 0 {
		return fmt.Errorf("--rate must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
