// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/lmeritt/sketchtrace/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes completion rate, strokes per minute, and mean
// accuracy for a session.
func SessionMetrics(s model.SessionAggregate) (completion, strokesPerMin, accuracy float64) {
	if s.StepsTotal > 0 {
		completion = float64(s.StepsCompleted) / float64(s.StepsTotal)
	}
	if s.DurationMs > 0 {
		minutes := float64(s.DurationMs) / 60000.0
		strokesPerMin = float64(s.Attempts) / minutes
	}
	accuracy = s.AvgAccuracy
	return completion, strokesPerMin, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary table for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalCompletion, totalSPM, totalAcc float64
	bestAcc := 0.0
	var totalMs int64
	for _, s := range sessions {
		completion, spm, acc := SessionMetrics(s)
		totalCompletion += completion
		totalSPM += spm
		totalAcc += acc
		if s.BestAccuracy > bestAcc {
			bestAcc = s.BestAccuracy
		}
		totalMs += s.DurationMs
	}
	count := float64(len(sessions))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", len(sessions)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Accuracy: %.2f%%\n", (totalAcc/count)*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best Accuracy: %.2f%%\n", bestAcc*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Completion: %.2f%%\n", (totalCompletion/count)*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Strokes/min: %.2f\n", totalSPM/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Practice Time: %.1f min\n", float64(totalMs)/60000.0); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCurves prints learning curves for accuracy and completion.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, 10, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	completions := make([]float64, len(sessions))
	for i, s := range sessions {
		completion, _, acc := SessionMetrics(s)
		accs[i] = acc * 100
		completions[i] = completion * 100
	}
	accs = MovingAverage(accs, window)
	completions = MovingAverage(completions, window)

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Accuracy", Values: accs},
		{Name: "Completion", Values: completions},
	}, width, height, useColor)
}

// RenderShapeTable prints per-shape aggregates, weakest shapes first.
func RenderShapeTable(w io.Writer, aggs []model.ShapeAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No shape stats found.")
		return err
	}
	type row struct {
		kind     string
		acc      float64
		correct  float64
		best     float64
		attempts int
	}
	rows := make([]row, 0, len(aggs))
	for _, agg := range aggs {
		correctRate := 0.0
		if agg.Attempts > 0 {
			correctRate = float64(agg.Correct) / float64(agg.Attempts)
		}
		rows = append(rows, row{
			kind:     agg.ShapeKind,
			acc:      agg.AvgAccuracy,
			correct:  correctRate,
			best:     agg.BestAccuracy,
			attempts: agg.Attempts,
		})
	}
	// Sort by lowest accuracy.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].acc == rows[j].acc {
			return rows[i].kind < rows[j].kind
		}
		return rows[i].acc < rows[j].acc
	})

	if _, err := fmt.Fprintln(w, "Per-Shape (Windowed)"); err != nil {
		return err
	}

	headers := []string{"Shape", "Avg Accuracy", "Correct", "Best", "Attempts"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.kind,
			fmt.Sprintf("%.2f%%", r.acc*100),
			fmt.Sprintf("%.2f%%", r.correct*100),
			fmt.Sprintf("%.2f%%", r.best*100),
			fmt.Sprintf("%d", r.attempts),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	lines := FormatTable(headers, tableRows, rightAlign)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderShapeCurves prints per-shape learning curves.
func RenderShapeCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.ShapeAggregate, kinds []string, window int) error {
	return RenderShapeCurvesWithSize(w, sessions, perSession, kinds, window, 0, 10, false)
}

// RenderShapeCurvesWithSize prints per-shape learning curves sized to a given total width.
func RenderShapeCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.ShapeAggregate, kinds []string, window, totalWidth, height int, useColor bool) error {
	if len(kinds) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Shape Curves"); err != nil {
		return err
	}
	for _, kind := range kinds {
		accSeries := make([]float64, len(sessions))
		correctSeries := make([]float64, len(sessions))
		for i, s := range sessions {
			if data, ok := perSession[s.SessionID]; ok {
				if agg, ok := data[kind]; ok {
					accSeries[i] = agg.AvgAccuracy * 100
					if agg.Attempts > 0 {
						correctSeries[i] = float64(agg.Correct) / float64(agg.Attempts) * 100
					}
				}
			}
		}
		accSeries = MovingAverage(accSeries, window)
		correctSeries = MovingAverage(correctSeries, window)
		width := 0
		if totalWidth > 0 {
			width = PlotWidthFor(totalWidth)
		}
		if err := PlotSeriesWithColor(w, fmt.Sprintf("Shape %s", kind), []Series{
			{Name: "Accuracy", Values: accSeries},
			{Name: "Correct", Values: correctSeries},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}
