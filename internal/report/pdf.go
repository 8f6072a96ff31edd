// Package report renders practice runs as PDF files: a cover with the
// lesson totals, then one page per step showing the guide, the drawn
// stroke, the drift markers, and the component scores.
package report

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/lmeritt/sketchtrace/internal/geom"
	"github.com/lmeritt/sketchtrace/internal/score"
)

// Drawing box for the step pages, in mm on an A4 portrait page.
const (
	boxX = 20.0
	boxY = 45.0
	boxW = 170.0
	boxH = 150.0
	// boxPad keeps strokes off the box border.
	boxPad = 6.0
)

// Summary is the report cover: lesson-level outcome totals.
type Summary struct {
	Lesson         string
	StepsCompleted int
	StepsTotal     int
	Attempts       int
	AvgAccuracy    float64
	BestAccuracy   float64
}

// Page is one lesson step: the guide and stroke paths plus the feedback of
// the step's final scored attempt.
type Page struct {
	Title    string
	Kind     string
	Guide    []geom.Point
	Stroke   []geom.Point
	Feedback score.Feedback
	Attempts int
}

// Write renders the report to path.
func Write(path string, sum Summary, pages []Page) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("sketchtrace report", false)
	writeCover(pdf, sum)
	for _, page := range pages {
		writePage(pdf, page)
	}
	return pdf.OutputFileAndClose(path)
}

func writeCover(pdf *gofpdf.Fpdf, sum Summary) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 14, "Practice Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 9, fmt.Sprintf("Lesson: %s", sum.Lesson), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 9, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(40, 40, 40)
	rows := [][2]string{
		{"Steps completed", fmt.Sprintf("%d of %d", sum.StepsCompleted, sum.StepsTotal)},
		{"Strokes scored", fmt.Sprintf("%d", sum.Attempts)},
		{"Average accuracy", fmt.Sprintf("%.1f%%", sum.AvgAccuracy*100)},
		{"Best accuracy", fmt.Sprintf("%.1f%%", sum.BestAccuracy*100)},
	}
	for _, row := range rows {
		pdf.CellFormat(70, 8, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}
}

func writePage(pdf *gofpdf.Fpdf, page Page) {
	pdf.AddPage()
	writeHeader(pdf, page)
	drawBox(pdf, page)
	writeMetrics(pdf, page)
}

func writeHeader(pdf *gofpdf.Fpdf, page Page) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s (%s)", page.Title, page.Kind), "", 1, "L", false, 0, "")

	verdict := "needs work"
	if page.Feedback.Correct {
		verdict = "correct"
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(90, 90, 90)
	line := fmt.Sprintf("Accuracy %.1f%%  |  %s  |  %d attempts", page.Feedback.Accuracy*100, verdict, page.Attempts)
	pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
}

func drawBox(pdf *gofpdf.Fpdf, page Page) {
	pdf.SetDrawColor(220, 220, 220)
	pdf.SetLineWidth(0.2)
	pdf.Rect(boxX, boxY, boxW, boxH, "D")

	pr := newProjector(pageBounds(page), boxX+boxPad, boxY+boxPad, boxW-2*boxPad, boxH-2*boxPad)

	pdf.SetDrawColor(170, 170, 170)
	pdf.SetLineWidth(0.4)
	drawPath(pdf, pr, page.Guide)

	pdf.SetDrawColor(40, 40, 40)
	pdf.SetLineWidth(0.6)
	drawPath(pdf, pr, page.Stroke)

	pdf.SetDrawColor(200, 60, 60)
	pdf.SetLineWidth(0.4)
	for _, p := range page.Feedback.Corrections {
		x, y := pr.point(p)
		pdf.Circle(x, y, 1.6, "D")
	}
}

func writeMetrics(pdf *gofpdf.Fpdf, page Page) {
	pdf.SetY(boxY + boxH + 8)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 8, "Component scores", "", 1, "L", false, 0, "")

	m := page.Feedback.Metrics
	rows := []struct {
		label string
		value float64
	}{
		{"Path accuracy", m.PathAccuracy},
		{"Temporal accuracy", m.TemporalAccuracy},
		{"Velocity consistency", m.VelocityConsistency},
		{"Pressure stability", m.PressureStability},
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(60, 60, 60)
	for _, row := range rows {
		pdf.CellFormat(60, 6, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("%.1f%%", row.value*100), "", 1, "L", false, 0, "")
	}

	if len(page.Feedback.Suggestions) == 0 {
		return
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "I", 10)
	for _, s := range page.Feedback.Suggestions {
		pdf.CellFormat(0, 6, "- "+s, "", 1, "L", false, 0, "")
	}
}

// projector maps world coordinates into a page box, preserving aspect ratio
// and centering the shorter axis. World and page are both y-down, so no flip
// is needed.
type projector struct {
	world      geom.Rect
	scale      float64
	offX, offY float64
}

func newProjector(world geom.Rect, x, y, w, h float64) projector {
	ww := world.Width()
	wh := world.Height()
	if ww <= 0 {
		ww = 1
	}
	if wh <= 0 {
		wh = 1
	}
	scale := w / ww
	if s := h / wh; s < scale {
		scale = s
	}
	return projector{
		world: world,
		scale: scale,
		offX:  x + (w-ww*scale)/2,
		offY:  y + (h-wh*scale)/2,
	}
}

func (pr projector) point(p geom.Point) (float64, float64) {
	return pr.offX + (p.X-pr.world.Min.X)*pr.scale, pr.offY + (p.Y-pr.world.Min.Y)*pr.scale
}

func drawPath(pdf *gofpdf.Fpdf, pr projector, points []geom.Point) {
	for i := 1; i < len(points); i++ {
		x0, y0 := pr.point(points[i-1])
		x1, y1 := pr.point(points[i])
		pdf.Line(x0, y0, x1, y1)
	}
}

func pageBounds(page Page) geom.Rect {
	all := make([]geom.Point, 0, len(page.Guide)+len(page.Stroke)+len(page.Feedback.Corrections))
	all = append(all, page.Guide...)
	all = append(all, page.Stroke...)
	all = append(all, page.Feedback.Corrections...)
	return geom.BoundsOf(all)
}
