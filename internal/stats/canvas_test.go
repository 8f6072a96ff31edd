package stats

import (
	"math/bits"
	"strings"
	"testing"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

func TestCanvasDotSetsBrailleCell(t *testing.T) {
	c := NewCanvas(2, 1, 1)
	c.Dot(0, 0, 0)
	lines := c.RenderLines(false)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	runes := []rune(lines[0])
	if len(runes) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(runes))
	}
	if runes[0] != brailleFromMask(0x01) {
		t.Fatalf("expected first braille dot set, got %q", runes[0])
	}
	if runes[1] != brailleFromMask(0) {
		t.Fatalf("expected empty second cell, got %q", runes[1])
	}
}

func TestCanvasLowerLayerWinsColor(t *testing.T) {
	c := NewCanvas(1, 1, 2)
	c.Dot(1, 0, 0)
	c.Dot(0, 1, 0)
	lines := c.RenderLines(true)
	if !strings.HasPrefix(lines[0], colorPalette[0].code) {
		t.Fatalf("expected layer 0 color prefix, got %q", lines[0])
	}
	if !strings.ContainsRune(lines[0], brailleFromMask(0x01|0x08)) {
		t.Fatalf("expected dots from both layers merged, got %q", lines[0])
	}
}

func TestCanvasSetWorldPreservesAspect(t *testing.T) {
	c := NewCanvas(10, 10, 1)
	c.SetWorld(geom.Rect{Min: geom.Point{X: 0, Y: 0}, Max: geom.Point{X: 100, Y: 50}})
	x0, y0 := c.Project(geom.Point{X: 0, Y: 0})
	x1, y1 := c.Project(geom.Point{X: 100, Y: 50})
	if x1-x0 != c.DotWidth()-1 {
		t.Fatalf("expected full dot width span, got %d", x1-x0)
	}
	dx := x1 - x0
	dy := y1 - y0
	if dy < dx/2-1 || dy > dx/2+1 {
		t.Fatalf("expected uniform scale, got dy=%d for dx=%d", dy, dx)
	}
	if y0 == 0 {
		t.Fatalf("expected the short axis centered, got y0=%d", y0)
	}
}

func TestCanvasPolylineDrawsProjectedPath(t *testing.T) {
	c := NewCanvas(8, 4, 1)
	c.SetWorld(geom.Rect{Max: geom.Point{X: 10, Y: 10}})
	c.Polyline(0, []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}})
	marked := 0
	for _, line := range c.RenderLines(false) {
		for _, r := range line {
			if r != brailleFromMask(0) {
				marked++
			}
		}
	}
	if marked < 4 {
		t.Fatalf("expected a drawn diagonal, got %d marked cells", marked)
	}
}

func TestCanvasMarkCrossIgnoresLineStyle(t *testing.T) {
	// Layer 2 uses the dotted style, but markers plot every dot.
	c := NewCanvas(4, 4, 3)
	c.MarkCross(2, geom.Point{X: 4, Y: 8})
	dots := 0
	for _, row := range c.layers[2] {
		for _, mask := range row {
			dots += bits.OnesCount8(mask)
		}
	}
	if dots != 5 {
		t.Fatalf("expected 5 cross dots, got %d", dots)
	}
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2, 1)
	c.Dot(0, -1, 0)
	c.Dot(0, 100, 100)
	c.Dot(5, 0, 0)
	for _, line := range c.RenderLines(false) {
		for _, r := range line {
			if r != brailleFromMask(0) {
				t.Fatalf("expected empty canvas, got %q", line)
			}
		}
	}
}
