package stats

import (
	"math"
	"strings"

	"github.com/lmeritt/sketchtrace/internal/geom"
)

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const colorReset = "\x1b[0m"

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// Canvas is a multi-layer braille drawing surface. Every terminal cell holds
// a 2x4 dot grid, so a width x height canvas exposes 2*width x 4*height
// addressable dots. Layers draw independently and are merged at render time;
// when several layers mark the same cell, the lowest layer index picks the
// cell color. Layer i draws with lineStyles[i%len(lineStyles)].
type Canvas struct {
	width  int
	height int
	layers [][][]uint8

	world    geom.Rect
	scale    float64
	offX     float64
	offY     float64
	hasWorld bool
}

// NewCanvas creates a canvas of width x height cells with layerCount layers.
func NewCanvas(width, height, layerCount int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if layerCount < 1 {
		layerCount = 1
	}
	layers := make([][][]uint8, layerCount)
	for i := range layers {
		layers[i] = makeCells(height, width)
	}
	return &Canvas{width: width, height: height, layers: layers}
}

// DotWidth returns the canvas width in dots.
func (c *Canvas) DotWidth() int { return c.width * 2 }

// DotHeight returns the canvas height in dots.
func (c *Canvas) DotHeight() int { return c.height * 4 }

// SetWorld maps the given world rectangle onto the dot grid. The mapping
// preserves aspect ratio and centers the shorter axis. World coordinates are
// y-down, matching the terminal, so no vertical flip is applied.
func (c *Canvas) SetWorld(r geom.Rect) {
	w := r.Width()
	h := r.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	dw := float64(c.DotWidth() - 1)
	dh := float64(c.DotHeight() - 1)
	scale := dw / w
	if s := dh / h; s < scale {
		scale = s
	}
	c.world = r
	c.scale = scale
	c.offX = (dw - w*scale) / 2
	c.offY = (dh - h*scale) / 2
	c.hasWorld = true
}

// Project maps a world point to dot coordinates. Without a prior SetWorld
// call the point is rounded as-is.
func (c *Canvas) Project(p geom.Point) (int, int) {
	if !c.hasWorld {
		return int(math.Round(p.X)), int(math.Round(p.Y))
	}
	x := (p.X-c.world.Min.X)*c.scale + c.offX
	y := (p.Y-c.world.Min.Y)*c.scale + c.offY
	return int(math.Round(x)), int(math.Round(y))
}

// Dot marks a single dot in dot coordinates, ignoring the layer line style.
// Out-of-range coordinates are dropped.
func (c *Canvas) Dot(layer, x, y int) {
	if layer < 0 || layer >= len(c.layers) {
		return
	}
	setBrailleDot(c.layers[layer], x, y)
}

// Line draws a dot-coordinate segment through the layer's line style.
func (c *Canvas) Line(layer, x0, y0, x1, y1 int) {
	if layer < 0 || layer >= len(c.layers) {
		return
	}
	style := lineStyles[layer%len(lineStyles)]
	cells := c.layers[layer]
	drawLine(x0, y0, x1, y1, func(x, y int) {
		if style.shouldPlot(x) {
			setBrailleDot(cells, x, y)
		}
	})
}

// Polyline projects world-space points and connects them in order. The
// layer's line style is applied along the path rather than per column, so
// dashes follow curved segments.
func (c *Canvas) Polyline(layer int, points []geom.Point) {
	if layer < 0 || layer >= len(c.layers) || len(points) == 0 {
		return
	}
	style := lineStyles[layer%len(lineStyles)]
	cells := c.layers[layer]
	step := 0
	plot := func(x, y int) {
		if style.shouldPlot(step) {
			setBrailleDot(cells, x, y)
		}
		step++
	}
	px, py := c.Project(points[0])
	if len(points) == 1 {
		plot(px, py)
		return
	}
	for _, p := range points[1:] {
		nx, ny := c.Project(p)
		drawLine(px, py, nx, ny, plot)
		px, py = nx, ny
	}
}

// MarkCross draws a small cross centered on a world point. Crosses skip the
// layer's line style so markers stay visible anywhere on the grid.
func (c *Canvas) MarkCross(layer int, p geom.Point) {
	x, y := c.Project(p)
	c.Dot(layer, x, y)
	c.Dot(layer, x-1, y)
	c.Dot(layer, x+1, y)
	c.Dot(layer, x, y-1)
	c.Dot(layer, x, y+1)
}

// RenderLines composites all layers and returns one string per cell row.
// With useColor set, each marked cell is wrapped in the ANSI color of the
// lowest layer that drew it.
func (c *Canvas) RenderLines(useColor bool) []string {
	lines := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		var row strings.Builder
		for x := 0; x < c.width; x++ {
			mask, colorIdx := composeCell(c.layers, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				color := colorPalette[colorIdx%len(colorPalette)].code
				row.WriteString(color)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		lines[y] = row.String()
	}
	return lines
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range layers {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cellMask
	}
	return mask, colorIdx
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY < 0 || cellY >= len(cells) {
		return
	}
	if cellX < 0 || cellX >= len(cells[cellY]) {
		return
	}
	dotMask := brailleDotMask(x%2, y%4)
	cells[cellY][cellX] |= dotMask
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
