package render

import (
	"image/color"

	"github.com/zucenko/mazerace/model"
)

// Canvas is the drawing surface the pipeline paints on. Colors may carry
// alpha; implementations blend them over what is already drawn.
type Canvas interface {
	Clear(bg color.Color)
	Line(x1, y1, x2, y2 float64, clr color.Color)
	Rect(x, y, w, h float64, clr color.Color)
	// Disc draws a filled circle; glow > 0 adds a soft halo of that radius.
	Disc(cx, cy, r float64, clr color.Color, glow float64)
}

// HexToNRGBA turns 0xRRGGBB plus an alpha in [0,1] into a color.
func HexToNRGBA(u uint32, alpha float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(0xff & (u >> 16)),
		G: uint8(0xff & (u >> 8)),
		B: uint8(0xff & u),
		A: uint8(alpha*255 + 0.5),
	}
}

var (
	ColorBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ColorGridLine   = HexToNRGBA(0xdddddd, 1)
	ColorWall       = HexToNRGBA(0x333333, 1)
	ColorCoin       = HexToNRGBA(0xffd700, 1)
	ColorStart1     = HexToNRGBA(0x4caf50, 0.7)
	ColorStart2     = HexToNRGBA(0x2196f3, 0.7)
	ColorGoal       = HexToNRGBA(0xe53935, 0.7)
	ColorVisited    = HexToNRGBA(0xffa500, 0.2)

	// AgentColors are the race overlay colors for agent 1 and agent 2.
	AgentColors = [2]color.NRGBA{HexToNRGBA(0x4caf50, 0.5), HexToNRGBA(0x2196f3, 0.5)}
)

// Overlay is a set of cells painted translucently on top of the maze.
type Overlay struct {
	Cells []model.Cell
	Color color.Color
	// Inset shrinks each square by this many pixels per side.
	Inset float64
}

// Frame is everything one redraw needs. It holds no state between calls.
type Frame struct {
	Board    *model.Board
	CellSize float64
	// Glow scales the coin halo; 1 is the resting size.
	Glow     float64
	Overlays []Overlay
}

var pointColors = map[model.Role]color.Color{
	model.Start1: ColorStart1,
	model.Start2: ColorStart2,
	model.Goal:   ColorGoal,
}

// Render clears c and redraws f. Layers always go grid lines, walls,
// coins, start/goal, then overlays in slice order.
func Render(c Canvas, f Frame) {
	c.Clear(ColorBackground)
	if f.Board == nil || f.CellSize <= 0 {
		return
	}
	g := f.Board.Grid
	size := f.CellSize
	width, height := float64(g.Cols)*size, float64(g.Rows)*size

	for r := 0; r <= g.Rows; r++ {
		y := float64(r) * size
		c.Line(0, y, width, y, ColorGridLine)
	}
	for col := 0; col <= g.Cols; col++ {
		x := float64(col) * size
		c.Line(x, 0, x, height, ColorGridLine)
	}

	for _, w := range g.Walls() {
		c.Rect(float64(w.Col)*size, float64(w.Row)*size, size, size, ColorWall)
	}

	glow := f.Glow
	if glow <= 0 {
		glow = 1
	}
	for _, coin := range f.Board.Coins() {
		cx, cy := (float64(coin.Col)+0.5)*size, (float64(coin.Row)+0.5)*size
		c.Disc(cx, cy, size/3, ColorCoin, size/2*glow)
	}

	for _, role := range []model.Role{model.Start1, model.Start2, model.Goal} {
		if p, ok := f.Board.Point(role); ok {
			c.Rect(float64(p.Col)*size, float64(p.Row)*size, size, size, pointColors[role])
		}
	}

	for _, o := range f.Overlays {
		side := size - 2*o.Inset
		if side <= 0 {
			continue
		}
		for _, cell := range o.Cells {
			c.Rect(float64(cell.Col)*size+o.Inset, float64(cell.Row)*size+o.Inset, side, side, o.Color)
		}
	}
}
