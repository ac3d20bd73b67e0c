package editor

import (
	"math"

	"github.com/zucenko/mazerace/model"
)

// Viewport describes where the grid surface sits on screen. Display sizes
// are what the pointer sees, logical sizes are the drawing surface's own
// pixels. They differ whenever the surface is stretched.
type Viewport struct {
	Left, Top          float64
	DisplayW, DisplayH float64
	LogicalW, LogicalH int
	CellSize           int
}

func (v Viewport) scale() (sx, sy float64) {
	sx, sy = 1, 1
	if v.DisplayW > 0 && v.LogicalW > 0 {
		sx = float64(v.LogicalW) / v.DisplayW
	}
	if v.DisplayH > 0 && v.LogicalH > 0 {
		sy = float64(v.LogicalH) / v.DisplayH
	}
	return
}

// CellAt maps a pointer position to a grid cell. The second result is false
// when the position falls outside a rows x cols grid.
func (v Viewport) CellAt(x, y float64, rows, cols int) (model.Cell, bool) {
	if v.CellSize <= 0 {
		return model.Cell{}, false
	}
	sx, sy := v.scale()
	size := float64(v.CellSize)
	c := int(math.Floor((x - v.Left) * sx / size))
	r := int(math.Floor((y - v.Top) * sy / size))
	if r < 0 || r >= rows || c < 0 || c >= cols {
		return model.Cell{}, false
	}
	return model.Cell{Row: r, Col: c}, true
}

// CellCenter is the on-screen position of the middle of c.
func (v Viewport) CellCenter(c model.Cell) (x, y float64) {
	sx, sy := v.scale()
	size := float64(v.CellSize)
	x = v.Left + (float64(c.Col)+0.5)*size/sx
	y = v.Top + (float64(c.Row)+0.5)*size/sy
	return
}
