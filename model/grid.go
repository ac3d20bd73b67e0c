package model

import (
	"errors"
	"fmt"
)

var ErrBadGrid = errors.New("invalid grid")

const minSide = 3

// NewGrid returns a grid of free cells enclosed by a wall ring.
func NewGrid(rows, cols int) *Grid {
	if rows < minSide {
		rows = minSide
	}
	if cols < minSide {
		cols = minSide
	}
	g := &Grid{Rows: rows, Cols: cols, cells: make([]CellState, rows*cols)}
	g.sealBorder()
	return g
}

// GridFromMatrix builds a grid from the wire encoding (0 free, 1 wall). The
// matrix must be rectangular and at least 3x3. Border cells are forced to
// Wall; the returned count reports how many had to be changed.
func GridFromMatrix(m [][]int) (*Grid, int, error) {
	if len(m) < minSide {
		return nil, 0, fmt.Errorf("%w: %d rows", ErrBadGrid, len(m))
	}
	cols := len(m[0])
	if cols < minSide {
		return nil, 0, fmt.Errorf("%w: %d cols", ErrBadGrid, cols)
	}
	g := &Grid{Rows: len(m), Cols: cols, cells: make([]CellState, len(m)*cols)}
	for r, line := range m {
		if len(line) != cols {
			return nil, 0, fmt.Errorf("%w: row %d has %d cols, want %d", ErrBadGrid, r, len(line), cols)
		}
		for c, v := range line {
			switch v {
			case 0:
			case 1:
				g.cells[r*cols+c] = Wall
			default:
				return nil, 0, fmt.Errorf("%w: value %d at [%d,%d]", ErrBadGrid, v, r, c)
			}
		}
	}
	return g, g.sealBorder(), nil
}

func (g *Grid) sealBorder() (fixed int) {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			cell := Cell{r, c}
			if g.IsBorder(cell) && g.cells[g.index(cell)] != Wall {
				g.cells[g.index(cell)] = Wall
				fixed++
			}
		}
	}
	return
}

func (g *Grid) index(c Cell) int { return c.Row*g.Cols + c.Col }

func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

func (g *Grid) IsBorder(c Cell) bool {
	return c.Row == 0 || c.Col == 0 || c.Row == g.Rows-1 || c.Col == g.Cols-1
}

// At returns Wall for anything outside the grid.
func (g *Grid) At(c Cell) CellState {
	if !g.InBounds(c) {
		return Wall
	}
	return g.cells[g.index(c)]
}

func (g *Grid) IsWall(c Cell) bool { return g.At(c) == Wall }

// Toggle flips an interior cell between Free and Wall. Border and
// out-of-bounds cells are left untouched and false is returned.
func (g *Grid) Toggle(c Cell) bool {
	if !g.InBounds(c) || g.IsBorder(c) {
		return false
	}
	i := g.index(c)
	if g.cells[i] == Wall {
		g.cells[i] = Free
	} else {
		g.cells[i] = Wall
	}
	return true
}

// Matrix encodes the grid for the backend.
func (g *Grid) Matrix() [][]int {
	m := make([][]int, g.Rows)
	for r := range m {
		m[r] = make([]int, g.Cols)
		for c := range m[r] {
			m[r][c] = int(g.cells[r*g.Cols+c])
		}
	}
	return m
}

// Walls lists wall cells in row-major order.
func (g *Grid) Walls() []Cell {
	walls := make([]Cell, 0)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if g.cells[r*g.Cols+c] == Wall {
				walls = append(walls, Cell{r, c})
			}
		}
	}
	return walls
}

func (g *Grid) Clone() *Grid {
	cells := make([]CellState, len(g.cells))
	copy(cells, g.cells)
	return &Grid{Rows: g.Rows, Cols: g.Cols, cells: cells}
}
