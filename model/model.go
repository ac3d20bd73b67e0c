package model

import "fmt"

type CellState uint8

const (
	Free CellState = 0
	Wall CellState = 1
)

// Cell addresses one grid square. Coordinates are always row first.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("[%d,%d]", c.Row, c.Col)
}

// Role names one of the special points a board can carry.
type Role int

const (
	Start1 Role = iota + 1
	Start2
	Goal
)

// Start is the single-run alias for the first start point.
const Start = Start1

func (r Role) Name() string {
	switch r {
	case Start1:
		return "Start1"
	case Start2:
		return "Start2"
	case Goal:
		return "Goal"
	default:
		return fmt.Sprintf("N/A(%d)", r)
	}
}

// Grid is a fixed-size row-major matrix of cell states whose outer ring is
// always Wall.
type Grid struct {
	Rows, Cols int
	cells      []CellState
}

type Board struct {
	Grid   *Grid
	coins  map[Cell]struct{}
	points map[Role]Cell
}
