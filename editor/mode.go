package editor

import (
	"fmt"

	"github.com/zucenko/mazerace/model"
)

type Mode int

const (
	Idle Mode = iota + 1
	EditWalls
	PlaceCoins
	SetStart1
	SetStart2
	SetGoal
	// SetPoints is the single-run two-click start then goal sequence.
	SetPoints
)

func (m Mode) Name() string {
	switch m {
	case Idle:
		return "IDLE"
	case EditWalls:
		return "EDIT_WALLS"
	case PlaceCoins:
		return "PLACE_COINS"
	case SetStart1:
		return "SET_START1"
	case SetStart2:
		return "SET_START2"
	case SetGoal:
		return "SET_GOAL"
	case SetPoints:
		return "SET_POINTS"
	default:
		return fmt.Sprintf("N/A(%d)", m)
	}
}

// Variant selects which page the editor serves.
type Variant int

const (
	Single Variant = iota + 1
	Race
)

func (v Variant) Name() string {
	switch v {
	case Single:
		return "single"
	case Race:
		return "race"
	default:
		return fmt.Sprintf("N/A(%d)", v)
	}
}

// Supports reports whether the variant exposes m.
func (v Variant) Supports(m Mode) bool {
	switch m {
	case Idle, EditWalls, PlaceCoins:
		return true
	case SetPoints:
		return v == Single
	case SetStart1, SetStart2, SetGoal:
		return v == Race
	}
	return false
}

const StatusReady = "Ready"

// Result tells the caller what a click did. Status is empty when the click
// has nothing to announce.
type Result struct {
	Changed bool
	Status  string
}

// Controller is the exclusive edit-mode machine. Exactly one mode is
// current at any time, Idle included.
type Controller struct {
	variant Variant
	mode    Mode
	board   *model.Board
}

func NewController(v Variant, b *model.Board) *Controller {
	return &Controller{variant: v, mode: Idle, board: b}
}

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) Variant() Variant { return c.variant }

// SetBoard points the controller at a replacement board and drops back to
// Idle.
func (c *Controller) SetBoard(b *model.Board) {
	c.board = b
	c.mode = Idle
}

// SetMode makes m the only active mode and returns the status line that
// describes it. Modes the variant does not offer fall back to Idle.
func (c *Controller) SetMode(m Mode) string {
	if !c.variant.Supports(m) {
		m = Idle
	}
	if m == SetPoints && c.mode != SetPoints {
		_, hasStart := c.board.Point(model.Start)
		_, hasGoal := c.board.Point(model.Goal)
		if hasStart && hasGoal {
			// both placed: start a fresh pick
			c.board.ClearPoint(model.Start)
			c.board.ClearPoint(model.Goal)
		}
	}
	c.mode = m
	return c.describe()
}

// Toggle switches m off when it is already active, otherwise it behaves
// like SetMode.
func (c *Controller) Toggle(m Mode) string {
	if c.mode == m {
		return c.SetMode(Idle)
	}
	return c.SetMode(m)
}

func (c *Controller) describe() string {
	switch c.mode {
	case EditWalls:
		return "Click to add/remove walls"
	case PlaceCoins:
		return "Click to place/remove coins"
	case SetStart1:
		return "Click to set Agent 1 start point"
	case SetStart2:
		return "Click to set Agent 2 start point"
	case SetGoal:
		return "Click to set goal point"
	case SetPoints:
		if _, hasStart := c.board.Point(model.Start); !hasStart {
			return "Click to set start point"
		}
		return "Click to set goal point"
	default:
		return StatusReady
	}
}

// HandleClick applies the current mode to cell.
func (c *Controller) HandleClick(cell model.Cell) Result {
	b := c.board
	if !b.Grid.InBounds(cell) {
		return Result{}
	}
	switch c.mode {
	case EditWalls:
		return Result{Changed: b.ToggleWall(cell)}
	case PlaceCoins:
		return Result{Changed: b.ToggleCoin(cell)}
	case SetStart1:
		return c.assign(model.Start1, cell, "Start point 1 set")
	case SetStart2:
		return c.assign(model.Start2, cell, "Start point 2 set")
	case SetGoal:
		return c.assign(model.Goal, cell, "Goal point set")
	case SetPoints:
		if _, hasStart := b.Point(model.Start); !hasStart {
			if !b.SetPoint(model.Start, cell) {
				return Result{}
			}
			return Result{Changed: true, Status: "Click to set goal point"}
		}
		return c.assign(model.Goal, cell, StatusReady)
	}
	return Result{}
}

// assign sets a role and ends the one-shot mode on success.
func (c *Controller) assign(role model.Role, cell model.Cell, status string) Result {
	if !c.board.SetPoint(role, cell) {
		return Result{}
	}
	c.mode = Idle
	return Result{Changed: true, Status: status}
}
