package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// MarshalJSON encodes a cell as [row, col].
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	var v []float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cell: %w", err)
	}
	if len(v) < 2 {
		return fmt.Errorf("cell: want [row, col], got %d values", len(v))
	}
	r, err := integral(v[0])
	if err != nil {
		return err
	}
	col, err := integral(v[1])
	if err != nil {
		return err
	}
	c.Row, c.Col = r, col
	return nil
}

// Visited is one explored cell with the score the search gave it,
// encoded as [row, col, score].
type Visited struct {
	Cell  Cell
	Score float64
}

func (v Visited) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{float64(v.Cell.Row), float64(v.Cell.Col), v.Score})
}

func (v *Visited) UnmarshalJSON(b []byte) error {
	var raw []float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("visited: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("visited: want [row, col, score], got %d values", len(raw))
	}
	if err := v.Cell.UnmarshalJSON(b); err != nil {
		return err
	}
	v.Score = 0
	if len(raw) > 2 {
		v.Score = raw[2]
	}
	return nil
}

func integral(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coordinate %v is not an integer", f)
	}
	return int(f), nil
}

type GenerateRequest struct {
	Rows int `json:"rows,omitempty"`
	Cols int `json:"cols,omitempty"`
}

// GenerateResponse accepts both {rows, cols, grid} and a bare matrix.
type GenerateResponse struct {
	Rows int     `json:"rows"`
	Cols int     `json:"cols"`
	Grid [][]int `json:"grid"`
}

func (g *GenerateResponse) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '[' {
		var m [][]int
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return err
		}
		g.Grid = m
		g.Rows = len(m)
		g.Cols = 0
		if len(m) > 0 {
			g.Cols = len(m[0])
		}
		return nil
	}
	type plain GenerateResponse
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*g = GenerateResponse(p)
	return nil
}

type SolveRequest struct {
	Grid  [][]int `json:"grid"`
	Start Cell    `json:"start"`
	Goal  Cell    `json:"goal"`
	Coins []Cell  `json:"coins"`
}

type SolveResponse struct {
	Path           []Cell    `json:"path"`
	Visited        []Visited `json:"visited"`
	Length         int       `json:"length"`
	CoinsCollected int       `json:"coins_collected"`
	Cost           float64   `json:"cost"`
	Error          string    `json:"error,omitempty"`
}

type RaceRequest struct {
	Grid   [][]int `json:"grid"`
	Starts [2]Cell `json:"starts"`
	Goal   Cell    `json:"goal"`
	Coins  []Cell  `json:"coins"`
	Algo1  string  `json:"algo1"`
	Algo2  string  `json:"algo2"`
}

type AgentState struct {
	Path  []Cell `json:"path"`
	Steps int    `json:"steps,omitempty"`
}

type RaceStep struct {
	Agent1 *AgentState `json:"agent1,omitempty"`
	Agent2 *AgentState `json:"agent2,omitempty"`
}

type RaceResponse struct {
	States      []RaceStep `json:"states"`
	Winner      string     `json:"winner,omitempty"`
	Agent1Steps int        `json:"agent1_steps,omitempty"`
	Agent2Steps int        `json:"agent2_steps,omitempty"`
}
