package server

import (
	"encoding/json"

	"github.com/zucenko/mazerace/model"
)

// Maze is one fixture maze with the points its canned answers were
// recorded for.
type Maze struct {
	Name   string
	Grid   [][]int
	Points map[model.Role]model.Cell
}

// Fixtures are the canned documents the offline backend replays.
type Fixtures struct {
	Mazes []Maze
	// Solves is keyed by maze name and algorithm key, see solveKey.
	Solves map[string]json.RawMessage
	Races  map[string]json.RawMessage
}

// FixtureServer answers backend calls from Fixtures. All lookups go through
// Loop so the maze rotation needs no lock.
type FixtureServer struct {
	Fixtures *Fixtures
	Requests chan FixtureRequest
	next     int
}

type RequestKind int

const (
	REQ_GENERATE RequestKind = iota + 1
	REQ_GENERATE_SYMMETRIC
	REQ_SOLVE
	REQ_RACE
)

type FixtureRequest struct {
	Kind   RequestKind
	Algo   string
	Rows   int
	Cols   int
	Grid   [][]int
	Points map[model.Role]model.Cell
	Answer chan FixtureAnswer
}

type FixtureAnswer struct {
	ResponseCode ResponseCode
	Body         []byte
}
