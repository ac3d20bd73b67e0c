package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/mazerace/editor"
	"github.com/zucenko/mazerace/gateway"
	"github.com/zucenko/mazerace/model"
)

type requestKind int

const (
	generateRequest requestKind = iota + 1
	solveRequest
	raceRequest
)

func (k requestKind) Name() string {
	switch k {
	case generateRequest:
		return "generate"
	case solveRequest:
		return "solve"
	case raceRequest:
		return "race"
	default:
		return fmt.Sprintf("N/A(%d)", k)
	}
}

// message carries one backend answer back to the control goroutine.
type message struct {
	token   string
	kind    requestKind
	algo    gateway.Algorithm
	maze    gateway.Maze
	sol     gateway.Solution
	race    gateway.RaceResult
	start   model.Cell
	goal    model.Cell
	started time.Time
	err     error
}

// dispatch runs call off the control goroutine. Only the newest request
// counts: its token replaces any earlier one.
func (c *Controller) dispatch(kind requestKind, call func(ctx context.Context, token string) message) {
	token := c.newToken()
	c.pending = token
	c.waiting = kind
	timeout := c.opts.Timeout
	c.log.WithFields(log.Fields{"request": kind.Name(), "token": token}).Debug("request sent")
	c.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		m := call(ctx, token)
		m.token = token
		m.kind = kind
		c.inbox <- m
	})
}

func (c *Controller) apply(m message) {
	entry := c.log.WithFields(log.Fields{"request": m.kind.Name(), "token": m.token})
	if m.token != c.pending {
		entry.Info("stale response dropped")
		return
	}
	c.pending = ""
	c.waiting = 0
	switch m.kind {
	case generateRequest:
		c.generated(m, entry)
	case solveRequest:
		c.solved(m, entry)
	case raceRequest:
		c.raced(m, entry)
	}
}

func (c *Controller) generate() {
	c.status = "Generating..."
	symmetric := c.opts.Variant == editor.Race
	rows, cols := c.opts.Rows, c.opts.Cols
	c.dispatch(generateRequest, func(ctx context.Context, token string) message {
		maze, err := c.backend.Generate(ctx, token, symmetric, rows, cols)
		return message{maze: maze, err: err}
	})
}

func (c *Controller) generated(m message, entry *log.Entry) {
	if m.err != nil || m.maze.Outcome != gateway.Found {
		entry.WithFields(log.Fields{"outcome": m.maze.Outcome.Name(), "reason": m.maze.Reason}).Warnf("generate failed: %v", m.err)
		c.status = "Error generating maze"
		return
	}
	c.stopAll()
	c.board.Replace(m.maze.Grid)
	c.editor.SetMode(editor.Idle)
	c.status = "Maze generated"
	entry.WithFields(log.Fields{"rows": m.maze.Grid.Rows, "cols": m.maze.Grid.Cols}).Info("maze installed")
}

func (c *Controller) run() {
	if c.awaiting(generateRequest) {
		c.status = "Generating..."
		return
	}
	pts, err := c.points(model.Start, model.Goal)
	if err != nil {
		c.log.Debug(err)
		c.status = "Please set start and goal points first"
		return
	}
	start, goal := pts[0], pts[1]
	algo := c.algos[0]
	c.replay.Reset()
	c.summary = ""
	c.status = "Running " + algo.Label + "..."
	req := model.SolveRequest{
		Grid:  c.board.Grid.Matrix(),
		Start: start,
		Goal:  goal,
		Coins: c.board.Coins(),
	}
	started := c.sched.Now()
	c.dispatch(solveRequest, func(ctx context.Context, token string) message {
		sol, err := c.backend.Solve(ctx, token, algo, req)
		return message{algo: algo, sol: sol, start: start, goal: goal, started: started, err: err}
	})
}

func (c *Controller) solved(m message, entry *log.Entry) {
	label := m.algo.Label
	switch {
	case m.err != nil:
		entry.Warnf("%s failed: %v", label, m.err)
		c.status = "Error running " + label
		return
	case m.sol.Outcome == gateway.NoSolution:
		entry.WithField("reason", m.sol.Reason).Info("no path")
		c.status = label + ": No path found"
		return
	case m.sol.Outcome != gateway.Found:
		entry.WithField("reason", m.sol.Reason).Warn("malformed solution")
		c.status = "Error running " + label
		return
	}
	c.shown = m.algo
	c.summary = fmt.Sprintf("%s - Path length: %d, Coins collected: %d, Total score: %s, ",
		label, m.sol.Length, m.sol.CoinsCollected, strconv.FormatFloat(m.sol.Cost, 'f', -1, 64))
	c.replay.Start(m.sol.Path, m.sol.Visited, m.start, m.goal, m.started)
}

func (c *Controller) startRace() {
	if c.awaiting(generateRequest) {
		c.status = "Generating..."
		return
	}
	pts, err := c.points(model.Start1, model.Start2, model.Goal)
	if err != nil {
		c.log.Debug(err)
		c.status = "Please set both start points and goal first!"
		return
	}
	goal := pts[2]
	if c.Busy() {
		c.status = "Competition already running!"
		return
	}
	c.race.Reset()
	c.banner = ""
	c.status = "Competition started..."
	req := model.RaceRequest{
		Grid:   c.board.Grid.Matrix(),
		Starts: [2]model.Cell{pts[0], pts[1]},
		Goal:   goal,
		Coins:  c.board.Coins(),
		Algo1:  c.algos[0].Key,
		Algo2:  c.algos[1].Key,
	}
	c.dispatch(raceRequest, func(ctx context.Context, token string) message {
		res, err := c.backend.Race(ctx, token, req)
		return message{race: res, goal: goal, err: err}
	})
}

func (c *Controller) raced(m message, entry *log.Entry) {
	switch {
	case m.err != nil:
		entry.Warnf("race failed: %v", m.err)
		c.status = "Error: " + m.err.Error()
		return
	case m.race.Outcome == gateway.NoSolution:
		c.status = "No valid paths found!"
		return
	case m.race.Outcome != gateway.Found:
		entry.WithField("reason", m.race.Reason).Warn("malformed race")
		c.status = "Error: malformed race response"
		return
	}
	if err := c.race.Start(m.race.Timeline, m.goal); err != nil {
		entry.Warnf("race not started: %v", err)
		c.status = "Error: " + err.Error()
	}
}

func (c *Controller) points(roles ...model.Role) ([]model.Cell, error) {
	out := make([]model.Cell, len(roles))
	for i, r := range roles {
		p, ok := c.board.Point(r)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingPoints, r.Name())
		}
		out[i] = p
	}
	return out, nil
}
