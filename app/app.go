package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/mazerace/anim"
	"github.com/zucenko/mazerace/editor"
	"github.com/zucenko/mazerace/gateway"
	"github.com/zucenko/mazerace/model"
	"github.com/zucenko/mazerace/render"
)

var ErrMissingPoints = errors.New("start and goal points are not set")

// Backend is the part of gateway.Client the controller talks to.
type Backend interface {
	Generate(ctx context.Context, id string, symmetric bool, rows, cols int) (gateway.Maze, error)
	Solve(ctx context.Context, id string, algo gateway.Algorithm, req model.SolveRequest) (gateway.Solution, error)
	Race(ctx context.Context, id string, req model.RaceRequest) (gateway.RaceResult, error)
}

type Button int

const (
	Generate Button = iota + 1
	Clear
	EditWalls
	PlaceCoins
	SetPoints
	SetStart1
	SetStart2
	SetGoal
	Run
	StartRace
	Reset
)

func (b Button) Name() string {
	switch b {
	case Generate:
		return "Generate Maze"
	case Clear:
		return "Clear"
	case EditWalls:
		return "Edit Walls"
	case PlaceCoins:
		return "Place Coins"
	case SetPoints:
		return "Set Start/Goal"
	case SetStart1:
		return "Set Start 1"
	case SetStart2:
		return "Set Start 2"
	case SetGoal:
		return "Set Goal"
	case Run:
		return "Run"
	case StartRace:
		return "Start Competition"
	case Reset:
		return "Reset"
	default:
		return fmt.Sprintf("N/A(%d)", b)
	}
}

// Buttons lists what the side panel offers for a variant, top to bottom.
func Buttons(v editor.Variant) []Button {
	if v == editor.Race {
		return []Button{Generate, Clear, EditWalls, PlaceCoins, SetStart1, SetStart2, SetGoal, StartRace, Reset}
	}
	return []Button{Generate, Clear, EditWalls, PlaceCoins, SetPoints, Run, Reset}
}

var buttonModes = map[Button]editor.Mode{
	EditWalls:  editor.EditWalls,
	PlaceCoins: editor.PlaceCoins,
	SetPoints:  editor.SetPoints,
	SetStart1:  editor.SetStart1,
	SetStart2:  editor.SetStart2,
	SetGoal:    editor.SetGoal,
}

// Mode is the editor mode a button toggles, if it is a mode button.
func (b Button) Mode() (editor.Mode, bool) {
	m, ok := buttonModes[b]
	return m, ok
}

type Options struct {
	Variant  editor.Variant
	Rows     int
	Cols     int
	CellSize int
	Tick     time.Duration
	Reveal   time.Duration
	Timeout  time.Duration
	Algo1    string
	Algo2    string
	// Clock drives the animations; nil means time.Now.
	Clock func() time.Time
}

// Controller owns the whole application state. Every method must be called
// from the same goroutine; backend answers wait in the inbox until Update.
type Controller struct {
	opts    Options
	backend Backend

	board  *model.Board
	editor *editor.Controller
	sched  *anim.FrameScheduler
	replay *anim.Replay
	race   *anim.Race
	algos  [2]gateway.Algorithm

	// shown is the algorithm whose run the replay displays
	shown   gateway.Algorithm
	summary string

	inbox   chan message
	pending string
	waiting requestKind

	status string
	banner string

	spawn    func(func())
	newToken func() string
	log      *log.Entry
}

func NewController(opts Options, backend Backend) *Controller {
	if opts.Rows < 3 {
		opts.Rows = 31
	}
	if opts.Cols < 3 {
		opts.Cols = 41
	}
	if opts.CellSize <= 0 {
		opts.CellSize = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	board := model.NewEmptyBoard(opts.Rows, opts.Cols)
	sched := anim.NewFrameSchedulerWithClock(opts.Clock)
	c := &Controller{
		opts:     opts,
		backend:  backend,
		board:    board,
		editor:   editor.NewController(opts.Variant, board),
		sched:    sched,
		replay:   anim.NewReplay(sched, opts.Reveal),
		race:     anim.NewRace(sched, opts.Tick),
		inbox:    make(chan message, 8),
		status:   editor.StatusReady,
		spawn:    func(f func()) { go f() },
		newToken: func() string { return uuid.New().String() },
		log:      log.WithField("component", "app"),
	}
	c.algos[0] = c.lookup(opts.Algo1, 0)
	c.algos[1] = c.lookup(opts.Algo2, 1)
	c.replay.OnDone = c.replayDone
	c.race.OnFrame = c.raceFrame
	return c
}

func (c *Controller) lookup(key string, fallback int) gateway.Algorithm {
	if a, ok := gateway.AlgorithmByKey(key); ok {
		return a
	}
	if key != "" {
		c.log.Warnf("unknown algorithm %q, using %s", key, gateway.Algorithms[fallback].Key)
	}
	return gateway.Algorithms[fallback]
}

func (c *Controller) Variant() editor.Variant { return c.opts.Variant }

func (c *Controller) Mode() editor.Mode { return c.editor.Mode() }

func (c *Controller) Board() *model.Board { return c.board }

func (c *Controller) Status() string { return c.status }

// Banner is the winner announcement, empty unless a race has a winner.
func (c *Controller) Banner() string { return c.banner }

func (c *Controller) Algorithm(slot int) gateway.Algorithm { return c.algos[slot&1] }

// Waiting reports whether a backend answer is still expected.
func (c *Controller) Waiting() bool { return c.pending != "" }

func (c *Controller) Animating() bool { return c.replay.Running() || c.race.Running() }

// Busy reports whether a race is being fetched or replayed.
func (c *Controller) Busy() bool {
	return c.race.Running() || c.awaiting(raceRequest)
}

func (c *Controller) awaiting(kind requestKind) bool {
	return c.pending != "" && c.waiting == kind
}

func (c *Controller) SelectAlgorithm(slot int, key string) error {
	a, ok := gateway.AlgorithmByKey(key)
	if !ok {
		return fmt.Errorf("unknown algorithm %q", key)
	}
	c.algos[slot&1] = a
	c.status = c.describeAlgorithm(slot & 1)
	return nil
}

// CycleAlgorithm moves slot to the next known algorithm.
func (c *Controller) CycleAlgorithm(slot int) gateway.Algorithm {
	slot &= 1
	next := 0
	for i, a := range gateway.Algorithms {
		if a.Key == c.algos[slot].Key {
			next = (i + 1) % len(gateway.Algorithms)
		}
	}
	c.algos[slot] = gateway.Algorithms[next]
	c.status = c.describeAlgorithm(slot)
	return c.algos[slot]
}

func (c *Controller) describeAlgorithm(slot int) string {
	if c.opts.Variant == editor.Race {
		return fmt.Sprintf("Agent %d algorithm: %s", slot+1, c.algos[slot].Label)
	}
	return "Algorithm: " + c.algos[slot].Label
}

// Press handles one side panel button.
func (c *Controller) Press(b Button) {
	if m, ok := buttonModes[b]; ok {
		c.status = c.editor.Toggle(m)
		return
	}
	switch b {
	case Generate:
		c.generate()
	case Clear:
		c.stopAll()
		c.board.Clear()
		c.editor.SetMode(editor.Idle)
		c.status = "Maze cleared"
	case Run:
		c.run()
	case StartRace:
		c.startRace()
	case Reset:
		c.stopAll()
		c.status = editor.StatusReady
	default:
		c.log.Warnf("button %s not handled", b.Name())
	}
}

// Click maps a pointer position through vp and applies the current mode.
func (c *Controller) Click(x, y float64, vp editor.Viewport) {
	cell, ok := vp.CellAt(x, y, c.board.Grid.Rows, c.board.Grid.Cols)
	if !ok {
		return
	}
	res := c.editor.HandleClick(cell)
	if !res.Changed {
		return
	}
	c.log.WithFields(log.Fields{"cell": cell, "mode": c.editor.Mode().Name()}).Debug("board edited")
	if !c.replay.Running() {
		// the shown run belongs to the old board
		c.replay.Reset()
		c.summary = ""
	}
	if c.awaiting(solveRequest) || c.awaiting(raceRequest) {
		// its request was built from the board before this edit
		c.log.WithField("request", c.waiting.Name()).Info("request dropped after edit")
		c.pending = ""
		c.waiting = 0
	}
	if res.Status != "" {
		c.status = res.Status
	}
}

// Update applies finished backend requests and fires due animation ticks.
// The host calls it once per frame.
func (c *Controller) Update() {
	for {
		select {
		case m := <-c.inbox:
			c.apply(m)
		default:
			c.sched.Advance()
			return
		}
	}
}

// stopAll cancels both animators and forgets any outstanding request.
func (c *Controller) stopAll() {
	c.replay.Reset()
	c.race.Reset()
	c.pending = ""
	c.waiting = 0
	c.summary = ""
	c.banner = ""
}

// Frame is what the renderer should draw right now.
func (c *Controller) Frame() render.Frame {
	f := render.Frame{Board: c.board, CellSize: float64(c.opts.CellSize), Glow: 1}
	if visited := c.replay.Visited(); len(visited) > 0 {
		f.Overlays = append(f.Overlays, render.Overlay{Cells: visited, Color: render.ColorVisited, Inset: 2})
	}
	if revealed := c.replay.Revealed(); len(revealed) > 0 {
		f.Overlays = append(f.Overlays, render.Overlay{Cells: revealed, Color: render.HexToNRGBA(c.shown.Color, 1), Inset: 4})
	}
	for i, p := range c.race.Frame().Paths {
		if len(p) > 0 {
			f.Overlays = append(f.Overlays, render.Overlay{Cells: p, Color: render.AgentColors[i]})
		}
	}
	return f
}

func (c *Controller) raceFrame(f anim.RaceFrame) {
	c.status = f.Status
	c.banner = f.Banner
}

func (c *Controller) replayDone(revealed int, elapsed time.Duration) {
	c.status = c.summary + fmt.Sprintf("Time: %.2fs", elapsed.Seconds())
	c.log.WithFields(log.Fields{"algorithm": c.shown.Key, "revealed": revealed}).Info("run shown")
}
