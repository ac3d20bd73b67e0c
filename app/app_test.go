package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/mazerace/anim"
	"github.com/zucenko/mazerace/editor"
	"github.com/zucenko/mazerace/gateway"
	"github.com/zucenko/mazerace/model"
	"github.com/zucenko/mazerace/render"
)

type fakeBackend struct {
	maze gateway.Maze
	sol  gateway.Solution
	race gateway.RaceResult
	err  error

	calls     []string
	ids       []string
	symmetric bool
	rows      int
	cols      int
	solveReq  model.SolveRequest
	raceReq   model.RaceRequest
}

func (f *fakeBackend) Generate(_ context.Context, id string, symmetric bool, rows, cols int) (gateway.Maze, error) {
	f.calls = append(f.calls, "generate")
	f.ids = append(f.ids, id)
	f.symmetric, f.rows, f.cols = symmetric, rows, cols
	return f.maze, f.err
}

func (f *fakeBackend) Solve(_ context.Context, id string, algo gateway.Algorithm, req model.SolveRequest) (gateway.Solution, error) {
	f.calls = append(f.calls, algo.Key)
	f.ids = append(f.ids, id)
	f.solveReq = req
	return f.sol, f.err
}

func (f *fakeBackend) Race(_ context.Context, id string, req model.RaceRequest) (gateway.RaceResult, error) {
	f.calls = append(f.calls, "race")
	f.ids = append(f.ids, id)
	f.raceReq = req
	return f.race, f.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fixture struct {
	c       *Controller
	backend *fakeBackend
	clk     *clock
	vp      editor.Viewport
	// queued holds deferred requests when the fixture runs them by hand
	queued []func()
}

func newFixture(t *testing.T, v editor.Variant, rows, cols int) *fixture {
	f := &fixture{
		backend: &fakeBackend{},
		clk:     &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.c = NewController(Options{
		Variant:  v,
		Rows:     rows,
		Cols:     cols,
		CellSize: 20,
		Tick:     100 * time.Millisecond,
		Reveal:   5 * time.Millisecond,
		Clock:    f.clk.now,
		Algo1:    "astar",
		Algo2:    "bfs",
	}, f.backend)
	f.c.spawn = func(fn func()) { fn() }
	n := 0
	f.c.newToken = func() string {
		n++
		return fmt.Sprintf("token-%d", n)
	}
	f.vp = editor.Viewport{
		DisplayW: float64(cols * 20), DisplayH: float64(rows * 20),
		LogicalW: cols * 20, LogicalH: rows * 20,
		CellSize: 20,
	}
	return f
}

func (f *fixture) deferRequests() {
	f.c.spawn = func(fn func()) { f.queued = append(f.queued, fn) }
}

func (f *fixture) click(r, c int) {
	x, y := f.vp.CellCenter(model.Cell{Row: r, Col: c})
	f.c.Click(x, y, f.vp)
}

func (f *fixture) tick(d time.Duration) {
	f.clk.t = f.clk.t.Add(d)
	f.c.Update()
}

func cell(r, c int) model.Cell { return model.Cell{Row: r, Col: c} }

func overlayWith(frame render.Frame, clr interface{}) []model.Cell {
	for _, o := range frame.Overlays {
		if o.Color == clr {
			return o.Cells
		}
	}
	return nil
}

func TestSingleRunRevealsInteriorAndReports(t *testing.T) {
	f := newFixture(t, editor.Single, 5, 5)
	f.backend.sol = gateway.Solution{
		Outcome: gateway.Found,
		Path:    []model.Cell{cell(1, 1), cell(1, 2), cell(1, 3)},
		Visited: []model.Visited{{Cell: cell(1, 1)}, {Cell: cell(1, 2), Score: 1}, {Cell: cell(1, 3), Score: 2}},
		Length:  3,
		Cost:    2,
	}

	f.c.Press(SetPoints)
	assert.Equal(t, "Click to set start point", f.c.Status())
	f.click(1, 1)
	f.click(1, 3)
	assert.Equal(t, editor.Idle, f.c.Mode())
	assert.Equal(t, "Ready", f.c.Status())

	f.c.Press(Run)
	assert.Equal(t, "Running A*...", f.c.Status())
	require.Equal(t, []string{"astar"}, f.backend.calls)
	assert.Equal(t, "token-1", f.backend.ids[0])
	assert.Equal(t, cell(1, 1), f.backend.solveReq.Start)
	assert.Equal(t, cell(1, 3), f.backend.solveReq.Goal)
	assert.Equal(t, model.NewGrid(5, 5).Matrix(), f.backend.solveReq.Grid)

	f.c.Update()
	assert.Equal(t, []model.Cell{cell(1, 2)}, overlayWith(f.c.Frame(), render.ColorVisited))
	astar := render.HexToNRGBA(0x2196f3, 1)
	assert.Empty(t, overlayWith(f.c.Frame(), astar), "nothing revealed before the first delay")

	f.tick(5 * time.Millisecond)
	assert.Equal(t, []model.Cell{cell(1, 2)}, overlayWith(f.c.Frame(), astar))
	assert.Contains(t, f.c.Status(), "Path length: 3")
	assert.Regexp(t, `^A\* - Path length: 3, Coins collected: 0, Total score: 2, Time: 0\.0\ds$`, f.c.Status())
}

func TestSingleRunNeedsPoints(t *testing.T) {
	f := newFixture(t, editor.Single, 5, 5)
	f.c.Press(Run)
	assert.Equal(t, "Please set start and goal points first", f.c.Status())
	assert.Empty(t, f.backend.calls)
}

func TestSingleRunFailures(t *testing.T) {
	f := newFixture(t, editor.Single, 5, 5)
	require.True(t, f.c.Board().SetPoint(model.Start, cell(1, 1)))
	require.True(t, f.c.Board().SetPoint(model.Goal, cell(3, 3)))
	require.NoError(t, f.c.SelectAlgorithm(0, "lrta"))
	assert.Equal(t, "Algorithm: LRTA*", f.c.Status())

	f.backend.err = fmt.Errorf("%w: refused", gateway.ErrTransport)
	f.c.Press(Run)
	f.c.Update()
	assert.Equal(t, "Error running LRTA*", f.c.Status())

	f.backend.err = nil
	f.backend.sol = gateway.Solution{Outcome: gateway.NoSolution, Reason: "Path too deep"}
	f.c.Press(Run)
	f.c.Update()
	assert.Equal(t, "LRTA*: No path found", f.c.Status())

	f.backend.sol = gateway.Solution{Outcome: gateway.Malformed}
	f.c.Press(Run)
	f.c.Update()
	assert.Equal(t, "Error running LRTA*", f.c.Status())
	assert.Empty(t, f.c.Frame().Overlays)
}

func raceFixture(t *testing.T) *fixture {
	f := newFixture(t, editor.Race, 7, 7)
	f.c.Press(SetStart1)
	assert.Equal(t, "Click to set Agent 1 start point", f.c.Status())
	f.click(1, 1)
	assert.Equal(t, "Start point 1 set", f.c.Status())
	f.c.Press(SetStart2)
	f.click(1, 5)
	f.c.Press(SetGoal)
	f.click(5, 3)
	assert.Equal(t, "Goal point set", f.c.Status())
	return f
}

func TestRaceWin(t *testing.T) {
	f := raceFixture(t)
	f.backend.race = gateway.RaceResult{Outcome: gateway.Found, Timeline: anim.Timeline{
		{Agent1: []model.Cell{cell(1, 1), cell(2, 1)}, Agent2: []model.Cell{cell(1, 5), cell(2, 5)}},
		{Agent1: []model.Cell{cell(1, 1), cell(2, 1), cell(5, 3)}, Agent2: []model.Cell{cell(1, 5), cell(2, 5), cell(3, 5)}},
	}}

	f.deferRequests()
	f.c.Press(StartRace)
	assert.Equal(t, "Competition started...", f.c.Status())
	assert.True(t, f.c.Busy())
	f.c.Press(StartRace)
	assert.Equal(t, "Competition already running!", f.c.Status())
	require.Len(t, f.queued, 1)
	f.queued[0]()

	f.c.Update()
	assert.Equal(t, "Time: 0.00s | Racing to goal...", f.c.Status())
	assert.Equal(t, []model.Cell{cell(1, 1), cell(2, 1)}, overlayWith(f.c.Frame(), render.AgentColors[0]))
	assert.Empty(t, f.c.Banner())

	f.tick(100 * time.Millisecond)
	assert.Equal(t, "Agent 1 wins! (0.10s)", f.c.Banner())
	assert.Equal(t, "Competition finished in 0.10s | Agent 1: Reached goal!", f.c.Status())
	assert.False(t, f.c.Busy())
	assert.Equal(t, 0, f.c.sched.Pending())

	req := f.backend.raceReq
	assert.Equal(t, [2]model.Cell{cell(1, 1), cell(1, 5)}, req.Starts)
	assert.Equal(t, cell(5, 3), req.Goal)
	assert.Equal(t, "astar", req.Algo1)
	assert.Equal(t, "bfs", req.Algo2)
}

func TestRaceNoSolutionStaysIdle(t *testing.T) {
	f := raceFixture(t)
	f.backend.race = gateway.RaceResult{Outcome: gateway.NoSolution}
	f.c.Press(StartRace)
	f.c.Update()
	assert.Equal(t, "No valid paths found!", f.c.Status())
	assert.Equal(t, anim.RaceIdle, f.c.race.State())
	assert.Equal(t, 0, f.c.sched.Pending())
	assert.False(t, f.c.Busy())
}

func TestRaceNeedsAllPoints(t *testing.T) {
	f := newFixture(t, editor.Race, 7, 7)
	f.c.Press(SetStart1)
	f.click(1, 1)
	f.c.Press(StartRace)
	assert.Equal(t, "Please set both start points and goal first!", f.c.Status())
	assert.Empty(t, f.backend.calls)
}

func TestRaceTransportError(t *testing.T) {
	f := raceFixture(t)
	f.backend.err = fmt.Errorf("%w: connection refused", gateway.ErrTransport)
	f.c.Press(StartRace)
	f.c.Update()
	assert.Equal(t, "Error: backend request failed: connection refused", f.c.Status())
	assert.False(t, f.c.Busy(), "a failed race can be retried")
}

func TestResetMidRace(t *testing.T) {
	f := raceFixture(t)
	steps := make(anim.Timeline, 10)
	for i := range steps {
		steps[i] = anim.Step{Agent1: []model.Cell{cell(1, 1)}, Agent2: []model.Cell{cell(1, 5)}}
	}
	f.backend.race = gateway.RaceResult{Outcome: gateway.Found, Timeline: steps}
	f.c.Press(StartRace)
	f.c.Update()
	f.tick(100 * time.Millisecond)
	require.Equal(t, anim.RaceRunning, f.c.race.State())

	f.c.Press(Reset)
	for i := 0; i < 5; i++ {
		f.tick(100 * time.Millisecond)
	}
	assert.Equal(t, anim.RaceIdle, f.c.race.State())
	assert.Equal(t, "Ready", f.c.Status())
	assert.Empty(t, f.c.Banner())
	assert.Empty(t, f.c.Frame().Overlays)
	assert.Equal(t, 0, f.c.sched.Pending())
}

func TestStaleResponseIsDropped(t *testing.T) {
	f := newFixture(t, editor.Single, 5, 5)
	require.True(t, f.c.Board().SetPoint(model.Start, cell(1, 1)))
	require.True(t, f.c.Board().SetPoint(model.Goal, cell(1, 3)))
	f.backend.sol = gateway.Solution{Outcome: gateway.Found, Path: []model.Cell{cell(1, 1), cell(1, 2), cell(1, 3)}, Length: 3}
	f.deferRequests()

	f.c.Press(Run)
	f.c.Press(Reset)
	require.Len(t, f.queued, 1)
	f.queued[0]()
	f.c.Update()
	assert.Equal(t, "Ready", f.c.Status())
	assert.Empty(t, f.c.Frame().Overlays)

	// a newer request supersedes an older one still in flight
	f.c.Press(Run)
	f.c.Press(Run)
	f.queued[1]()
	f.c.Update()
	assert.Equal(t, "Running A*...", f.c.Status())
	assert.Empty(t, f.c.Frame().Overlays)
	f.queued[2]()
	f.tick(5 * time.Millisecond)
	assert.NotEmpty(t, f.c.Frame().Overlays)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t, editor.Single, 5, 5)
	require.True(t, f.c.Board().ToggleCoin(cell(2, 2)))
	f.c.Press(EditWalls)

	maze := model.NewGrid(7, 9)
	maze.Toggle(cell(3, 3))
	f.backend.maze = gateway.Maze{Outcome: gateway.Found, Grid: maze}
	f.c.Press(Generate)
	assert.Equal(t, "Generating...", f.c.Status())
	f.c.Update()

	assert.Equal(t, "Maze generated", f.c.Status())
	assert.False(t, f.backend.symmetric)
	assert.Equal(t, 9, f.c.Board().Grid.Cols)
	assert.Empty(t, f.c.Board().Coins())
	assert.Equal(t, editor.Idle, f.c.Mode())

	f.backend.maze = gateway.Maze{Outcome: gateway.Malformed, Reason: "ragged"}
	f.c.Press(Generate)
	f.c.Update()
	assert.Equal(t, "Error generating maze", f.c.Status())
	assert.Equal(t, 9, f.c.Board().Grid.Cols, "failed generate keeps the old maze")
}

func TestGenerateRaceIsSymmetric(t *testing.T) {
	f := newFixture(t, editor.Race, 11, 13)
	f.backend.err = fmt.Errorf("%w: timeout", gateway.ErrTransport)
	f.c.Press(Generate)
	f.c.Update()
	assert.True(t, f.backend.symmetric)
	assert.Equal(t, 11, f.backend.rows)
	assert.Equal(t, 13, f.backend.cols)
	assert.Equal(t, "Error generating maze", f.c.Status())
}

func TestEditingThroughScaledViewport(t *testing.T) {
	f := newFixture(t, editor.Single, 5, 5)
	vp := editor.Viewport{Left: 10, Top: 10, DisplayW: 50, DisplayH: 200, LogicalW: 100, LogicalH: 100, CellSize: 20}

	f.c.Press(EditWalls)
	assert.Equal(t, "Click to add/remove walls", f.c.Status())
	x, y := vp.CellCenter(cell(2, 3))
	f.c.Click(x, y, vp)
	assert.True(t, f.c.Board().Grid.IsWall(cell(2, 3)))

	x, y = vp.CellCenter(cell(0, 2))
	f.c.Click(x, y, vp)
	assert.True(t, f.c.Board().Grid.IsWall(cell(0, 2)), "border stays walled")

	f.c.Click(0, 0, vp)
	f.c.Click(500, 500, vp)

	f.c.Press(PlaceCoins)
	x, y = vp.CellCenter(cell(2, 3))
	f.c.Click(x, y, vp)
	assert.Empty(t, f.c.Board().Coins(), "no coin on a wall")
	x, y = vp.CellCenter(cell(1, 1))
	f.c.Click(x, y, vp)
	assert.Equal(t, []model.Cell{cell(1, 1)}, f.c.Board().Coins())

	f.c.Press(PlaceCoins)
	assert.Equal(t, editor.Idle, f.c.Mode())
	assert.Equal(t, "Ready", f.c.Status())

	f.c.Press(Clear)
	assert.Equal(t, "Maze cleared", f.c.Status())
	assert.Empty(t, f.c.Board().Coins())
	assert.False(t, f.c.Board().Grid.IsWall(cell(2, 3)))
}

func TestAlgorithmSelection(t *testing.T) {
	f := newFixture(t, editor.Race, 7, 7)
	assert.Equal(t, "astar", f.c.Algorithm(0).Key)
	assert.Equal(t, "bfs", f.c.Algorithm(1).Key)

	assert.Equal(t, "lrta", f.c.CycleAlgorithm(1).Key)
	assert.Equal(t, "Agent 2 algorithm: LRTA*", f.c.Status())

	require.NoError(t, f.c.SelectAlgorithm(0, "bidirectional"))
	assert.Equal(t, "astar", f.c.CycleAlgorithm(0).Key, "cycling wraps around")
	assert.Error(t, f.c.SelectAlgorithm(0, "quantum"))
}

func TestButtonsPerVariant(t *testing.T) {
	assert.Contains(t, Buttons(editor.Single), Run)
	assert.NotContains(t, Buttons(editor.Single), StartRace)
	assert.Contains(t, Buttons(editor.Race), SetStart2)
	assert.NotContains(t, Buttons(editor.Race), SetPoints)
}

func TestButtonMode(t *testing.T) {
	m, ok := SetStart1.Mode()
	assert.True(t, ok)
	assert.Equal(t, editor.SetStart1, m)
	_, ok = Run.Mode()
	assert.False(t, ok)
}

func TestGenerateIsNotSupersededByRun(t *testing.T) {
	for _, tc := range []struct {
		variant editor.Variant
		button  Button
	}{
		{editor.Race, StartRace},
		{editor.Single, Run},
	} {
		t.Run(tc.variant.Name(), func(t *testing.T) {
			var f *fixture
			if tc.variant == editor.Race {
				f = raceFixture(t)
			} else {
				f = newFixture(t, editor.Single, 7, 7)
				require.True(t, f.c.Board().SetPoint(model.Start, cell(1, 1)))
				require.True(t, f.c.Board().SetPoint(model.Goal, cell(5, 5)))
			}
			maze := model.NewGrid(9, 11)
			f.backend.maze = gateway.Maze{Outcome: gateway.Found, Grid: maze}
			f.deferRequests()

			f.c.Press(Generate)
			f.c.Press(tc.button)
			assert.Equal(t, "Generating...", f.c.Status())
			require.Len(t, f.queued, 1, "no request built from the old grid")

			f.queued[0]()
			f.c.Update()
			assert.Equal(t, "Maze generated", f.c.Status())
			assert.Equal(t, 9, f.c.Board().Grid.Rows)
			assert.Equal(t, 11, f.c.Board().Grid.Cols)
			assert.False(t, f.c.Waiting())
		})
	}
}

func runningRace(t *testing.T) *fixture {
	f := raceFixture(t)
	steps := make(anim.Timeline, 10)
	for i := range steps {
		steps[i] = anim.Step{Agent1: []model.Cell{cell(1, 1)}, Agent2: []model.Cell{cell(1, 5)}}
	}
	f.backend.race = gateway.RaceResult{Outcome: gateway.Found, Timeline: steps}
	f.c.Press(StartRace)
	f.c.Update()
	f.tick(100 * time.Millisecond)
	require.Equal(t, anim.RaceRunning, f.c.race.State())
	require.Equal(t, 1, f.c.sched.Pending())
	return f
}

func TestClearMidRaceCancelsTicks(t *testing.T) {
	f := runningRace(t)
	f.c.Press(Clear)
	assert.Equal(t, 0, f.c.sched.Pending())

	for i := 0; i < 5; i++ {
		f.tick(100 * time.Millisecond)
	}
	assert.Equal(t, anim.RaceIdle, f.c.race.State())
	assert.Equal(t, "Maze cleared", f.c.Status())
	assert.Empty(t, f.c.Banner())
	assert.Empty(t, f.c.Frame().Overlays)
}

func TestGenerateMidRaceCancelsTicks(t *testing.T) {
	f := runningRace(t)
	f.backend.maze = gateway.Maze{Outcome: gateway.Found, Grid: model.NewGrid(9, 9)}
	f.c.Press(Generate)
	f.c.Update()
	assert.Equal(t, "Maze generated", f.c.Status())
	assert.Equal(t, 0, f.c.sched.Pending())

	for i := 0; i < 5; i++ {
		f.tick(100 * time.Millisecond)
	}
	assert.Equal(t, anim.RaceIdle, f.c.race.State())
	assert.Equal(t, "Maze generated", f.c.Status())
	assert.Empty(t, f.c.Frame().Overlays)
}

func TestLateRaceAnswerAfterReset(t *testing.T) {
	f := raceFixture(t)
	f.backend.race = gateway.RaceResult{Outcome: gateway.Found, Timeline: anim.Timeline{
		{Agent1: []model.Cell{cell(1, 1), cell(5, 3)}, Agent2: []model.Cell{cell(1, 5)}},
	}}
	f.deferRequests()

	f.c.Press(StartRace)
	f.c.Press(Reset)
	require.Len(t, f.queued, 1)
	f.queued[0]()
	f.tick(100 * time.Millisecond)

	assert.Equal(t, anim.RaceIdle, f.c.race.State())
	assert.Equal(t, "Ready", f.c.Status())
	assert.Empty(t, f.c.Banner())
	assert.Empty(t, f.c.Frame().Overlays)
	assert.Equal(t, 0, f.c.sched.Pending())
}

func TestEditDropsSolveInFlight(t *testing.T) {
	f := newFixture(t, editor.Single, 5, 5)
	require.True(t, f.c.Board().SetPoint(model.Start, cell(1, 1)))
	require.True(t, f.c.Board().SetPoint(model.Goal, cell(1, 3)))
	f.backend.sol = gateway.Solution{Outcome: gateway.Found, Path: []model.Cell{cell(1, 1), cell(1, 2), cell(1, 3)}, Length: 3}
	f.deferRequests()

	f.c.Press(Run)
	f.c.Press(EditWalls)
	f.click(2, 2)
	assert.False(t, f.c.Waiting())

	require.Len(t, f.queued, 1)
	f.queued[0]()
	f.tick(5 * time.Millisecond)
	assert.Empty(t, f.c.Frame().Overlays)
	assert.False(t, f.c.Animating())

	// a click that changes nothing keeps the request
	f.c.Press(Run)
	f.click(0, 0)
	assert.True(t, f.c.Waiting())
}
