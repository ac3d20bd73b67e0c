package anim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/mazerace/model"
)

var (
	ErrAlreadyRunning = errors.New("competition already running")
	ErrEmptyTimeline  = errors.New("no valid paths found")
)

const DefaultTickInterval = 100 * time.Millisecond

type RaceState int

const (
	RaceIdle RaceState = iota + 1
	RaceRunning
	RaceFinished
)

func (s RaceState) Name() string {
	switch s {
	case RaceIdle:
		return "IDLE"
	case RaceRunning:
		return "RUNNING"
	case RaceFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

// Outcome is the terminal verdict of a race.
type Outcome int

const (
	Undecided Outcome = iota
	Agent1Wins
	Agent2Wins
	Tie
	NoPath
)

func (o Outcome) Name() string {
	switch o {
	case Undecided:
		return "undecided"
	case Agent1Wins:
		return "agent1"
	case Agent2Wins:
		return "agent2"
	case Tie:
		return "tie"
	case NoPath:
		return "no path"
	default:
		return fmt.Sprintf("N/A(%d)", o)
	}
}

// Step is one race step. A nil path means the agent reported nothing new.
type Step struct {
	Agent1, Agent2 []model.Cell
}

type Timeline []Step

// RaceFrame is what one tick shows.
type RaceFrame struct {
	Step    int
	Paths   [2][]model.Cell
	Reached [2]bool
	State   RaceState
	Outcome Outcome
	Elapsed time.Duration
	Status  string
	Banner  string
}

// Race replays a precomputed two-agent timeline one step per tick until an
// agent reaches the goal or the timeline runs out.
type Race struct {
	tick     slot
	interval time.Duration
	now      func() time.Time

	timeline Timeline
	goal     model.Cell
	cursor   int
	paths    [2][]model.Cell
	reached  [2]bool
	state    RaceState
	outcome  Outcome
	started  time.Time
	elapsed  time.Duration
	// bumped on every Start and Reset; ticks from older runs bail out
	gen uint64

	// OnFrame receives exactly one frame per tick.
	OnFrame func(RaceFrame)
}

func NewRace(s Scheduler, interval time.Duration) *Race {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Race{
		tick:     slot{sched: s},
		interval: interval,
		now:      s.Now,
		state:    RaceIdle,
	}
}

func (r *Race) State() RaceState { return r.state }

func (r *Race) Outcome() Outcome { return r.outcome }

func (r *Race) Running() bool { return r.state == RaceRunning }

// Start begins replaying t toward goal. The first step is shown before
// Start returns.
func (r *Race) Start(t Timeline, goal model.Cell) error {
	if r.state == RaceRunning {
		return ErrAlreadyRunning
	}
	if len(t) == 0 {
		return ErrEmptyTimeline
	}
	r.tick.disarm()
	r.gen++
	r.timeline = t
	r.goal = goal
	r.cursor = 0
	r.paths = [2][]model.Cell{}
	r.reached = [2]bool{}
	r.outcome = Undecided
	r.elapsed = 0
	r.started = r.now()
	r.state = RaceRunning
	log.WithFields(log.Fields{"steps": len(t), "goal": goal}).Info("race started")
	r.step(r.gen)
	return nil
}

// Reset cancels the pending tick and forgets the run.
func (r *Race) Reset() {
	r.tick.disarm()
	r.gen++
	r.timeline = nil
	r.cursor = 0
	r.paths = [2][]model.Cell{}
	r.reached = [2]bool{}
	r.outcome = Undecided
	r.elapsed = 0
	r.state = RaceIdle
}

func (r *Race) step(gen uint64) {
	if gen != r.gen || r.state != RaceRunning {
		return
	}
	if r.cursor < len(r.timeline) {
		st := r.timeline[r.cursor]
		for i, p := range [2][]model.Cell{st.Agent1, st.Agent2} {
			if len(p) > 0 {
				r.paths[i] = p
			}
			if !r.reached[i] && len(r.paths[i]) > 0 && r.paths[i][len(r.paths[i])-1] == r.goal {
				r.reached[i] = true
			}
		}
		r.cursor++
	}
	r.elapsed = r.now().Sub(r.started)

	switch {
	case r.reached[0] && r.reached[1]:
		r.finish(Tie)
	case r.reached[0]:
		r.finish(Agent1Wins)
	case r.reached[1]:
		r.finish(Agent2Wins)
	case r.cursor >= len(r.timeline):
		r.finish(NoPath)
	default:
		r.tick.arm(r.interval, func() { r.step(gen) })
	}
	r.emit()
}

func (r *Race) finish(o Outcome) {
	r.state = RaceFinished
	r.outcome = o
	log.WithFields(log.Fields{"outcome": o.Name(), "steps": r.cursor, "elapsed": r.elapsed}).Info("race finished")
}

func (r *Race) emit() {
	if r.OnFrame != nil {
		r.OnFrame(r.Frame())
	}
}

// Frame describes the current replay position.
func (r *Race) Frame() RaceFrame {
	return RaceFrame{
		Step:    r.cursor,
		Paths:   r.paths,
		Reached: r.reached,
		State:   r.state,
		Outcome: r.outcome,
		Elapsed: r.elapsed,
		Status:  r.status(),
		Banner:  r.banner(),
	}
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func (r *Race) status() string {
	switch r.state {
	case RaceRunning:
		return "Time: " + seconds(r.elapsed) + " | Racing to goal..."
	case RaceFinished:
		if r.outcome == NoPath {
			return "Race over: no agent reached the goal"
		}
		parts := []string{"Competition finished in " + seconds(r.elapsed)}
		for i, ok := range r.reached {
			if ok {
				parts = append(parts, fmt.Sprintf("Agent %d: Reached goal!", i+1))
			}
		}
		return strings.Join(parts, " | ")
	}
	return ""
}

func (r *Race) banner() string {
	if r.state != RaceFinished {
		return ""
	}
	switch r.outcome {
	case Agent1Wins:
		return "Agent 1 wins! (" + seconds(r.elapsed) + ")"
	case Agent2Wins:
		return "Agent 2 wins! (" + seconds(r.elapsed) + ")"
	case Tie:
		return "It's a tie! (" + seconds(r.elapsed) + ")"
	}
	return ""
}
