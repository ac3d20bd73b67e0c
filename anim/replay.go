package anim

import (
	"time"

	"github.com/zucenko/mazerace/model"
)

const DefaultRevealDelay = 5 * time.Millisecond

// Replay shows a finished single-agent search: the visited set at once,
// then the path one cell per delay. Start and goal cells are never drawn
// over.
type Replay struct {
	tick  slot
	delay time.Duration
	now   func() time.Time

	visited []model.Cell
	path    []model.Cell
	shown   int
	running bool
	t0      time.Time
	gen     uint64

	// OnDone runs once, right after the last cell is revealed.
	OnDone func(revealed int, elapsed time.Duration)
}

func NewReplay(s Scheduler, delay time.Duration) *Replay {
	if delay < 0 {
		delay = DefaultRevealDelay
	}
	return &Replay{tick: slot{sched: s}, delay: delay, now: s.Now}
}

// Start replaces whatever was shown. t0 is when the user asked for the run;
// the elapsed time handed to OnDone is measured from it.
func (p *Replay) Start(path []model.Cell, visited []model.Visited, start, goal model.Cell, t0 time.Time) {
	p.Reset()
	keep := func(c model.Cell) bool { return c != start && c != goal }
	for _, v := range visited {
		if keep(v.Cell) {
			p.visited = append(p.visited, v.Cell)
		}
	}
	for _, c := range path {
		if keep(c) {
			p.path = append(p.path, c)
		}
	}
	p.t0 = t0
	p.running = true
	p.next(p.gen)
}

// next schedules the following reveal, or finishes when none is left.
func (p *Replay) next(gen uint64) {
	if gen != p.gen || !p.running {
		return
	}
	if p.shown >= len(p.path) {
		p.running = false
		if p.OnDone != nil {
			p.OnDone(p.shown, p.now().Sub(p.t0))
		}
		return
	}
	p.tick.arm(p.delay, func() {
		if gen != p.gen {
			return
		}
		p.shown++
		p.next(gen)
	})
}

func (p *Replay) Reset() {
	p.tick.disarm()
	p.gen++
	p.visited = nil
	p.path = nil
	p.shown = 0
	p.running = false
}

func (p *Replay) Running() bool { return p.running }

// Visited is the overlay drawn as soon as the run starts.
func (p *Replay) Visited() []model.Cell { return p.visited }

// Revealed lists the path cells shown so far, in path order.
func (p *Replay) Revealed() []model.Cell { return p.path[:p.shown] }
