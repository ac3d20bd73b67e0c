package anim

import (
	"sort"
	"time"
)

// Token identifies one scheduled callback. The zero Token is never issued.
type Token uint64

// Scheduler runs callbacks after a delay on the caller's goroutine.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) Token
	Cancel(t Token) bool
}

type timer struct {
	token Token
	due   time.Time
	fn    func()
}

// FrameScheduler is a Scheduler driven by the host loop: due callbacks fire
// inside Advance, so nothing ever runs concurrently with the caller.
type FrameScheduler struct {
	now     func() time.Time
	next    Token
	pending []timer
}

func NewFrameScheduler() *FrameScheduler {
	return NewFrameSchedulerWithClock(time.Now)
}

func NewFrameSchedulerWithClock(now func() time.Time) *FrameScheduler {
	if now == nil {
		now = time.Now
	}
	return &FrameScheduler{now: now}
}

func (s *FrameScheduler) Now() time.Time { return s.now() }

// After queues fn to run on the first Advance at or past now+d.
func (s *FrameScheduler) After(d time.Duration, fn func()) Token {
	s.next++
	s.pending = append(s.pending, timer{token: s.next, due: s.now().Add(d), fn: fn})
	return s.next
}

// Cancel drops a queued callback. It reports false for tokens that already
// fired, were cancelled, or were never issued.
func (s *FrameScheduler) Cancel(t Token) bool {
	for i, tm := range s.pending {
		if tm.token == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Advance fires every callback that is due, earliest first. Callbacks
// scheduled while advancing run on a later Advance, even with zero delay.
func (s *FrameScheduler) Advance() int {
	now := s.now()
	due := make([]timer, 0)
	for _, tm := range s.pending {
		if !tm.due.After(now) {
			due = append(due, tm)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].token < due[j].token
		}
		return due[i].due.Before(due[j].due)
	})
	fired := 0
	for _, tm := range due {
		// an earlier callback may have cancelled this one
		if !s.Cancel(tm.token) {
			continue
		}
		tm.fn()
		fired++
	}
	return fired
}

func (s *FrameScheduler) Pending() int { return len(s.pending) }

// slot holds at most one live token. Every schedule goes through arm, which
// cancels the previous token first.
type slot struct {
	sched Scheduler
	token Token
}

func (s *slot) arm(d time.Duration, fn func()) {
	s.disarm()
	s.token = s.sched.After(d, func() {
		s.token = 0
		fn()
	})
}

func (s *slot) disarm() {
	if s.token != 0 {
		s.sched.Cancel(s.token)
		s.token = 0
	}
}

func (s *slot) armed() bool { return s.token != 0 }
