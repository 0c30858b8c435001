package game

import (
	"context"
	"sort"
	"time"
)

// Scheduler runs deferred continuations on the frame thread. Time only moves
// when Advance is called, so a task scheduled with a 100ms delay runs on the
// first frame at or after 100ms of accumulated frame time.
type Scheduler struct {
	now   time.Duration
	seq   int
	tasks []scheduledTask
}

type scheduledTask struct {
	due time.Duration
	seq int
	ctx context.Context
	fn  func()
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler { return &Scheduler{} }

// After schedules fn to run delay from now. The task is dropped if ctx is
// done before it is due.
func (s *Scheduler) After(ctx context.Context, delay time.Duration, fn func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.seq++
	s.tasks = append(s.tasks, scheduledTask{due: s.now + delay, seq: s.seq, ctx: ctx, fn: fn})
}

// Advance moves the clock forward by dt and runs every due task in due order.
// Tasks scheduled by a running task wait for a later Advance.
func (s *Scheduler) Advance(dt time.Duration) {
	s.now += dt

	var due, pending []scheduledTask
	for _, t := range s.tasks {
		switch {
		case t.ctx.Err() != nil:
			// cancelled: drop
		case t.due <= s.now:
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	s.tasks = pending

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if t.ctx.Err() != nil {
			continue
		}
		t.fn()
	}
}

// Now returns the accumulated frame time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Pending returns the number of live tasks not yet run.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if t.ctx.Err() == nil {
			n++
		}
	}
	return n
}
