package cuepoint

import (
	"github.com/aretw0/cuepoint/pkg/ports"
)

// maxDrainRounds stops Drain from spinning when deferred work keeps
// deferring more work.
const maxDrainRounds = 64

type task struct {
	fn       func()
	canceled bool
}

// TickScheduler queues deferred work until the next Drain. It is the
// default scheduler of an Engine.
type TickScheduler struct {
	queue []*task
}

// NewTickScheduler creates an empty scheduler.
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{}
}

// Defer queues fn for the next tick.
func (s *TickScheduler) Defer(fn func()) ports.CancelFunc {
	t := &task{fn: fn}
	s.queue = append(s.queue, t)
	return func() { t.canceled = true }
}

// Pending returns the number of queued, uncanceled tasks.
func (s *TickScheduler) Pending() int {
	n := 0
	for _, t := range s.queue {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Drain runs queued tasks in order, including tasks they queue.
func (s *TickScheduler) Drain() {
	for round := 0; len(s.queue) > 0 && round < maxDrainRounds; round++ {
		queue := s.queue
		s.queue = nil
		for _, t := range queue {
			if !t.canceled {
				t.canceled = true
				t.fn()
			}
		}
	}
}

// Reset drops every queued task.
func (s *TickScheduler) Reset() {
	s.queue = nil
}
