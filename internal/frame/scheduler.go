// Package frame coalesces bursts of update requests into at most one
// pending recomputation per paint cycle.
package frame

import (
	"sync"
	"time"

	"github.com/Zachkp/greek-portfolio/internal/clock"
)

// DefaultInterval is one frame at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// Stats counts scheduler activity.
type Stats struct {
	Requests  int
	Cancelled int
	Frames    int
}

// Scheduler runs callbacks on a fixed frame grid. A new request cancels
// the pending one and reschedules for the next grid boundary, so a steady
// stream of requests still produces one frame per interval.
type Scheduler struct {
	mu       sync.Mutex
	clock    clock.Clock
	interval time.Duration
	epoch    time.Time
	pending  clock.Timer
	closed   bool
	stats    Stats
}

// New builds a scheduler. A non-positive interval uses DefaultInterval.
func New(c clock.Clock, interval time.Duration) *Scheduler {
	if c == nil {
		c = clock.Real{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{clock: c, interval: interval, epoch: c.Now()}
}

// Request schedules fn for the next frame boundary, replacing any
// callback still waiting for its frame.
func (s *Scheduler) Request(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stats.Requests++
	if s.pending != nil && s.pending.Stop() {
		s.stats.Cancelled++
	}

	var timer clock.Timer
	timer = s.clock.AfterFunc(s.untilNextFrame(), func() {
		s.mu.Lock()
		if s.closed || s.pending != timer {
			s.mu.Unlock()
			return
		}
		s.pending = nil
		s.stats.Frames++
		s.mu.Unlock()
		fn()
	})
	s.pending = timer
}

func (s *Scheduler) untilNextFrame() time.Duration {
	elapsed := s.clock.Now().Sub(s.epoch)
	if elapsed < 0 {
		return s.interval
	}
	return s.interval - elapsed%s.interval
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close cancels the pending callback and rejects further requests.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
