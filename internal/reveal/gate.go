// Package reveal gates the one-way hidden-to-visible transition of
// scroll-revealed cards.
package reveal

import (
	"sync"
	"time"

	"github.com/Zachkp/greek-portfolio/internal/clock"
)

// State is what the renderer sees.
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

type phase int

const (
	phaseHidden phase = iota
	phasePending
	phaseVisible
)

// Gate reveals a card at most once. The first visible signal arms it;
// after the configured delay the card becomes Visible and stays so.
// Signals arriving while armed or after the reveal are ignored.
type Gate struct {
	mu       sync.Mutex
	clock    clock.Clock
	delay    time.Duration
	phase    phase
	timer    clock.Timer
	closed   bool
	onReveal func()
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// WithDelay sets the wait between the first visible signal and the reveal.
// Negative delays are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(g *Gate) {
		if d < 0 {
			d = 0
		}
		g.delay = d
	}
}

// WithoutAnimation starts the gate already visible.
func WithoutAnimation() Option {
	return func(g *Gate) { g.phase = phaseVisible }
}

// OnReveal registers fn to run once, on the transition to Visible.
// It runs without the gate's lock held and may run on a timer goroutine.
func OnReveal(fn func()) Option {
	return func(g *Gate) { g.onReveal = fn }
}

// NewGate returns a hidden gate.
func NewGate(opts ...Option) *Gate {
	g := &Gate{clock: clock.Real{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Signal feeds one visibility observation into the gate.
func (g *Gate) Signal(visible bool) {
	if !visible {
		return
	}
	g.mu.Lock()
	if g.closed || g.phase != phaseHidden {
		g.mu.Unlock()
		return
	}
	if g.delay == 0 {
		g.phase = phaseVisible
		fn := g.onReveal
		g.mu.Unlock()
		if fn != nil {
			fn()
		}
		return
	}
	g.phase = phasePending
	g.timer = g.clock.AfterFunc(g.delay, g.fire)
	g.mu.Unlock()
}

func (g *Gate) fire() {
	g.mu.Lock()
	if g.closed || g.phase != phasePending {
		g.mu.Unlock()
		return
	}
	g.phase = phaseVisible
	g.timer = nil
	fn := g.onReveal
	g.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// State reports Hidden until the reveal has happened, including while a
// delayed reveal is pending.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == phaseVisible {
		return Visible
	}
	return Hidden
}

// Visible is shorthand for State() == Visible.
func (g *Gate) Visible() bool {
	return g.State() == Visible
}

// Pending reports whether a delayed reveal is scheduled.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase == phasePending
}

// Close cancels any pending reveal and detaches the gate from further
// signals. A card already visible stays visible.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	if g.phase == phasePending {
		g.phase = phaseHidden
	}
}
