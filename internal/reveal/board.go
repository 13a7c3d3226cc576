package reveal

import (
	"errors"
	"sync"
	"time"

	"github.com/Zachkp/greek-portfolio/internal/clock"
)

// ErrUnknownCard is returned for signals about cards never added.
var ErrUnknownCard = errors.New("reveal: unknown card")

// Card describes one revealable element.
type Card struct {
	ID      string        `json:"id"`
	Delay   time.Duration `json:"delay"`
	Animate bool          `json:"animate"`
}

// Board owns the gates of one page view.
type Board struct {
	mu       sync.Mutex
	clock    clock.Clock
	gates    map[string]*Gate
	onReveal func(id string)
}

// NewBoard builds a board whose gates report reveals to onReveal.
func NewBoard(c clock.Clock, onReveal func(id string)) *Board {
	if c == nil {
		c = clock.Real{}
	}
	return &Board{clock: c, gates: make(map[string]*Gate), onReveal: onReveal}
}

// Add registers a card. Re-adding an ID replaces its gate.
func (b *Board) Add(card Card) {
	opts := []Option{WithClock(b.clock), WithDelay(card.Delay)}
	if !card.Animate {
		opts = append(opts, WithoutAnimation())
	}
	if b.onReveal != nil {
		id := card.ID
		notify := b.onReveal
		opts = append(opts, OnReveal(func() { notify(id) }))
	}
	gate := NewGate(opts...)

	b.mu.Lock()
	old := b.gates[card.ID]
	b.gates[card.ID] = gate
	b.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Signal routes a visibility observation to the card's gate.
func (b *Board) Signal(id string, visible bool) error {
	b.mu.Lock()
	gate, ok := b.gates[id]
	b.mu.Unlock()
	if !ok {
		return ErrUnknownCard
	}
	gate.Signal(visible)
	return nil
}

// State returns the card's state; unknown cards are Hidden.
func (b *Board) State(id string) State {
	b.mu.Lock()
	gate, ok := b.gates[id]
	b.mu.Unlock()
	if !ok {
		return Hidden
	}
	return gate.State()
}

// Visible lists the IDs of revealed cards.
func (b *Board) Visible() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []string
	for id, gate := range b.gates {
		if gate.Visible() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close cancels every pending reveal.
func (b *Board) Close() {
	b.mu.Lock()
	gates := b.gates
	b.gates = make(map[string]*Gate)
	b.mu.Unlock()
	for _, gate := range gates {
		gate.Close()
	}
}
