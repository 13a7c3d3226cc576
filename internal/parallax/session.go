// Package parallax serves the animated background and the scroll-reveal
// gates of one browser tab over a websocket.
package parallax

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/greek-portfolio/internal/clock"
	"github.com/Zachkp/greek-portfolio/internal/frame"
	"github.com/Zachkp/greek-portfolio/internal/glyph"
	"github.com/Zachkp/greek-portfolio/internal/reveal"
)

// SessionConfig wires a session to its collaborators.
type SessionConfig struct {
	Clock         clock.Clock
	FrameInterval time.Duration
	Generator     *glyph.Generator
	Cards         []reveal.Card
	Logger        *zap.Logger
}

// Session is the server-side state of one page view. Outgoing messages
// go through send, which must be safe for concurrent use; gate and frame
// timers call it from their own goroutines.
type Session struct {
	send   func(v any) error
	logger *zap.Logger
	gen    *glyph.Generator
	sched  *frame.Scheduler
	board  *reveal.Board
	cards  []reveal.Card

	mu             sync.Mutex
	batch          *glyph.Batch
	reduced        bool
	viewportHeight float64
	scroll         float64
	closed         bool
}

// NewSession builds a session writing to send.
func NewSession(cfg SessionConfig, send func(v any) error) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Generator == nil {
		cfg.Generator = glyph.NewGenerator()
	}
	s := &Session{
		send:   send,
		logger: cfg.Logger,
		gen:    cfg.Generator,
		sched:  frame.New(cfg.Clock, cfg.FrameInterval),
		cards:  cfg.Cards,
	}
	s.board = reveal.NewBoard(cfg.Clock, s.revealed)
	for _, card := range cfg.Cards {
		s.board.Add(card)
	}
	return s
}

// Start announces the cards and the ones already visible.
func (s *Session) Start() error {
	visible := s.board.Visible()
	if visible == nil {
		visible = []string{}
	}
	return s.emit(helloMessage{Type: typeHello, Cards: s.cards, Visible: visible})
}

// HandleMessage processes one client frame.
func (s *Session) HandleMessage(payload []byte) error {
	var msg clientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return s.reject(fmt.Sprintf("malformed message: %v", err))
	}
	switch msg.Type {
	case typeViewport:
		return s.viewport(msg)
	case typeScroll:
		s.scrolled(msg.Offset)
		return nil
	case typeVisibility:
		return s.visibility(msg)
	default:
		return s.reject(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Session) viewport(msg clientMessage) error {
	compact := glyph.IsCompact(msg.ViewportWidth, msg.TouchPoints)
	pageHeight := glyph.PageHeight(msg.DocumentHeight, msg.ViewportHeight)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.viewportHeight = math.Max(0, msg.ViewportHeight)

	if msg.ReducedMotion {
		changed := !s.reduced || s.batch != nil
		s.reduced = true
		s.batch = nil
		s.mu.Unlock()
		if changed {
			return s.emit(batchMessage{Type: typeBatch, Batch: glyph.Batch{Glyphs: []glyph.Glyph{}}})
		}
		return nil
	}

	s.reduced = false
	if b := s.batch; b != nil && b.PageHeight == pageHeight && b.Compact == compact &&
		b.ViewportHeight == viewportOrDefault(msg.ViewportHeight) {
		s.mu.Unlock()
		return nil
	}
	batch := s.gen.Generate(msg.DocumentHeight, msg.ViewportHeight, compact)
	s.batch = &batch
	s.mu.Unlock()

	s.logger.Debug("generated glyph batch",
		zap.String("batch", batch.ID.String()),
		zap.Float64("page_height", batch.PageHeight),
		zap.Bool("compact", compact),
		zap.Int("glyphs", len(batch.Glyphs)))
	if err := s.emit(batchMessage{Type: typeBatch, Batch: batch}); err != nil {
		return err
	}
	s.sched.Request(s.renderFrame)
	return nil
}

func viewportOrDefault(h float64) float64 {
	if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return glyph.DefaultViewportHeight
	}
	return h
}

func (s *Session) scrolled(offset float64) {
	if offset < 0 || math.IsNaN(offset) || math.IsInf(offset, 0) {
		offset = 0
	}
	s.mu.Lock()
	s.scroll = offset
	active := s.batch != nil && !s.closed
	s.mu.Unlock()
	if active {
		s.sched.Request(s.renderFrame)
	}
}

func (s *Session) renderFrame() {
	s.mu.Lock()
	if s.closed || s.batch == nil {
		s.mu.Unlock()
		return
	}
	batch := s.batch
	scroll := s.scroll
	s.mu.Unlock()

	transforms := glyph.TransformAll(make([]glyph.Transform, 0, len(batch.Glyphs)), batch.Glyphs, scroll, batch.Compact)
	if err := s.emit(frameMessage{Type: typeFrame, Scroll: scroll, Transforms: transforms}); err != nil {
		s.logger.Debug("frame not delivered", zap.Error(err))
	}
}

func (s *Session) visibility(msg clientMessage) error {
	s.mu.Lock()
	vh := s.viewportHeight
	s.mu.Unlock()

	var visible bool
	switch {
	case msg.Visible != nil:
		visible = *msg.Visible
	case msg.Bounds != nil:
		visible = reveal.Detect(*msg.Bounds, vh, reveal.DefaultDetectOptions)
	default:
		return s.reject("visibility needs visible or bounds")
	}

	if err := s.board.Signal(msg.Card, visible); err != nil {
		if errors.Is(err, reveal.ErrUnknownCard) {
			return s.reject(fmt.Sprintf("unknown card %q", msg.Card))
		}
		return err
	}
	return nil
}

func (s *Session) revealed(id string) {
	if err := s.emit(revealMessage{Type: typeReveal, Card: id}); err != nil {
		s.logger.Debug("reveal not delivered", zap.String("card", id), zap.Error(err))
	}
}

func (s *Session) reject(reason string) error {
	s.logger.Debug("rejecting client message", zap.String("reason", reason))
	return s.emit(errorMessage{Type: typeError, Reason: reason})
}

func (s *Session) emit(v any) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil
	}
	return s.send(v)
}

// Close cancels every pending frame and reveal.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.sched.Close()
	s.board.Close()
}
