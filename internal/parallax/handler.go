package parallax

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Zachkp/greek-portfolio/internal/clock"
	"github.com/Zachkp/greek-portfolio/internal/glyph"
	"github.com/Zachkp/greek-portfolio/internal/reveal"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
)

// HandlerConfig configures every session the handler opens.
type HandlerConfig struct {
	Clock         clock.Clock
	FrameInterval time.Duration
	Generator     *glyph.Generator
	// Cards returns the revealable cards of the page being viewed.
	Cards       func() []reveal.Card
	Logger      *zap.Logger
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades requests to websocket sessions.
type Handler struct {
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Generator == nil {
		cfg.Generator = glyph.NewGenerator()
	}
	return &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// Handle serves one websocket connection until the client disconnects.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	var writeMu sync.Mutex
	send := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	var cards []reveal.Card
	if h.cfg.Cards != nil {
		cards = h.cfg.Cards()
	}
	session := NewSession(SessionConfig{
		Clock:         h.cfg.Clock,
		FrameInterval: h.cfg.FrameInterval,
		Generator:     h.cfg.Generator,
		Cards:         cards,
		Logger:        h.cfg.Logger,
	}, send)
	defer session.Close()

	if err := session.Start(); err != nil {
		return
	}
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.cfg.Logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}
		if err := session.HandleMessage(payload); err != nil {
			h.cfg.Logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}
