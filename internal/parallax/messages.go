package parallax

import (
	"github.com/Zachkp/greek-portfolio/internal/glyph"
	"github.com/Zachkp/greek-portfolio/internal/reveal"
)

const (
	typeViewport   = "viewport"
	typeScroll     = "scroll"
	typeVisibility = "visibility"

	typeHello  = "hello"
	typeBatch  = "batch"
	typeFrame  = "frame"
	typeReveal = "reveal"
	typeError  = "error"
)

type clientMessage struct {
	Type string `json:"type"`

	DocumentHeight float64 `json:"documentHeight"`
	ViewportHeight float64 `json:"viewportHeight"`
	ViewportWidth  float64 `json:"viewportWidth"`
	TouchPoints    int     `json:"touchPoints"`
	ReducedMotion  bool    `json:"reducedMotion"`

	Offset float64 `json:"offset"`

	Card    string         `json:"card"`
	Visible *bool          `json:"visible"`
	Bounds  *reveal.Bounds `json:"bounds"`
}

type helloMessage struct {
	Type    string        `json:"type"`
	Cards   []reveal.Card `json:"cards"`
	Visible []string      `json:"visible"`
}

type batchMessage struct {
	Type  string      `json:"type"`
	Batch glyph.Batch `json:"batch"`
}

type frameMessage struct {
	Type       string            `json:"type"`
	Scroll     float64           `json:"scroll"`
	Transforms []glyph.Transform `json:"transforms"`
}

type revealMessage struct {
	Type string `json:"type"`
	Card string `json:"card"`
}

type errorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
