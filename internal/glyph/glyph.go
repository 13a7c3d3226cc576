// Package glyph generates the decorative Greek-letter background and
// computes the parallax transform of each letter for a scroll offset.
//
// Generation is batch-level and infrequent: a full Batch is produced
// whenever the tracked page height changes and replaced wholesale.
// TransformFor is the per-frame path and is a pure function.
package glyph

import "github.com/google/uuid"

// Alphabet is the default set of symbols drawn for background glyphs.
var Alphabet = []string{
	"α", "β", "γ", "δ", "ε", "ζ", "η", "θ", "λ",
	"μ", "π", "ρ", "σ", "τ", "φ", "χ", "ψ", "ω",
}

const (
	// CompactMaxWidth is the widest viewport still treated as compact.
	CompactMaxWidth = 768

	// DefaultViewportHeight stands in for an unknown viewport.
	DefaultViewportHeight = 800.0
	// FallbackPageHeight is the page floor used when the viewport is unknown.
	FallbackPageHeight = 3000.0
	// PageHeightViewports is the minimum page coverage, in viewport heights.
	PageHeightViewports = 3

	// FallbackSpeed applies to glyphs whose layer index has no configuration.
	FallbackSpeed = 0.2
)

// Glyph is one decorative symbol. X is a percentage of viewport width,
// Y a pixel offset from the top of the page.
type Glyph struct {
	ID       string  `json:"id"`
	Symbol   string  `json:"symbol"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Rotation float64 `json:"rotation"`
	Layer    int     `json:"layer"`
	Opacity  float64 `json:"opacity"`
	Cluster  bool    `json:"cluster,omitempty"`
}

// Batch is one generation pass.
type Batch struct {
	ID             uuid.UUID `json:"id"`
	PageHeight     float64   `json:"pageHeight"`
	ViewportHeight float64   `json:"viewportHeight"`
	Compact        bool      `json:"compact"`
	Glyphs         []Glyph   `json:"glyphs"`
}

// Layer is one parallax plane of uniformly scattered glyphs.
type Layer struct {
	Speed   float64
	Opacity float64
	Count   int
}

// Range is a closed numeric interval.
type Range struct {
	Min, Max float64
}

func (r Range) sample(u float64) float64 {
	return r.Min + u*(r.Max-r.Min)
}

// Cluster configures the dense grouping near the top of the page.
type Cluster struct {
	Speed float64
	Count int
	// MaxYPercent bounds cluster glyphs to this percentage of one viewport height.
	MaxYPercent float64
	Size        Range
	Opacity     Range
}

// Config holds everything that differs between full and compact rendering.
type Config struct {
	Layers  []Layer
	Cluster Cluster
	// Motion scales every layer's speed.
	Motion float64
}

var (
	fullConfig = Config{
		Layers: []Layer{
			{Speed: 0.2, Opacity: 0.15, Count: 12},
			{Speed: 0.5, Opacity: 0.2, Count: 10},
			{Speed: 0.8, Opacity: 0.25, Count: 8},
		},
		Cluster: Cluster{
			Speed:       0.3,
			Count:       15,
			MaxYPercent: 30,
			Size:        Range{24, 64},
			Opacity:     Range{0.1, 0.25},
		},
		Motion: 1,
	}

	compactConfig = Config{
		Layers: []Layer{
			{Speed: 0.1, Opacity: 0.12, Count: 6},
			{Speed: 0.3, Opacity: 0.18, Count: 4},
		},
		Cluster: Cluster{
			Speed:       0.2,
			Count:       8,
			MaxYPercent: 25,
			Size:        Range{20, 48},
			Opacity:     Range{0.08, 0.2},
		},
		Motion: 0.5,
	}

	scatterSize     = Range{60, 100}
	scatterRotation = Range{-15, 15}
	clusterRotation = Range{-20, 20}
)

// ConfigFor returns the layer configuration for full or compact mode.
func ConfigFor(compact bool) Config {
	if compact {
		return compactConfig
	}
	return fullConfig
}

// Size returns the number of glyphs one batch holds.
func (c Config) Size() int {
	n := c.Cluster.Count
	for _, l := range c.Layers {
		n += l.Count
	}
	return n
}

// ClusterMaxY returns the lowest pixel a cluster glyph may occupy.
func (c Config) ClusterMaxY(viewportHeight float64) float64 {
	return viewportHeight * c.Cluster.MaxYPercent / 100
}

// IsCompact reports whether a viewport should get the reduced background:
// narrow screens and anything with touch input.
func IsCompact(viewportWidth float64, touchPoints int) bool {
	return (viewportWidth > 0 && viewportWidth <= CompactMaxWidth) || touchPoints > 0
}
