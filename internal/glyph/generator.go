package glyph

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RandomSource yields uniform samples in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Generator produces glyph batches. It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rnd      RandomSource
	alphabet []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandomSource replaces the time-seeded source.
func WithRandomSource(rnd RandomSource) Option {
	return func(g *Generator) { g.rnd = rnd }
}

// WithSeed seeds a private math/rand source.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rnd = rand.New(rand.NewSource(seed)) }
}

// WithAlphabet replaces the default symbol set.
func WithAlphabet(symbols []string) Option {
	return func(g *Generator) { g.alphabet = symbols }
}

// NewGenerator builds a generator. It panics if the alphabet is empty.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{alphabet: Alphabet}
	for _, opt := range opts {
		opt(g)
	}
	if len(g.alphabet) == 0 {
		panic("glyph: empty alphabet")
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// PageHeight applies the coverage floor to a measured document height.
func PageHeight(documentHeight, viewportHeight float64) float64 {
	documentHeight = nonNegative(documentHeight)
	if !measured(viewportHeight) {
		return math.Max(documentHeight, FallbackPageHeight)
	}
	return math.Max(documentHeight, viewportHeight*PageHeightViewports)
}

// Generate scatters every configured layer across the page and adds the
// top-of-page cluster. Each call draws a fresh sample.
func (g *Generator) Generate(documentHeight, viewportHeight float64, compact bool) Batch {
	pageHeight := PageHeight(documentHeight, viewportHeight)
	if !measured(viewportHeight) {
		viewportHeight = DefaultViewportHeight
	}
	cfg := ConfigFor(compact)

	g.mu.Lock()
	defer g.mu.Unlock()

	glyphs := make([]Glyph, 0, cfg.Size())
	for li, layer := range cfg.Layers {
		for i := 0; i < layer.Count; i++ {
			glyphs = append(glyphs, Glyph{
				ID:       fmt.Sprintf("%d-%d", li, i),
				Symbol:   g.symbol(),
				X:        g.rnd.Float64() * 100,
				Y:        g.rnd.Float64() * pageHeight,
				Size:     scatterSize.sample(g.rnd.Float64()),
				Rotation: scatterRotation.sample(g.rnd.Float64()),
				Layer:    li,
				Opacity:  layer.Opacity,
			})
		}
	}

	maxY := cfg.ClusterMaxY(viewportHeight)
	for i := 0; i < cfg.Cluster.Count; i++ {
		symbol := g.symbol()
		centerX := 20 + g.rnd.Float64()*60
		centerY := g.rnd.Float64() * maxY
		spreadX := (g.rnd.Float64() - 0.5) * 40
		spreadY := (g.rnd.Float64() - 0.5) * maxY * 0.6

		glyphs = append(glyphs, Glyph{
			ID:       fmt.Sprintf("cluster-%d", i),
			Symbol:   symbol,
			X:        clamp(centerX+spreadX, 5, 95),
			Y:        clamp(centerY+spreadY, 0, maxY),
			Size:     cfg.Cluster.Size.sample(g.rnd.Float64()),
			Rotation: clusterRotation.sample(g.rnd.Float64()),
			Layer:    len(cfg.Layers),
			Opacity:  cfg.Cluster.Opacity.sample(g.rnd.Float64()),
			Cluster:  true,
		})
	}

	return Batch{
		ID:             uuid.New(),
		PageHeight:     pageHeight,
		ViewportHeight: viewportHeight,
		Compact:        compact,
		Glyphs:         glyphs,
	}
}

func (g *Generator) symbol() string {
	i := int(g.rnd.Float64() * float64(len(g.alphabet)))
	if i >= len(g.alphabet) {
		i = len(g.alphabet) - 1
	}
	return g.alphabet[i]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// nonNegative clamps negative and non-finite inputs to zero.
func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// measured reports whether h is a usable viewport height.
func measured(h float64) bool {
	return h > 0 && !math.IsInf(h, 0)
}
