package glyph

// Transform is the on-screen placement of a glyph for one scroll offset.
type Transform struct {
	ID         string  `json:"id"`
	TranslateX float64 `json:"x"`
	TranslateY float64 `json:"y"`
	Rotation   float64 `json:"rotation"`
}

// Speed returns the effective scroll speed of g: the cluster speed for
// cluster members, the layer speed otherwise, scaled by the motion multiplier.
func Speed(g Glyph, compact bool) float64 {
	cfg := ConfigFor(compact)
	speed := FallbackSpeed
	switch {
	case g.Cluster:
		speed = cfg.Cluster.Speed
	case g.Layer >= 0 && g.Layer < len(cfg.Layers):
		speed = cfg.Layers[g.Layer].Speed
	}
	return speed * cfg.Motion
}

// TransformFor places g for the given scroll offset. Negative offsets
// are treated as zero.
func TransformFor(g Glyph, scrollOffset float64, compact bool) Transform {
	scrollOffset = nonNegative(scrollOffset)
	return Transform{
		ID:         g.ID,
		TranslateX: g.X,
		TranslateY: g.Y - scrollOffset*Speed(g, compact),
		Rotation:   g.Rotation,
	}
}

// TransformAll appends the transform of every glyph in glyphs to dst.
func TransformAll(dst []Transform, glyphs []Glyph, scrollOffset float64, compact bool) []Transform {
	for _, g := range glyphs {
		dst = append(dst, TransformFor(g, scrollOffset, compact))
	}
	return dst
}
