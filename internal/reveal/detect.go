package reveal

import "math"

// Bounds locates an element relative to the top of the viewport, in pixels.
type Bounds struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// DetectOptions shape the detection region. MarginTop grows the region
// above the viewport; a negative MarginBottom pulls its lower edge up.
type DetectOptions struct {
	Threshold    float64
	MarginTop    float64
	MarginBottom float64
}

// DefaultDetectOptions trigger when a tenth of a card is inside a region
// starting 50px above the viewport and ending 50px above its bottom edge.
var DefaultDetectOptions = DetectOptions{
	Threshold:    0.1,
	MarginTop:    50,
	MarginBottom: -50,
}

// Ratio returns the fraction of b inside the detection region.
// Non-finite inputs count as nothing visible.
func Ratio(b Bounds, viewportHeight float64, opts DetectOptions) float64 {
	if !finite(viewportHeight) || !finite(b.Top) || !finite(b.Height) {
		return 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	regionTop := -opts.MarginTop
	regionBottom := viewportHeight + opts.MarginBottom
	if regionBottom <= regionTop {
		return 0
	}
	if b.Height <= 0 {
		if b.Top >= regionTop && b.Top <= regionBottom {
			return 1
		}
		return 0
	}
	overlap := math.Min(b.Top+b.Height, regionBottom) - math.Max(b.Top, regionTop)
	if overlap <= 0 {
		return 0
	}
	return math.Min(1, overlap/b.Height)
}

// Detect reports whether b counts as visible.
func Detect(b Bounds, viewportHeight float64, opts DetectOptions) bool {
	r := Ratio(b, viewportHeight, opts)
	return r > 0 && r >= opts.Threshold
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
