package glyph

var numerals = []string{
	"Ω", "Λ", "Σ", "Δ", "Π", "Φ", "Ψ", "Θ", "Ξ", "Υ",
	"Μ", "Ν", "Β", "Γ", "Ζ", "Η", "Κ", "Ρ", "Τ", "Χ",
}

// Numeral maps a 1-based card number to its uppercase Greek badge,
// cycling through the set. Zero and negative numbers wrap backwards.
func Numeral(n int) string {
	size := len(numerals)
	i := ((n-1)%size + size) % size
	return numerals[i]
}
