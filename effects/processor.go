package effects

// Processor transforms one scalar per frame. Implementations may keep
// state between calls; Reset returns them to their initial state.
type Processor interface {
	// Apply transforms one value.
	Apply(value float64) float64
	// SetParam updates a parameter by its configuration key. Unknown
	// keys and out-of-range values return an error.
	SetParam(key string, value float64) error
	// Reset clears processor state.
	Reset()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
