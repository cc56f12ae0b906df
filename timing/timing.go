// Package timing provides musical time sources for the control engine.
//
// Every source reports position in beats (quarter notes) and a tempo in
// BPM. Positions are monotonic except on explicit transport resets and
// manual repositioning. Sources fed by background listeners guard their
// counters with a mutex; accessors are safe from any goroutine.
package timing

// Source supplies the current musical position.
type Source interface {
	// Beats returns the current position in beats.
	Beats() float64
	// BPM returns the current tempo in beats per minute.
	BPM() float64
}
