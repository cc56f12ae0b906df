// Package automate evaluates piecewise breakpoint curves and small
// procedural animation primitives against a musical beat position.
//
// A curve is an ordered list of breakpoints; each breakpoint carries the
// transition kind toward its successor (hold, eased ramp, ramp plus
// periodic wave, deterministic random offset, Perlin-perturbed ramp, or a
// plain end marker). Curves evaluate in loop mode (wrapping over the total
// span) or once mode (holding the final value).
//
// Evaluation is pure with respect to the beat position: the same curve at
// the same position yields the same value, including the random kinds,
// whose generators are seeded from the segment geometry and loop
// iteration. This keeps renders reproducible and allows scrubbing.
package automate
