package automate

import (
	"fmt"
	"math"
)

// Kind selects the transition behavior between a breakpoint and its
// successor.
type Kind int

const (
	// KindStep holds the breakpoint value until the next position.
	KindStep Kind = iota
	// KindRamp interpolates toward the next value with an easing curve.
	KindRamp
	// KindWave adds a periodic waveform on top of the eased ramp.
	KindWave
	// KindRandom offsets the value by a deterministic per-cycle random amount.
	KindRandom
	// KindRandomSmooth perturbs the eased ramp with 2D Perlin noise.
	KindRandomSmooth
	// KindEnd terminates a curve. It is never evaluated as an active segment.
	KindEnd
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindRamp:
		return "ramp"
	case KindWave:
		return "wave"
	case KindRandom:
		return "random"
	case KindRandomSmooth:
		return "randomsmooth"
	case KindEnd:
		return "end"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindByName maps a configuration name to a kind.
func KindByName(name string) (Kind, error) {
	switch name {
	case "step":
		return KindStep, nil
	case "ramp":
		return KindRamp, nil
	case "wave":
		return KindWave, nil
	case "random":
		return KindRandom, nil
	case "randomsmooth":
		return KindRandomSmooth, nil
	case "end":
		return KindEnd, nil
	default:
		return 0, fmt.Errorf("unknown breakpoint kind: %q", name)
	}
}

// Shape selects the waveform used by KindWave segments.
type Shape int

const (
	// ShapeSine is a phase-warped sine; width skews the warp.
	ShapeSine Shape = iota
	// ShapeTriangle is a bipolar triangle; width sets the rise fraction.
	ShapeTriangle
	// ShapeSquare is a bipolar square; width sets the duty cycle.
	ShapeSquare
)

// String returns the configuration name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeSine:
		return "sine"
	case ShapeTriangle:
		return "triangle"
	case ShapeSquare:
		return "square"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ShapeByName maps a configuration name to a shape. The empty string is
// sine.
func ShapeByName(name string) (Shape, error) {
	switch name {
	case "", "sine":
		return ShapeSine, nil
	case "triangle":
		return ShapeTriangle, nil
	case "square":
		return ShapeSquare, nil
	default:
		return 0, fmt.Errorf("unknown wave shape: %q", name)
	}
}

// Constrain limits a combined segment value against the segment's own
// value range.
type Constrain int

const (
	// ConstrainNone leaves the combined value untouched.
	ConstrainNone Constrain = iota
	// ConstrainClamp clips the value to the segment's value range.
	ConstrainClamp
	// ConstrainFold reflects the value back into the segment's value range.
	ConstrainFold
)

// String returns the configuration name of the constrain mode.
func (c Constrain) String() string {
	switch c {
	case ConstrainNone:
		return "none"
	case ConstrainClamp:
		return "clamp"
	case ConstrainFold:
		return "fold"
	default:
		return fmt.Sprintf("Constrain(%d)", int(c))
	}
}

// ConstrainByName maps a configuration name to a constrain mode. The
// empty string is none.
func ConstrainByName(name string) (Constrain, error) {
	switch name {
	case "", "none":
		return ConstrainNone, nil
	case "clamp":
		return ConstrainClamp, nil
	case "fold":
		return ConstrainFold, nil
	default:
		return 0, fmt.Errorf("unknown constrain mode: %q", name)
	}
}

// Mode selects how positions past the final breakpoint are treated.
type Mode int

const (
	// ModeLoop wraps evaluation over the curve's total span.
	ModeLoop Mode = iota
	// ModeOnce holds the final value once the final position is reached.
	ModeOnce
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLoop:
		return "loop"
	case ModeOnce:
		return "once"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ModeByName maps a configuration name to a mode. The empty string is
// loop.
func ModeByName(name string) (Mode, error) {
	switch name {
	case "", "loop":
		return ModeLoop, nil
	case "once":
		return ModeOnce, nil
	default:
		return 0, fmt.Errorf("unknown automation mode: %q", name)
	}
}

// Breakpoint is one vertex of a piecewise automation curve. Position is in
// beats; the zero value of the kind-specific fields is valid for kinds that
// ignore them.
type Breakpoint struct {
	Position float64
	Value    float64
	Kind     Kind

	// Easing shapes ramp progress for KindRamp, KindWave and
	// KindRandomSmooth. Nil means linear.
	Easing Easing

	// Frequency is the wave or noise cycle length in beats.
	Frequency float64
	// Amplitude scales the periodic or random contribution.
	Amplitude float64
	// Constrain limits the combined value for KindWave and KindRandomSmooth.
	Constrain Constrain

	// Shape and Width apply to KindWave only. Width is the duty/skew
	// fraction in [0, 1].
	Shape Shape
	Width float64
}

// Step returns a hold breakpoint.
func Step(position, value float64) Breakpoint {
	return Breakpoint{Position: position, Value: value, Kind: KindStep}
}

// Ramp returns an eased interpolation breakpoint. A nil easing is linear.
func Ramp(position, value float64, easing Easing) Breakpoint {
	return Breakpoint{Position: position, Value: value, Kind: KindRamp, Easing: easing}
}

// End returns a terminating breakpoint. Its value still serves as the
// interpolation target of the segment leading into it.
func End(position, value float64) Breakpoint {
	return Breakpoint{Position: position, Value: value, Kind: KindEnd}
}

// Validate reports structural problems in a curve: an empty list, a first
// breakpoint off zero, non-ascending positions, or non-finite fields.
// Evaluation treats the first two as caller contract violations; Validate
// lets configuration loading reject them as plain errors instead.
func Validate(breakpoints []Breakpoint) error {
	if len(breakpoints) == 0 {
		return fmt.Errorf("breakpoint list must not be empty")
	}
	if breakpoints[0].Position != 0 {
		return fmt.Errorf("first breakpoint position must be 0: %g", breakpoints[0].Position)
	}
	prev := math.Inf(-1)
	for i, bp := range breakpoints {
		if math.IsNaN(bp.Position) || math.IsInf(bp.Position, 0) {
			return fmt.Errorf("breakpoint %d position must be finite: %f", i, bp.Position)
		}
		if math.IsNaN(bp.Value) || math.IsInf(bp.Value, 0) {
			return fmt.Errorf("breakpoint %d value must be finite: %f", i, bp.Value)
		}
		if bp.Position <= prev {
			return fmt.Errorf("breakpoint %d position %g must ascend past %g", i, bp.Position, prev)
		}
		if bp.Kind == KindEnd && i != len(breakpoints)-1 {
			return fmt.Errorf("breakpoint %d: end must be the final breakpoint", i)
		}
		prev = bp.Position
	}
	return nil
}
