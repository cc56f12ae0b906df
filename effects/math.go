package effects

import (
	"fmt"
	"math"
)

// MathOp selects the operation a Math processor applies.
type MathOp int

const (
	// MathAdd adds the operand.
	MathAdd MathOp = iota
	// MathMultiply multiplies by the operand.
	MathMultiply
)

// String returns the configuration name of the operation.
func (op MathOp) String() string {
	switch op {
	case MathAdd:
		return "add"
	case MathMultiply:
		return "multiply"
	default:
		return fmt.Sprintf("MathOp(%d)", int(op))
	}
}

// MathOpByName maps a configuration name to an operation.
func MathOpByName(name string) (MathOp, error) {
	switch name {
	case "add":
		return MathAdd, nil
	case "multiply":
		return MathMultiply, nil
	default:
		return 0, fmt.Errorf("unknown math operation: %q", name)
	}
}

// MathOption mutates math processor construction parameters.
type MathOption func(*mathConfig) error

type mathConfig struct {
	operand float64
}

// WithMathOperand sets the initial operand.
func WithMathOperand(operand float64) MathOption {
	return func(cfg *mathConfig) error {
		if math.IsNaN(operand) || math.IsInf(operand, 0) {
			return fmt.Errorf("math operand must be finite: %f", operand)
		}
		cfg.operand = operand
		return nil
	}
}

// Math applies a single arithmetic operation with a fixed or live
// operand.
type Math struct {
	op      MathOp
	operand float64
}

// NewMath creates a math processor.
func NewMath(op MathOp, opts ...MathOption) (*Math, error) {
	if op != MathAdd && op != MathMultiply {
		return nil, fmt.Errorf("unknown math operation: %d", int(op))
	}
	cfg := mathConfig{}
	if op == MathMultiply {
		cfg.operand = 1
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Math{op: op, operand: cfg.operand}, nil
}

// Apply runs the operation on one value.
func (m *Math) Apply(value float64) float64 {
	if m.op == MathMultiply {
		return value * m.operand
	}
	return value + m.operand
}

// SetParam updates a parameter by its configuration key.
func (m *Math) SetParam(key string, value float64) error {
	switch key {
	case "operand":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("math operand must be finite: %f", value)
		}
		m.operand = value
	default:
		return fmt.Errorf("math: unknown parameter %q", key)
	}
	return nil
}

// Reset is a no-op; the math processor is stateless.
func (m *Math) Reset() {}

// Op returns the configured operation.
func (m *Math) Op() MathOp { return m.op }
