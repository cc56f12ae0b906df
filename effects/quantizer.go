package effects

import (
	"fmt"
	"math"
)

const (
	defaultQuantizerStep = 0.1
	defaultQuantizerMin  = 0.0
	defaultQuantizerMax  = 1.0
)

// QuantizerOption mutates quantizer construction parameters.
type QuantizerOption func(*quantizerConfig) error

type quantizerConfig struct {
	step float64
	min  float64
	max  float64
}

func defaultQuantizerConfig() quantizerConfig {
	return quantizerConfig{
		step: defaultQuantizerStep,
		min:  defaultQuantizerMin,
		max:  defaultQuantizerMax,
	}
}

// WithQuantizerStep sets the step size.
func WithQuantizerStep(step float64) QuantizerOption {
	return func(cfg *quantizerConfig) error {
		if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
			return fmt.Errorf("quantizer step must be > 0 and finite: %f", step)
		}
		cfg.step = step
		return nil
	}
}

// WithQuantizerRange sets the output range.
func WithQuantizerRange(min, max float64) QuantizerOption {
	return func(cfg *quantizerConfig) error {
		if math.IsNaN(min) || math.IsInf(min, 0) || math.IsNaN(max) || math.IsInf(max, 0) {
			return fmt.Errorf("quantizer range must be finite: %f, %f", min, max)
		}
		if min >= max {
			return fmt.Errorf("quantizer range min must be < max: %f >= %f", min, max)
		}
		cfg.min = min
		cfg.max = max
		return nil
	}
}

// Quantizer snaps values to a step grid anchored at the range minimum.
type Quantizer struct {
	step float64
	min  float64
	max  float64
}

// NewQuantizer creates a quantizer with practical defaults and optional
// overrides.
func NewQuantizer(opts ...QuantizerOption) (*Quantizer, error) {
	cfg := defaultQuantizerConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Quantizer{step: cfg.step, min: cfg.min, max: cfg.max}, nil
}

// Apply snaps value to the nearest grid point inside the range. A
// degenerate range passes the value through unchanged.
func (q *Quantizer) Apply(value float64) float64 {
	if q.max <= q.min {
		return value
	}
	v := clamp(value, q.min, q.max)
	v = q.min + math.Round((v-q.min)/q.step)*q.step
	return clamp(v, q.min, q.max)
}

// SetParam updates a parameter by its configuration key. Range bounds
// are validated for finiteness only, so live updates that move both
// bounds may cross transiently.
func (q *Quantizer) SetParam(key string, value float64) error {
	switch key {
	case "step":
		if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("quantizer step must be > 0 and finite: %f", value)
		}
		q.step = value
	case "min":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("quantizer min must be finite: %f", value)
		}
		q.min = value
	case "max":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("quantizer max must be finite: %f", value)
		}
		q.max = value
	default:
		return fmt.Errorf("quantizer: unknown parameter %q", key)
	}
	return nil
}

// Reset is a no-op; the quantizer is stateless.
func (q *Quantizer) Reset() {}
