package effects

import (
	"fmt"
	"math"
)

const (
	defaultHysteresisLowerThreshold = 0.25
	defaultHysteresisUpperThreshold = 0.75
	defaultHysteresisOutputLow      = 0.0
	defaultHysteresisOutputHigh     = 1.0
)

// HysteresisOption mutates hysteresis construction parameters.
type HysteresisOption func(*hysteresisConfig) error

type hysteresisConfig struct {
	lowerThreshold float64
	upperThreshold float64
	outputLow      float64
	outputHigh     float64
	passThrough    bool
}

func defaultHysteresisConfig() hysteresisConfig {
	return hysteresisConfig{
		lowerThreshold: defaultHysteresisLowerThreshold,
		upperThreshold: defaultHysteresisUpperThreshold,
		outputLow:      defaultHysteresisOutputLow,
		outputHigh:     defaultHysteresisOutputHigh,
	}
}

// WithHysteresisThresholds sets the lower and upper switching thresholds.
func WithHysteresisThresholds(lower, upper float64) HysteresisOption {
	return func(cfg *hysteresisConfig) error {
		if math.IsNaN(lower) || math.IsInf(lower, 0) || math.IsNaN(upper) || math.IsInf(upper, 0) {
			return fmt.Errorf("hysteresis thresholds must be finite: %f, %f", lower, upper)
		}
		if lower > upper {
			return fmt.Errorf("hysteresis lower threshold must be <= upper: %f > %f", lower, upper)
		}
		cfg.lowerThreshold = lower
		cfg.upperThreshold = upper
		return nil
	}
}

// WithHysteresisOutputs sets the latched low and high output values.
func WithHysteresisOutputs(low, high float64) HysteresisOption {
	return func(cfg *hysteresisConfig) error {
		if math.IsNaN(low) || math.IsInf(low, 0) || math.IsNaN(high) || math.IsInf(high, 0) {
			return fmt.Errorf("hysteresis outputs must be finite: %f, %f", low, high)
		}
		cfg.outputLow = low
		cfg.outputHigh = high
		return nil
	}
}

// WithHysteresisPassThrough forwards input unchanged while it sits
// between the thresholds instead of holding the latched output.
func WithHysteresisPassThrough(enabled bool) HysteresisOption {
	return func(cfg *hysteresisConfig) error {
		cfg.passThrough = enabled
		return nil
	}
}

// Hysteresis is a Schmitt trigger: the output latches high once the
// input reaches the upper threshold and low once it falls to the lower
// threshold. Between the thresholds the latched state holds, or the
// input passes through when configured.
type Hysteresis struct {
	lowerThreshold float64
	upperThreshold float64
	outputLow      float64
	outputHigh     float64
	passThrough    bool

	high bool
}

// NewHysteresis creates a hysteresis gate with practical defaults and
// optional overrides.
func NewHysteresis(opts ...HysteresisOption) (*Hysteresis, error) {
	cfg := defaultHysteresisConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Hysteresis{
		lowerThreshold: cfg.lowerThreshold,
		upperThreshold: cfg.upperThreshold,
		outputLow:      cfg.outputLow,
		outputHigh:     cfg.outputHigh,
		passThrough:    cfg.passThrough,
	}, nil
}

// Apply latches on threshold crossings and returns the latched output.
func (h *Hysteresis) Apply(value float64) float64 {
	switch {
	case value >= h.upperThreshold:
		h.high = true
	case value <= h.lowerThreshold:
		h.high = false
	default:
		if h.passThrough {
			return value
		}
	}
	if h.high {
		return h.outputHigh
	}
	return h.outputLow
}

// SetParam updates a parameter by its configuration key. Thresholds are
// validated for finiteness only, so live updates that move both may
// cross transiently; Apply checks the upper threshold first.
func (h *Hysteresis) SetParam(key string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("hysteresis %s must be finite: %f", key, value)
	}
	switch key {
	case "lower_threshold":
		h.lowerThreshold = value
	case "upper_threshold":
		h.upperThreshold = value
	case "output_low":
		h.outputLow = value
	case "output_high":
		h.outputHigh = value
	default:
		return fmt.Errorf("hysteresis: unknown parameter %q", key)
	}
	return nil
}

// Reset drops the latch back to the low state.
func (h *Hysteresis) Reset() {
	h.high = false
}

// High reports the current latch state.
func (h *Hysteresis) High() bool { return h.high }
