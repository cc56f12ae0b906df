package effects

import (
	"fmt"
	"math"
)

const (
	defaultSaturatorDrive = 1.0
	defaultSaturatorMin   = 0.0
	defaultSaturatorMax   = 1.0
)

// SaturatorOption mutates saturator construction parameters.
type SaturatorOption func(*saturatorConfig) error

type saturatorConfig struct {
	drive float64
	min   float64
	max   float64
}

func defaultSaturatorConfig() saturatorConfig {
	return saturatorConfig{
		drive: defaultSaturatorDrive,
		min:   defaultSaturatorMin,
		max:   defaultSaturatorMax,
	}
}

// WithSaturatorDrive sets the drive amount. Values >= 1 steepen the tanh
// curve; values below 1 blend toward the dry signal.
func WithSaturatorDrive(drive float64) SaturatorOption {
	return func(cfg *saturatorConfig) error {
		if drive <= 0 || math.IsNaN(drive) || math.IsInf(drive, 0) {
			return fmt.Errorf("saturator drive must be > 0 and finite: %f", drive)
		}
		cfg.drive = drive
		return nil
	}
}

// WithSaturatorRange sets the value range mapped onto the tanh curve.
func WithSaturatorRange(min, max float64) SaturatorOption {
	return func(cfg *saturatorConfig) error {
		if math.IsNaN(min) || math.IsInf(min, 0) || math.IsNaN(max) || math.IsInf(max, 0) {
			return fmt.Errorf("saturator range must be finite: %f, %f", min, max)
		}
		if min >= max {
			return fmt.Errorf("saturator range min must be < max: %f >= %f", min, max)
		}
		cfg.min = min
		cfg.max = max
		return nil
	}
}

// Saturator soft-clips values through a normalized tanh curve. The range
// maps onto [-1, 1]; output is normalized so the range endpoints stay
// fixed regardless of drive.
type Saturator struct {
	drive float64
	min   float64
	max   float64
}

// NewSaturator creates a saturator with practical defaults and optional
// overrides.
func NewSaturator(opts ...SaturatorOption) (*Saturator, error) {
	cfg := defaultSaturatorConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Saturator{drive: cfg.drive, min: cfg.min, max: cfg.max}, nil
}

// Apply soft-clips one value. A degenerate range passes the value
// through unchanged.
func (s *Saturator) Apply(value float64) float64 {
	if s.max <= s.min {
		return value
	}
	x := 2*(clamp(value, s.min, s.max)-s.min)/(s.max-s.min) - 1
	var y float64
	if s.drive >= 1 {
		y = math.Tanh(x*s.drive) / math.Tanh(s.drive)
	} else {
		// Sub-unity drive fades the curve back toward identity.
		y = (1-s.drive)*x + s.drive*math.Tanh(x)/math.Tanh(1)
	}
	return s.min + (y+1)/2*(s.max-s.min)
}

// SetParam updates a parameter by its configuration key. Range bounds
// are validated for finiteness only, so live updates that move both
// bounds may cross transiently.
func (s *Saturator) SetParam(key string, value float64) error {
	switch key {
	case "drive":
		if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("saturator drive must be > 0 and finite: %f", value)
		}
		s.drive = value
	case "min":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("saturator min must be finite: %f", value)
		}
		s.min = value
	case "max":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("saturator max must be finite: %f", value)
		}
		s.max = value
	default:
		return fmt.Errorf("saturator: unknown parameter %q", key)
	}
	return nil
}

// Reset is a no-op; the saturator is stateless.
func (s *Saturator) Reset() {}
