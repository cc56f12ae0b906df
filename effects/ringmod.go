package effects

import (
	"fmt"
	"math"
)

const (
	defaultRingModMix       = 0.5
	defaultRingModModulator = 1.0
)

// RingModOption mutates ring modulator construction parameters.
type RingModOption func(*ringModConfig) error

type ringModConfig struct {
	mix       float64
	modulator float64
}

func defaultRingModConfig() ringModConfig {
	return ringModConfig{mix: defaultRingModMix, modulator: defaultRingModModulator}
}

// WithRingModMix sets the blend position in [0, 1]: 0 is the carrier
// alone, 0.5 the true ring product, 1 the modulator alone.
func WithRingModMix(mix float64) RingModOption {
	return func(cfg *ringModConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("ring modulator mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// WithRingModModulator sets the initial modulator value. A live
// modulator arrives per frame through SetParam.
func WithRingModModulator(modulator float64) RingModOption {
	return func(cfg *ringModConfig) error {
		if math.IsNaN(modulator) || math.IsInf(modulator, 0) {
			return fmt.Errorf("ring modulator modulator must be finite: %f", modulator)
		}
		cfg.modulator = modulator
		return nil
	}
}

// RingMod blends a carrier against its ring product with a second
// signal. Sweeping the mix moves continuously from carrier through the
// product to the bare modulator.
type RingMod struct {
	mix       float64
	modulator float64
}

// NewRingMod creates a ring modulator with practical defaults and
// optional overrides.
func NewRingMod(opts ...RingModOption) (*RingMod, error) {
	cfg := defaultRingModConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &RingMod{mix: cfg.mix, modulator: cfg.modulator}, nil
}

// Apply blends one carrier value.
func (r *RingMod) Apply(value float64) float64 {
	product := value * r.modulator
	if r.mix <= 0.5 {
		return lerp(value, product, 2*r.mix)
	}
	return lerp(product, r.modulator, 2*r.mix-1)
}

// SetParam updates a parameter by its configuration key.
func (r *RingMod) SetParam(key string, value float64) error {
	switch key {
	case "mix":
		if value < 0 || value > 1 || math.IsNaN(value) {
			return fmt.Errorf("ring modulator mix must be in [0, 1]: %f", value)
		}
		r.mix = value
	case "modulator":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("ring modulator modulator must be finite: %f", value)
		}
		r.modulator = value
	default:
		return fmt.Errorf("ring modulator: unknown parameter %q", key)
	}
	return nil
}

// Reset is a no-op; the ring modulator is stateless.
func (r *RingMod) Reset() {}
