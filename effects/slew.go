package effects

import (
	"fmt"
	"math"

	"github.com/fogleman/ease"
)

const (
	defaultSlewRise = 0.5
	defaultSlewFall = 0.5
)

// SlewLimiterOption mutates slew limiter construction parameters.
type SlewLimiterOption func(*slewLimiterConfig) error

type slewLimiterConfig struct {
	rise float64
	fall float64
}

func defaultSlewLimiterConfig() slewLimiterConfig {
	return slewLimiterConfig{rise: defaultSlewRise, fall: defaultSlewFall}
}

// WithSlewLimiterRise sets the rise amount in [0, 1]. 0 follows upward
// steps instantly, 1 freezes them.
func WithSlewLimiterRise(rise float64) SlewLimiterOption {
	return func(cfg *slewLimiterConfig) error {
		if rise < 0 || rise > 1 || math.IsNaN(rise) {
			return fmt.Errorf("slew limiter rise must be in [0, 1]: %f", rise)
		}
		cfg.rise = rise
		return nil
	}
}

// WithSlewLimiterFall sets the fall amount in [0, 1].
func WithSlewLimiterFall(fall float64) SlewLimiterOption {
	return func(cfg *slewLimiterConfig) error {
		if fall < 0 || fall > 1 || math.IsNaN(fall) {
			return fmt.Errorf("slew limiter fall must be in [0, 1]: %f", fall)
		}
		cfg.fall = fall
		return nil
	}
}

// SlewLimiter smooths value changes with an asymmetric one-pole: upward
// movement uses the rise amount, downward the fall amount. Amounts map
// through an eased curve so fine control concentrates near 1.
type SlewLimiter struct {
	rise float64
	fall float64

	current float64
	primed  bool
}

// NewSlewLimiter creates a slew limiter with practical defaults and
// optional overrides.
func NewSlewLimiter(opts ...SlewLimiterOption) (*SlewLimiter, error) {
	cfg := defaultSlewLimiterConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &SlewLimiter{rise: cfg.rise, fall: cfg.fall}, nil
}

// Apply moves the smoothed value toward the target. The first call after
// construction or Reset snaps to the target.
func (s *SlewLimiter) Apply(value float64) float64 {
	if !s.primed {
		s.current = value
		s.primed = true
		return s.current
	}
	amount := s.fall
	if value > s.current {
		amount = s.rise
	}
	s.current += (value - s.current) * slewGain(amount)
	return s.current
}

// SetParam updates a parameter by its configuration key.
func (s *SlewLimiter) SetParam(key string, value float64) error {
	if value < 0 || value > 1 || math.IsNaN(value) {
		return fmt.Errorf("slew limiter %s must be in [0, 1]: %f", key, value)
	}
	switch key {
	case "rise":
		s.rise = value
	case "fall":
		s.fall = value
	default:
		return fmt.Errorf("slew limiter: unknown parameter %q", key)
	}
	return nil
}

// Reset clears the smoothing state; the next Apply snaps to its input.
func (s *SlewLimiter) Reset() {
	s.current = 0
	s.primed = false
}

// slewGain maps an amount in [0, 1] to a per-frame smoothing gain; 0 is
// instant, 1 is frozen.
func slewGain(amount float64) float64 {
	return 1 - ease.InCubic(clamp(amount, 0, 1))
}
