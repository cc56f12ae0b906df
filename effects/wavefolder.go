package effects

import (
	"fmt"
	"math"
)

const (
	defaultWaveFolderGain     = 1.0
	defaultWaveFolderSymmetry = 0.5
	defaultWaveFolderBias     = 0.0
	defaultWaveFolderShape    = 0.0
	defaultWaveFolderMin      = 0.0
	defaultWaveFolderMax      = 1.0

	// Reflection passes before giving up and clamping.
	maxFoldIterations = 16
)

// WaveFolderOption mutates wave folder construction parameters.
type WaveFolderOption func(*waveFolderConfig) error

type waveFolderConfig struct {
	gain     float64
	symmetry float64
	bias     float64
	shape    float64
	min      float64
	max      float64
}

func defaultWaveFolderConfig() waveFolderConfig {
	return waveFolderConfig{
		gain:     defaultWaveFolderGain,
		symmetry: defaultWaveFolderSymmetry,
		bias:     defaultWaveFolderBias,
		shape:    defaultWaveFolderShape,
		min:      defaultWaveFolderMin,
		max:      defaultWaveFolderMax,
	}
}

// WithWaveFolderGain sets pre-fold gain. Gain above 1 pushes values past
// the boundaries and back, creating folds.
func WithWaveFolderGain(gain float64) WaveFolderOption {
	return func(cfg *waveFolderConfig) error {
		if gain < 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
			return fmt.Errorf("wave folder gain must be >= 0 and finite: %f", gain)
		}
		cfg.gain = gain
		return nil
	}
}

// WithWaveFolderSymmetry sets the positive/negative half balance in
// [0, 1]; 0.5 is symmetric.
func WithWaveFolderSymmetry(symmetry float64) WaveFolderOption {
	return func(cfg *waveFolderConfig) error {
		if symmetry < 0 || symmetry > 1 || math.IsNaN(symmetry) {
			return fmt.Errorf("wave folder symmetry must be in [0, 1]: %f", symmetry)
		}
		cfg.symmetry = symmetry
		return nil
	}
}

// WithWaveFolderBias sets a pre-fold offset.
func WithWaveFolderBias(bias float64) WaveFolderOption {
	return func(cfg *waveFolderConfig) error {
		if math.IsNaN(bias) || math.IsInf(bias, 0) {
			return fmt.Errorf("wave folder bias must be finite: %f", bias)
		}
		cfg.bias = bias
		return nil
	}
}

// WithWaveFolderShape sets the post-fold curve exponent control in
// [-1, 1]; 0 is linear.
func WithWaveFolderShape(shape float64) WaveFolderOption {
	return func(cfg *waveFolderConfig) error {
		if shape < -1 || shape > 1 || math.IsNaN(shape) {
			return fmt.Errorf("wave folder shape must be in [-1, 1]: %f", shape)
		}
		cfg.shape = shape
		return nil
	}
}

// WithWaveFolderRange sets the value range folded over.
func WithWaveFolderRange(min, max float64) WaveFolderOption {
	return func(cfg *waveFolderConfig) error {
		if math.IsNaN(min) || math.IsInf(min, 0) || math.IsNaN(max) || math.IsInf(max, 0) {
			return fmt.Errorf("wave folder range must be finite: %f, %f", min, max)
		}
		if min >= max {
			return fmt.Errorf("wave folder range min must be < max: %f >= %f", min, max)
		}
		cfg.min = min
		cfg.max = max
		return nil
	}
}

// WaveFolder reflects overdriven values back into range. The range maps
// onto [-1, 1]; gain, per-half symmetry scaling and bias push values past
// the boundaries, repeated reflection folds them back, and a shape
// exponent bends the result.
type WaveFolder struct {
	gain     float64
	symmetry float64
	bias     float64
	shape    float64
	min      float64
	max      float64
}

// NewWaveFolder creates a wave folder with practical defaults and
// optional overrides. The defaults pass values through unchanged.
func NewWaveFolder(opts ...WaveFolderOption) (*WaveFolder, error) {
	cfg := defaultWaveFolderConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &WaveFolder{
		gain:     cfg.gain,
		symmetry: cfg.symmetry,
		bias:     cfg.bias,
		shape:    cfg.shape,
		min:      cfg.min,
		max:      cfg.max,
	}, nil
}

// Apply folds one value. A degenerate range passes the value through
// unchanged.
func (w *WaveFolder) Apply(value float64) float64 {
	if w.max <= w.min {
		return value
	}
	c := 2*(clamp(value, w.min, w.max)-w.min)/(w.max-w.min) - 1
	c *= w.gain
	if c > 0 {
		c *= 2 * w.symmetry
	} else {
		c *= 2 * (1 - w.symmetry)
	}
	c += w.bias
	c = foldSigned(c)
	if w.shape != 0 {
		u := (c + 1) / 2
		c = 2*math.Pow(u, math.Pow(4, w.shape)) - 1
	}
	return w.min + (c+1)/2*(w.max-w.min)
}

// SetParam updates a parameter by its configuration key.
func (w *WaveFolder) SetParam(key string, value float64) error {
	switch key {
	case "gain":
		if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("wave folder gain must be >= 0 and finite: %f", value)
		}
		w.gain = value
	case "symmetry":
		if value < 0 || value > 1 || math.IsNaN(value) {
			return fmt.Errorf("wave folder symmetry must be in [0, 1]: %f", value)
		}
		w.symmetry = value
	case "bias":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("wave folder bias must be finite: %f", value)
		}
		w.bias = value
	case "shape":
		if value < -1 || value > 1 || math.IsNaN(value) {
			return fmt.Errorf("wave folder shape must be in [-1, 1]: %f", value)
		}
		w.shape = value
	case "min":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("wave folder min must be finite: %f", value)
		}
		w.min = value
	case "max":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("wave folder max must be finite: %f", value)
		}
		w.max = value
	default:
		return fmt.Errorf("wave folder: unknown parameter %q", key)
	}
	return nil
}

// Reset is a no-op; the wave folder is stateless.
func (w *WaveFolder) Reset() {}

// foldSigned reflects v into [-1, 1].
func foldSigned(v float64) float64 {
	for i := 0; i < maxFoldIterations; i++ {
		switch {
		case v > 1:
			v = 2 - v
		case v < -1:
			v = -2 - v
		default:
			return v
		}
	}
	return clamp(v, -1, 1)
}
