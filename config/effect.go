package config

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-rig/effects"
)

// Build constructs the processor this spec describes with its load-time
// parameters applied. Live-referenced parameters keep the processor
// defaults until the first resolve pushes a value.
func (e *EffectSpec) Build() (effects.Processor, error) {
	switch e.Kind {
	case EffectHysteresis:
		s := e.Hysteresis
		opts := []effects.HysteresisOption{effects.WithHysteresisPassThrough(s.PassThrough)}
		rest := make(map[string]float64)
		if coldPair(s.LowerThreshold, s.UpperThreshold) {
			opts = append(opts, effects.WithHysteresisThresholds(s.LowerThreshold.Value(), s.UpperThreshold.Value()))
		} else {
			putCold(rest, "lower_threshold", s.LowerThreshold)
			putCold(rest, "upper_threshold", s.UpperThreshold)
		}
		if coldPair(s.OutputLow, s.OutputHigh) {
			opts = append(opts, effects.WithHysteresisOutputs(s.OutputLow.Value(), s.OutputHigh.Value()))
		} else {
			putCold(rest, "output_low", s.OutputLow)
			putCold(rest, "output_high", s.OutputHigh)
		}
		h, err := effects.NewHysteresis(opts...)
		if err != nil {
			return nil, err
		}
		return h, applyParams(h, rest)

	case EffectQuantizer:
		s := e.Quantizer
		var opts []effects.QuantizerOption
		rest := make(map[string]float64)
		putCold(rest, "step", s.Step)
		if coldPair(s.Min, s.Max) {
			opts = append(opts, effects.WithQuantizerRange(s.Min.Value(), s.Max.Value()))
		} else {
			putCold(rest, "min", s.Min)
			putCold(rest, "max", s.Max)
		}
		q, err := effects.NewQuantizer(opts...)
		if err != nil {
			return nil, err
		}
		return q, applyParams(q, rest)

	case EffectSlew:
		s := e.Slew
		rest := make(map[string]float64)
		putCold(rest, "rise", s.Rise)
		putCold(rest, "fall", s.Fall)
		l, err := effects.NewSlewLimiter()
		if err != nil {
			return nil, err
		}
		return l, applyParams(l, rest)

	case EffectSaturator:
		s := e.Saturator
		var opts []effects.SaturatorOption
		rest := make(map[string]float64)
		putCold(rest, "drive", s.Drive)
		if coldPair(s.Min, s.Max) {
			opts = append(opts, effects.WithSaturatorRange(s.Min.Value(), s.Max.Value()))
		} else {
			putCold(rest, "min", s.Min)
			putCold(rest, "max", s.Max)
		}
		sat, err := effects.NewSaturator(opts...)
		if err != nil {
			return nil, err
		}
		return sat, applyParams(sat, rest)

	case EffectWaveFolder:
		s := e.WaveFolder
		var opts []effects.WaveFolderOption
		rest := make(map[string]float64)
		putCold(rest, "gain", s.Gain)
		putCold(rest, "symmetry", s.Symmetry)
		putCold(rest, "bias", s.Bias)
		putCold(rest, "shape", s.Shape)
		if coldPair(s.Min, s.Max) {
			opts = append(opts, effects.WithWaveFolderRange(s.Min.Value(), s.Max.Value()))
		} else {
			putCold(rest, "min", s.Min)
			putCold(rest, "max", s.Max)
		}
		w, err := effects.NewWaveFolder(opts...)
		if err != nil {
			return nil, err
		}
		return w, applyParams(w, rest)

	case EffectRingMod:
		s := e.RingMod
		rest := make(map[string]float64)
		putCold(rest, "mix", s.Mix)
		putCold(rest, "modulator", s.Modulator)
		r, err := effects.NewRingMod()
		if err != nil {
			return nil, err
		}
		return r, applyParams(r, rest)

	case EffectMath:
		s := e.Math
		rest := make(map[string]float64)
		putCold(rest, "operand", s.Operand)
		m, err := effects.NewMath(s.Op)
		if err != nil {
			return nil, err
		}
		return m, applyParams(m, rest)
	}
	return nil, fmt.Errorf("unknown effect: %q", e.Kind)
}

func isCold(p *Param) bool { return p != nil && !p.IsHot() }

func coldPair(a, b *Param) bool { return isCold(a) && isCold(b) }

func putCold(params map[string]float64, key string, p *Param) {
	if isCold(p) {
		params[key] = p.Value()
	}
}

// applyParams pushes values in sorted key order so errors are
// deterministic when several parameters are invalid.
func applyParams(p effects.Processor, params map[string]float64) error {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := p.SetParam(key, params[key]); err != nil {
			return err
		}
	}
	return nil
}
