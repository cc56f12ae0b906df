package config

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-rig/automate"
	"github.com/cwbudde/algo-rig/effects"
)

// Kind identifies a control type.
type Kind int

const (
	KindSlider Kind = iota
	KindCheckbox
	KindSelect
	KindSeparator
	KindMIDI
	KindOSC
	KindAudio
	KindTriangle
	KindRandom
	KindRandomSlewed
	KindAutomate
	KindMod
	KindEffect
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSlider:
		return "slider"
	case KindCheckbox:
		return "checkbox"
	case KindSelect:
		return "select"
	case KindSeparator:
		return "separator"
	case KindMIDI:
		return "midi"
	case KindOSC:
		return "osc"
	case KindAudio:
		return "audio"
	case KindTriangle:
		return "triangle"
	case KindRandom:
		return "random"
	case KindRandomSlewed:
		return "random_slewed"
	case KindAutomate:
		return "automate"
	case KindMod:
		return "mod"
	case KindEffect:
		return "effect"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindByName maps a configuration name to a kind.
func KindByName(name string) (Kind, error) {
	switch name {
	case "slider":
		return KindSlider, nil
	case "checkbox":
		return KindCheckbox, nil
	case "select":
		return KindSelect, nil
	case "separator":
		return KindSeparator, nil
	case "midi":
		return KindMIDI, nil
	case "osc":
		return KindOSC, nil
	case "audio":
		return KindAudio, nil
	case "triangle":
		return KindTriangle, nil
	case "random":
		return KindRandom, nil
	case "random_slewed":
		return KindRandomSlewed, nil
	case "automate":
		return KindAutomate, nil
	case "mod":
		return KindMod, nil
	case "effect":
		return KindEffect, nil
	default:
		return 0, fmt.Errorf("unknown control type: %q", name)
	}
}

// Band selects the spectral slice an audio control follows.
type Band int

const (
	BandFull Band = iota
	BandLow
	BandMid
	BandHigh
)

// String returns the configuration name of the band.
func (b Band) String() string {
	switch b {
	case BandFull:
		return "all"
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	case BandHigh:
		return "high"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}

// BandByName maps a configuration name to a band. The empty string is
// the full-band follower.
func BandByName(name string) (Band, error) {
	switch name {
	case "", "all":
		return BandFull, nil
	case "low":
		return BandLow, nil
	case "mid":
		return BandMid, nil
	case "high":
		return BandHigh, nil
	default:
		return 0, fmt.Errorf("unknown audio band: %q", name)
	}
}

// EffectKind identifies an effect processor family.
type EffectKind int

const (
	EffectHysteresis EffectKind = iota
	EffectQuantizer
	EffectSlew
	EffectSaturator
	EffectWaveFolder
	EffectRingMod
	EffectMath
)

// String returns the configuration name of the effect kind.
func (k EffectKind) String() string {
	switch k {
	case EffectHysteresis:
		return "hysteresis"
	case EffectQuantizer:
		return "quantizer"
	case EffectSlew:
		return "slew_limiter"
	case EffectSaturator:
		return "saturator"
	case EffectWaveFolder:
		return "wave_folder"
	case EffectRingMod:
		return "ring_modulator"
	case EffectMath:
		return "math"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// EffectKindByName maps a configuration name to an effect kind.
func EffectKindByName(name string) (EffectKind, error) {
	switch name {
	case "hysteresis":
		return EffectHysteresis, nil
	case "quantizer":
		return EffectQuantizer, nil
	case "slew_limiter":
		return EffectSlew, nil
	case "saturator":
		return EffectSaturator, nil
	case "wave_folder":
		return EffectWaveFolder, nil
	case "ring_modulator":
		return EffectRingMod, nil
	case "math":
		return EffectMath, nil
	default:
		return 0, fmt.Errorf("unknown effect: %q", name)
	}
}

// Document is one parsed configuration: the alias table plus every
// control, keyed by name, with document order preserved.
type Document struct {
	Aliases  map[string]string
	Controls map[string]*Control
	names    []string
}

// Names returns control names in document order.
func (d *Document) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Control looks up a control by name.
func (d *Document) Control(name string) (*Control, bool) {
	c, ok := d.Controls[name]
	return c, ok
}

// Control is one parsed control definition. Exactly the spec matching
// Kind is non-nil.
type Control struct {
	Name       string
	Kind       Kind
	Bypass     *float64
	Modulators []string

	Slider       *SliderSpec
	Checkbox     *CheckboxSpec
	Select       *SelectSpec
	MIDI         *MIDISpec
	OSC          *OSCSpec
	Audio        *AudioSpec
	Triangle     *TriangleSpec
	Random       *RandomSpec
	RandomSlewed *RandomSlewedSpec
	Automate     *AutomateSpec
	Mod          *ModSpec
	Effect       *EffectSpec
}

// SliderSpec is a directly settable scalar control.
type SliderSpec struct {
	Min     float64
	Max     float64
	Default float64
}

// CheckboxSpec is a directly settable boolean control.
type CheckboxSpec struct {
	Default bool
}

// SelectSpec is a directly settable choice control.
type SelectSpec struct {
	Options []string
	Default string
}

// MIDISpec binds a control to a Control Change number. The received
// 7-bit (or paired 14-bit) value normalizes to [0, 1] and maps into
// [Min, Max] when read.
type MIDISpec struct {
	Channel uint8
	CC      uint8
	Min     Param
	Max     Param
	Default float64
}

// OSCSpec binds a control to an OSC address. Received values map into
// [Min, Max] when read.
type OSCSpec struct {
	Address string
	Min     Param
	Max     Param
	Default float64
}

// AudioSpec derives a control from live input level: optional band
// isolation, pre-emphasis, peak/RMS blend, asymmetric slew, then a map
// into [Min, Max].
type AudioSpec struct {
	Channel     int
	Band        Band
	PreEmphasis Param
	Detect      Param
	Rise        Param
	Fall        Param
	Min         Param
	Max         Param
}

// TriangleSpec is a beat-synced triangle oscillator.
type TriangleSpec struct {
	Period Param
	Min    Param
	Max    Param
	Phase  Param
}

// RandomSpec holds a seeded random value per beat interval.
type RandomSpec struct {
	Period Param
	Min    Param
	Max    Param
	Delay  Param
	Seed   uint64
}

// RandomSlewedSpec is RandomSpec smoothed by an asymmetric slew.
type RandomSlewedSpec struct {
	Period Param
	Min    Param
	Max    Param
	Rise   Param
	Fall   Param
	Delay  Param
	Seed   uint64
}

// BreakpointSpec is one vertex of an automation curve. Position and the
// structural fields are fixed at load time; Value, Frequency, Amplitude
// and Width may be live references.
type BreakpointSpec struct {
	Position  float64
	Value     Param
	Kind      automate.Kind
	Easing    string
	Frequency Param
	Amplitude Param
	Width     Param
	Shape     automate.Shape
	Constrain automate.Constrain
}

// AutomateSpec is a breakpoint automation curve.
type AutomateSpec struct {
	Mode        automate.Mode
	Breakpoints []BreakpointSpec
}

// ModSpec is a control whose raw value is another parameter (usually a
// live reference), shaped by its modulator chain.
type ModSpec struct {
	Source Param
}

// EffectSpec is a named processor other controls list as a modulator.
// Exactly the field matching Kind is non-nil.
type EffectSpec struct {
	Kind       EffectKind
	Hysteresis *HysteresisEffectSpec
	Quantizer  *QuantizerEffectSpec
	Slew       *SlewEffectSpec
	Saturator  *SaturatorEffectSpec
	WaveFolder *WaveFolderEffectSpec
	RingMod    *RingModEffectSpec
	Math       *MathEffectSpec
}

// HysteresisEffectSpec configures a Schmitt trigger. Nil fields keep the
// processor defaults.
type HysteresisEffectSpec struct {
	LowerThreshold *Param
	UpperThreshold *Param
	OutputLow      *Param
	OutputHigh     *Param
	PassThrough    bool
}

// QuantizerEffectSpec configures a quantizer.
type QuantizerEffectSpec struct {
	Step *Param
	Min  *Param
	Max  *Param
}

// SlewEffectSpec configures a slew limiter.
type SlewEffectSpec struct {
	Rise *Param
	Fall *Param
}

// SaturatorEffectSpec configures a saturator.
type SaturatorEffectSpec struct {
	Drive *Param
	Min   *Param
	Max   *Param
}

// WaveFolderEffectSpec configures a wave folder.
type WaveFolderEffectSpec struct {
	Gain     *Param
	Symmetry *Param
	Bias     *Param
	Shape    *Param
	Min      *Param
	Max      *Param
}

// RingModEffectSpec configures a ring modulator.
type RingModEffectSpec struct {
	Mix       *Param
	Modulator *Param
}

// MathEffectSpec configures a math op.
type MathEffectSpec struct {
	Op      effects.MathOp
	Operand *Param
}

// HotRefs returns the control's live parameter references as a map from
// field keypath (matching the processor SetParam key or spec field) to
// the referenced control name. Nil when the control has none.
func (c *Control) HotRefs() map[string]string {
	refs := make(map[string]string)
	add := func(key string, p Param) {
		if p.IsHot() {
			refs[key] = p.Ref()
		}
	}
	addPtr := func(key string, p *Param) {
		if p != nil && p.IsHot() {
			refs[key] = p.Ref()
		}
	}

	switch c.Kind {
	case KindMIDI:
		add("min", c.MIDI.Min)
		add("max", c.MIDI.Max)
	case KindOSC:
		add("min", c.OSC.Min)
		add("max", c.OSC.Max)
	case KindAudio:
		add("pre_emphasis", c.Audio.PreEmphasis)
		add("detect", c.Audio.Detect)
		add("rise", c.Audio.Rise)
		add("fall", c.Audio.Fall)
		add("min", c.Audio.Min)
		add("max", c.Audio.Max)
	case KindTriangle:
		add("period", c.Triangle.Period)
		add("min", c.Triangle.Min)
		add("max", c.Triangle.Max)
		add("phase", c.Triangle.Phase)
	case KindRandom:
		add("period", c.Random.Period)
		add("min", c.Random.Min)
		add("max", c.Random.Max)
		add("delay", c.Random.Delay)
	case KindRandomSlewed:
		add("period", c.RandomSlewed.Period)
		add("min", c.RandomSlewed.Min)
		add("max", c.RandomSlewed.Max)
		add("rise", c.RandomSlewed.Rise)
		add("fall", c.RandomSlewed.Fall)
		add("delay", c.RandomSlewed.Delay)
	case KindAutomate:
		for i, bp := range c.Automate.Breakpoints {
			add(fmt.Sprintf("breakpoints.%d.value", i), bp.Value)
			add(fmt.Sprintf("breakpoints.%d.frequency", i), bp.Frequency)
			add(fmt.Sprintf("breakpoints.%d.amplitude", i), bp.Amplitude)
			add(fmt.Sprintf("breakpoints.%d.width", i), bp.Width)
		}
	case KindMod:
		add("source", c.Mod.Source)
	case KindEffect:
		switch c.Effect.Kind {
		case EffectHysteresis:
			addPtr("lower_threshold", c.Effect.Hysteresis.LowerThreshold)
			addPtr("upper_threshold", c.Effect.Hysteresis.UpperThreshold)
			addPtr("output_low", c.Effect.Hysteresis.OutputLow)
			addPtr("output_high", c.Effect.Hysteresis.OutputHigh)
		case EffectQuantizer:
			addPtr("step", c.Effect.Quantizer.Step)
			addPtr("min", c.Effect.Quantizer.Min)
			addPtr("max", c.Effect.Quantizer.Max)
		case EffectSlew:
			addPtr("rise", c.Effect.Slew.Rise)
			addPtr("fall", c.Effect.Slew.Fall)
		case EffectSaturator:
			addPtr("drive", c.Effect.Saturator.Drive)
			addPtr("min", c.Effect.Saturator.Min)
			addPtr("max", c.Effect.Saturator.Max)
		case EffectWaveFolder:
			addPtr("gain", c.Effect.WaveFolder.Gain)
			addPtr("symmetry", c.Effect.WaveFolder.Symmetry)
			addPtr("bias", c.Effect.WaveFolder.Bias)
			addPtr("shape", c.Effect.WaveFolder.Shape)
			addPtr("min", c.Effect.WaveFolder.Min)
			addPtr("max", c.Effect.WaveFolder.Max)
		case EffectRingMod:
			addPtr("mix", c.Effect.RingMod.Mix)
			addPtr("modulator", c.Effect.RingMod.Modulator)
		case EffectMath:
			addPtr("operand", c.Effect.Math.Operand)
		}
	case KindSlider, KindCheckbox, KindSelect, KindSeparator:
		// Directly settable controls carry no live references.
	}

	if len(refs) == 0 {
		return nil
	}
	return refs
}

// Dependencies returns every control name this control reads, sorted:
// its live parameter references plus its modulators. Nil when
// independent.
func (c *Control) Dependencies() []string {
	seen := make(map[string]struct{})
	var deps []string
	push := func(name string) {
		if name == "" || name == c.Name {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		deps = append(deps, name)
	}

	for _, ref := range c.HotRefs() {
		push(ref)
	}
	for _, m := range c.Modulators {
		push(m)
	}
	sort.Strings(deps)
	return deps
}
