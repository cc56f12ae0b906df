package rig

import (
	"github.com/cwbudde/algo-rig/automate"
	"github.com/cwbudde/algo-rig/config"
	"github.com/cwbudde/algo-rig/effects"
)

// Get resolves a control's numeric value for the current frame. The
// first matching stage wins: alias lookup, learned MIDI mapping, active
// snapshot transition, bypass literal, then the evaluated value (raw
// value shaped by the modulator chain, with dependencies resolved
// first). Unknown names log once and read 0.
//
// Reads within one frame are coherent: the first evaluation of a
// control is memoized until the next Update, so stored values written
// after it read back one frame later.
func (h *Hub) Get(name string) float64 {
	if target, ok := h.aliases[name]; ok {
		name = target
	}

	if v, ok := h.learnedValue(name); ok {
		return v
	}

	if h.transition != nil {
		if stored, ok := h.transition.valueAt(name, h.frame); ok {
			return h.storedToOutput(name, stored)
		}
	}

	if v, ok := h.bypass[name]; ok {
		return v
	}

	if _, ok := h.states[name]; !ok {
		h.warnOnce("get "+name, "unknown control", "name", name)
		return 0
	}

	for _, dep := range h.graph.DependenciesOf(name) {
		h.evalControl(dep)
	}
	return h.evalControl(name)
}

// GetBool returns a checkbox value. Unknown names log once and read
// false.
func (h *Hub) GetBool(name string) bool {
	if target, ok := h.aliases[name]; ok {
		name = target
	}
	if v, ok := h.checks.Get(name); ok {
		return v
	}
	h.warnOnce("bool "+name, "unknown boolean control", "name", name)
	return false
}

// GetString returns a select value. Unknown names log once and read "".
func (h *Hub) GetString(name string) string {
	if target, ok := h.aliases[name]; ok {
		name = target
	}
	if v, ok := h.selects.Get(name); ok {
		return v
	}
	h.warnOnce("string "+name, "unknown select control", "name", name)
	return ""
}

// evalControl computes and caches one control's value for the current
// frame. Dependencies must already be resolvable (they either sit in
// the cache or resolve through Get's override stages).
func (h *Hub) evalControl(name string) float64 {
	if v, ok := h.cache.Get(name, h.frame); ok {
		return v
	}

	st, ok := h.states[name]
	if !ok {
		h.warnOnce("get "+name, "unknown control", "name", name)
		h.cache.Put(name, h.frame, 0)
		return 0
	}

	v := h.modulate(st, h.rawValue(st))
	h.cache.Put(name, h.frame, v)
	return v
}

func (h *Hub) rawValue(st *controlState) float64 {
	c := st.cfg
	switch c.Kind {
	case config.KindSlider:
		v, _ := h.sliders.Get(c.Name)
		return clampRange(v, c.Slider.Min, c.Slider.Max)

	case config.KindCheckbox:
		if b, _ := h.checks.Get(c.Name); b {
			return 1
		}
		return 0

	case config.KindSelect:
		v, _ := h.selects.Get(c.Name)
		for i, o := range c.Select.Options {
			if o == v {
				return float64(i)
			}
		}
		return 0

	case config.KindMIDI:
		n, _ := h.midi.Get(c.Name)
		lo := h.resolveParam(c.MIDI.Min)
		hi := h.resolveParam(c.MIDI.Max)
		return lo + n*(hi-lo)

	case config.KindOSC:
		n, _ := h.osc.Get(c.Name)
		lo := h.resolveParam(c.OSC.Min)
		hi := h.resolveParam(c.OSC.Max)
		return lo + n*(hi-lo)

	case config.KindAudio:
		return h.audioValue(st)

	case config.KindTriangle:
		t := c.Triangle
		return automate.Triangle(h.beats,
			h.resolveParam(t.Period),
			h.resolveParam(t.Min),
			h.resolveParam(t.Max),
			h.resolveParam(t.Phase))

	case config.KindRandom:
		r := c.Random
		return automate.RandomHold(h.beats,
			h.resolveParam(r.Period),
			h.resolveParam(r.Min),
			h.resolveParam(r.Max),
			h.resolveParam(r.Delay),
			r.Seed)

	case config.KindRandomSlewed:
		return h.randomSlewedValue(st)

	case config.KindAutomate:
		return h.automateValue(st)

	case config.KindMod:
		return h.resolveParam(c.Mod.Source)

	case config.KindSeparator, config.KindEffect:
		// Separators carry no value; effects transform other controls
		// and read 0 when queried directly.
		return 0
	}
	return 0
}

func (h *Hub) randomSlewedValue(st *controlState) float64 {
	r := st.cfg.RandomSlewed
	target := automate.RandomHold(h.beats,
		h.resolveParam(r.Period),
		h.resolveParam(r.Min),
		h.resolveParam(r.Max),
		h.resolveParam(r.Delay),
		r.Seed)

	if r.Rise.IsHot() {
		h.setParamLogged(st.cfg.Name, st.slew, "rise", h.Get(r.Rise.Ref()))
	}
	if r.Fall.IsHot() {
		h.setParamLogged(st.cfg.Name, st.slew, "fall", h.Get(r.Fall.Ref()))
	}

	return st.slew.Apply(target)
}

func (h *Hub) automateValue(st *controlState) float64 {
	spec := st.cfg.Automate
	for i := range spec.Breakpoints {
		b := &spec.Breakpoints[i]
		if b.Value.IsHot() {
			st.bps[i].Value = h.Get(b.Value.Ref())
		}
		if b.Frequency.IsHot() {
			st.bps[i].Frequency = h.Get(b.Frequency.Ref())
		}
		if b.Amplitude.IsHot() {
			st.bps[i].Amplitude = h.Get(b.Amplitude.Ref())
		}
		if b.Width.IsHot() {
			st.bps[i].Width = h.Get(b.Width.Ref())
		}
	}
	return h.eval.Eval(st.bps, spec.Mode, h.beats)
}

// modulate folds the control's modulator chain over base, left to
// right. An effect modulator re-resolves its live parameters and
// applies; any other name multiplies.
func (h *Hub) modulate(st *controlState, base float64) float64 {
	for _, mod := range st.cfg.Modulators {
		name := mod
		if target, ok := h.aliases[name]; ok {
			name = target
		}
		if ms, ok := h.states[name]; ok && ms.cfg.Kind == config.KindEffect {
			for key, ref := range ms.hotRefs {
				h.setParamLogged(name, ms.proc, key, h.Get(ref))
			}
			base = ms.proc.Apply(base)
			continue
		}
		base *= h.Get(mod)
	}
	return base
}

func (h *Hub) resolveParam(p config.Param) float64 {
	return p.Resolve(h.Get)
}

// setParamLogged feeds a live value into a processor parameter; values
// the processor rejects keep the prior setting and log once.
func (h *Hub) setParamLogged(control string, p effects.Processor, key string, value float64) {
	if err := p.SetParam(key, value); err != nil {
		h.warnOnce("param "+control+"."+key, "live parameter rejected",
			"control", control, "param", key, "err", err)
	}
}

// storedToOutput maps a stored-domain value to the control's output
// domain: normalized MIDI/OSC values map into their configured range,
// everything else passes through.
func (h *Hub) storedToOutput(name string, stored float64) float64 {
	st, ok := h.states[name]
	if !ok {
		return stored
	}
	switch st.cfg.Kind {
	case config.KindMIDI:
		lo := h.resolveParam(st.cfg.MIDI.Min)
		hi := h.resolveParam(st.cfg.MIDI.Max)
		return lo + stored*(hi-lo)
	case config.KindOSC:
		lo := h.resolveParam(st.cfg.OSC.Min)
		hi := h.resolveParam(st.cfg.OSC.Max)
		return lo + stored*(hi-lo)
	}
	return stored
}

// normalizedToOutput maps a [0, 1] value into the control's output
// range, for learned MIDI mappings that know nothing about the control.
func (h *Hub) normalizedToOutput(name string, n float64) float64 {
	st, ok := h.states[name]
	if !ok {
		return n
	}
	switch st.cfg.Kind {
	case config.KindSlider:
		s := st.cfg.Slider
		return s.Min + n*(s.Max-s.Min)
	case config.KindMIDI:
		lo := h.resolveParam(st.cfg.MIDI.Min)
		hi := h.resolveParam(st.cfg.MIDI.Max)
		return lo + n*(hi-lo)
	case config.KindOSC:
		lo := h.resolveParam(st.cfg.OSC.Min)
		hi := h.resolveParam(st.cfg.OSC.Max)
		return lo + n*(hi-lo)
	}
	return n
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
