package rig

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-rig/config"
)

// Set stores a numeric value for a slider, MIDI or OSC control. Slider
// values clamp into [min, max]; MIDI and OSC values are normalized and
// clamp into [0, 1]. Other kinds derive their value and reject writes.
func (h *Hub) Set(name string, value float64) error {
	if target, ok := h.aliases[name]; ok {
		name = target
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("set %q: value must be finite: %f", name, value)
	}

	st, ok := h.states[name]
	if !ok {
		return fmt.Errorf("set %q: %w", name, ErrUnknownControl)
	}

	switch st.cfg.Kind {
	case config.KindSlider:
		s := st.cfg.Slider
		h.sliders.Set(name, clampRange(value, s.Min, s.Max))
		return nil
	case config.KindMIDI:
		h.midi.Set(name, clampRange(value, 0, 1))
		return nil
	case config.KindOSC:
		h.osc.Set(name, clampRange(value, 0, 1))
		return nil
	}
	return fmt.Errorf("set %q: %s controls are not directly settable", name, st.cfg.Kind)
}

// SetBool stores a checkbox value.
func (h *Hub) SetBool(name string, value bool) error {
	if target, ok := h.aliases[name]; ok {
		name = target
	}
	st, ok := h.states[name]
	if !ok {
		return fmt.Errorf("set %q: %w", name, ErrUnknownControl)
	}
	if st.cfg.Kind != config.KindCheckbox {
		return fmt.Errorf("set %q: %s controls do not hold a boolean", name, st.cfg.Kind)
	}
	h.checks.Set(name, value)
	return nil
}

// SetString stores a select value. The value must be one of the
// control's options.
func (h *Hub) SetString(name, value string) error {
	if target, ok := h.aliases[name]; ok {
		name = target
	}
	st, ok := h.states[name]
	if !ok {
		return fmt.Errorf("set %q: %w", name, ErrUnknownControl)
	}
	if st.cfg.Kind != config.KindSelect {
		return fmt.Errorf("set %q: %s controls do not hold a string", name, st.cfg.Kind)
	}
	if !containsOption(st.cfg.Select.Options, value) {
		return fmt.Errorf("set %q: %q is not an option", name, value)
	}
	h.selects.Set(name, value)
	return nil
}
