package rig

import (
	"fmt"

	"github.com/cwbudde/algo-rig/audioin"
	"github.com/cwbudde/algo-rig/automate"
	"github.com/cwbudde/algo-rig/config"
	"github.com/cwbudde/algo-rig/effects"
	"github.com/cwbudde/algo-rig/graph"
)

// controlState is the per-control runtime the hub rebuilds on every
// configuration apply. The stateful members start fresh; stored values
// live in the collections and survive.
type controlState struct {
	cfg     *config.Control
	hotRefs map[string]string

	slew     *effects.SlewLimiter // random_slewed smoothing
	detector *audioin.Detector    // audio envelope
	proc     effects.Processor    // effect controls
	bps      []automate.Breakpoint
}

// ApplyConfig swaps in a new configuration document: controls, graph,
// cache, aliases, bypass table and effect instances are rebuilt, while
// stored values of surviving same-kind controls, snapshots, learned
// mappings and any active transition carry over. Every control reads as
// changed on the following frame.
//
// Main-loop only, like Update and the getters.
func (h *Hub) ApplyConfig(doc *config.Document) error {
	if doc == nil {
		return fmt.Errorf("apply config: document must not be nil")
	}

	states := make(map[string]*controlState, len(doc.Controls))
	for _, name := range doc.Names() {
		c, _ := doc.Control(name)
		st, err := h.buildState(c)
		if err != nil {
			return fmt.Errorf("apply config: %w", err)
		}
		states[name] = st
	}

	deps := make(map[string][]string, len(states))
	for name, st := range states {
		var mapped []string
		for _, d := range st.cfg.Dependencies() {
			if target, ok := doc.Aliases[d]; ok {
				d = target
			}
			if d == name {
				continue
			}
			mapped = append(mapped, d)
		}
		deps[name] = mapped
	}
	g, err := graph.New(deps)
	if err != nil {
		return fmt.Errorf("apply config: %w", err)
	}

	for _, name := range doc.Names() {
		c := states[name].cfg
		switch c.Kind {
		case config.KindSlider:
			h.sliders.Add(name, c.Slider, c.Slider.Default)
		case config.KindCheckbox:
			h.checks.Add(name, c.Checkbox, c.Checkbox.Default)
		case config.KindSelect:
			h.selects.Add(name, c.Select, c.Select.Default)
		case config.KindMIDI:
			h.midi.Add(name, c.MIDI, c.MIDI.Default)
		case config.KindOSC:
			h.osc.Add(name, c.OSC, c.OSC.Default)
		case config.KindAudio:
			h.audio.Add(name, c.Audio, 0)
		}
	}
	h.sweepStale(states)

	// A surviving select whose stored option vanished falls back to the
	// new default.
	for name, v := range h.selects.Values() {
		st, ok := states[name]
		if !ok || st.cfg.Kind != config.KindSelect {
			continue
		}
		if !containsOption(st.cfg.Select.Options, v) {
			h.selects.Set(name, st.cfg.Select.Default)
		}
	}

	aliases := make(map[string]string, len(doc.Aliases))
	for alias, target := range doc.Aliases {
		aliases[alias] = target
	}

	bypass := make(map[string]float64)
	for name, st := range states {
		if st.cfg.Bypass != nil {
			bypass[name] = *st.cfg.Bypass
		}
	}

	h.doc = doc
	h.states = states
	h.graph = g
	h.aliases = aliases
	h.bypass = bypass
	h.cache.Clear()

	h.rebuildCCIndex(doc)
	h.rebuildOSCIndex(doc)

	for name, st := range states {
		switch st.cfg.Kind {
		case config.KindSlider:
			h.sliders.markDirty(name)
		case config.KindCheckbox:
			h.checks.markDirty(name)
		case config.KindSelect:
			h.selects.markDirty(name)
		case config.KindMIDI:
			h.midi.markDirty(name)
		case config.KindOSC:
			h.osc.markDirty(name)
		}
	}

	return nil
}

func (h *Hub) buildState(c *config.Control) (*controlState, error) {
	st := &controlState{cfg: c, hotRefs: c.HotRefs()}

	switch c.Kind {
	case config.KindRandomSlewed:
		var opts []effects.SlewLimiterOption
		if !c.RandomSlewed.Rise.IsHot() {
			opts = append(opts, effects.WithSlewLimiterRise(c.RandomSlewed.Rise.Value()))
		}
		if !c.RandomSlewed.Fall.IsHot() {
			opts = append(opts, effects.WithSlewLimiterFall(c.RandomSlewed.Fall.Value()))
		}
		slew, err := effects.NewSlewLimiter(opts...)
		if err != nil {
			return nil, fmt.Errorf("control %q: %w", c.Name, err)
		}
		st.slew = slew

	case config.KindAudio:
		st.detector = &audioin.Detector{}

	case config.KindEffect:
		proc, err := c.Effect.Build()
		if err != nil {
			return nil, fmt.Errorf("control %q: %w", c.Name, err)
		}
		st.proc = proc

	case config.KindAutomate:
		st.bps = make([]automate.Breakpoint, len(c.Automate.Breakpoints))
		for i, b := range c.Automate.Breakpoints {
			easing, err := automate.EasingByName(b.Easing)
			if err != nil {
				return nil, fmt.Errorf("control %q: %w", c.Name, err)
			}
			st.bps[i] = automate.Breakpoint{
				Position:  b.Position,
				Value:     b.Value.Value(),
				Kind:      b.Kind,
				Easing:    easing,
				Frequency: b.Frequency.Value(),
				Amplitude: b.Amplitude.Value(),
				Width:     b.Width.Value(),
				Shape:     b.Shape,
				Constrain: b.Constrain,
			}
		}
	}

	return st, nil
}

// sweepStale drops collection entries whose name vanished or changed
// kind in the new document.
func (h *Hub) sweepStale(states map[string]*controlState) {
	keep := func(name string, kind config.Kind) bool {
		st, ok := states[name]
		return ok && st.cfg.Kind == kind
	}

	for name := range h.sliders.Values() {
		if !keep(name, config.KindSlider) {
			h.sliders.Remove(name)
		}
	}
	for name := range h.checks.Values() {
		if !keep(name, config.KindCheckbox) {
			h.checks.Remove(name)
		}
	}
	for name := range h.selects.Values() {
		if !keep(name, config.KindSelect) {
			h.selects.Remove(name)
		}
	}
	for name := range h.midi.Values() {
		if !keep(name, config.KindMIDI) {
			h.midi.Remove(name)
		}
	}
	for name := range h.osc.Values() {
		if !keep(name, config.KindOSC) {
			h.osc.Remove(name)
		}
	}
	for name := range h.audio.Values() {
		if !keep(name, config.KindAudio) {
			h.audio.Remove(name)
		}
	}
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
