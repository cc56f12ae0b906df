package rig

import (
	"github.com/cwbudde/algo-rig/persist"
)

// ExportState captures everything worth keeping across runs: stored
// control values, snapshots and learned MIDI mappings.
func (h *Hub) ExportState() *persist.State {
	st := persist.New()

	for name, v := range h.sliders.Values() {
		st.Controls[name] = v
	}
	for name, v := range h.midi.Values() {
		st.Controls[name] = v
	}
	for name, v := range h.osc.Values() {
		st.Controls[name] = v
	}
	st.Bools = h.checks.Values()
	st.Strings = h.selects.Values()

	for id, s := range h.snapshots {
		ps := persist.Snapshot{
			Numbers: make(map[string]float64, len(s.numbers)),
			Bools:   make(map[string]bool, len(s.bools)),
			Texts:   make(map[string]string, len(s.texts)),
		}
		for k, v := range s.numbers {
			ps.Numbers[k] = v
		}
		for k, v := range s.bools {
			ps.Bools[k] = v
		}
		for k, v := range s.texts {
			ps.Texts[k] = v
		}
		st.Snapshots[id] = ps
	}

	for name, m := range h.MIDIMappings() {
		st.MIDIMappings[name] = persist.MIDIMapping{Channel: m.Channel, CC: m.CC}
	}
	return st
}

// ApplyState merges persisted state into the hub. Values for controls
// that no longer exist (or changed kind) are skipped with a debug log;
// stored snapshots merge with loaded ones, loaded ids winning.
func (h *Hub) ApplyState(st *persist.State) {
	if st == nil {
		return
	}

	for name, v := range st.Controls {
		if err := h.Set(name, v); err != nil {
			h.logger.Debug("skip persisted value", "name", name, "err", err)
		}
	}
	for name, v := range st.Bools {
		if err := h.SetBool(name, v); err != nil {
			h.logger.Debug("skip persisted value", "name", name, "err", err)
		}
	}
	for name, v := range st.Strings {
		if err := h.SetString(name, v); err != nil {
			h.logger.Debug("skip persisted value", "name", name, "err", err)
		}
	}

	for id, ps := range st.Snapshots {
		s := &snapshot{
			numbers: make(map[string]float64, len(ps.Numbers)),
			bools:   make(map[string]bool, len(ps.Bools)),
			texts:   make(map[string]string, len(ps.Texts)),
		}
		for k, v := range ps.Numbers {
			s.numbers[k] = v
		}
		for k, v := range ps.Bools {
			s.bools[k] = v
		}
		for k, v := range ps.Texts {
			s.texts[k] = v
		}
		h.snapshots[id] = s
	}

	for name, m := range st.MIDIMappings {
		h.SetMIDIMapping(name, MIDIMapping{Channel: m.Channel, CC: m.CC})
	}
}
