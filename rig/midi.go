package rig

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-rig/config"
)

// MIDIMapping binds a control to a Control Change source. Channel is
// 1-based, matching configuration files.
type MIDIMapping struct {
	Channel uint8
	CC      uint8
}

// learnedMapping is a MIDIMapping plus the last value it carried. The
// mapping overrides Get only once a message has arrived.
type learnedMapping struct {
	MIDIMapping
	value float64
	seen  bool
}

func ccKey(channel, cc uint8) uint16 {
	return uint16(channel)<<8 | uint16(cc)
}

// rebuildCCIndex maps (channel, cc) pairs to the MIDI controls they
// feed, in document order.
func (h *Hub) rebuildCCIndex(doc *config.Document) {
	index := make(map[uint16][]string)
	for _, name := range doc.Names() {
		c, ok := doc.Control(name)
		if !ok || c.Kind != config.KindMIDI {
			continue
		}
		key := ccKey(c.MIDI.Channel, c.MIDI.CC)
		index[key] = append(index[key], name)
	}

	h.midiMu.Lock()
	h.ccIndex = index
	h.pendingMSB = make(map[uint16]uint8)
	h.midiMu.Unlock()
}

// handleMIDI runs on the gomidi listener goroutine. It only touches
// state behind midiMu and the collections' own locks.
func (h *Hub) handleMIDI(msg midi.Message, _ int32) {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		return
	}
	channel := ch + 1

	h.midiMu.Lock()

	if h.learnTarget != "" {
		name := h.learnTarget
		h.learnTarget = ""
		h.mappings[name] = &learnedMapping{
			MIDIMapping: MIDIMapping{Channel: channel, CC: cc},
			value:       float64(val) / 127,
			seen:        true,
		}
		h.midiMu.Unlock()
		h.logger.Info("midi mapping learned", "control", name, "channel", channel, "cc", cc)
		return
	}

	for _, m := range h.mappings {
		if m.Channel == channel && m.CC == cc {
			m.value = float64(val) / 127
			m.seen = true
		}
	}

	normalized, apply, targetCC, overwrote := h.resolveCC(channel, cc, val)

	var targets []string
	if apply {
		targets = append(targets, h.ccIndex[ccKey(channel, targetCC)]...)
	}
	h.midiMu.Unlock()

	if overwrote {
		h.logger.Warn("unresolved MSB overwritten, LSB never arrived",
			"channel", channel, "cc", cc)
	}
	for _, name := range targets {
		h.midi.Set(name, normalized)
	}
}

// resolveCC turns a CC message into a normalized value, honoring
// high-resolution CC pairing when enabled. Callers hold midiMu. The
// returned apply flag is false while an MSB waits for its LSB;
// overwrote reports a pending MSB that was replaced unpaired.
func (h *Hub) resolveCC(channel, cc, val uint8) (normalized float64, apply bool, targetCC uint8, overwrote bool) {
	if !h.hrcc || cc >= 64 {
		return float64(val) / 127, true, cc, false
	}

	if cc < 32 {
		key := ccKey(channel, cc)
		_, overwrote = h.pendingMSB[key]
		h.pendingMSB[key] = val
		return 0, false, cc, overwrote
	}

	// 32 <= cc < 64: LSB for cc-32.
	msbCC := cc - 32
	key := ccKey(channel, msbCC)
	msb, ok := h.pendingMSB[key]
	if !ok {
		return 0, false, cc, false
	}
	delete(h.pendingMSB, key)
	combined := uint16(msb)<<7 | uint16(val)
	return float64(combined) / 16383, true, msbCC, false
}

// Learn arms MIDI-learn for a control: the next Control Change message
// binds its (channel, cc) to the control and is consumed. Arming a
// second control replaces the first.
func (h *Hub) Learn(name string) error {
	if target, ok := h.aliases[name]; ok {
		name = target
	}
	if _, ok := h.states[name]; !ok {
		return fmt.Errorf("learn %q: %w", name, ErrUnknownControl)
	}

	h.midiMu.Lock()
	h.learnTarget = name
	h.midiMu.Unlock()
	h.logger.Info("midi learn armed", "control", name)
	return nil
}

// CancelLearn disarms a pending Learn.
func (h *Hub) CancelLearn() {
	h.midiMu.Lock()
	h.learnTarget = ""
	h.midiMu.Unlock()
}

// Learning reports the control a Learn call is waiting to bind.
func (h *Hub) Learning() (string, bool) {
	h.midiMu.Lock()
	defer h.midiMu.Unlock()
	return h.learnTarget, h.learnTarget != ""
}

// learnedValue returns the mapped output value for a control with an
// active learned mapping that has seen traffic.
func (h *Hub) learnedValue(name string) (float64, bool) {
	h.midiMu.Lock()
	m, ok := h.mappings[name]
	var n float64
	if ok && m.seen {
		n = m.value
	} else {
		ok = false
	}
	h.midiMu.Unlock()

	if !ok {
		return 0, false
	}
	return h.normalizedToOutput(name, n), true
}

// MIDIMappings returns the learned mappings by control name, sorted
// iteration left to callers.
func (h *Hub) MIDIMappings() map[string]MIDIMapping {
	h.midiMu.Lock()
	defer h.midiMu.Unlock()
	out := make(map[string]MIDIMapping, len(h.mappings))
	for name, m := range h.mappings {
		out[name] = m.MIDIMapping
	}
	return out
}

// SetMIDIMapping installs a mapping without the learn handshake, for
// persisted state. The mapping overrides reads once traffic arrives.
func (h *Hub) SetMIDIMapping(name string, m MIDIMapping) {
	h.midiMu.Lock()
	h.mappings[name] = &learnedMapping{MIDIMapping: m}
	h.midiMu.Unlock()
}

// RemoveMIDIMapping drops a learned mapping.
func (h *Hub) RemoveMIDIMapping(name string) {
	h.midiMu.Lock()
	delete(h.mappings, name)
	h.midiMu.Unlock()
}

// MappedControls lists controls with learned mappings, sorted.
func (h *Hub) MappedControls() []string {
	h.midiMu.Lock()
	defer h.midiMu.Unlock()
	names := make([]string, 0, len(h.mappings))
	for name := range h.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
