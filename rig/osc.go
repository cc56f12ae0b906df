package rig

import (
	"github.com/hypebeast/go-osc/osc"

	"github.com/cwbudde/algo-rig/config"
)

// rebuildOSCIndex maps addresses to the OSC controls they feed, in
// document order.
func (h *Hub) rebuildOSCIndex(doc *config.Document) {
	index := make(map[string][]string)
	for _, name := range doc.Names() {
		c, ok := doc.Control(name)
		if !ok || c.Kind != config.KindOSC {
			continue
		}
		index[c.OSC.Address] = append(index[c.OSC.Address], name)
	}

	h.oscMu.Lock()
	h.oscIndex = index
	h.oscMu.Unlock()
}

// handleOSC runs on the OSC server goroutine. Messages without a
// numeric argument are ignored.
func (h *Hub) handleOSC(msg *osc.Message) {
	v, ok := oscArgFloat(msg)
	if !ok {
		return
	}
	normalized := clampRange(v, 0, 1)

	h.oscMu.Lock()
	targets := append([]string(nil), h.oscIndex[msg.Address]...)
	h.oscMu.Unlock()

	for _, name := range targets {
		h.osc.Set(name, normalized)
	}
}

// oscArgFloat extracts the first numeric argument.
func oscArgFloat(msg *osc.Message) (float64, bool) {
	for _, arg := range msg.Arguments {
		switch v := arg.(type) {
		case float32:
			return float64(v), true
		case float64:
			return v, true
		case int32:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	}
	return 0, false
}
