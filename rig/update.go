package rig

// Update advances the hub by one frame: it applies any pending config
// reload, advances the clock, rotates the changed-control set and
// finishes an expired snapshot transition. Call it once per render
// frame before reading values.
func (h *Hub) Update() {
	if h.watcher != nil {
		if doc, ok := h.watcher.Drain(); ok {
			if err := h.ApplyConfig(doc); err != nil {
				h.logger.Warn("config rejected, keeping previous", "err", err)
			} else {
				h.logger.Info("config applied", "controls", len(doc.Controls))
			}
		}
	}

	h.frame++
	if adv, ok := h.src.(interface{ Advance() }); ok {
		adv.Advance()
	}
	h.beats = h.src.Beats()

	h.rotateChanged()
	h.finalizeTransition()
}

// rotateChanged publishes the writes that landed since the previous
// frame as this frame's changed set.
func (h *Hub) rotateChanged() {
	changed := make(map[string]struct{})
	for _, name := range h.sliders.rotateDirty() {
		changed[name] = struct{}{}
	}
	for _, name := range h.checks.rotateDirty() {
		changed[name] = struct{}{}
	}
	for _, name := range h.selects.rotateDirty() {
		changed[name] = struct{}{}
	}
	for _, name := range h.midi.rotateDirty() {
		changed[name] = struct{}{}
	}
	for _, name := range h.osc.rotateDirty() {
		changed[name] = struct{}{}
	}
	h.lastChanged = changed
}

func (h *Hub) finalizeTransition() {
	t := h.transition
	if t == nil || h.frame < t.end {
		return
	}
	h.commitTransition(t)
}

// commitTransition writes the transition targets into the stored values
// and notifies completion callbacks.
func (h *Hub) commitTransition(t *transition) {
	for _, item := range t.items {
		// Vanished controls were already skipped at recall; a reload
		// mid-transition may still remove one, so ignore the error.
		_ = h.Set(item.name, item.to)
	}
	h.transition = nil
	for _, fn := range h.endCallbacks {
		fn(t.id)
	}
}
