package rig

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// snapshot captures the freely settable control values: numeric stored
// values of sliders, MIDI and OSC controls, checkbox booleans and
// select strings. Derived controls (animation, audio, effects) are not
// captured; they follow the clock and the inputs.
type snapshot struct {
	numbers map[string]float64
	bools   map[string]bool
	texts   map[string]string
}

// transition tweens stored numeric values between two snapshots' worth
// of state over a frame span. It lives from recall until end passes.
type transition struct {
	id    string
	start uint64
	end   uint64
	items map[string]transitionItem
}

type transitionItem struct {
	name string
	from float64
	to   float64
}

// valueAt returns the interpolated stored-domain value for name, or
// false when the transition does not cover it.
func (t *transition) valueAt(name string, frame uint64) (float64, bool) {
	item, ok := t.items[name]
	if !ok {
		return 0, false
	}
	span := t.end - t.start
	if span == 0 {
		return item.to, true
	}
	f := float64(frame-t.start) / float64(span)
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return item.from + (item.to-item.from)*f, true
}

// TakeSnapshot captures the current settable values under id and
// returns the id. An empty id gets a generated one. Taking a snapshot
// under an existing id replaces it.
func (h *Hub) TakeSnapshot(id string) string {
	if id == "" {
		id = uuid.NewString()
	}

	s := &snapshot{
		numbers: make(map[string]float64),
		bools:   h.checks.Values(),
		texts:   h.selects.Values(),
	}
	for name, v := range h.sliders.Values() {
		s.numbers[name] = v
	}
	for name, v := range h.midi.Values() {
		s.numbers[name] = v
	}
	for name, v := range h.osc.Values() {
		s.numbers[name] = v
	}

	h.snapshots[id] = s
	h.logger.Info("snapshot taken", "id", id, "controls", len(s.numbers)+len(s.bools)+len(s.texts))
	return id
}

// RecallSnapshot starts a transition from the current values to the
// snapshot's values. Booleans and strings switch immediately; numbers
// tween over the configured frame span (a zero span commits at once).
// Captured controls that no longer exist are skipped.
func (h *Hub) RecallSnapshot(id string) error {
	s, ok := h.snapshots[id]
	if !ok {
		return fmt.Errorf("recall snapshot %q: %w", id, ErrUnknownSnapshot)
	}

	for name, v := range s.bools {
		_ = h.SetBool(name, v)
	}
	for name, v := range s.texts {
		_ = h.SetString(name, v)
	}

	t := &transition{
		id:    id,
		start: h.frame,
		end:   h.frame + h.transitionFrames,
		items: make(map[string]transitionItem),
	}
	for name, to := range s.numbers {
		from, ok := h.storedValue(name)
		if !ok {
			continue
		}
		t.items[name] = transitionItem{name: name, from: from, to: to}
	}

	h.startTransition(t)
	h.logger.Info("snapshot recalled", "id", id, "frames", h.transitionFrames)
	return nil
}

// Randomize picks random targets for every settable control and tweens
// to them like a snapshot recall. It returns a generated transition id.
func (h *Hub) Randomize() string {
	id := uuid.NewString()

	t := &transition{
		id:    id,
		start: h.frame,
		end:   h.frame + h.transitionFrames,
		items: make(map[string]transitionItem),
	}

	// Document order keeps the draw sequence reproducible for a seeded
	// hub.
	for _, name := range h.doc.Names() {
		if spec, ok := h.checks.Config(name); ok && spec != nil {
			h.checks.Set(name, h.rng.Intn(2) == 1)
			continue
		}
		if spec, ok := h.selects.Config(name); ok && len(spec.Options) > 0 {
			h.selects.Set(name, spec.Options[h.rng.Intn(len(spec.Options))])
			continue
		}
		if spec, ok := h.sliders.Config(name); ok {
			from, _ := h.sliders.Get(name)
			to := spec.Min + h.rng.Float64()*(spec.Max-spec.Min)
			t.items[name] = transitionItem{name: name, from: from, to: to}
			continue
		}
		if _, ok := h.midi.Config(name); ok {
			from, _ := h.midi.Get(name)
			t.items[name] = transitionItem{name: name, from: from, to: h.rng.Float64()}
			continue
		}
		if _, ok := h.osc.Config(name); ok {
			from, _ := h.osc.Get(name)
			t.items[name] = transitionItem{name: name, from: from, to: h.rng.Float64()}
		}
	}

	h.startTransition(t)
	h.logger.Info("controls randomized", "id", id, "frames", h.transitionFrames)
	return id
}

func (h *Hub) startTransition(t *transition) {
	if h.transitionFrames == 0 {
		h.commitTransition(t)
		return
	}
	h.transition = t
}

// storedValue reads a numeric control's stored-domain value from
// whichever collection owns it.
func (h *Hub) storedValue(name string) (float64, bool) {
	if v, ok := h.sliders.Get(name); ok {
		return v, true
	}
	if v, ok := h.midi.Get(name); ok {
		return v, true
	}
	if v, ok := h.osc.Get(name); ok {
		return v, true
	}
	return 0, false
}

// OnSnapshotEnd registers a callback fired with the transition id each
// time a recall or randomize transition commits.
func (h *Hub) OnSnapshotEnd(fn func(id string)) {
	if fn == nil {
		return
	}
	h.endCallbacks = append(h.endCallbacks, fn)
}

// SnapshotIDs lists stored snapshot ids, sorted.
func (h *Hub) SnapshotIDs() []string {
	ids := make([]string, 0, len(h.snapshots))
	for id := range h.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RemoveSnapshot drops a stored snapshot. Unknown ids are a no-op.
func (h *Hub) RemoveSnapshot(id string) {
	delete(h.snapshots, id)
}
