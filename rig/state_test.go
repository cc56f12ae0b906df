package rig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-rig/persist"
)

const stateDocument = `
fader:
  type: slider
  min: 0
  max: 2
  default: 1
strobe_on:
  type: checkbox
  default: false
palette:
  type: select
  options: [warm, cool]
  default: warm
cutoff:
  type: midi
  channel: 1
  cc: 21
  min: 0
  max: 100
  default: 0.5
`

func TestStateRoundTripThroughDisk(t *testing.T) {
	h, _ := newTestHub(t, stateDocument, WithTransitionFrames(0))

	require.NoError(t, h.Set("fader", 1.6))
	require.NoError(t, h.SetBool("strobe_on", true))
	require.NoError(t, h.SetString("palette", "cool"))
	require.NoError(t, h.Set("cutoff", 0.25))
	h.TakeSnapshot("warm-open")
	h.SetMIDIMapping("fader", MIDIMapping{Channel: 3, CC: 7})

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, persist.Save(path, h.ExportState()))

	loaded, err := persist.Load(path)
	require.NoError(t, err)

	fresh, _ := newTestHub(t, stateDocument, WithTransitionFrames(0))
	fresh.ApplyState(loaded)

	assert.Equal(t, 1.6, fresh.Get("fader"))
	assert.True(t, fresh.GetBool("strobe_on"))
	assert.Equal(t, "cool", fresh.GetString("palette"))
	assert.InDelta(t, 25.0, fresh.Get("cutoff"), 1e-12)
	assert.Equal(t, []string{"warm-open"}, fresh.SnapshotIDs())
	assert.Equal(t, map[string]MIDIMapping{
		"fader": {Channel: 3, CC: 7},
	}, fresh.MIDIMappings())

	// The restored snapshot recalls cleanly.
	require.NoError(t, fresh.Set("fader", 0))
	require.NoError(t, fresh.RecallSnapshot("warm-open"))
	fresh.Update()
	assert.Equal(t, 1.6, fresh.Get("fader"))
}

func TestApplyStateSkipsUnknownNames(t *testing.T) {
	h, _ := newTestHub(t, stateDocument)

	st := persist.New()
	st.Controls["ghost"] = 0.4
	st.Controls["fader"] = 1.2
	st.Bools["fader"] = true // wrong kind, skipped
	st.Strings["palette"] = "neon"

	h.ApplyState(st)
	assert.Equal(t, 1.2, h.Get("fader"))
	assert.False(t, h.GetBool("strobe_on"))
	assert.Equal(t, "warm", h.GetString("palette"))
}

func TestApplyStateNilIsNoOp(t *testing.T) {
	h, _ := newTestHub(t, stateDocument)
	h.ApplyState(nil)
	assert.Equal(t, 1.0, h.Get("fader"))
}

func TestExportStateSnapshotsAreDeepCopies(t *testing.T) {
	h, _ := newTestHub(t, stateDocument)
	h.TakeSnapshot("a")

	st := h.ExportState()
	st.Snapshots["a"].Numbers["fader"] = 99

	assert.Equal(t, 1.0, h.snapshots["a"].numbers["fader"])
}

func TestApplyStateLearnedMappingNeedsTraffic(t *testing.T) {
	h, _ := newTestHub(t, stateDocument)

	st := persist.New()
	st.MIDIMappings["fader"] = persist.MIDIMapping{Channel: 4, CC: 90}
	h.ApplyState(st)

	// Restored mappings override only once the controller speaks.
	assert.Equal(t, 1.0, h.Get("fader"))
	h.handleMIDI(cc(4, 90, 127), 0)
	assert.InDelta(t, 2.0, h.Get("fader"), 1e-12)
}
