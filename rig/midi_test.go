package rig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-rig/timing"
)

const midiDocument = `
cutoff:
  type: midi
  channel: 2
  cc: 21
  min: 0
  max: 100
  default: 0.5
`

// cc builds a Control Change message on a 1-based channel, matching
// configuration files.
func cc(channel, controller, value uint8) midi.Message {
	return midi.ControlChange(channel-1, controller, value)
}

func TestHandleMIDIUpdatesControl(t *testing.T) {
	h, _ := newTestHub(t, midiDocument)

	// Listener writes read back after the next frame boundary.
	h.handleMIDI(cc(2, 21, 64), 0)
	h.Update()
	assert.InDelta(t, 100*64.0/127, h.Get("cutoff"), 1e-12)

	h.handleMIDI(cc(2, 21, 127), 0)
	h.Update()
	assert.InDelta(t, 100.0, h.Get("cutoff"), 1e-12)
}

func TestHandleMIDIFiltersChannelAndCC(t *testing.T) {
	h, _ := newTestHub(t, midiDocument)

	h.handleMIDI(cc(1, 21, 127), 0)
	h.handleMIDI(cc(2, 22, 127), 0)
	assert.InDelta(t, 50.0, h.Get("cutoff"), 1e-12)
}

func TestHandleMIDIIgnoresNonCC(t *testing.T) {
	h, _ := newTestHub(t, midiDocument)
	h.handleMIDI(midi.NoteOn(1, 60, 100), 0)
	assert.InDelta(t, 50.0, h.Get("cutoff"), 1e-12)
}

func TestHRCCPairsMSBWithLSB(t *testing.T) {
	h, _ := newTestHub(t, midiDocument, WithHRCC(true))

	// MSB alone must not move the control.
	h.handleMIDI(cc(2, 21, 78), 0)
	h.Update()
	assert.InDelta(t, 50.0, h.Get("cutoff"), 1e-12)

	// LSB on cc 53 completes cc 21: (78<<7|16) = 10000.
	h.handleMIDI(cc(2, 53, 16), 0)
	h.Update()
	assert.InDelta(t, 100*10000.0/16383, h.Get("cutoff"), 1e-12)
}

func TestHRCCRoundTripPrecision(t *testing.T) {
	h, _ := newTestHub(t, midiDocument, WithHRCC(true))

	for _, v := range []uint16{0, 1, 4096, 8191, 16383} {
		h.handleMIDI(cc(2, 21, uint8(v>>7)), 0)
		h.handleMIDI(cc(2, 53, uint8(v&0x7f)), 0)
		h.Update()
		assert.InDelta(t, 100*float64(v)/16383, h.Get("cutoff"), 100.0/16383)
	}
}

func TestHRCCLSBWithoutMSBIsIgnored(t *testing.T) {
	h, _ := newTestHub(t, midiDocument, WithHRCC(true))
	h.handleMIDI(cc(2, 53, 99), 0)
	assert.InDelta(t, 50.0, h.Get("cutoff"), 1e-12)
}

func TestHRCCMSBOverwriteWarns(t *testing.T) {
	logger, buf := captureLogger()
	clock, err := timing.NewManualSource(120)
	require.NoError(t, err)
	h, err := New(mustDocument(t, midiDocument), clock, WithLogger(logger), WithHRCC(true))
	require.NoError(t, err)

	h.handleMIDI(cc(2, 21, 10), 0)
	h.handleMIDI(cc(2, 21, 11), 0)
	assert.Contains(t, buf.String(), "unresolved MSB")

	// The fresh MSB still pairs with the next LSB.
	h.handleMIDI(cc(2, 53, 0), 0)
	assert.InDelta(t, 100*float64(11<<7)/16383, h.Get("cutoff"), 1e-12)
}

func TestHRCCHighCCBypassesPairing(t *testing.T) {
	h, _ := newTestHub(t, `
speed:
  type: midi
  channel: 1
  cc: 70
  min: 0
  max: 1
`, WithHRCC(true))

	h.handleMIDI(cc(1, 70, 127), 0)
	assert.InDelta(t, 1.0, h.Get("speed"), 1e-12)
}

func TestHRCCOffTreatsLSBRangeAsPlainCC(t *testing.T) {
	h, _ := newTestHub(t, `
depth:
  type: midi
  channel: 1
  cc: 53
  min: 0
  max: 1
`)
	h.handleMIDI(cc(1, 53, 127), 0)
	assert.InDelta(t, 1.0, h.Get("depth"), 1e-12)
}

func TestLearnBindsNextCC(t *testing.T) {
	h, _ := newTestHub(t, `
fader:
  type: slider
  min: 0
  max: 2
  default: 1
`)
	require.NoError(t, h.Learn("fader"))
	name, armed := h.Learning()
	assert.True(t, armed)
	assert.Equal(t, "fader", name)

	h.handleMIDI(cc(4, 90, 127), 0)

	_, armed = h.Learning()
	assert.False(t, armed)
	assert.Equal(t, map[string]MIDIMapping{
		"fader": {Channel: 4, CC: 90},
	}, h.MIDIMappings())

	// The binding message's value maps through the slider range.
	assert.InDelta(t, 2.0, h.Get("fader"), 1e-12)

	h.handleMIDI(cc(4, 90, 0), 0)
	assert.InDelta(t, 0.0, h.Get("fader"), 1e-12)

	// Stored value untouched underneath the override.
	h.RemoveMIDIMapping("fader")
	assert.InDelta(t, 1.0, h.Get("fader"), 1e-12)
}

func TestLearnReplacesPendingTarget(t *testing.T) {
	h, _ := newTestHub(t, `
a:
  type: slider
b:
  type: slider
`)
	require.NoError(t, h.Learn("a"))
	require.NoError(t, h.Learn("b"))

	h.handleMIDI(cc(1, 10, 64), 0)
	assert.Equal(t, []string{"b"}, h.MappedControls())
}

func TestLearnUnknownControl(t *testing.T) {
	h, _ := newTestHub(t, "x:\n  type: slider\n")
	assert.ErrorIs(t, h.Learn("ghost"), ErrUnknownControl)
}

func TestCancelLearn(t *testing.T) {
	h, _ := newTestHub(t, "x:\n  type: slider\n")
	require.NoError(t, h.Learn("x"))
	h.CancelLearn()

	h.handleMIDI(cc(1, 10, 64), 0)
	assert.Empty(t, h.MIDIMappings())
}

func TestSetMIDIMappingOverridesOnlyAfterTraffic(t *testing.T) {
	h, _ := newTestHub(t, `
fader:
  type: slider
  min: 0
  max: 2
  default: 0.5
`)
	h.SetMIDIMapping("fader", MIDIMapping{Channel: 3, CC: 7})

	// No traffic yet: the stored value still reads.
	assert.InDelta(t, 0.5, h.Get("fader"), 1e-12)

	h.handleMIDI(cc(3, 7, 127), 0)
	assert.InDelta(t, 2.0, h.Get("fader"), 1e-12)
}

func TestLearnedMappingTracksAliasTarget(t *testing.T) {
	h, _ := newTestHub(t, `
aliases:
  gain: fader
fader:
  type: slider
  min: 0
  max: 4
`)
	require.NoError(t, h.Learn("gain"))
	h.handleMIDI(cc(1, 20, 127), 0)

	assert.Equal(t, []string{"fader"}, h.MappedControls())
	assert.InDelta(t, 4.0, h.Get("gain"), 1e-12)
	assert.InDelta(t, 4.0, h.Get("fader"), 1e-12)
}
