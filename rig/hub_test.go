package rig

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-rig/config"
	"github.com/cwbudde/algo-rig/timing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func mustDocument(t *testing.T, src string) *config.Document {
	t.Helper()
	doc, err := config.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func newTestHub(t *testing.T, src string, opts ...Option) (*Hub, *timing.ManualSource) {
	t.Helper()
	clock, err := timing.NewManualSource(120)
	require.NoError(t, err)
	all := append([]Option{WithLogger(testLogger()), WithRandSeed(1)}, opts...)
	h, err := New(mustDocument(t, src), clock, all...)
	require.NoError(t, err)
	return h, clock
}

func TestNewValidation(t *testing.T) {
	clock, err := timing.NewManualSource(120)
	require.NoError(t, err)
	doc := mustDocument(t, "x:\n  type: slider\n")

	_, err = New(nil, clock)
	assert.ErrorContains(t, err, "document")

	_, err = New(doc, nil)
	assert.ErrorContains(t, err, "timing source")

	_, err = New(doc, clock, WithLogger(nil))
	assert.ErrorContains(t, err, "logger")
}

func TestGetSliderDefault(t *testing.T) {
	h, _ := newTestHub(t, `
master_gain:
  type: slider
  min: 0
  max: 2
  default: 1.5
`)
	assert.Equal(t, 1.5, h.Get("master_gain"))
}

func TestGetAlias(t *testing.T) {
	h, _ := newTestHub(t, `
aliases:
  gain: master_gain
master_gain:
  type: slider
  min: 0
  max: 2
  default: 0.75
`)
	assert.Equal(t, h.Get("master_gain"), h.Get("gain"))

	require.NoError(t, h.Set("gain", 1.25))
	h.Update()
	assert.Equal(t, 1.25, h.Get("master_gain"))
}

func TestGetBypassWins(t *testing.T) {
	h, _ := newTestHub(t, `
strobe_rate:
  type: slider
  min: 0
  max: 10
  default: 4
  bypass: 0.25
`)
	require.NoError(t, h.Set("strobe_rate", 9))
	assert.Equal(t, 0.25, h.Get("strobe_rate"))
}

func TestGetUnknownLogsOnce(t *testing.T) {
	logger, buf := captureLogger()
	clock, err := timing.NewManualSource(120)
	require.NoError(t, err)
	h, err := New(mustDocument(t, "x:\n  type: slider\n"), clock, WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, 0.0, h.Get("ghost"))
	assert.Equal(t, 0.0, h.Get("ghost"))
	assert.Equal(t, 1, strings.Count(buf.String(), "unknown control"))
}

func TestSetClampsSlider(t *testing.T) {
	h, _ := newTestHub(t, `
fader:
  type: slider
  min: 0
  max: 2
  default: 1
`)
	require.NoError(t, h.Set("fader", 5))
	h.Update()
	assert.Equal(t, 2.0, h.Get("fader"))

	require.NoError(t, h.Set("fader", -1))
	h.Update()
	assert.Equal(t, 0.0, h.Get("fader"))
}

func TestSetErrors(t *testing.T) {
	h, _ := newTestHub(t, `
fader:
  type: slider
lfo:
  type: triangle
  period: 4
`)
	err := h.Set("fader", math.NaN())
	assert.ErrorContains(t, err, "finite")

	err = h.Set("ghost", 1)
	assert.ErrorIs(t, err, ErrUnknownControl)

	err = h.Set("lfo", 1)
	assert.ErrorContains(t, err, "not directly settable")
}

func TestBoolAndStringControls(t *testing.T) {
	h, _ := newTestHub(t, `
strobe_on:
  type: checkbox
  default: true
palette:
  type: select
  options: [warm, cool, acid]
  default: cool
`)
	assert.True(t, h.GetBool("strobe_on"))
	assert.Equal(t, "cool", h.GetString("palette"))

	require.NoError(t, h.SetBool("strobe_on", false))
	assert.False(t, h.GetBool("strobe_on"))
	assert.Equal(t, 0.0, h.Get("strobe_on"))

	require.NoError(t, h.SetString("palette", "acid"))
	assert.Equal(t, "acid", h.GetString("palette"))
	assert.Equal(t, 2.0, h.Get("palette"))

	err := h.SetString("palette", "neon")
	assert.ErrorContains(t, err, "not an option")

	err = h.SetBool("palette", true)
	assert.ErrorContains(t, err, "boolean")

	assert.False(t, h.GetBool("ghost"))
	assert.Equal(t, "", h.GetString("ghost"))
}

func TestModulatorMultiplies(t *testing.T) {
	h, _ := newTestHub(t, `
depth:
  type: slider
  min: 0
  max: 1
  default: 0.5
master:
  type: slider
  min: 0
  max: 2
  default: 2
  modulators: [depth]
`)
	assert.Equal(t, 1.0, h.Get("master"))

	require.NoError(t, h.Set("depth", 0.25))
	h.Update()
	assert.Equal(t, 0.5, h.Get("master"))
}

func TestEffectModulatorApplies(t *testing.T) {
	h, _ := newTestHub(t, `
level:
  type: slider
  min: 0
  max: 1
  default: 0.33
  modulators: [snap]
snap:
  type: effect
  effect: quantizer
  step: 0.25
`)
	assert.InDelta(t, 0.25, h.Get("level"), 1e-12)
}

func TestEffectHotParamFollowsControl(t *testing.T) {
	h, _ := newTestHub(t, `
step_size:
  type: slider
  min: 0.05
  max: 0.5
  default: 0.5
level:
  type: slider
  min: 0
  max: 1
  default: 0.33
  modulators: [snap]
snap:
  type: effect
  effect: quantizer
  step: $step_size
`)
	assert.InDelta(t, 0.5, h.Get("level"), 1e-12)

	require.NoError(t, h.Set("step_size", 0.1))
	h.Update()
	assert.InDelta(t, 0.3, h.Get("level"), 1e-9)
}

func TestRejectedLiveParamKeepsPrior(t *testing.T) {
	logger, buf := captureLogger()
	clock, err := timing.NewManualSource(120)
	require.NoError(t, err)
	h, err := New(mustDocument(t, `
step_size:
  type: slider
  min: -1
  max: 1
  default: 0.25
level:
  type: slider
  default: 0.33
  modulators: [snap]
snap:
  type: effect
  effect: quantizer
  step: $step_size
`), clock, WithLogger(logger))
	require.NoError(t, err)

	assert.InDelta(t, 0.25, h.Get("level"), 1e-12)

	// A zero step is invalid; the quantizer keeps 0.25.
	require.NoError(t, h.Set("step_size", 0))
	h.Update()
	assert.InDelta(t, 0.25, h.Get("level"), 1e-12)
	assert.Contains(t, buf.String(), "live parameter rejected")
}

// A stateful effect modulator doubles as a cache probe: if the same
// frame evaluated the control twice, the slew would advance twice.
func TestEvalCachedPerFrame(t *testing.T) {
	h, _ := newTestHub(t, `
level:
  type: slider
  min: 0
  max: 1
  default: 0
  modulators: [smooth]
smooth:
  type: effect
  effect: slew
  rise: 0.5
  fall: 0.5
`)
	assert.Equal(t, 0.0, h.Get("level"))
	assert.Equal(t, 0.0, h.Get("level"))

	require.NoError(t, h.Set("level", 1))
	h.Update()

	// One slew step toward 1: gain 1 - 0.5^3 = 0.875.
	assert.InDelta(t, 0.875, h.Get("level"), 1e-12)
	assert.InDelta(t, 0.875, h.Get("level"), 1e-12)

	h.Update()
	assert.InDelta(t, 0.984375, h.Get("level"), 1e-12)
}

func TestDependencyChainResolves(t *testing.T) {
	h, _ := newTestHub(t, `
base:
  type: slider
  min: 0
  max: 10
  default: 4
follow:
  type: mod
  source: $base
chained:
  type: mod
  source: $follow
`)
	assert.Equal(t, 4.0, h.Get("chained"))

	require.NoError(t, h.Set("base", 7))
	h.Update()
	assert.Equal(t, 7.0, h.Get("chained"))
}

func TestTriangleFollowsClock(t *testing.T) {
	h, clock := newTestHub(t, `
lfo:
  type: triangle
  period: 4
  min: 0
  max: 1
`)
	assert.Equal(t, 0.0, h.Get("lfo"))

	require.NoError(t, clock.SetBeats(1))
	h.Update()
	assert.InDelta(t, 0.5, h.Get("lfo"), 1e-12)

	require.NoError(t, clock.SetBeats(2))
	h.Update()
	assert.InDelta(t, 1.0, h.Get("lfo"), 1e-12)
}

func TestChangedRotation(t *testing.T) {
	h, _ := newTestHub(t, `
aliases:
  gain: fader
fader:
  type: slider
  default: 0.5
other:
  type: slider
`)
	// The initial apply marks everything changed for the first frame.
	h.Update()
	assert.True(t, h.Changed())
	h.Update()
	assert.False(t, h.Changed())

	require.NoError(t, h.Set("fader", 0.9))
	assert.False(t, h.Changed())

	h.Update()
	assert.True(t, h.Changed())
	assert.True(t, h.AnyChangedIn([]string{"fader"}))
	assert.True(t, h.AnyChangedIn([]string{"gain"}))
	assert.False(t, h.AnyChangedIn([]string{"other"}))

	h.Update()
	assert.False(t, h.Changed())
}

func TestApplyConfigPreservesValues(t *testing.T) {
	h, _ := newTestHub(t, `
fader:
  type: slider
  min: 0
  max: 2
  default: 1
`)
	require.NoError(t, h.Set("fader", 1.7))

	require.NoError(t, h.ApplyConfig(mustDocument(t, `
fader:
  type: slider
  min: 0
  max: 2
  default: 0.3
extra:
  type: slider
  default: 0.1
`)))
	assert.Equal(t, 1.7, h.Get("fader"))
	assert.Equal(t, 0.1, h.Get("extra"))
}

func TestApplyConfigSweepsStaleAndKindChanges(t *testing.T) {
	h, _ := newTestHub(t, `
fader:
  type: slider
  min: 0
  max: 2
  default: 1.8
`)
	require.NoError(t, h.ApplyConfig(mustDocument(t, `
fader:
  type: checkbox
  default: true
`)))
	// The slider value is gone; the control reads as its new kind.
	assert.True(t, h.GetBool("fader"))
	assert.Equal(t, 1.0, h.Get("fader"))
}

func TestApplyConfigSelectFallsBackOnVanishedOption(t *testing.T) {
	h, _ := newTestHub(t, `
palette:
  type: select
  options: [warm, cool]
  default: warm
`)
	require.NoError(t, h.SetString("palette", "cool"))

	require.NoError(t, h.ApplyConfig(mustDocument(t, `
palette:
  type: select
  options: [neon, acid]
  default: neon
`)))
	assert.Equal(t, "neon", h.GetString("palette"))
}

func TestApplyConfigRejectsCycle(t *testing.T) {
	h, _ := newTestHub(t, `
x:
  type: slider
`)
	err := h.ApplyConfig(mustDocument(t, `
a:
  type: mod
  source: $b
b:
  type: mod
  source: $a
`))
	assert.ErrorContains(t, err, "cycle")

	// The previous document stays active.
	assert.Equal(t, []string{"x"}, h.Names())
}

func TestRandomSlewedTracksTarget(t *testing.T) {
	h, clock := newTestHub(t, `
drift:
  type: random_slewed
  period: 1
  min: 0
  max: 1
  rise: 0
  fall: 0
  seed: 9
`)
	// Rise and fall of zero follow the hold target exactly.
	first := h.Get("drift")
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, 1.0)

	require.NoError(t, clock.SetBeats(5))
	h.Update()
	second := h.Get("drift")
	assert.GreaterOrEqual(t, second, 0.0)
	assert.LessOrEqual(t, second, 1.0)
	assert.NotEqual(t, first, second)
}

func TestAutomateHotBreakpointValue(t *testing.T) {
	h, clock := newTestHub(t, `
target:
  type: slider
  min: 0
  max: 10
  default: 6
sweep:
  type: automate
  mode: once
  breakpoints:
    - position: 0
      value: 0
      kind: ramp
    - position: 4
      value: $target
      kind: end
`)
	require.NoError(t, clock.SetBeats(2))
	h.Update()
	assert.InDelta(t, 3.0, h.Get("sweep"), 1e-12)

	require.NoError(t, h.Set("target", 10))
	h.Update()
	assert.InDelta(t, 5.0, h.Get("sweep"), 1e-12)
}
