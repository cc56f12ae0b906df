package rig

import (
	"math"

	"github.com/cwbudde/algo-rig/audioin"
	"github.com/cwbudde/algo-rig/config"
)

// analysisBlock is the snapshot window handed to the detector and the
// band analyzer each frame. Power of two for the FFT.
const analysisBlock = 1024

// audioValue computes an audio control's output for the current frame:
// snapshot the channel ring, follow the level (full band through the
// time-domain detector, low/mid/high through the FFT band-energy
// share), then map the [0, 1] envelope into [min, max]. With no audio
// input the envelope decays toward silence.
func (h *Hub) audioValue(st *controlState) float64 {
	spec := st.cfg.Audio
	rise := h.resolveParam(spec.Rise)
	fall := h.resolveParam(spec.Fall)

	var level float64
	if h.audioIn == nil {
		level = st.detector.ProcessLevel(0, rise, fall)
	} else {
		n := h.audioIn.Snapshot(spec.Channel, h.audioBuf)
		block := h.audioBuf[:n]

		if spec.Band == config.BandFull {
			level = st.detector.Process(block,
				h.resolveParam(spec.PreEmphasis),
				h.resolveParam(spec.Detect),
				rise, fall)
		} else {
			share := h.bandShare(st.cfg.Name, spec.Band, block)
			level = st.detector.ProcessLevel(share, rise, fall)
		}
	}

	h.audio.UpdateValues(func(values map[string]float64) {
		values[st.cfg.Name] = level
	})

	lo := h.resolveParam(spec.Min)
	hi := h.resolveParam(spec.Max)
	return lo + level*(hi-lo)
}

// bandShare returns the selected band's share of spectral energy for
// one snapshot block. Analyzer failures log once and read silence.
func (h *Hub) bandShare(name string, band config.Band, block []float64) float64 {
	if h.analyzer == nil {
		analyzer, err := audioin.NewAnalyzer(analysisBlock, h.audioIn.SampleRate())
		if err != nil {
			h.warnOnce("analyzer "+name, "band analyzer unavailable", "control", name, "err", err)
			return 0
		}
		h.analyzer = analyzer
	}

	lo, hi := bandRange(band)
	share, err := h.analyzer.BandEnergy(block, lo, hi)
	if err != nil {
		h.warnOnce("band "+name, "band analysis failed", "control", name, "err", err)
		return 0
	}
	return share
}

// bandRange maps a band name to its frequency window in Hz.
func bandRange(b config.Band) (lo, hi float64) {
	switch b {
	case config.BandLow:
		return 0, audioin.LowCutHz
	case config.BandMid:
		return audioin.LowCutHz, audioin.HighCutHz
	case config.BandHigh:
		return audioin.HighCutHz, math.Inf(1)
	}
	return 0, math.Inf(1)
}

// AudioLevels reports the latest [0, 1] envelope per audio control, for
// UI meters.
func (h *Hub) AudioLevels() map[string]float64 {
	return h.audio.Values()
}
