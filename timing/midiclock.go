package timing

import (
	"fmt"
	"math"
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

const (
	clockPulsesPerBeat   = 24
	positionTicksPerBeat = 960
	// Song Position Pointer counts sixteenth notes.
	ticksPerSixteenth = positionTicksPerBeat / 4
)

// MIDIClockOption mutates MIDI clock source construction parameters.
type MIDIClockOption func(*midiClockConfig) error

type midiClockConfig struct {
	followSPP bool
}

// WithSPPFollowing toggles Song Position Pointer handling. Enabled by
// default; the hybrid source disables it and corrects via timecode instead.
func WithSPPFollowing(enabled bool) MIDIClockOption {
	return func(cfg *midiClockConfig) error {
		cfg.followSPP = enabled
		return nil
	}
}

// MIDIClockSource derives musical position from realtime MIDI messages:
// 24-ppq clock pulses advance a pulse counter, Song Position Pointer
// messages relocate a 960-ppq position counter.
//
// The source starts in the running state so that clock-only streams
// advance; STOP gates pulses until START or CONTINUE.
type MIDIClockSource struct {
	mu            sync.Mutex
	bpm           float64
	followSPP     bool
	running       bool
	clockPulses   int64
	positionTicks int64
}

// NewMIDIClockSource creates a clock source.
func NewMIDIClockSource(bpm float64, opts ...MIDIClockOption) (*MIDIClockSource, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return nil, fmt.Errorf("midi clock bpm must be > 0 and finite: %f", bpm)
	}
	cfg := midiClockConfig{followSPP: true}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &MIDIClockSource{
		bpm:       bpm,
		followSPP: cfg.followSPP,
		running:   true,
	}, nil
}

// Handle consumes one incoming MIDI message. The signature matches the
// input port subscriber shape so the source can be attached directly.
func (s *MIDIClockSource) Handle(msg midi.Message, _ int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case msg.Is(midi.TimingClockMsg):
		if s.running {
			s.clockPulses++
		}
	case msg.Is(midi.StartMsg):
		s.running = true
		s.clockPulses = 0
		if s.followSPP {
			s.positionTicks = 0
		}
	case msg.Is(midi.ContinueMsg):
		s.running = true
	case msg.Is(midi.StopMsg):
		s.running = false
	default:
		var spp uint16
		if s.followSPP && msg.GetSPP(&spp) {
			s.positionTicks = int64(spp) * ticksPerSixteenth
			s.clockPulses = 0
		}
	}
}

// Beats combines the relocated position with pulses counted since.
func (s *MIDIClockSource) Beats() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.positionTicks)/positionTicksPerBeat + float64(s.clockPulses)/clockPulsesPerBeat
}

// BPM returns the configured tempo.
func (s *MIDIClockSource) BPM() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bpm
}

// SetBPM updates the tempo.
func (s *MIDIClockSource) SetBPM(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("midi clock bpm must be > 0 and finite: %f", bpm)
	}
	s.mu.Lock()
	s.bpm = bpm
	s.mu.Unlock()
	return nil
}

// Running reports whether clock pulses currently advance the position.
func (s *MIDIClockSource) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// forceBeats relocates the counters to an externally derived position.
func (s *MIDIClockSource) forceBeats(beats float64) {
	s.mu.Lock()
	s.positionTicks = int64(math.Round(beats * positionTicksPerBeat))
	s.clockPulses = 0
	s.mu.Unlock()
}
