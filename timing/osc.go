package timing

import (
	"fmt"
	"math"
	"sync"
)

// OSCTransportSource derives musical position from a periodic transport
// message carrying (playing, bar, beat, tick fraction), assuming four
// beats per bar. While stopped the position is zero.
type OSCTransportSource struct {
	mu      sync.Mutex
	bpm     float64
	playing bool
	bar     int32
	beat    int32
	tick    float64
}

// NewOSCTransportSource creates a transport source.
func NewOSCTransportSource(bpm float64) (*OSCTransportSource, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return nil, fmt.Errorf("osc transport bpm must be > 0 and finite: %f", bpm)
	}
	return &OSCTransportSource{bpm: bpm}, nil
}

// HandleTransport consumes one decoded transport message. Bars and beats
// are 1-based as sent by sequencers; the tick is a fraction of one beat.
func (s *OSCTransportSource) HandleTransport(playing bool, bar, beat int32, tick float64) {
	s.mu.Lock()
	s.playing = playing
	s.bar = bar
	s.beat = beat
	if math.IsNaN(tick) || math.IsInf(tick, 0) {
		tick = 0
	}
	s.tick = tick
	s.mu.Unlock()
}

// Beats returns (bar-1)*4 + (beat-1) + tick while playing, else 0.
func (s *OSCTransportSource) Beats() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return 0
	}
	beats := float64(s.bar-1)*4 + float64(s.beat-1) + s.tick
	if beats < 0 {
		return 0
	}
	return beats
}

// BPM returns the configured tempo.
func (s *OSCTransportSource) BPM() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bpm
}

// SetBPM updates the tempo.
func (s *OSCTransportSource) SetBPM(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("osc transport bpm must be > 0 and finite: %f", bpm)
	}
	s.mu.Lock()
	s.bpm = bpm
	s.mu.Unlock()
	return nil
}

// Playing reports whether the remote transport is running.
func (s *OSCTransportSource) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}
