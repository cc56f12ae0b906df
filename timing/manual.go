package timing

import (
	"fmt"
	"math"
	"sync"
)

// ManualSource reports a caller-set position. Useful for static curve
// rendering and tests.
type ManualSource struct {
	mu    sync.Mutex
	bpm   float64
	beats float64
}

// NewManualSource creates a manual source at position zero.
func NewManualSource(bpm float64) (*ManualSource, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return nil, fmt.Errorf("manual source bpm must be > 0 and finite: %f", bpm)
	}
	return &ManualSource{bpm: bpm}, nil
}

// SetBeats repositions the source.
func (s *ManualSource) SetBeats(beats float64) error {
	if beats < 0 || math.IsNaN(beats) || math.IsInf(beats, 0) {
		return fmt.Errorf("manual source beats must be >= 0 and finite: %f", beats)
	}
	s.mu.Lock()
	s.beats = beats
	s.mu.Unlock()
	return nil
}

// Beats returns the last set position.
func (s *ManualSource) Beats() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beats
}

// BPM returns the configured tempo.
func (s *ManualSource) BPM() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bpm
}

// SetBPM updates the tempo.
func (s *ManualSource) SetBPM(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("manual source bpm must be > 0 and finite: %f", bpm)
	}
	s.mu.Lock()
	s.bpm = bpm
	s.mu.Unlock()
	return nil
}
