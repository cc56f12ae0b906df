package timing

import (
	"fmt"
	"math"
	"sync"
)

// FrameSource derives musical position from a frame counter at a fixed
// frame rate. It is fully deterministic: the same frame count always maps
// to the same beat position.
type FrameSource struct {
	mu     sync.Mutex
	bpm    float64
	fps    float64
	frames uint64
}

// NewFrameSource creates a frame-derived source.
func NewFrameSource(bpm, fps float64) (*FrameSource, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return nil, fmt.Errorf("frame source bpm must be > 0 and finite: %f", bpm)
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("frame source fps must be > 0 and finite: %f", fps)
	}
	return &FrameSource{bpm: bpm, fps: fps}, nil
}

// Advance moves the source forward by one frame.
func (s *FrameSource) Advance() {
	s.mu.Lock()
	s.frames++
	s.mu.Unlock()
}

// Beats returns frames divided by frames-per-beat.
func (s *FrameSource) Beats() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.frames) / (s.fps * 60 / s.bpm)
}

// BPM returns the configured tempo.
func (s *FrameSource) BPM() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bpm
}

// SetBPM updates the tempo.
func (s *FrameSource) SetBPM(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("frame source bpm must be > 0 and finite: %f", bpm)
	}
	s.mu.Lock()
	s.bpm = bpm
	s.mu.Unlock()
	return nil
}

// FPS returns the configured frame rate.
func (s *FrameSource) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}

// Frame returns the current frame count.
func (s *FrameSource) Frame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
