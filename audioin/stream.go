package audioin

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	// DefaultSampleRate is the capture rate used when the caller has no
	// reason to pick another one.
	DefaultSampleRate = 44100

	framesPerBuffer = 1024
	ringSize        = 8192
)

type streamConfig struct {
	logger *slog.Logger
}

// Option configures a Stream.
type Option func(*streamConfig) error

// WithLogger routes stream lifecycle warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *streamConfig) error {
		if logger == nil {
			return fmt.Errorf("audioin logger must not be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// Stream is one owned audio capture. The device callback de-interleaves
// incoming frames into one ring buffer per channel; Snapshot reads the
// newest samples without stopping the callback.
type Stream struct {
	logger     *slog.Logger
	channels   int
	sampleRate float64

	mu      sync.Mutex
	rings   []*ring
	scratch []float64
	active  bool

	stream *portaudio.Stream
}

// Open starts capturing channels of audio at sampleRate from the default
// input device. Argument misuse is an error; an unavailable device or
// backend logs a warning and returns an inactive Stream.
func Open(channels int, sampleRate float64, opts ...Option) (*Stream, error) {
	if channels < 1 {
		return nil, fmt.Errorf("audioin channels must be >= 1: %d", channels)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("audioin sample rate must be positive and finite: %f", sampleRate)
	}

	cfg := streamConfig{logger: slog.Default()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &Stream{
		logger:     cfg.logger,
		channels:   channels,
		sampleRate: sampleRate,
		rings:      make([]*ring, channels),
		scratch:    make([]float64, framesPerBuffer),
	}
	for c := range s.rings {
		s.rings[c] = newRing(ringSize)
	}

	if err := portaudio.Initialize(); err != nil {
		s.logger.Warn("audio backend unavailable, input disabled", "err", err)
		return s, nil
	}

	stream, err := portaudio.OpenDefaultStream(channels, 0, sampleRate, framesPerBuffer, s.push)
	if err != nil {
		portaudio.Terminate()
		s.logger.Warn("audio device unavailable, input disabled",
			"channels", channels, "sample_rate", sampleRate, "err", err)
		return s, nil
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		s.logger.Warn("audio stream failed to start, input disabled", "err", err)
		return s, nil
	}

	s.stream = stream
	s.active = true
	s.logger.Info("audio input started",
		"channels", channels, "sample_rate", sampleRate)

	return s, nil
}

// push runs on the device callback with interleaved frames.
func (s *Stream) push(in []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(in) / s.channels
	if frames == 0 {
		return
	}
	if frames > len(s.scratch) {
		s.scratch = make([]float64, frames)
	}

	for c := range s.rings {
		blk := s.scratch[:frames]
		for f := 0; f < frames; f++ {
			blk[f] = float64(in[f*s.channels+c])
		}
		s.rings[c].write(blk)
	}
}

// Snapshot copies the newest len(dst) samples of channel into dst in
// time order and reports how many were available. Unknown channels and
// inactive streams yield 0.
func (s *Stream) Snapshot(channel int, dst []float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if channel < 0 || channel >= len(s.rings) {
		return 0
	}

	return s.rings[channel].snapshot(dst)
}

// Active reports whether the capture device is running.
func (s *Stream) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Channels returns the configured channel count.
func (s *Stream) Channels() int { return s.channels }

// SampleRate returns the configured capture rate.
func (s *Stream) SampleRate() float64 { return s.sampleRate }

// Close stops the capture and releases the backend. Safe to call on an
// inactive Stream and more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	stream := s.stream
	wasActive := s.active
	s.stream = nil
	s.active = false
	s.mu.Unlock()

	if !wasActive {
		return
	}

	if stream != nil {
		stream.Stop()
		stream.Close()
	}
	portaudio.Terminate()

	s.logger.Info("audio input stopped", "channels", s.channels)
}
