package timing

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

// resyncThresholdBeats is the clock/timecode divergence that forces the
// pulse counters back onto the timecode-derived position. MIDI clock
// drifts across tempo changes and not every sender emits SPP; timecode is
// absolute but arrives slowly, so small divergence is left to the clock.
const resyncThresholdBeats = 0.5

// mtcFrameRates maps the 2-bit MTC rate code to SMPTE frames per second.
var mtcFrameRates = [4]float64{24, 25, 29.97, 30}

// HybridSource combines a MIDI clock source (SPP-following disabled) with
// MIDI Time Code decoding. Full timecode arrives across eight sequential
// quarter-frame messages; once assembled it is converted to beats and,
// when it diverges from the clock position by more than half a beat, the
// clock counters are forced onto the timecode value.
type HybridSource struct {
	clock *MIDIClockSource

	mu         sync.Mutex
	pieces     [8]uint8
	seen       uint8
	mtcSeconds float64
	hasMTC     bool
}

// NewHybridSource creates a hybrid clock+timecode source.
func NewHybridSource(bpm float64) (*HybridSource, error) {
	clock, err := NewMIDIClockSource(bpm, WithSPPFollowing(false))
	if err != nil {
		return nil, err
	}
	return &HybridSource{clock: clock}, nil
}

// Handle consumes one incoming MIDI message.
func (s *HybridSource) Handle(msg midi.Message, timestampMS int32) {
	var qf uint8
	if msg.GetMTC(&qf) {
		s.handleQuarterFrame(qf)
		return
	}
	s.clock.Handle(msg, timestampMS)
}

func (s *HybridSource) handleQuarterFrame(qf uint8) {
	piece := qf >> 4
	if piece > 7 {
		return
	}
	s.mu.Lock()
	s.pieces[piece] = qf & 0x0F
	s.seen |= 1 << piece
	if piece != 7 || s.seen != 0xFF {
		s.mu.Unlock()
		return
	}
	s.seen = 0

	frames := float64(s.pieces[0]) + float64(s.pieces[1]&0x1)*16
	secs := float64(s.pieces[2]) + float64(s.pieces[3]&0x3)*16
	mins := float64(s.pieces[4]) + float64(s.pieces[5]&0x3)*16
	hours := float64(s.pieces[6]) + float64(s.pieces[7]&0x1)*16
	rate := mtcFrameRates[(s.pieces[7]>>1)&0x3]

	s.mtcSeconds = hours*3600 + mins*60 + secs + frames/rate
	s.hasMTC = true
	mtcBeats := s.mtcSeconds * s.clock.BPM() / 60
	s.mu.Unlock()

	clockBeats := s.clock.Beats()
	diff := mtcBeats - clockBeats
	if diff < 0 {
		diff = -diff
	}
	if diff > resyncThresholdBeats {
		s.clock.forceBeats(mtcBeats)
	}
}

// Beats returns the clock position, resynced by timecode when drifting.
func (s *HybridSource) Beats() float64 {
	return s.clock.Beats()
}

// BPM returns the configured tempo.
func (s *HybridSource) BPM() float64 {
	return s.clock.BPM()
}

// SetBPM updates the tempo.
func (s *HybridSource) SetBPM(bpm float64) error {
	return s.clock.SetBPM(bpm)
}

// MTCSeconds returns the last fully assembled timecode in seconds and
// whether one has been received yet.
func (s *HybridSource) MTCSeconds() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mtcSeconds, s.hasMTC
}
