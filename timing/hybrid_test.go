package timing

import (
	"math"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

// feedTimecode sends one full timecode as eight quarter-frame messages.
func feedTimecode(t *testing.T, src *HybridSource, hours, mins, secs, frames, rateCode uint8) {
	t.Helper()
	pieces := [8]uint8{
		frames & 0x0F,
		(frames >> 4) & 0x1,
		secs & 0x0F,
		(secs >> 4) & 0x3,
		mins & 0x0F,
		(mins >> 4) & 0x3,
		hours & 0x0F,
		((hours >> 4) & 0x1) | rateCode<<1,
	}
	for i, v := range pieces {
		src.Handle(midi.MTC(uint8(i)<<4|v), 0)
	}
}

func TestHybridResyncFromTimecode(t *testing.T) {
	src, err := NewHybridSource(120)
	if err != nil {
		t.Fatalf("NewHybridSource() error = %v", err)
	}
	var _ Source = src // verify interface

	// One second of timecode at 120 BPM is two beats; the clock still
	// reads zero, so the divergence forces a resync.
	feedTimecode(t, src, 0, 0, 1, 0, 0)

	if diff := math.Abs(src.Beats() - 2.0); diff > 1e-9 {
		t.Errorf("Beats() after resync = %g, want 2", src.Beats())
	}

	secs, ok := src.MTCSeconds()
	if !ok {
		t.Fatal("MTCSeconds() ok = false, want true")
	}
	if diff := math.Abs(secs - 1.0); diff > 1e-12 {
		t.Errorf("MTCSeconds() = %g, want 1", secs)
	}
}

func TestHybridNoResyncWithinThreshold(t *testing.T) {
	src, err := NewHybridSource(120)
	if err != nil {
		t.Fatalf("NewHybridSource() error = %v", err)
	}

	// 54 pulses put the clock at 2.25 beats; timecode says 2.0. The
	// divergence of 0.25 beats stays below the resync threshold.
	for i := 0; i < 54; i++ {
		src.Handle(midi.TimingClock(), 0)
	}
	feedTimecode(t, src, 0, 0, 1, 0, 0)

	if diff := math.Abs(src.Beats() - 2.25); diff > 1e-12 {
		t.Errorf("Beats() = %g, want 2.25 (no resync)", src.Beats())
	}
}

func TestHybridFrameRateFromRateCode(t *testing.T) {
	tests := []struct {
		name     string
		frames   uint8
		rateCode uint8
		wantSecs float64
	}{
		{"24 fps", 12, 0, 0.5},
		{"25 fps", 20, 1, 0.8},
		{"30 fps", 15, 3, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewHybridSource(120)
			if err != nil {
				t.Fatalf("NewHybridSource() error = %v", err)
			}

			feedTimecode(t, src, 0, 0, 0, tt.frames, tt.rateCode)

			secs, ok := src.MTCSeconds()
			if !ok {
				t.Fatal("MTCSeconds() ok = false, want true")
			}
			if diff := math.Abs(secs - tt.wantSecs); diff > 1e-9 {
				t.Errorf("MTCSeconds() = %g, want %g", secs, tt.wantSecs)
			}

			wantBeats := tt.wantSecs * 2 // 120 BPM
			if diff := math.Abs(src.Beats() - wantBeats); diff > 1e-9 {
				t.Errorf("Beats() = %g, want %g", src.Beats(), wantBeats)
			}
		})
	}
}

func TestHybridIgnoresSongPosition(t *testing.T) {
	src, err := NewHybridSource(120)
	if err != nil {
		t.Fatalf("NewHybridSource() error = %v", err)
	}

	src.Handle(midi.SPP(64), 0)
	if got := src.Beats(); got != 0 {
		t.Errorf("Beats() after SPP = %g, want 0 (SPP disabled)", got)
	}

	for i := 0; i < 24; i++ {
		src.Handle(midi.TimingClock(), 0)
	}
	if diff := math.Abs(src.Beats() - 1.0); diff > 1e-12 {
		t.Errorf("Beats() after 24 pulses = %g, want 1", src.Beats())
	}
}

func TestHybridPartialTimecodeIsInert(t *testing.T) {
	src, err := NewHybridSource(120)
	if err != nil {
		t.Fatalf("NewHybridSource() error = %v", err)
	}

	// Seven of eight pieces: nothing should be assembled yet.
	for piece := uint8(0); piece < 7; piece++ {
		src.Handle(midi.MTC(piece<<4), 0)
	}

	if _, ok := src.MTCSeconds(); ok {
		t.Error("MTCSeconds() ok = true before full timecode")
	}
	if got := src.Beats(); got != 0 {
		t.Errorf("Beats() = %g, want 0", got)
	}
}
