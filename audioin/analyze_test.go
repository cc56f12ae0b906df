package audioin

import (
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-rig/internal/testutil"
)

func halfToneBlock(level float64, length int) []float64 {
	blk := make([]float64, length)
	for i := 0; i < length/2; i++ {
		blk[i] = level
	}
	return blk
}

func TestDetectorPeakVersusRMS(t *testing.T) {
	blk := halfToneBlock(0.8, 256)

	var peak Detector
	if got := peak.Process(blk, 0, 0, 0, 0); got != 0.8 {
		t.Fatalf("Process(detect=0) = %v, want 0.8", got)
	}

	var rms Detector
	testutil.RequireNear(t, rms.Process(blk, 0, 1, 0, 0), 0.8/math.Sqrt2, 1e-9)

	var blend Detector
	want := 0.5*0.8 + 0.5*0.8/math.Sqrt2
	testutil.RequireNear(t, blend.Process(blk, 0, 0.5, 0, 0), want, 1e-9)
}

func TestDetectorPreEmphasisRemovesDC(t *testing.T) {
	blk := make([]float64, 128)
	for i := range blk {
		blk[i] = 0.7
	}

	var d Detector
	if got := d.Process(blk, 1, 0, 0, 0); got != 0 {
		t.Fatalf("Process(preEmphasis=1) on DC = %v, want 0", got)
	}
}

func TestDetectorClampsLevel(t *testing.T) {
	blk := []float64{3, -3, 3, -3}

	var d Detector
	if got := d.Process(blk, 0, 0, 0, 0); got != 1 {
		t.Fatalf("Process() on hot signal = %v, want clamp to 1", got)
	}
}

func TestDetectorFirstBlockSnaps(t *testing.T) {
	var d Detector
	if got := d.ProcessLevel(0.6, 1, 1); got != 0.6 {
		t.Fatalf("ProcessLevel() first call = %v, want snap to 0.6", got)
	}
}

func TestDetectorSlewAsymmetry(t *testing.T) {
	var d Detector
	d.ProcessLevel(0, 0, 0)

	// rise 0.9 eases to a gain of 1 - 0.9^3 = 0.271.
	testutil.RequireNear(t, d.ProcessLevel(1, 0.9, 0.9), 0.271, 1e-12)

	// fall 0 is instant.
	testutil.RequireNear(t, d.ProcessLevel(0, 0.9, 0), 0, 1e-12)
}

func TestDetectorEmptyBlockHoldsEnvelope(t *testing.T) {
	var d Detector
	d.ProcessLevel(0.4, 0, 0)

	if got := d.Process(nil, 0, 0, 0, 0); got != 0.4 {
		t.Fatalf("Process(nil) = %v, want held 0.4", got)
	}
}

func TestDetectorReset(t *testing.T) {
	var d Detector
	d.ProcessLevel(0.4, 0, 0)
	d.Reset()

	// Frozen amounts would hold the old envelope if Reset did not
	// clear the primed flag.
	if got := d.ProcessLevel(0.9, 1, 1); got != 0.9 {
		t.Fatalf("ProcessLevel() after Reset = %v, want snap to 0.9", got)
	}
}

func TestNewAnalyzerValidation(t *testing.T) {
	if _, err := NewAnalyzer(1000, DefaultSampleRate); err == nil || !strings.Contains(err.Error(), "power of two") {
		t.Fatalf("NewAnalyzer(1000) error = %v, want power-of-two error", err)
	}
	if _, err := NewAnalyzer(0, DefaultSampleRate); err == nil {
		t.Fatal("NewAnalyzer(0), want error")
	}
	if _, err := NewAnalyzer(1024, 0); err == nil || !strings.Contains(err.Error(), "sample rate") {
		t.Fatalf("NewAnalyzer(rate=0) error = %v, want sample rate error", err)
	}
}

func TestAnalyzerBandEnergyBuckets(t *testing.T) {
	an, err := NewAnalyzer(1024, DefaultSampleRate)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	cases := []struct {
		name   string
		freqHz float64
		loHz   float64
		hiHz   float64
	}{
		{"low", 100, 0, LowCutHz},
		{"mid", 1000, LowCutHz, HighCutHz},
		{"high", 5000, HighCutHz, math.Inf(1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blk := testutil.DeterministicSine(tc.freqHz, DefaultSampleRate, 0.8, 1024)

			share, err := an.BandEnergy(blk, tc.loHz, tc.hiHz)
			if err != nil {
				t.Fatalf("BandEnergy() error = %v", err)
			}
			if share < 0.95 {
				t.Fatalf("BandEnergy(%v Hz in [%v, %v)) = %v, want > 0.95", tc.freqHz, tc.loHz, tc.hiHz, share)
			}
		})
	}
}

func TestAnalyzerBandEnergyRejectsOtherBands(t *testing.T) {
	an, err := NewAnalyzer(1024, DefaultSampleRate)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	blk := testutil.DeterministicSine(100, DefaultSampleRate, 0.8, 1024)

	share, err := an.BandEnergy(blk, HighCutHz, math.Inf(1))
	if err != nil {
		t.Fatalf("BandEnergy() error = %v", err)
	}
	if share > 0.01 {
		t.Fatalf("BandEnergy(100 Hz sine in high band) = %v, want < 0.01", share)
	}
}

func TestAnalyzerSilenceIsZero(t *testing.T) {
	an, err := NewAnalyzer(256, DefaultSampleRate)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	share, err := an.BandEnergy(make([]float64, 256), 0, math.Inf(1))
	if err != nil {
		t.Fatalf("BandEnergy() error = %v", err)
	}
	if share != 0 {
		t.Fatalf("BandEnergy(silence) = %v, want 0", share)
	}
}

func TestAnalyzerShortBlockZeroPads(t *testing.T) {
	an, err := NewAnalyzer(1024, DefaultSampleRate)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	blk := testutil.DeterministicSine(5000, DefaultSampleRate, 0.8, 512)

	share, err := an.BandEnergy(blk, HighCutHz, math.Inf(1))
	if err != nil {
		t.Fatalf("BandEnergy() error = %v", err)
	}
	if share < 0.9 {
		t.Fatalf("BandEnergy(short high block) = %v, want > 0.9", share)
	}
}

func TestAnalyzerLongBlockKeepsNewest(t *testing.T) {
	an, err := NewAnalyzer(1024, DefaultSampleRate)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	old := testutil.DeterministicSine(100, DefaultSampleRate, 0.8, 1024)
	fresh := testutil.DeterministicSine(5000, DefaultSampleRate, 0.8, 1024)
	blk := append(old, fresh...)

	share, err := an.BandEnergy(blk, HighCutHz, math.Inf(1))
	if err != nil {
		t.Fatalf("BandEnergy() error = %v", err)
	}
	if share < 0.9 {
		t.Fatalf("BandEnergy(long block, newest high) = %v, want > 0.9", share)
	}
}
