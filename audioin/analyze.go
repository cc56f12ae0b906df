package audioin

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/fogleman/ease"
)

// Band cut points between the low, mid and high analysis bands.
const (
	LowCutHz  = 200.0
	HighCutHz = 2000.0
)

// Detector follows the level of successive sample blocks. Detection
// blends peak and RMS measures and the envelope moves through an
// asymmetric rise/fall slew, so a snappy attack can decay slowly.
type Detector struct {
	env    float64
	primed bool
}

// Process reduces one block to a level in [0, 1] and advances the
// envelope. preEmphasis sets the one-pole high-pass amount, detect mixes
// peak (0) toward RMS (1), rise and fall set the slew amounts. An empty
// block leaves the envelope where it is.
func (d *Detector) Process(block []float64, preEmphasis, detect, rise, fall float64) float64 {
	if len(block) == 0 {
		return d.env
	}

	preEmphasis = clamp01(preEmphasis)
	detect = clamp01(detect)

	peak := 0.0
	sumSq := 0.0
	prev := block[0]
	for _, x := range block {
		y := x - preEmphasis*prev
		prev = x

		a := math.Abs(y)
		if a > peak {
			peak = a
		}
		sumSq += y * y
	}
	rms := math.Sqrt(sumSq / float64(len(block)))

	level := (1-detect)*peak + detect*rms

	return d.slew(clamp01(level), rise, fall)
}

// ProcessLevel advances the envelope toward an already-reduced level,
// as produced by Analyzer.BandEnergy.
func (d *Detector) ProcessLevel(level, rise, fall float64) float64 {
	return d.slew(clamp01(level), rise, fall)
}

// Reset clears the envelope; the next block snaps to its level.
func (d *Detector) Reset() {
	d.env = 0
	d.primed = false
}

func (d *Detector) slew(level, rise, fall float64) float64 {
	if !d.primed {
		d.env = level
		d.primed = true
		return d.env
	}

	amount := fall
	if level > d.env {
		amount = rise
	}
	d.env += (level - d.env) * detectorGain(amount)

	return d.env
}

// detectorGain maps a slew amount in [0, 1] to a per-block smoothing
// gain; 0 is instant, 1 is frozen.
func detectorGain(amount float64) float64 {
	return 1 - ease.InCubic(clamp01(amount))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Analyzer measures how spectral energy splits across frequency bands.
// One instance carries the FFT plan, the Hann window table and the
// scratch buffers, so per-block analysis does not allocate.
type Analyzer struct {
	plan       *algofft.Plan[complex128]
	coeffs     []float64
	windowed   []float64
	in         []complex128
	out        []complex128
	size       int
	sampleRate float64
}

// NewAnalyzer creates an analyzer over size-sample blocks captured at
// sampleRate. size must be a power of two.
func NewAnalyzer(size int, sampleRate float64) (*Analyzer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("analyzer size must be a power of two: %d", size)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("analyzer sample rate must be positive and finite: %f", sampleRate)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("audioin: create FFT plan: %w", err)
	}

	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return &Analyzer{
		plan:       plan,
		coeffs:     coeffs,
		windowed:   make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		size:       size,
		sampleRate: sampleRate,
	}, nil
}

// Size returns the analysis block length.
func (a *Analyzer) Size() int { return a.size }

// BandEnergy returns the share of windowed spectral energy falling in
// [loHz, hiHz), taken over all bins up to Nyquist. Blocks longer than
// the analyzer keep their newest samples; shorter blocks are zero-padded
// at the front. Silence yields 0.
func (a *Analyzer) BandEnergy(block []float64, loHz, hiHz float64) (float64, error) {
	for i := range a.windowed {
		a.windowed[i] = 0
	}

	n := len(block)
	if n > a.size {
		block = block[n-a.size:]
		n = a.size
	}
	copy(a.windowed[a.size-n:], block)

	vecmath.MulBlockInPlace(a.windowed, a.coeffs)

	for i, v := range a.windowed {
		a.in[i] = complex(v, 0)
	}
	if err := a.plan.Forward(a.out, a.in); err != nil {
		return 0, fmt.Errorf("audioin: forward FFT: %w", err)
	}

	binHz := a.sampleRate / float64(a.size)

	var total, band float64
	for k := 1; k <= a.size/2; k++ {
		re := real(a.out[k])
		im := imag(a.out[k])
		p := re*re + im*im
		total += p

		f := float64(k) * binHz
		if f >= loHz && f < hiHz {
			band += p
		}
	}

	if total == 0 {
		return 0, nil
	}

	return band / total, nil
}
