package automate

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/fogleman/ease"
)

// Triangle returns a triangle oscillation between lo and hi with the given
// period in beats. phase offsets the cycle as a fraction of the period.
// Starts at lo, peaks at hi half way through the cycle.
func Triangle(beats, period, lo, hi, phase float64) float64 {
	if period <= 0 {
		return lo
	}
	f := math.Mod(beats/period+phase, 1)
	if f < 0 {
		f += 1
	}
	tri := 2 * f
	if tri > 1 {
		tri = 2 - tri
	}
	return lo + (hi-lo)*tri
}

// RandomHold returns a deterministic uniform value in [lo, hi] held for each
// period-length interval. delay shifts the interval grid in beats; seed
// decorrelates otherwise identical configurations.
func RandomHold(beats, period, lo, hi, delay float64, seed uint64) float64 {
	if period <= 0 {
		return lo
	}
	idx := int64(math.Floor((beats - delay) / period))
	h := fnv.New64a()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seed)
	_, _ = h.Write(b[:])
	binary.BigEndian.PutUint64(b[:], uint64(idx))
	_, _ = h.Write(b[:])
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	return lo + (hi-lo)*rng.Float64()
}

// SlewedRandom smooths RandomHold targets with an asymmetric one-pole slew,
// drifting between holds instead of stepping.
type SlewedRandom struct {
	period float64
	lo     float64
	hi     float64
	rise   float64
	fall   float64
	delay  float64
	seed   uint64

	current     float64
	initialized bool
}

// NewSlewedRandom creates a slewed random source. rise and fall are slew
// amounts in [0, 1]: zero follows targets instantly, one freezes the output.
func NewSlewedRandom(period, lo, hi, rise, fall, delay float64, seed uint64) (*SlewedRandom, error) {
	if period <= 0 || math.IsNaN(period) || math.IsInf(period, 0) {
		return nil, fmt.Errorf("slewed random period must be > 0 and finite: %f", period)
	}
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsNaN(hi) || math.IsInf(hi, 0) || lo > hi {
		return nil, fmt.Errorf("slewed random range must be finite with lo <= hi: [%f, %f]", lo, hi)
	}
	if rise < 0 || rise > 1 || math.IsNaN(rise) {
		return nil, fmt.Errorf("slewed random rise must be in [0, 1]: %f", rise)
	}
	if fall < 0 || fall > 1 || math.IsNaN(fall) {
		return nil, fmt.Errorf("slewed random fall must be in [0, 1]: %f", fall)
	}
	if math.IsNaN(delay) || math.IsInf(delay, 0) {
		return nil, fmt.Errorf("slewed random delay must be finite: %f", delay)
	}
	return &SlewedRandom{
		period: period,
		lo:     lo,
		hi:     hi,
		rise:   rise,
		fall:   fall,
		delay:  delay,
		seed:   seed,
	}, nil
}

// Value advances the slew toward the current hold target and returns the
// smoothed value. Call once per frame.
func (s *SlewedRandom) Value(beats float64) float64 {
	target := RandomHold(beats, s.period, s.lo, s.hi, s.delay, s.seed)
	if !s.initialized {
		s.current = target
		s.initialized = true
		return s.current
	}
	amount := s.fall
	if target > s.current {
		amount = s.rise
	}
	s.current += (target - s.current) * slewCoefficient(amount)
	return s.current
}

// Reset clears the slew state.
func (s *SlewedRandom) Reset() {
	s.current = 0
	s.initialized = false
}

// Trigger fires once per beat interval, offset into each interval by a
// delay.
type Trigger struct {
	every float64
	delay float64

	lastInterval int64
	fired        bool
}

// NewTrigger creates a trigger firing every `every` beats, `delay` beats
// into the interval grid.
func NewTrigger(every, delay float64) (*Trigger, error) {
	if every <= 0 || math.IsNaN(every) || math.IsInf(every, 0) {
		return nil, fmt.Errorf("trigger interval must be > 0 and finite: %f", every)
	}
	if delay < 0 || delay >= every || math.IsNaN(delay) {
		return nil, fmt.Errorf("trigger delay must be in [0, interval): %f", delay)
	}
	return &Trigger{every: every, delay: delay}, nil
}

// ShouldTrigger reports whether beats entered an interval the trigger has
// not fired in yet. The last-fired interval index is tracked so repeated
// calls within one interval fire exactly once; transport jumps re-arm the
// trigger for the interval they land in.
func (tr *Trigger) ShouldTrigger(beats float64) bool {
	if beats < tr.delay {
		return false
	}
	idx := int64(math.Floor((beats - tr.delay) / tr.every))
	if tr.fired && idx == tr.lastInterval {
		return false
	}
	tr.lastInterval = idx
	tr.fired = true
	return true
}

// Reset re-arms the trigger.
func (tr *Trigger) Reset() {
	tr.lastInterval = 0
	tr.fired = false
}

// Every returns the trigger interval in beats.
func (tr *Trigger) Every() float64 { return tr.every }

// Delay returns the offset into each interval in beats.
func (tr *Trigger) Delay() float64 { return tr.delay }

// slewCoefficient maps a [0, 1] slew amount onto a one-pole coefficient.
func slewCoefficient(amount float64) float64 {
	return 1 - ease.InCubic(clamp(amount, 0, 1))
}
