package automate

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
	// perlinSpread stretches one noise cycle over two lattice cells.
	perlinSpread = 2.0
	// perlinNorm rescales raw 2D Perlin output (about ±1/√2) toward ±1.
	perlinNorm = math.Sqrt2

	maxFoldIterations = 16
)

// EvaluatorOption mutates evaluator construction parameters.
type EvaluatorOption func(*evaluatorConfig) error

type evaluatorConfig struct {
	logger *slog.Logger
}

// WithEvaluatorLogger routes fallback warnings to the given logger.
func WithEvaluatorLogger(logger *slog.Logger) EvaluatorOption {
	return func(cfg *evaluatorConfig) error {
		if logger == nil {
			return fmt.Errorf("evaluator logger must not be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// Evaluator computes breakpoint curve values at a beat position.
//
// It holds only a noise generator cache and warning dedup state; curves are
// passed per call. Not safe for concurrent use.
type Evaluator struct {
	logger *slog.Logger
	warned map[string]struct{}

	noiseSeed int64
	noise     *perlin.Perlin
}

// NewEvaluator creates an evaluator with optional overrides.
func NewEvaluator(opts ...EvaluatorOption) (*Evaluator, error) {
	cfg := evaluatorConfig{logger: slog.Default()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Evaluator{
		logger: cfg.logger,
		warned: make(map[string]struct{}),
	}, nil
}

// Eval returns the curve value at beats.
//
// The curve must be non-empty with its first breakpoint at position zero;
// violating either panics. A single breakpoint is a constant. In loop mode
// the position wraps over the final breakpoint position; in once mode
// positions at or past the final breakpoint return the final value with no
// extrapolation. A position no segment covers (non-ascending positions)
// logs one warning and yields 0.
func (e *Evaluator) Eval(breakpoints []Breakpoint, mode Mode, beats float64) float64 {
	if len(breakpoints) == 0 {
		panic("automate: empty breakpoint list")
	}
	if breakpoints[0].Position != 0 {
		panic(fmt.Sprintf("automate: first breakpoint position must be 0, got %g", breakpoints[0].Position))
	}
	if len(breakpoints) == 1 {
		return breakpoints[0].Value
	}

	last := breakpoints[len(breakpoints)-1]
	span := last.Position
	if span <= 0 {
		return e.fallback("non-ascending positions", mode, beats)
	}

	pos := beats
	if mode == ModeLoop {
		pos = math.Mod(beats, span)
		if pos < 0 {
			pos += span
		}
	} else if beats >= span {
		return last.Value
	}

	p1 := -1
	for i := len(breakpoints) - 1; i >= 0; i-- {
		if breakpoints[i].Position <= pos {
			p1 = i
			break
		}
	}
	if p1 < 0 {
		return e.fallback("no segment covers position", mode, beats)
	}

	p2 := p1 + 1
	if p2 == len(breakpoints) {
		if mode != ModeLoop {
			return last.Value
		}
		// Virtual wrap segment from the last breakpoint back to the first.
		p2 = 0
	}

	return e.segment(breakpoints[p1], breakpoints[p2], pos, beats)
}

func (e *Evaluator) segment(p1, p2 Breakpoint, pos, beats float64) float64 {
	switch p1.Kind {
	case KindStep:
		return p1.Value
	case KindRamp:
		return rampValue(p1, p2, pos)
	case KindWave:
		return waveValue(p1, p2, pos)
	case KindRandom:
		return randomValue(p1, p2, beats)
	case KindRandomSmooth:
		return e.randomSmoothValue(p1, p2, pos, beats)
	case KindEnd:
		panic("automate: end breakpoint evaluated as active segment")
	default:
		panic(fmt.Sprintf("automate: unknown breakpoint kind %d", int(p1.Kind)))
	}
}

func (e *Evaluator) fallback(reason string, mode Mode, beats float64) float64 {
	if _, ok := e.warned[reason]; !ok {
		e.warned[reason] = struct{}{}
		e.logger.Warn("breakpoint evaluation has no active segment",
			"reason", reason, "mode", mode.String(), "beats", beats)
	}
	return 0
}

func (e *Evaluator) perlinFor(seed int64) *perlin.Perlin {
	if e.noise == nil || e.noiseSeed != seed {
		e.noise = perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)
		e.noiseSeed = seed
	}
	return e.noise
}

func rampValue(p1, p2 Breakpoint, pos float64) float64 {
	width := p2.Position - p1.Position
	if width <= 0 {
		return p1.Value
	}
	t := math.Mod((pos-p1.Position)/width, 1)
	if t < 0 {
		t += 1
	}
	return lerp(p1.Value, p2.Value, applyEasing(p1.Easing, t))
}

func waveValue(p1, p2 Breakpoint, pos float64) float64 {
	base := rampValue(p1, p2, pos)
	if p1.Frequency <= 0 {
		return base
	}
	phase := cyclePhase(pos, p1.Frequency)

	var wave float64
	switch p1.Shape {
	case ShapeSine:
		m := 2 * (p1.Width - 0.5)
		wave = math.Sin(2*math.Pi*phase + m*math.Sin(2*math.Pi*phase))
	case ShapeTriangle:
		wave = triangleWave(phase, p1.Width)
	case ShapeSquare:
		if phase < clampWidth(p1.Width) {
			wave = 1
		} else {
			wave = -1
		}
	}
	return constrainValue(base+wave*p1.Amplitude, p1.Value, p2.Value, p1.Constrain)
}

func randomValue(p1, p2 Breakpoint, beats float64) float64 {
	seed := curveSeed(p1, p2, loopCount(p1, p2, beats))
	rng := rand.New(rand.NewSource(seed))
	return p1.Value + (rng.Float64()*2-1)*p1.Amplitude
}

func (e *Evaluator) randomSmoothValue(p1, p2 Breakpoint, pos, beats float64) float64 {
	base := rampValue(p1, p2, pos)
	freq := p1.Frequency
	if freq <= 0 {
		freq = 1
	}
	phase := cyclePhase(pos, freq)

	seed := curveSeed(p1, p2, loopCount(p1, p2, beats))
	n := e.perlinFor(seed).Noise2D(phase*perlinSpread, base)
	n = clamp(n*perlinNorm, -1, 1)
	return constrainValue(base+n*p1.Amplitude, p1.Value, p2.Value, p1.Constrain)
}

// loopCount identifies the loop iteration so random kinds reproduce the
// same value when the same iteration is revisited.
func loopCount(p1, p2 Breakpoint, beats float64) int64 {
	divisor := p2.Position
	if divisor <= 0 {
		divisor = math.Max(p1.Position, 1)
	}
	return int64(math.Floor(beats / divisor))
}

func curveSeed(p1, p2 Breakpoint, loopCount int64) int64 {
	h := fnv.New64a()
	var b [8]byte
	for _, f := range [...]float64{p1.Position, p2.Position, p1.Value, p1.Amplitude} {
		binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
		_, _ = h.Write(b[:])
	}
	binary.BigEndian.PutUint64(b[:], uint64(loopCount))
	_, _ = h.Write(b[:])
	return int64(h.Sum64())
}

func cyclePhase(pos, freq float64) float64 {
	phase := math.Mod(pos/freq, 1)
	if phase < 0 {
		phase += 1
	}
	return phase
}

func triangleWave(phase, width float64) float64 {
	w := clampWidth(width)
	if phase < w {
		return -1 + 2*phase/w
	}
	return 1 - 2*(phase-w)/(1-w)
}

func constrainValue(v, a, b float64, c Constrain) float64 {
	lo := math.Min(a, b)
	hi := math.Max(a, b)
	switch c {
	case ConstrainClamp:
		return clamp(v, lo, hi)
	case ConstrainFold:
		return foldRange(v, lo, hi)
	default:
		return v
	}
}

func foldRange(v, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	for i := 0; i < maxFoldIterations && (v < lo || v > hi); i++ {
		if v > hi {
			v = hi - (v - hi)
		} else {
			v = lo + (lo - v)
		}
	}
	return clamp(v, lo, hi)
}

func applyEasing(e Easing, t float64) float64 {
	if e == nil {
		return t
	}
	return e(t)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampWidth(w float64) float64 {
	return clamp(w, 1e-6, 1-1e-6)
}
