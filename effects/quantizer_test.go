package effects

import (
	"math"
	"testing"
)

func TestQuantizerSnapsToGrid(t *testing.T) {
	q, err := NewQuantizer(WithQuantizerStep(0.25))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}
	var _ Processor = q // verify interface

	tests := []struct {
		in   float64
		want float64
	}{
		{0.0, 0.0},
		{0.12, 0.0},
		{0.3, 0.25},
		{0.4, 0.5},
		{0.6, 0.5},
		{0.99, 1.0},
		{1.0, 1.0},
	}

	for _, tt := range tests {
		if got := q.Apply(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Apply(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestQuantizerClampsToRange(t *testing.T) {
	q, err := NewQuantizer(WithQuantizerStep(0.25))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	if got := q.Apply(2); got != 1 {
		t.Errorf("Apply(2) = %g, want 1", got)
	}
	if got := q.Apply(-1); got != 0 {
		t.Errorf("Apply(-1) = %g, want 0", got)
	}
}

func TestQuantizerGridAnchorsAtMin(t *testing.T) {
	q, err := NewQuantizer(
		WithQuantizerStep(0.4),
		WithQuantizerRange(0.5, 1.5),
	)
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	// Grid points are 0.5, 0.9, 1.3 (then clamped at 1.5).
	if got := q.Apply(0.8); math.Abs(got-0.9) > 1e-12 {
		t.Errorf("Apply(0.8) = %g, want 0.9", got)
	}
	if got := q.Apply(0.65); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Apply(0.65) = %g, want 0.5", got)
	}
}

func TestQuantizerSetParam(t *testing.T) {
	q, err := NewQuantizer()
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	if err := q.SetParam("step", 0.5); err != nil {
		t.Fatalf("SetParam(step) error = %v", err)
	}
	if got := q.Apply(0.3); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Apply(0.3) with step 0.5 = %g, want 0.5", got)
	}

	if err := q.SetParam("step", 0); err == nil {
		t.Error("SetParam(step, 0) expected error")
	}
	if err := q.SetParam("min", math.NaN()); err == nil {
		t.Error("SetParam(min, NaN) expected error")
	}
	if err := q.SetParam("threshold", 1); err == nil {
		t.Error("SetParam(threshold) expected unknown parameter error")
	}
}

func TestQuantizerDegenerateRangePassesThrough(t *testing.T) {
	q, err := NewQuantizer()
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	// Live range updates may cross transiently; the quantizer goes
	// transparent until they settle.
	if err := q.SetParam("min", 2); err != nil {
		t.Fatalf("SetParam(min) error = %v", err)
	}
	if got := q.Apply(0.37); got != 0.37 {
		t.Errorf("Apply(0.37) with crossed range = %g, want 0.37", got)
	}

	if err := q.SetParam("max", 3); err != nil {
		t.Fatalf("SetParam(max) error = %v", err)
	}
	if got := q.Apply(2.34); math.Abs(got-2.3) > 1e-12 {
		t.Errorf("Apply(2.34) after range settled = %g, want 2.3", got)
	}
}

func TestNewQuantizerValidation(t *testing.T) {
	if _, err := NewQuantizer(WithQuantizerStep(-0.1)); err == nil {
		t.Error("NewQuantizer(negative step) expected error")
	}
	if _, err := NewQuantizer(WithQuantizerRange(1, 0)); err == nil {
		t.Error("NewQuantizer(min > max) expected error")
	}
	if _, err := NewQuantizer(WithQuantizerStep(math.NaN())); err == nil {
		t.Error("NewQuantizer(NaN step) expected error")
	}
}
