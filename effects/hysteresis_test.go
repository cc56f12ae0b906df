package effects

import (
	"math"
	"testing"
)

func TestHysteresisLatchesOnThresholds(t *testing.T) {
	h, err := NewHysteresis()
	if err != nil {
		t.Fatalf("NewHysteresis() error = %v", err)
	}
	var _ Processor = h // verify interface

	steps := []struct {
		in   float64
		want float64
	}{
		{0.5, 0},  // between thresholds, starts low
		{0.8, 1},  // crosses upper
		{0.5, 1},  // holds high
		{0.74, 1}, // still holds
		{0.2, 0},  // crosses lower
		{0.5, 0},  // holds low
	}

	for i, s := range steps {
		if got := h.Apply(s.in); got != s.want {
			t.Fatalf("step %d: Apply(%g) = %g, want %g", i, s.in, got, s.want)
		}
	}
}

func TestHysteresisPassThroughBand(t *testing.T) {
	h, err := NewHysteresis(WithHysteresisPassThrough(true))
	if err != nil {
		t.Fatalf("NewHysteresis() error = %v", err)
	}

	if got := h.Apply(0.5); got != 0.5 {
		t.Errorf("Apply(0.5) = %g, want 0.5 (pass through)", got)
	}
	if got := h.Apply(0.9); got != 1 {
		t.Errorf("Apply(0.9) = %g, want 1", got)
	}
	if got := h.Apply(0.4); got != 0.4 {
		t.Errorf("Apply(0.4) = %g, want 0.4 (pass through)", got)
	}
	if got := h.Apply(0.1); got != 0 {
		t.Errorf("Apply(0.1) = %g, want 0", got)
	}
}

func TestHysteresisCustomOutputs(t *testing.T) {
	h, err := NewHysteresis(
		WithHysteresisThresholds(-0.5, 0.5),
		WithHysteresisOutputs(-1, 2),
	)
	if err != nil {
		t.Fatalf("NewHysteresis() error = %v", err)
	}

	if got := h.Apply(0.7); got != 2 {
		t.Errorf("Apply(0.7) = %g, want 2", got)
	}
	if got := h.Apply(-0.7); got != -1 {
		t.Errorf("Apply(-0.7) = %g, want -1", got)
	}
}

func TestHysteresisReset(t *testing.T) {
	h, err := NewHysteresis()
	if err != nil {
		t.Fatalf("NewHysteresis() error = %v", err)
	}

	h.Apply(0.9)
	if !h.High() {
		t.Fatal("High() = false after crossing upper threshold")
	}

	h.Reset()
	if h.High() {
		t.Error("High() = true after Reset()")
	}
	if got := h.Apply(0.5); got != 0 {
		t.Errorf("Apply(0.5) after Reset() = %g, want 0", got)
	}
}

func TestHysteresisSetParam(t *testing.T) {
	h, err := NewHysteresis()
	if err != nil {
		t.Fatalf("NewHysteresis() error = %v", err)
	}

	if err := h.SetParam("upper_threshold", 0.9); err != nil {
		t.Fatalf("SetParam(upper_threshold) error = %v", err)
	}
	if got := h.Apply(0.8); got != 0 {
		t.Errorf("Apply(0.8) after raising upper threshold = %g, want 0", got)
	}

	if err := h.SetParam("output_high", math.NaN()); err == nil {
		t.Error("SetParam(output_high, NaN) expected error")
	}
	if err := h.SetParam("gain", 1); err == nil {
		t.Error("SetParam(gain) expected unknown parameter error")
	}
}

func TestNewHysteresisValidation(t *testing.T) {
	if _, err := NewHysteresis(WithHysteresisThresholds(0.8, 0.2)); err == nil {
		t.Error("NewHysteresis(lower > upper) expected error")
	}
	if _, err := NewHysteresis(WithHysteresisOutputs(math.Inf(1), 0)); err == nil {
		t.Error("NewHysteresis(infinite output) expected error")
	}
}
