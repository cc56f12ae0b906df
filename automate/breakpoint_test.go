package automate

import "testing"

func TestNameLookupsRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindStep, KindRamp, KindWave, KindRandom, KindRandomSmooth, KindEnd} {
		got, err := KindByName(kind.String())
		if err != nil {
			t.Fatalf("KindByName(%q) error = %v", kind.String(), err)
		}
		if got != kind {
			t.Errorf("KindByName(%q) = %v, want %v", kind.String(), got, kind)
		}
	}
	for _, shape := range []Shape{ShapeSine, ShapeTriangle, ShapeSquare} {
		got, err := ShapeByName(shape.String())
		if err != nil {
			t.Fatalf("ShapeByName(%q) error = %v", shape.String(), err)
		}
		if got != shape {
			t.Errorf("ShapeByName(%q) = %v, want %v", shape.String(), got, shape)
		}
	}
	for _, constrain := range []Constrain{ConstrainNone, ConstrainClamp, ConstrainFold} {
		got, err := ConstrainByName(constrain.String())
		if err != nil {
			t.Fatalf("ConstrainByName(%q) error = %v", constrain.String(), err)
		}
		if got != constrain {
			t.Errorf("ConstrainByName(%q) = %v, want %v", constrain.String(), got, constrain)
		}
	}
	for _, mode := range []Mode{ModeLoop, ModeOnce} {
		got, err := ModeByName(mode.String())
		if err != nil {
			t.Fatalf("ModeByName(%q) error = %v", mode.String(), err)
		}
		if got != mode {
			t.Errorf("ModeByName(%q) = %v, want %v", mode.String(), got, mode)
		}
	}
}

func TestNameLookupEmptyDefaults(t *testing.T) {
	if shape, err := ShapeByName(""); err != nil || shape != ShapeSine {
		t.Errorf("ShapeByName(\"\") = %v, %v, want sine", shape, err)
	}
	if constrain, err := ConstrainByName(""); err != nil || constrain != ConstrainNone {
		t.Errorf("ConstrainByName(\"\") = %v, %v, want none", constrain, err)
	}
	if mode, err := ModeByName(""); err != nil || mode != ModeLoop {
		t.Errorf("ModeByName(\"\") = %v, %v, want loop", mode, err)
	}
}

func TestNameLookupUnknown(t *testing.T) {
	if _, err := KindByName("wiggle"); err == nil {
		t.Error("KindByName(wiggle) should fail")
	}
	if _, err := ShapeByName("saw"); err == nil {
		t.Error("ShapeByName(saw) should fail")
	}
	if _, err := ConstrainByName("wrap"); err == nil {
		t.Error("ConstrainByName(wrap) should fail")
	}
	if _, err := ModeByName("bounce"); err == nil {
		t.Error("ModeByName(bounce) should fail")
	}
}
