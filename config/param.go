package config

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Param is one configuration scalar: either a cold literal fixed at load
// time or a hot reference to another named control, re-resolved every
// frame. The zero value is the cold literal 0.
type Param struct {
	ref   string
	value float64
	hot   bool
}

// Cold returns a literal parameter.
func Cold(value float64) Param {
	return Param{value: value}
}

// Hot returns a live reference parameter.
func Hot(ref string) Param {
	return Param{ref: ref, hot: true}
}

// IsHot reports whether the parameter is a live reference.
func (p Param) IsHot() bool { return p.hot }

// Ref returns the referenced control name, or "" for a literal.
func (p Param) Ref() string { return p.ref }

// Value returns the literal value, or 0 for a reference.
func (p Param) Value() float64 {
	if p.hot {
		return 0
	}
	return p.value
}

// Resolve returns the literal value, or the referenced control's current
// value via lookup.
func (p Param) Resolve(lookup func(name string) float64) float64 {
	if p.hot {
		return lookup(p.ref)
	}
	return p.value
}

// String renders the parameter the way it is written in configuration.
func (p Param) String() string {
	if p.hot {
		return "$" + p.ref
	}
	return fmt.Sprintf("%g", p.value)
}

// UnmarshalYAML accepts a number or a "$name" reference string.
func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: parameter must be a number or $reference", node.Line)
	}
	if node.Tag == "!!str" {
		name := strings.TrimPrefix(node.Value, "$")
		if name == node.Value || name == "" {
			return fmt.Errorf("line %d: invalid parameter %q: want a number or $name reference", node.Line, node.Value)
		}
		*p = Hot(name)
		return nil
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("line %d: invalid parameter %q: want a number or $name reference", node.Line, node.Value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("line %d: parameter must be finite: %s", node.Line, node.Value)
	}
	*p = Cold(v)
	return nil
}
