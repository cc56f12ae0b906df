package config

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-rig/automate"
	"github.com/cwbudde/algo-rig/effects"
)

// reservedAliases is the top-level key holding the alias table.
const reservedAliases = "aliases"

// Parse decodes one configuration document. The top level is a mapping
// of control name to definition; document order is preserved. Unknown
// fields and unknown type names are errors.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	doc := &Document{
		Aliases:  make(map[string]string),
		Controls: make(map[string]*Control),
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse config: top level must be a mapping")
	}

	sawAliases := false
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		valueNode := mapping.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: control name must be a scalar", keyNode.Line)
		}
		name := keyNode.Value

		if name == reservedAliases {
			if sawAliases {
				return nil, fmt.Errorf("aliases: defined twice")
			}
			sawAliases = true
			if err := valueNode.Decode(&doc.Aliases); err != nil {
				return nil, fmt.Errorf("aliases: %w", err)
			}
			continue
		}

		if _, dup := doc.Controls[name]; dup {
			return nil, fmt.Errorf("control %q: defined twice", name)
		}
		control, err := parseControl(name, valueNode)
		if err != nil {
			return nil, err
		}
		doc.Controls[name] = control
		doc.names = append(doc.names, name)
	}

	// An alias that shadows a control would silently hide it at lookup.
	// Dangling targets stay legal (names are free text and may go stale).
	for alias := range doc.Aliases {
		if _, clash := doc.Controls[alias]; clash {
			return nil, fmt.Errorf("alias %q: shadows a control of the same name", alias)
		}
	}
	return doc, nil
}

func parseControl(name string, node *yaml.Node) (*Control, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("control %q: definition must be a mapping", name)
	}

	typeName, ok := scalarField(node, "type")
	if !ok {
		return nil, fmt.Errorf("control %q: missing type", name)
	}
	kind, err := KindByName(typeName)
	if err != nil {
		return nil, fmt.Errorf("control %q: %w", name, err)
	}

	c := &Control{Name: name, Kind: kind}
	if err := parseCommon(c, node); err != nil {
		return nil, err
	}

	switch kind {
	case KindSlider:
		err = parseSlider(c, node)
	case KindCheckbox:
		err = parseCheckbox(c, node)
	case KindSelect:
		err = parseSelect(c, node)
	case KindSeparator:
		err = checkKeys(fmt.Sprintf("control %q", name), node, commonKeys())
	case KindMIDI:
		err = parseMIDI(c, node)
	case KindOSC:
		err = parseOSC(c, node)
	case KindAudio:
		err = parseAudio(c, node)
	case KindTriangle:
		err = parseTriangle(c, node)
	case KindRandom:
		err = parseRandom(c, node)
	case KindRandomSlewed:
		err = parseRandomSlewed(c, node)
	case KindAutomate:
		err = parseAutomate(c, node)
	case KindMod:
		err = parseMod(c, node)
	case KindEffect:
		err = parseEffect(c, node)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// scalarField peeks a scalar value by key without decoding the mapping.
func scalarField(node *yaml.Node, key string) (string, bool) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Kind == yaml.ScalarNode && node.Content[i].Value == key {
			value := node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return "", false
			}
			return value.Value, true
		}
	}
	return "", false
}

// checkKeys rejects mapping fields outside the allowed set.
func checkKeys(context string, node *yaml.Node, allowed []string) error {
	ok := make(map[string]struct{}, len(allowed))
	for _, key := range allowed {
		ok[key] = struct{}{}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("%s: field name must be a scalar (line %d)", context, keyNode.Line)
		}
		if _, found := ok[keyNode.Value]; !found {
			return fmt.Errorf("%s: unknown field %q", context, keyNode.Value)
		}
	}
	return nil
}

func commonKeys(extra ...string) []string {
	return append([]string{"type", "bypass", "modulators"}, extra...)
}

func parseCommon(c *Control, node *yaml.Node) error {
	var raw struct {
		Bypass     *float64 `yaml:"bypass"`
		Modulators []string `yaml:"modulators"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	if raw.Bypass != nil && (math.IsNaN(*raw.Bypass) || math.IsInf(*raw.Bypass, 0)) {
		return fmt.Errorf("control %q: bypass must be finite: %f", c.Name, *raw.Bypass)
	}
	for i, m := range raw.Modulators {
		if m == "" {
			return fmt.Errorf("control %q: modulator %d must not be empty", c.Name, i)
		}
	}
	c.Bypass = raw.Bypass
	c.Modulators = raw.Modulators
	return nil
}

// param returns the decoded parameter or a cold fallback when absent.
func param(p *Param, fallback float64) Param {
	if p == nil {
		return Cold(fallback)
	}
	return *p
}

// coldCheck applies a validation to load-time values only. Live
// references are checked per frame at resolve.
func coldCheck(name, field string, p Param, check func(v float64) error) error {
	if p.IsHot() {
		return nil
	}
	if err := check(p.Value()); err != nil {
		return fmt.Errorf("control %q: %s %w", name, field, err)
	}
	return nil
}

func positive(v float64) error {
	if v <= 0 {
		return fmt.Errorf("must be positive: %g", v)
	}
	return nil
}

func nonNegative(v float64) error {
	if v < 0 {
		return fmt.Errorf("must not be negative: %g", v)
	}
	return nil
}

func unit(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("must be in [0, 1]: %g", v)
	}
	return nil
}

// coldRange rejects an inverted range when both ends are load-time
// values. Mixed or live ends self-correct at resolve.
func coldRange(name string, min, max Param) error {
	if min.IsHot() || max.IsHot() {
		return nil
	}
	if max.Value() <= min.Value() {
		return fmt.Errorf("control %q: range must satisfy min < max: [%g, %g]", name, min.Value(), max.Value())
	}
	return nil
}

func parseSlider(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("min", "max", "default")); err != nil {
		return err
	}
	var raw struct {
		Min     *float64 `yaml:"min"`
		Max     *float64 `yaml:"max"`
		Default *float64 `yaml:"default"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &SliderSpec{Min: 0, Max: 1}
	if raw.Min != nil {
		spec.Min = *raw.Min
	}
	if raw.Max != nil {
		spec.Max = *raw.Max
	}
	if !finite(spec.Min) || !finite(spec.Max) {
		return fmt.Errorf("control %q: range must be finite: [%f, %f]", c.Name, spec.Min, spec.Max)
	}
	if spec.Max <= spec.Min {
		return fmt.Errorf("control %q: range must satisfy min < max: [%g, %g]", c.Name, spec.Min, spec.Max)
	}
	spec.Default = spec.Min
	if raw.Default != nil {
		spec.Default = *raw.Default
	}
	if !finite(spec.Default) || spec.Default < spec.Min || spec.Default > spec.Max {
		return fmt.Errorf("control %q: default %g outside [%g, %g]", c.Name, spec.Default, spec.Min, spec.Max)
	}
	c.Slider = spec
	return nil
}

func parseCheckbox(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("default")); err != nil {
		return err
	}
	var raw struct {
		Default *bool `yaml:"default"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &CheckboxSpec{}
	if raw.Default != nil {
		spec.Default = *raw.Default
	}
	c.Checkbox = spec
	return nil
}

func parseSelect(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("options", "default")); err != nil {
		return err
	}
	var raw struct {
		Options []string `yaml:"options"`
		Default *string  `yaml:"default"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	if len(raw.Options) == 0 {
		return fmt.Errorf("control %q: missing options", c.Name)
	}
	spec := &SelectSpec{Options: raw.Options, Default: raw.Options[0]}
	if raw.Default != nil {
		spec.Default = *raw.Default
		if !containsString(raw.Options, spec.Default) {
			return fmt.Errorf("control %q: default %q not among options", c.Name, spec.Default)
		}
	}
	c.Select = spec
	return nil
}

func parseMIDI(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("channel", "cc", "min", "max", "default")); err != nil {
		return err
	}
	var raw struct {
		Channel *int     `yaml:"channel"`
		CC      *int     `yaml:"cc"`
		Min     *Param   `yaml:"min"`
		Max     *Param   `yaml:"max"`
		Default *float64 `yaml:"default"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &MIDISpec{Channel: 1, Min: param(raw.Min, 0), Max: param(raw.Max, 1)}
	if raw.Channel != nil {
		if *raw.Channel < 1 || *raw.Channel > 16 {
			return fmt.Errorf("control %q: channel must be in [1, 16]: %d", c.Name, *raw.Channel)
		}
		spec.Channel = uint8(*raw.Channel)
	}
	if raw.CC == nil {
		return fmt.Errorf("control %q: missing cc", c.Name)
	}
	if *raw.CC < 0 || *raw.CC > 127 {
		return fmt.Errorf("control %q: cc must be in [0, 127]: %d", c.Name, *raw.CC)
	}
	spec.CC = uint8(*raw.CC)
	if raw.Default != nil {
		spec.Default = *raw.Default
	}
	if !finite(spec.Default) || spec.Default < 0 || spec.Default > 1 {
		return fmt.Errorf("control %q: default must be in [0, 1]: %f", c.Name, spec.Default)
	}
	if err := coldRange(c.Name, spec.Min, spec.Max); err != nil {
		return err
	}
	c.MIDI = spec
	return nil
}

func parseOSC(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("address", "min", "max", "default")); err != nil {
		return err
	}
	var raw struct {
		Address *string  `yaml:"address"`
		Min     *Param   `yaml:"min"`
		Max     *Param   `yaml:"max"`
		Default *float64 `yaml:"default"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	if raw.Address == nil || *raw.Address == "" {
		return fmt.Errorf("control %q: missing address", c.Name)
	}
	if (*raw.Address)[0] != '/' {
		return fmt.Errorf("control %q: address must start with '/': %q", c.Name, *raw.Address)
	}
	spec := &OSCSpec{Address: *raw.Address, Min: param(raw.Min, 0), Max: param(raw.Max, 1)}
	if raw.Default != nil {
		spec.Default = *raw.Default
	}
	if !finite(spec.Default) || spec.Default < 0 || spec.Default > 1 {
		return fmt.Errorf("control %q: default must be in [0, 1]: %f", c.Name, spec.Default)
	}
	if err := coldRange(c.Name, spec.Min, spec.Max); err != nil {
		return err
	}
	c.OSC = spec
	return nil
}

func parseAudio(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node,
		commonKeys("channel", "band", "pre_emphasis", "detect", "rise", "fall", "min", "max")); err != nil {
		return err
	}
	var raw struct {
		Channel     *int   `yaml:"channel"`
		Band        string `yaml:"band"`
		PreEmphasis *Param `yaml:"pre_emphasis"`
		Detect      *Param `yaml:"detect"`
		Rise        *Param `yaml:"rise"`
		Fall        *Param `yaml:"fall"`
		Min         *Param `yaml:"min"`
		Max         *Param `yaml:"max"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	band, err := BandByName(raw.Band)
	if err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &AudioSpec{
		Band:        band,
		PreEmphasis: param(raw.PreEmphasis, 0),
		Detect:      param(raw.Detect, 0.5),
		Rise:        param(raw.Rise, 0),
		Fall:        param(raw.Fall, 0),
		Min:         param(raw.Min, 0),
		Max:         param(raw.Max, 1),
	}
	if raw.Channel != nil {
		if *raw.Channel < 0 {
			return fmt.Errorf("control %q: channel must not be negative: %d", c.Name, *raw.Channel)
		}
		spec.Channel = *raw.Channel
	}
	for _, check := range []struct {
		field string
		p     Param
	}{
		{"pre_emphasis", spec.PreEmphasis},
		{"detect", spec.Detect},
		{"rise", spec.Rise},
		{"fall", spec.Fall},
	} {
		if err := coldCheck(c.Name, check.field, check.p, unit); err != nil {
			return err
		}
	}
	if err := coldRange(c.Name, spec.Min, spec.Max); err != nil {
		return err
	}
	c.Audio = spec
	return nil
}

func parseTriangle(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("period", "min", "max", "phase")); err != nil {
		return err
	}
	var raw struct {
		Period *Param `yaml:"period"`
		Min    *Param `yaml:"min"`
		Max    *Param `yaml:"max"`
		Phase  *Param `yaml:"phase"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &TriangleSpec{
		Period: param(raw.Period, 1),
		Min:    param(raw.Min, 0),
		Max:    param(raw.Max, 1),
		Phase:  param(raw.Phase, 0),
	}
	if err := coldCheck(c.Name, "period", spec.Period, positive); err != nil {
		return err
	}
	if err := coldRange(c.Name, spec.Min, spec.Max); err != nil {
		return err
	}
	c.Triangle = spec
	return nil
}

func parseRandom(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("period", "min", "max", "delay", "seed")); err != nil {
		return err
	}
	var raw struct {
		Period *Param  `yaml:"period"`
		Min    *Param  `yaml:"min"`
		Max    *Param  `yaml:"max"`
		Delay  *Param  `yaml:"delay"`
		Seed   *uint64 `yaml:"seed"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &RandomSpec{
		Period: param(raw.Period, 1),
		Min:    param(raw.Min, 0),
		Max:    param(raw.Max, 1),
		Delay:  param(raw.Delay, 0),
	}
	if raw.Seed != nil {
		spec.Seed = *raw.Seed
	}
	if err := coldCheck(c.Name, "period", spec.Period, positive); err != nil {
		return err
	}
	if err := coldCheck(c.Name, "delay", spec.Delay, nonNegative); err != nil {
		return err
	}
	if err := coldRange(c.Name, spec.Min, spec.Max); err != nil {
		return err
	}
	c.Random = spec
	return nil
}

func parseRandomSlewed(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node,
		commonKeys("period", "min", "max", "rise", "fall", "delay", "seed")); err != nil {
		return err
	}
	var raw struct {
		Period *Param  `yaml:"period"`
		Min    *Param  `yaml:"min"`
		Max    *Param  `yaml:"max"`
		Rise   *Param  `yaml:"rise"`
		Fall   *Param  `yaml:"fall"`
		Delay  *Param  `yaml:"delay"`
		Seed   *uint64 `yaml:"seed"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &RandomSlewedSpec{
		Period: param(raw.Period, 1),
		Min:    param(raw.Min, 0),
		Max:    param(raw.Max, 1),
		Rise:   param(raw.Rise, 0.5),
		Fall:   param(raw.Fall, 0.5),
		Delay:  param(raw.Delay, 0),
	}
	if raw.Seed != nil {
		spec.Seed = *raw.Seed
	}
	if err := coldCheck(c.Name, "period", spec.Period, positive); err != nil {
		return err
	}
	if err := coldCheck(c.Name, "rise", spec.Rise, unit); err != nil {
		return err
	}
	if err := coldCheck(c.Name, "fall", spec.Fall, unit); err != nil {
		return err
	}
	if err := coldCheck(c.Name, "delay", spec.Delay, nonNegative); err != nil {
		return err
	}
	if err := coldRange(c.Name, spec.Min, spec.Max); err != nil {
		return err
	}
	c.RandomSlewed = spec
	return nil
}

func parseAutomate(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("mode", "breakpoints")); err != nil {
		return err
	}
	var raw struct {
		Mode        string      `yaml:"mode"`
		Breakpoints []yaml.Node `yaml:"breakpoints"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	mode, err := automate.ModeByName(raw.Mode)
	if err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &AutomateSpec{Mode: mode}
	for i := range raw.Breakpoints {
		bp, err := parseBreakpoint(c.Name, i, &raw.Breakpoints[i])
		if err != nil {
			return err
		}
		spec.Breakpoints = append(spec.Breakpoints, bp)
	}

	// Structural validation over the load-time skeleton. Live values
	// resolve per frame and cannot change positions or kinds.
	skeleton := make([]automate.Breakpoint, len(spec.Breakpoints))
	for i, bp := range spec.Breakpoints {
		skeleton[i] = automate.Breakpoint{Position: bp.Position, Value: bp.Value.Value(), Kind: bp.Kind}
	}
	if err := automate.Validate(skeleton); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	c.Automate = spec
	return nil
}

func parseBreakpoint(name string, index int, node *yaml.Node) (BreakpointSpec, error) {
	context := fmt.Sprintf("control %q: breakpoint %d", name, index)
	if node.Kind != yaml.MappingNode {
		return BreakpointSpec{}, fmt.Errorf("%s: must be a mapping", context)
	}
	if err := checkKeys(context, node,
		[]string{"position", "value", "kind", "easing", "frequency", "amplitude", "width", "shape", "constrain"}); err != nil {
		return BreakpointSpec{}, err
	}
	var raw struct {
		Position  *float64 `yaml:"position"`
		Value     *Param   `yaml:"value"`
		Kind      *string  `yaml:"kind"`
		Easing    string   `yaml:"easing"`
		Frequency *Param   `yaml:"frequency"`
		Amplitude *Param   `yaml:"amplitude"`
		Width     *Param   `yaml:"width"`
		Shape     string   `yaml:"shape"`
		Constrain string   `yaml:"constrain"`
	}
	if err := node.Decode(&raw); err != nil {
		return BreakpointSpec{}, fmt.Errorf("%s: %w", context, err)
	}
	if raw.Position == nil {
		return BreakpointSpec{}, fmt.Errorf("%s: missing position", context)
	}
	if raw.Kind == nil {
		return BreakpointSpec{}, fmt.Errorf("%s: missing kind", context)
	}
	kind, err := automate.KindByName(*raw.Kind)
	if err != nil {
		return BreakpointSpec{}, fmt.Errorf("%s: %w", context, err)
	}
	if _, err := automate.EasingByName(raw.Easing); err != nil {
		return BreakpointSpec{}, fmt.Errorf("%s: %w", context, err)
	}
	shape, err := automate.ShapeByName(raw.Shape)
	if err != nil {
		return BreakpointSpec{}, fmt.Errorf("%s: %w", context, err)
	}
	constrain, err := automate.ConstrainByName(raw.Constrain)
	if err != nil {
		return BreakpointSpec{}, fmt.Errorf("%s: %w", context, err)
	}

	bp := BreakpointSpec{
		Position:  *raw.Position,
		Value:     param(raw.Value, 0),
		Kind:      kind,
		Easing:    raw.Easing,
		Frequency: param(raw.Frequency, 1),
		Amplitude: param(raw.Amplitude, 1),
		Width:     param(raw.Width, 0.5),
		Shape:     shape,
		Constrain: constrain,
	}
	if !bp.Frequency.IsHot() && bp.Frequency.Value() <= 0 {
		return BreakpointSpec{}, fmt.Errorf("%s: frequency must be positive: %g", context, bp.Frequency.Value())
	}
	if !bp.Width.IsHot() {
		if w := bp.Width.Value(); w < 0 || w > 1 {
			return BreakpointSpec{}, fmt.Errorf("%s: width must be in [0, 1]: %g", context, w)
		}
	}
	return bp, nil
}

func parseMod(c *Control, node *yaml.Node) error {
	if err := checkKeys(fmt.Sprintf("control %q", c.Name), node, commonKeys("source")); err != nil {
		return err
	}
	var raw struct {
		Source *Param `yaml:"source"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	if raw.Source == nil {
		return fmt.Errorf("control %q: missing source", c.Name)
	}
	c.Mod = &ModSpec{Source: *raw.Source}
	return nil
}

func parseEffect(c *Control, node *yaml.Node) error {
	effectName, ok := scalarField(node, "effect")
	if !ok {
		return fmt.Errorf("control %q: missing effect", c.Name)
	}
	kind, err := EffectKindByName(effectName)
	if err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	spec := &EffectSpec{Kind: kind}
	context := fmt.Sprintf("control %q", c.Name)

	switch kind {
	case EffectHysteresis:
		if err := checkKeys(context, node,
			commonKeys("effect", "lower_threshold", "upper_threshold", "output_low", "output_high", "pass_through")); err != nil {
			return err
		}
		var raw struct {
			LowerThreshold *Param `yaml:"lower_threshold"`
			UpperThreshold *Param `yaml:"upper_threshold"`
			OutputLow      *Param `yaml:"output_low"`
			OutputHigh     *Param `yaml:"output_high"`
			PassThrough    bool   `yaml:"pass_through"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("control %q: %w", c.Name, err)
		}
		spec.Hysteresis = &HysteresisEffectSpec{
			LowerThreshold: raw.LowerThreshold,
			UpperThreshold: raw.UpperThreshold,
			OutputLow:      raw.OutputLow,
			OutputHigh:     raw.OutputHigh,
			PassThrough:    raw.PassThrough,
		}

	case EffectQuantizer:
		if err := checkKeys(context, node, commonKeys("effect", "step", "min", "max")); err != nil {
			return err
		}
		var raw struct {
			Step *Param `yaml:"step"`
			Min  *Param `yaml:"min"`
			Max  *Param `yaml:"max"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("control %q: %w", c.Name, err)
		}
		spec.Quantizer = &QuantizerEffectSpec{Step: raw.Step, Min: raw.Min, Max: raw.Max}

	case EffectSlew:
		if err := checkKeys(context, node, commonKeys("effect", "rise", "fall")); err != nil {
			return err
		}
		var raw struct {
			Rise *Param `yaml:"rise"`
			Fall *Param `yaml:"fall"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("control %q: %w", c.Name, err)
		}
		spec.Slew = &SlewEffectSpec{Rise: raw.Rise, Fall: raw.Fall}

	case EffectSaturator:
		if err := checkKeys(context, node, commonKeys("effect", "drive", "min", "max")); err != nil {
			return err
		}
		var raw struct {
			Drive *Param `yaml:"drive"`
			Min   *Param `yaml:"min"`
			Max   *Param `yaml:"max"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("control %q: %w", c.Name, err)
		}
		spec.Saturator = &SaturatorEffectSpec{Drive: raw.Drive, Min: raw.Min, Max: raw.Max}

	case EffectWaveFolder:
		if err := checkKeys(context, node, commonKeys("effect", "gain", "symmetry", "bias", "shape", "min", "max")); err != nil {
			return err
		}
		var raw struct {
			Gain     *Param `yaml:"gain"`
			Symmetry *Param `yaml:"symmetry"`
			Bias     *Param `yaml:"bias"`
			Shape    *Param `yaml:"shape"`
			Min      *Param `yaml:"min"`
			Max      *Param `yaml:"max"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("control %q: %w", c.Name, err)
		}
		spec.WaveFolder = &WaveFolderEffectSpec{
			Gain:     raw.Gain,
			Symmetry: raw.Symmetry,
			Bias:     raw.Bias,
			Shape:    raw.Shape,
			Min:      raw.Min,
			Max:      raw.Max,
		}

	case EffectRingMod:
		if err := checkKeys(context, node, commonKeys("effect", "mix", "modulator")); err != nil {
			return err
		}
		var raw struct {
			Mix       *Param `yaml:"mix"`
			Modulator *Param `yaml:"modulator"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("control %q: %w", c.Name, err)
		}
		spec.RingMod = &RingModEffectSpec{Mix: raw.Mix, Modulator: raw.Modulator}

	case EffectMath:
		if err := checkKeys(context, node, commonKeys("effect", "op", "operand")); err != nil {
			return err
		}
		var raw struct {
			Op      *string `yaml:"op"`
			Operand *Param  `yaml:"operand"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("control %q: %w", c.Name, err)
		}
		if raw.Op == nil {
			return fmt.Errorf("control %q: missing op", c.Name)
		}
		op, err := effects.MathOpByName(*raw.Op)
		if err != nil {
			return fmt.Errorf("control %q: %w", c.Name, err)
		}
		spec.Math = &MathEffectSpec{Op: op, Operand: raw.Operand}
	}

	// A throwaway build surfaces invalid load-time parameters here
	// instead of at hub construction.
	if _, err := spec.Build(); err != nil {
		return fmt.Errorf("control %q: %w", c.Name, err)
	}
	c.Effect = spec
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
