// Package effects provides small stateful scalar processors used as
// modulators in a control chain: hysteresis gate, quantizer, slew
// limiter, saturator, wave folder, ring modulator, and math op.
//
// Every processor implements Processor. Apply transforms one value per
// frame; SetParam mutates a parameter by its configuration key, which is
// how per-frame re-resolution of live parameter references reaches the
// processor. Construction-time options validate the same ranges.
package effects
