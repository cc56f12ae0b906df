// Package rig wires a parsed configuration, a timing source and the
// input adapters into a Hub: the single object a render loop queries
// for parameter values.
//
// The hub is built for a cooperative main loop. Update runs once per
// frame, then any number of Get/GetBool/GetString calls read values;
// neither is safe to call from other goroutines. Background inputs
// (MIDI, OSC, audio, the config watcher) write through their own
// mutex-guarded handles and the hub picks their state up on the next
// frame. Last write wins across sources.
package rig
