// Package midiin owns a MIDI input connection and fans incoming
// messages out to subscribers.
//
// A Port is explicitly constructed and closed by its owner; there is no
// shared process-wide connection. Device failures are soft: a missing
// or unopenable port logs a warning and leaves the Port inactive, so a
// rig without hardware attached still runs with default values.
package midiin
