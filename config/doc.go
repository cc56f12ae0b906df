// Package config parses the live rig configuration document: an ordered
// YAML mapping of control name to control definition, plus a reserved
// top-level aliases table. Scalar fields accept either a literal number
// or a $name reference to another control; references are resolved every
// frame by the hub, literals are fixed at load time.
//
// Parsing is strict. Unknown control types, unknown fields, and
// malformed curves are errors naming the offending control, so a live
// edit that breaks the document is rejected as a whole and the previous
// configuration stays active.
package config
