package rig

import "errors"

// ErrUnknownSnapshot is returned when recalling a snapshot id that was
// never taken (or was taken in a previous session and not loaded).
var ErrUnknownSnapshot = errors.New("unknown snapshot")

// ErrUnknownControl is returned by explicit mutations naming a control
// the current configuration does not define.
var ErrUnknownControl = errors.New("unknown control")
