// Package persist stores rig state as a versioned JSON document.
//
// Save writes atomically (temp file plus rename) so a crash mid-write
// never truncates the previous state. Load tolerates documents written
// by older versions: unknown JSON fields are dropped and missing
// sections default to empty, so state files merge forward.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Version is the current state document version.
const Version = 1

// State is everything a rig persists between sessions: stored control
// values, named snapshots and learned MIDI mappings.
type State struct {
	Version      int                    `json:"version"`
	Controls     map[string]float64     `json:"controls,omitempty"`
	Bools        map[string]bool        `json:"bools,omitempty"`
	Strings      map[string]string      `json:"strings,omitempty"`
	Snapshots    map[string]Snapshot    `json:"snapshots,omitempty"`
	MIDIMappings map[string]MIDIMapping `json:"midi_mappings,omitempty"`
}

// Snapshot is one named set of control values. Numbers hold slider
// values and normalized MIDI/OSC values; Bools and Texts hold checkbox
// and select values.
type Snapshot struct {
	Numbers map[string]float64 `json:"numbers,omitempty"`
	Bools   map[string]bool    `json:"bools,omitempty"`
	Texts   map[string]string  `json:"texts,omitempty"`
}

// MIDIMapping is one learned controller binding. Channel is 1-based.
type MIDIMapping struct {
	Channel uint8 `json:"channel"`
	CC      uint8 `json:"cc"`
}

// New returns an empty state at the current version.
func New() *State {
	return &State{
		Version:      Version,
		Controls:     make(map[string]float64),
		Bools:        make(map[string]bool),
		Strings:      make(map[string]string),
		Snapshots:    make(map[string]Snapshot),
		MIDIMappings: make(map[string]MIDIMapping),
	}
}

// Save writes the state to path atomically.
func Save(path string, st *State) error {
	if st == nil {
		return fmt.Errorf("save state: state must not be nil")
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save state %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save state %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save state %s: %w", path, err)
	}

	return nil
}

// Load reads a state document from path. Documents newer than this
// package understands are rejected; older ones load with missing
// sections defaulted.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	st := &State{}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("load state %s: %w", path, err)
	}

	if st.Version > Version {
		return nil, fmt.Errorf("load state %s: version %d is newer than supported %d", path, st.Version, Version)
	}

	if st.Controls == nil {
		st.Controls = make(map[string]float64)
	}
	if st.Bools == nil {
		st.Bools = make(map[string]bool)
	}
	if st.Strings == nil {
		st.Strings = make(map[string]string)
	}
	if st.Snapshots == nil {
		st.Snapshots = make(map[string]Snapshot)
	}
	if st.MIDIMappings == nil {
		st.MIDIMappings = make(map[string]MIDIMapping)
	}

	return st, nil
}
