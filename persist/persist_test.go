package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	st := New()
	st.Controls["master_gain"] = 0.75
	st.Bools["strobe_on"] = true
	st.Strings["palette"] = "cool"
	st.Snapshots["intro"] = Snapshot{
		Numbers: map[string]float64{"master_gain": 0.2},
		Bools:   map[string]bool{"strobe_on": false},
		Texts:   map[string]string{"palette": "warm"},
	}
	st.MIDIMappings["cutoff"] = MIDIMapping{Channel: 2, CC: 21}

	require.NoError(t, Save(path, st))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Version, got.Version)
	assert.Equal(t, st.Controls, got.Controls)
	assert.Equal(t, st.Bools, got.Bools)
	assert.Equal(t, st.Strings, got.Strings)
	assert.Equal(t, st.Snapshots, got.Snapshots)
	assert.Equal(t, st.MIDIMappings, got.MIDIMappings)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := New()
	first.Controls["a"] = 1
	require.NoError(t, Save(path, first))

	second := New()
	second.Controls["a"] = 2
	require.NoError(t, Save(path, second))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Controls["a"])

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestSaveRejectsNilState(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "state.json"), nil)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestLoadDefaultsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1, "controls": {"x": 0.5}}`), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Controls["x"])
	assert.NotNil(t, got.Bools)
	assert.NotNil(t, got.Strings)
	assert.NotNil(t, got.Snapshots)
	assert.NotNil(t, got.MIDIMappings)
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	doc := `{"version": 1, "controls": {"x": 0.5}, "future_section": {"y": 1}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Controls["x"])
}
