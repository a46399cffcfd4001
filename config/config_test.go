package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-arp/sequencer"
)

func useTempDir(t *testing.T) string {
	dir := t.TempDir()
	SetDir(dir)
	t.Cleanup(func() { SetDir("") })
	return dir
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	useTempDir(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 120, cfg.UI.LastTempo)
	assert.Equal(t, sequencer.DefaultSession(), cfg.Session)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := useTempDir(t)
	cfg := DefaultConfig()
	cfg.MIDI.OutputPort = "IAC Driver Bus 1"
	cfg.UI.LastFocusedVoice = 2
	cfg.Session.Voices[2].Pattern = "1 . c2'"
	cfg.Session.Voices[2].On = true
	require.NoError(t, cfg.Save())

	_, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadFillsMissingFields(t *testing.T) {
	dir := useTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"midi": {"inputPort": "Keystation"}}`), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Keystation", cfg.MIDI.InputPort)
	assert.Equal(t, DefaultBlockSize, cfg.Audio.BlockSize)
	assert.Equal(t, DefaultAddr, cfg.HTTP.Addr)
	assert.Len(t, cfg.Session.Voices, sequencer.MaxVoices)
}

func TestLoadCorrupt(t *testing.T) {
	dir := useTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0644))
	_, err := Load()
	assert.Error(t, err)
}

func TestPresetsNewestFirst(t *testing.T) {
	useTempDir(t)
	base := time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local)
	names := []string{"first", "", "third take"}
	for i, name := range names {
		now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		s := sequencer.DefaultSession()
		s.Root = i
		_, err := SavePreset(Preset{Name: name, Tempo: 100 + i, Session: s})
		require.NoError(t, err)
	}
	now = time.Now

	list, err := ListPresets()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-01-15_14-32-00_third-take.yaml", list[0].Filename)
	assert.Equal(t, "third-take", list[0].Name)
	assert.Equal(t, "", list[1].Name)
	assert.Equal(t, "first", list[2].Name)

	p, err := LoadPreset("")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Session.Root)
	assert.Equal(t, 102, p.Tempo)

	renamed, err := RenamePreset(list[2].Filename, "opener")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15_14-30-00_opener.yaml", renamed)
	p, err = LoadPreset(renamed)
	require.NoError(t, err)
	assert.Equal(t, "first", p.Name)

	require.NoError(t, DeletePreset(renamed))
	list, err = ListPresets()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPresetListingSkipsStrangers(t *testing.T) {
	useTempDir(t)
	dir, err := PresetsDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range []string{"notes.txt", "short.yaml", "not-a-date-at-all.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	list, err := ListPresets()
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = LoadPreset("")
	assert.ErrorIs(t, err, ErrNoPresets)
}

func TestAutoSaverCoalesces(t *testing.T) {
	var saves atomic.Int32
	a := NewAutoSaver(50*time.Millisecond, func() error {
		saves.Add(1)
		return nil
	})
	for i := 0; i < 10; i++ {
		a.Touch()
	}
	assert.Eventually(t, func() bool { return saves.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), saves.Load())

	require.NoError(t, a.Flush())
	assert.Equal(t, int32(2), saves.Load())
}

func TestAutoSaverKeepsError(t *testing.T) {
	a := NewAutoSaver(time.Hour, func() error { return os.ErrPermission })
	assert.ErrorIs(t, a.Flush(), os.ErrPermission)
	assert.ErrorIs(t, a.Err(), os.ErrPermission)
}
