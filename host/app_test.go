package host

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-arp/config"
	"go-arp/theory"
)

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	config.SetDir(t.TempDir())
	t.Cleanup(func() { config.SetDir("") })

	a := NewApp(cfg)
	a.Saver = config.NewAutoSaver(time.Hour, a.Save)
	return a
}

func TestNewAppRestoresSession(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Session.Root = 4
	cfg.Session.Scale = int(theory.ScaleDorian)
	cfg.Session.Voices[1].On = true
	cfg.UI.LastTempo = 96

	a := newTestApp(t, cfg)
	p := a.Controller().Load()
	assert.Equal(t, 4, p.Root)
	assert.Equal(t, theory.ScaleDorian, p.Scale)
	assert.True(t, p.Voices[1].On)
	assert.Equal(t, 96, a.Manager.Transport().Tempo())
}

func TestNewAppSurvivesBadSession(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Session.Root = 99
	cfg.Session.Voices[0].Pattern = "1 ?"

	a := newTestApp(t, cfg)
	p := a.Controller().Load()
	assert.Equal(t, 0, p.Root)
	assert.Equal(t, "1 2 3", p.Voices[0].Pattern.Text)
}

func TestAppSave(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())
	require.NoError(t, a.Controller().SetRoot(7))
	a.Manager.SetTempo(140)
	a.SetFocusedVoice(2)
	require.NoError(t, a.Save())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Session.Root)
	assert.Equal(t, 140, cfg.UI.LastTempo)
	assert.Equal(t, 2, cfg.UI.LastFocusedVoice)
	assert.Equal(t, 2, a.FocusedVoice())
	assert.Equal(t, 7, a.Config().Session.Root)
}

func TestAppPresets(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())
	require.NoError(t, a.Controller().SetPattern(0, "1 . 2"))
	a.Manager.SetTempo(90)

	_, err := a.SavePreset("groove")
	require.NoError(t, err)

	require.NoError(t, a.Controller().SetPattern(0, "3 3 3"))
	a.Manager.SetTempo(150)

	require.NoError(t, a.LoadPreset(""))
	assert.Equal(t, "1 . 2", a.Controller().Load().Voices[0].Pattern.Text)
	assert.Equal(t, 90, a.Manager.Transport().Tempo())

	assert.ErrorIs(t, a.LoadPreset("nope.yaml"), os.ErrNotExist)
}
