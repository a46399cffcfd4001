package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-arp/host"
	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/theory"
)

func newTestModel() Model {
	ctrl := sequencer.NewController(sequencer.DefaultParams())
	engine := sequencer.NewEngine(48000, ctrl)
	manager := host.NewManager(engine, host.NewTransport(120), 512)
	return NewModel(manager, nil, theme.New(nil))
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typed(s string) []tea.KeyMsg {
	keys := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			keys = append(keys, tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		keys = append(keys, runes(string(r)))
	}
	return keys
}

func TestToggleAndSelectVoices(t *testing.T) {
	m := newTestModel()
	ctrl := m.Manager.Engine().Controller()

	m = press(t, m, runes("2"))
	assert.True(t, ctrl.Load().Voices[1].On)
	m = press(t, m, runes("1"))
	assert.False(t, ctrl.Load().Voices[0].On)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 2, m.Selected())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 3, m.Selected())
}

func TestEditPattern(t *testing.T) {
	m := newTestModel()
	ctrl := m.Manager.Engine().Controller()

	m = press(t, m, runes("e"))
	assert.Equal(t, modeEditPattern, m.mode)
	assert.Equal(t, sequencer.DefaultPattern, m.input)

	keys := []tea.KeyMsg{}
	for i := 0; i < len(m.input); i++ {
		keys = append(keys, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	keys = append(keys, typed("1 . 3'!")...)
	keys = append(keys, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, keys...)

	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "1 . 3'!", ctrl.Load().Voices[0].Pattern.Text)
}

func TestBadPatternKeepsPrompt(t *testing.T) {
	m := newTestModel()
	ctrl := m.Manager.Engine().Controller()

	m = press(t, m, runes("e"))
	m = press(t, m, append(typed(" zz"), tea.KeyMsg{Type: tea.KeyEnter})...)

	assert.Equal(t, modeEditPattern, m.mode)
	assert.NotEmpty(t, m.errMsg)
	assert.Equal(t, sequencer.DefaultPattern, ctrl.Load().Voices[0].Pattern.Text)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeNormal, m.mode)
	assert.Empty(t, m.errMsg)
}

func TestEuclidPrompt(t *testing.T) {
	m := newTestModel()
	ctrl := m.Manager.Engine().Controller()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("E"))
	assert.Equal(t, "3 8", m.input)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "1 . . 2 . . 3 .", ctrl.Load().Voices[1].Pattern.Text)

	m = press(t, m, runes("E"), tea.KeyMsg{Type: tea.KeyBackspace}, runes("x"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeEuclid, m.mode)
	assert.NotEmpty(t, m.errMsg)
}

func TestParseEuclid(t *testing.T) {
	hits, steps, err := parseEuclid(" 5  16 ")
	require.NoError(t, err)
	assert.Equal(t, 5, hits)
	assert.Equal(t, 16, steps)

	for _, bad := range []string{"", "3", "3 8 1", "100 8", "a 8", "-1 8"} {
		_, _, err := parseEuclid(bad)
		assert.Error(t, err, bad)
	}
}

func TestScaleAndChannelKeys(t *testing.T) {
	m := newTestModel()
	ctrl := m.Manager.Engine().Controller()

	m = press(t, m, runes("s"), runes("]"), runes("]"), runes("m"), runes("f"))
	p := ctrl.Load()
	assert.Equal(t, theory.ScaleMelodicMinor, p.Scale)
	assert.Equal(t, 2, p.Root)
	assert.Equal(t, theory.AsIs, p.Method)
	assert.True(t, p.FollowInput)

	m = press(t, m, runes("["), runes("["), runes("["), runes("S"), runes("S"))
	p = ctrl.Load()
	assert.Equal(t, 11, p.Root)
	assert.Equal(t, theory.ScaleChromatic, p.Scale)

	m = press(t, m, runes("C"))
	assert.EqualValues(t, 16, ctrl.Load().Voices[0].Channel)
	m = press(t, m, runes("c"), runes("c"))
	assert.EqualValues(t, 2, ctrl.Load().Voices[0].Channel)

	m = press(t, m, runes(">"))
	assert.Equal(t, sequencer.SubThirtySecond, ctrl.Load().Voices[0].Subdivision)
	press(t, m, runes("<"), runes("<"))
	assert.Equal(t, sequencer.SubEighth, ctrl.Load().Voices[0].Subdivision)
}

func TestTransportKeys(t *testing.T) {
	m := newTestModel()

	m = press(t, m, runes("p"), runes("+"))
	playing, tempo, _ := m.Manager.GetState()
	assert.True(t, playing)
	assert.Equal(t, 125, tempo)

	m = press(t, m, runes("p"), runes("-"), runes("-"))
	playing, tempo, _ = m.Manager.GetState()
	assert.False(t, playing)
	assert.Equal(t, 115, tempo)

	next, cmd := m.Update(runes("q"))
	assert.NotNil(t, cmd)
	assert.Empty(t, next.View())
}

func TestViewShowsVoices(t *testing.T) {
	m := newTestModel()
	view := m.View()
	assert.Contains(t, view, "go-arp")
	assert.Contains(t, view, sequencer.DefaultPattern)
	assert.Contains(t, view, "Notes played")
	assert.Contains(t, view, "1/16")

	m = press(t, m, runes("e"))
	assert.Contains(t, m.View(), "pattern 1>")
}

func TestPresetKeysNeedApp(t *testing.T) {
	m := newTestModel()
	m = press(t, m, runes("w"))
	assert.Equal(t, modeNormal, m.mode)
	assert.NotEmpty(t, m.errMsg)

	m = press(t, m, runes("o"))
	assert.NotEmpty(t, m.errMsg)
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel()
	assert.NotContains(t, m.View(), "Harmony")
	m = press(t, m, runes("?"))
	assert.Contains(t, m.View(), "Harmony")
	assert.Contains(t, m.View(), "follow input")
	m = press(t, m, runes("?"))
	assert.NotContains(t, m.View(), "Harmony")
}
