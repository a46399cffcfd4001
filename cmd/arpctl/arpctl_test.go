package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-arp/config"
	"go-arp/sequencer"
)

func defaultRender() renderOptions {
	return renderOptions{
		pattern:     "1 2 3",
		notes:       []int{60, 64, 67},
		subdivision: "1/16",
		bpm:         120,
		seconds:     0.5,
		sampleRate:  48000,
		blockSize:   512,
	}
}

func TestRenderArpeggiatesHeldNotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, defaultRender()))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "chord C4 E4 G4, degrees [0 1 2]")
	lines = lines[1:]
	assert.Equal(t, 4, strings.Count(out, " on "))
	assert.Equal(t, 3, strings.Count(out, " off "))
	assert.True(t, strings.HasPrefix(lines[0], "  0.0000s  @0 "), lines[0])
	assert.Contains(t, lines[0], " 60 ")
	assert.True(t, strings.HasPrefix(lines[1], "  0.1250s  @6000"), lines[1])
}

func TestRenderRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer

	o := defaultRender()
	o.pattern = "1 ?"
	assert.Error(t, render(&buf, o))

	o = defaultRender()
	o.notes = []int{128}
	assert.ErrorIs(t, render(&buf, o), sequencer.ErrInvalidParameter)

	o = defaultRender()
	o.subdivision = "1/7"
	assert.Error(t, render(&buf, o))

	o = defaultRender()
	o.blockSize = 0
	assert.Error(t, render(&buf, o))
	assert.Empty(t, buf.String())
}

func TestGenerateCommands(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"euclid", "3", "8"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "1 . . 2 . . 3 .\n", buf.String())

	buf.Reset()
	rootCmd.SetArgs([]string{"random", "--length", "5", "--seed", "7"})
	require.NoError(t, rootCmd.Execute())
	first := buf.String()
	assert.Len(t, strings.Fields(first), 5)

	buf.Reset()
	rootCmd.SetArgs([]string{"random", "-n", "5", "--seed", "7"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, first, buf.String())

	rootCmd.SetArgs([]string{"euclid", "x", "8"})
	assert.Error(t, rootCmd.Execute())
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestPresetsCommands(t *testing.T) {
	config.SetDir(t.TempDir())
	t.Cleanup(func() { config.SetDir("") })

	assert.Equal(t, "no presets\n", run(t, "presets"))

	filename, err := config.SavePreset(config.Preset{Name: "groove", Tempo: 99, Session: sequencer.DefaultSession()})
	require.NoError(t, err)

	assert.Contains(t, run(t, "presets"), filename)

	show := run(t, "presets", "show")
	assert.Contains(t, show, "tempo:  99")
	assert.Contains(t, show, "scale:  C Major")
	assert.Contains(t, show, "voice 1: on  ch1  1/16  1 2 3")

	renamed := strings.TrimSpace(run(t, "presets", "mv", filename, "late night"))
	assert.True(t, strings.HasSuffix(renamed, "_late-night.yaml"), renamed)

	run(t, "presets", "rm", renamed)
	assert.Equal(t, "no presets\n", run(t, "presets"))
}
