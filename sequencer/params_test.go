package sequencer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-arp/pattern"
	"go-arp/theory"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, theory.NotesPlayed, p.Method)
	assert.Equal(t, theory.ScaleMajor, p.Scale)
	for i, v := range p.Voices {
		assert.Equal(t, i == 0, v.On)
		assert.Equal(t, uint8(i+1), v.Channel)
		assert.Equal(t, SubSixteenth, v.Subdivision)
		assert.Equal(t, DefaultPattern, v.Pattern.Text)
	}
}

func TestControllerPublishesCopies(t *testing.T) {
	c := NewController(DefaultParams())
	before := c.Load()

	require.NoError(t, c.SetRoot(7))
	after := c.Load()
	assert.NotSame(t, before, after)
	assert.Equal(t, 0, before.Root, "old snapshot untouched")
	assert.Equal(t, 7, after.Root)
	assert.Equal(t, before.Version+1, after.Version)
}

func TestControllerBadPatternKeepsOld(t *testing.T) {
	c := NewController(DefaultParams())
	v := c.Load().Version

	err := c.SetPattern(2, "1 2 3 ?")
	var pe *pattern.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 6, pe.Offset)
	assert.ErrorIs(t, err, pattern.ErrSyntax)

	assert.Equal(t, DefaultPattern, c.Load().Voices[2].Pattern.Text)
	assert.Equal(t, v, c.Load().Version)
}

func TestControllerRejectsOutOfRange(t *testing.T) {
	c := NewController(DefaultParams())
	assert.ErrorIs(t, c.SetMethod(theory.MethodCount), ErrInvalidParameter)
	assert.ErrorIs(t, c.SetRoot(12), ErrInvalidParameter)
	assert.ErrorIs(t, c.SetRoot(-1), ErrInvalidParameter)
	assert.ErrorIs(t, c.SetScale(theory.ScaleCount), theory.ErrInvalidScaleType)
	assert.ErrorIs(t, c.SetVoiceOn(4, true), ErrInvalidVoice)
	assert.ErrorIs(t, c.SetMidiChannel(0, 0), ErrInvalidParameter)
	assert.ErrorIs(t, c.SetMidiChannel(0, 17), ErrInvalidParameter)
	assert.ErrorIs(t, c.SetSubdivision(0, -1), ErrInvalidParameter)
	assert.ErrorIs(t, c.SetPattern(-1, "1"), ErrInvalidVoice)
	assert.Zero(t, c.Load().Version)
}

func TestControllerSetGetByKey(t *testing.T) {
	c := NewController(DefaultParams())
	cases := []struct {
		key   ParamKey
		value int
	}{
		{ParamKey{ID: ParamMethod}, int(theory.SingleNote)},
		{ParamKey{ID: ParamRoot}, 9},
		{ParamKey{ID: ParamScale}, int(theory.ScaleDorian)},
		{ParamKey{ID: ParamFollowInput}, 1},
		{ParamKey{ID: ParamVoiceOn, Voice: 3}, 1},
		{ParamKey{ID: ParamChannel, Voice: 2}, 16},
		{ParamKey{ID: ParamSubdivision, Voice: 1}, int(SubDottedEighth)},
	}
	for _, tc := range cases {
		require.NoError(t, c.Set(tc.key, tc.value), tc.key.String())
		got, err := c.Get(tc.key)
		require.NoError(t, err)
		assert.Equal(t, tc.value, got, tc.key.String())
	}

	_, err := c.Get(ParamKey{ID: ParamChannel, Voice: 4})
	assert.ErrorIs(t, err, ErrInvalidVoice)
	assert.ErrorIs(t, c.Set(ParamKey{ID: paramCount}, 1), ErrInvalidParameter)
}

func TestParamKeyString(t *testing.T) {
	assert.Equal(t, "root", ParamKey{ID: ParamRoot}.String())
	assert.Equal(t, "channel3", ParamKey{ID: ParamChannel, Voice: 2}.String())
	assert.Equal(t, "param(42)", ParamKey{ID: 42}.String())
	assert.False(t, ParamMethod.PerVoice())
	assert.True(t, ParamSubdivision.PerVoice())
}

func TestParseParamKey(t *testing.T) {
	for id := ParamID(0); id < paramCount; id++ {
		key := ParamKey{ID: id}
		if id.PerVoice() {
			key.Voice = MaxVoices - 1
		}
		got, err := ParseParamKey(key.String())
		require.NoError(t, err, key.String())
		assert.Equal(t, key, got)
	}

	_, err := ParseParamKey("channel0")
	assert.ErrorIs(t, err, ErrInvalidVoice)
	_, err = ParseParamKey("channel5")
	assert.ErrorIs(t, err, ErrInvalidVoice)
	for _, bad := range []string{"", "tempo", "channel", "channelx", "root1"} {
		_, err = ParseParamKey(bad)
		assert.ErrorIs(t, err, ErrInvalidParameter, bad)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	c := NewController(DefaultParams())
	require.NoError(t, c.SetMethod(theory.AsIs))
	require.NoError(t, c.SetPattern(1, "c1 . 2'!"))
	require.NoError(t, c.SetSubdivision(1, SubEighthTriplet))
	s := c.Session()
	assert.Equal(t, "c1 . 2'!", s.Voices[1].Pattern)
	assert.Equal(t, SubEighthTriplet.String(), s.Voices[1].Subdivision)

	d := NewController(DefaultParams())
	require.NoError(t, d.Restore(s))
	assert.Equal(t, s, d.Session())
	assert.True(t, d.Load().Voices[1].Pattern.Equal(c.Load().Voices[1].Pattern))
}

func TestSessionRestorePartial(t *testing.T) {
	c := NewController(DefaultParams())
	s := DefaultSession()
	s.Root = 4
	s.Scale = 999
	s.Voices[1].Pattern = "1 2 3 4"
	s.Voices[1].Channel = 0
	s.Voices[2].Pattern = "1 x"
	s.Voices[3].Subdivision = "1/7"

	err := c.Restore(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, theory.ErrInvalidScaleType)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.ErrorIs(t, err, pattern.ErrSyntax)

	p := c.Load()
	assert.Equal(t, 4, p.Root)
	assert.Equal(t, theory.ScaleMajor, p.Scale)
	assert.Equal(t, "1 2 3 4", p.Voices[1].Pattern.Text)
	assert.Equal(t, uint8(2), p.Voices[1].Channel)
	assert.Equal(t, DefaultPattern, p.Voices[2].Pattern.Text)
	assert.Equal(t, SubSixteenth, p.Voices[3].Subdivision)
	assert.Equal(t, uint64(1), p.Version, "one publish for the whole session")
}

func TestSessionTooManyVoices(t *testing.T) {
	c := NewController(DefaultParams())
	s := DefaultSession()
	s.Voices = append(s.Voices, VoiceSession{Pattern: "1", Channel: 1})
	assert.ErrorIs(t, c.Restore(s), ErrInvalidVoice)
}
