package theory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-arp/pattern"
)

func TestEveryScaleHasRoot(t *testing.T) {
	require.Len(t, scaleNames, int(ScaleCount))
	for st := ScaleType(0); st < ScaleCount; st++ {
		iv, ok := scales[st]
		require.True(t, ok, st.String())
		require.NotEmpty(t, iv, st.String())
		assert.Equal(t, 0, iv[0], st.String())
		for i := 1; i < len(iv); i++ {
			assert.Less(t, iv[i-1], iv[i], st.String())
			assert.Less(t, iv[i], 12, st.String())
		}
	}
}

func TestDegreeOfAlwaysFindsMember(t *testing.T) {
	for st := ScaleType(0); st < ScaleCount; st++ {
		s := NewScale(0, st)
		for pc := 0; pc < 12; pc++ {
			d := s.DegreeOf(pc)
			require.GreaterOrEqual(t, d, 0)
			require.Less(t, d, s.Len())
			assert.LessOrEqual(t, s.Offset(d), pc, "%s pc=%d", st, pc)
		}
	}
}

func TestResolveScale(t *testing.T) {
	notes, err := ResolveScale(9, ScaleMajor)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 11, 13, 14, 16, 18, 20}, notes)

	_, err = ResolveScale(0, ScaleCount)
	assert.True(t, errors.Is(err, ErrInvalidScaleType))

	s := NewScale(14, ScaleType(-1))
	assert.Equal(t, Scale{Root: 2, Type: ScaleMajor}, s)
}

func TestScaleOffset(t *testing.T) {
	s := NewScale(0, ScaleMajor)
	assert.Equal(t, 0, s.Offset(0))
	assert.Equal(t, 4, s.Offset(2))
	assert.Equal(t, 12, s.Offset(7))
	assert.Equal(t, 16, s.Offset(9))
	assert.Equal(t, -1, s.Offset(-1))
	assert.Equal(t, -12, s.Offset(-7))
}

func TestHeldNotes(t *testing.T) {
	var h HeldNotes
	assert.True(t, h.Add(60))
	assert.True(t, h.Add(64))
	assert.False(t, h.Add(60))
	assert.True(t, h.Add(67))
	assert.Equal(t, []uint8{60, 64, 67}, h.Slice())

	last, ok := h.Last()
	assert.True(t, ok)
	assert.Equal(t, uint8(67), last)

	assert.True(t, h.Remove(64))
	assert.False(t, h.Remove(64))
	assert.Equal(t, []uint8{60, 67}, h.Slice())

	h.Remove(60)
	h.Remove(67)
	_, ok = h.Last()
	assert.False(t, ok)
}

func held(notes ...uint8) *HeldNotes {
	var h HeldNotes
	for _, n := range notes {
		h.Add(n)
	}
	return &h
}

func TestNotesPlayedWalksHeldOrder(t *testing.T) {
	cmaj := NewScale(0, ScaleMajor)
	c, _ := BuildChord(held(60, 64, 67), NotesPlayed, cmaj, false)
	assert.Equal(t, []int{0, 1, 2}, c.Degrees())
	assert.Equal(t, []uint8{60, 64, 67}, c.Notes())

	p := pattern.MustParse("1 2 3 4 -1")
	var got []uint8
	for _, s := range p.Steps {
		got = append(got, c.Resolve(s, cmaj))
	}
	assert.Equal(t, []uint8{60, 64, 67, 72, 55}, got)
}

func TestAsIsSortsAndAnchors(t *testing.T) {
	cmaj := NewScale(0, ScaleMajor)
	c, _ := BuildChord(held(67, 60, 64), AsIs, cmaj, false)
	assert.Equal(t, []uint8{60, 64, 67}, c.Notes())
	assert.Equal(t, []int{0, 4, 7}, c.Degrees())
	assert.Equal(t, 60, c.Base)

	assert.Equal(t, uint8(64), c.Resolve(pattern.Step{Kind: pattern.StepDegree, Index: 1}, cmaj))
	assert.Equal(t, uint8(72), c.Resolve(pattern.Step{Kind: pattern.StepDegree, Index: 3}, cmaj))
	assert.Equal(t, uint8(79), c.Resolve(pattern.Step{Kind: pattern.StepDegree, Index: 2, Octave: 1}, cmaj))
}

func TestSingleNoteSearchesDown(t *testing.T) {
	cmaj := NewScale(0, ScaleMajor)
	c, used := BuildChord(held(64, 61), SingleNote, cmaj, false)
	assert.Equal(t, cmaj, used)
	assert.Equal(t, []int{0}, c.Degrees())
	assert.Equal(t, []uint8{61}, c.Notes())
	assert.Equal(t, 60, c.Base)

	// walking up the scale from the found degree
	p := pattern.MustParse("1 2 3 8")
	var got []uint8
	for _, s := range p.Steps {
		got = append(got, c.Resolve(s, used))
	}
	assert.Equal(t, []uint8{60, 62, 64, 72}, got)
}

func TestSingleNoteFollowInput(t *testing.T) {
	c, used := BuildChord(held(62), SingleNote, NewScale(0, ScaleMajor), true)
	assert.Equal(t, 2, used.Root)
	assert.Equal(t, []int{0}, c.Degrees())
	assert.Equal(t, 62, c.Base)
	assert.Equal(t, uint8(66), c.Resolve(pattern.Step{Kind: pattern.StepDegree, Index: 2}, used))
}

func TestEmptyChord(t *testing.T) {
	c, _ := BuildChord(held(), SingleNote, NewScale(0, ScaleMajor), false)
	assert.True(t, c.Empty())
	assert.Equal(t, "-", c.Name())
}

func TestResolveClamps(t *testing.T) {
	s := NewScale(0, ScaleMajor)
	c, _ := BuildChord(held(120), NotesPlayed, s, false)
	assert.Equal(t, uint8(127), c.Resolve(pattern.Step{Kind: pattern.StepDegree, Index: 0, Octave: 3}, s))
	c, _ = BuildChord(held(2), NotesPlayed, s, false)
	assert.Equal(t, uint8(0), c.Resolve(pattern.Step{Kind: pattern.StepDegree, Index: -5}, s))
}

func TestChordNoteStepsIndexRawNotes(t *testing.T) {
	s := NewScale(0, ScaleMajor)
	c, _ := BuildChord(held(67, 60, 64), AsIs, s, false)
	assert.Equal(t, uint8(64), c.Resolve(pattern.Step{Kind: pattern.StepChordNote, Index: 1}, s))
	assert.Equal(t, uint8(72), c.Resolve(pattern.Step{Kind: pattern.StepChordNote, Index: 3}, s))
}

func TestChordName(t *testing.T) {
	s := NewScale(0, ScaleMajor)
	c, _ := BuildChord(held(60, 64, 67), NotesPlayed, s, false)
	assert.Equal(t, "C4 E4 G4", c.Name())
	c, _ = BuildChord(held(61), SingleNote, s, false)
	assert.Equal(t, "C#4 (deg 1)", c.Name())
}
