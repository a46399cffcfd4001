package theory

import (
	"errors"
	"fmt"

	"go-arp/util"
)

// ScaleType indexes the scale table
type ScaleType int

const (
	ScaleMajor ScaleType = iota
	ScaleMelodicMinor
	ScaleHarmonicMinor
	ScaleBartok
	ScaleMinor
	ScaleDorian
	ScalePhrygian
	ScaleLydian
	ScaleMixolydian
	ScaleLocrian
	ScalePentatonic
	ScaleMinorPentatonic
	ScaleBlues
	ScaleWholeTone
	ScaleDimHalfWhole
	ScaleHungarianMinor
	ScaleDoubleHarmonic
	ScaleHirajoshi
	ScaleChromatic
	ScaleCount
)

var ErrInvalidScaleType = errors.New("invalid scale type")

// Scale intervals from root (semitones), one octave each
var scales = map[ScaleType][]int{
	ScaleMajor:           {0, 2, 4, 5, 7, 9, 11},
	ScaleMelodicMinor:    {0, 2, 3, 5, 7, 9, 11},
	ScaleHarmonicMinor:   {0, 2, 3, 5, 7, 8, 11},
	ScaleBartok:          {0, 2, 4, 6, 7, 9, 10},
	ScaleMinor:           {0, 2, 3, 5, 7, 8, 10},
	ScaleDorian:          {0, 2, 3, 5, 7, 9, 10},
	ScalePhrygian:        {0, 1, 3, 5, 7, 8, 10},
	ScaleLydian:          {0, 2, 4, 6, 7, 9, 11},
	ScaleMixolydian:      {0, 2, 4, 5, 7, 9, 10},
	ScaleLocrian:         {0, 1, 3, 5, 6, 8, 10},
	ScalePentatonic:      {0, 2, 4, 7, 9},
	ScaleMinorPentatonic: {0, 3, 5, 7, 10},
	ScaleBlues:           {0, 3, 5, 6, 7, 10},
	ScaleWholeTone:       {0, 2, 4, 6, 8, 10},
	ScaleDimHalfWhole:    {0, 1, 3, 4, 6, 7, 9, 10},
	ScaleHungarianMinor:  {0, 2, 3, 6, 7, 8, 11},
	ScaleDoubleHarmonic:  {0, 1, 4, 5, 7, 8, 11},
	ScaleHirajoshi:       {0, 2, 3, 7, 8},
	ScaleChromatic:       {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

var scaleNames = []string{
	"Major", "Mel Min", "Harm Min", "Bartok", "Minor",
	"Dorian", "Phrygian", "Lydian", "Mixolydian", "Locrian",
	"Pentatonic", "Min Pent", "Blues", "Whole Tone", "Dim H-W",
	"Hungarian", "Dbl Harm", "Hirajoshi", "Chromatic",
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Valid reports whether t is in the scale table
func (t ScaleType) Valid() bool {
	_, ok := scales[t]
	return ok
}

func (t ScaleType) String() string {
	if t < 0 || int(t) >= len(scaleNames) {
		return fmt.Sprintf("ScaleType(%d)", int(t))
	}
	return scaleNames[t]
}

// ResolveScale returns the scale's semitone offsets shifted by root.
// Offsets may exceed 11 so the register of the scale is kept.
func ResolveScale(root int, t ScaleType) ([]int, error) {
	iv, ok := scales[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScaleType, t)
	}
	root = util.Mod(root, 12)
	out := make([]int, len(iv))
	for i, v := range iv {
		out[i] = root + v
	}
	return out, nil
}

// Scale is a root pitch class and a scale type
type Scale struct {
	Root int // 0-11
	Type ScaleType
}

// NewScale builds a scale, falling back to Major for unknown types
func NewScale(root int, t ScaleType) Scale {
	if !t.Valid() {
		t = ScaleMajor
	}
	return Scale{Root: util.Mod(root, 12), Type: t}
}

func (s Scale) intervals() []int {
	if iv, ok := scales[s.Type]; ok {
		return iv
	}
	return scales[ScaleMajor]
}

// Len returns the number of degrees per octave
func (s Scale) Len() int {
	return len(s.intervals())
}

// Notes returns root-shifted offsets (may exceed 11)
func (s Scale) Notes() []int {
	notes, err := ResolveScale(s.Root, s.Type)
	if err != nil {
		notes, _ = ResolveScale(s.Root, ScaleMajor)
	}
	return notes
}

// Contains reports whether pitch class pc (relative to root) is in the scale
func (s Scale) Contains(pc int) bool {
	return s.indexOf(util.Mod(pc, 12)) >= 0
}

func (s Scale) indexOf(pc int) int {
	for i, v := range s.intervals() {
		if v == pc {
			return i
		}
	}
	return -1
}

// DegreeOf maps a pitch class relative to the root onto a scale degree,
// stepping down a semitone at a time until a scale member is found.
func (s Scale) DegreeOf(pc int) int {
	for k := 0; k < 12; k++ {
		if d := s.indexOf(util.Mod(pc-k, 12)); d >= 0 {
			return d
		}
	}
	return 0
}

// Offset returns the semitone distance of degree deg above the root.
// Degrees past the end of the scale continue into the next octave.
func (s Scale) Offset(deg int) int {
	iv := s.intervals()
	n := len(iv)
	return iv[util.Mod(deg, n)] + 12*util.FloorDiv(deg, n)
}

func (s Scale) String() string {
	return noteNames[util.Mod(s.Root, 12)] + " " + s.Type.String()
}

// NoteName returns the note name with octave, C4 = 60
func NoteName(note int) string {
	return fmt.Sprintf("%s%d", noteNames[util.Mod(note, 12)], util.FloorDiv(note, 12)-1)
}

// PitchName returns the pitch class name of a root
func PitchName(pc int) string {
	return noteNames[util.Mod(pc, 12)]
}
