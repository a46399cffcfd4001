package theory

import (
	"fmt"
	"strings"

	"go-arp/pattern"
	"go-arp/util"
)

// ChordMethod selects how held notes become a chord
type ChordMethod int

const (
	NotesPlayed ChordMethod = iota // held notes in press order, indexed directly
	AsIs                           // held notes sorted, relative to their octave
	SingleNote                     // last note only, walked through the scale
	MethodCount
)

var methodNames = []string{"Notes played", "Chord played as is", "Single note"}

func (m ChordMethod) Valid() bool {
	return m >= 0 && m < MethodCount
}

func (m ChordMethod) String() string {
	if !m.Valid() {
		return fmt.Sprintf("ChordMethod(%d)", int(m))
	}
	return methodNames[m]
}

// MaxChordNotes caps the chord size; extra held notes are ignored
const MaxChordNotes = 32

// Chord is built from the held notes and replaced wholesale whenever they
// change. Degrees are semitones above Base for AsIs, positions for
// NotesPlayed and a scale degree for SingleNote. Notes are the raw notes
// in the same order.
type Chord struct {
	Method ChordMethod
	Base   int // absolute note the degrees are counted from

	n       int
	degrees [MaxChordNotes]int
	notes   [MaxChordNotes]uint8
}

// Len returns the number of chord members
func (c *Chord) Len() int {
	return c.n
}

// Empty reports whether the chord has no members
func (c *Chord) Empty() bool {
	return c.n == 0
}

func (c *Chord) Degree(i int) int {
	return c.degrees[i]
}

func (c *Chord) Note(i int) uint8 {
	return c.notes[i]
}

// Degrees copies out the degree list
func (c *Chord) Degrees() []int {
	return append([]int(nil), c.degrees[:c.n]...)
}

// Notes copies out the raw note list
func (c *Chord) Notes() []uint8 {
	return append([]uint8(nil), c.notes[:c.n]...)
}

// Name is the display name: the member notes, or the note and its degree
// for single-note chords
func (c *Chord) Name() string {
	if c.n == 0 {
		return "-"
	}
	if c.Method == SingleNote {
		return fmt.Sprintf("%s (deg %d)", NoteName(int(c.notes[0])), c.degrees[0]+1)
	}
	names := make([]string, c.n)
	for i := range names {
		names[i] = NoteName(int(c.notes[i]))
	}
	return strings.Join(names, " ")
}

func (c *Chord) push(degree int, note uint8) {
	if c.n == MaxChordNotes {
		return
	}
	c.degrees[c.n] = degree
	c.notes[c.n] = note
	c.n++
}

// BuildChord turns the held notes into a chord. With follow set and the
// single-note method, the last note's pitch class becomes the scale root;
// the scale actually used is returned alongside the chord.
func BuildChord(held *HeldNotes, method ChordMethod, scale Scale, follow bool) (Chord, Scale) {
	if !method.Valid() {
		method = NotesPlayed
	}
	c := Chord{Method: method}
	if held == nil || held.Len() == 0 {
		return c, scale
	}

	switch method {
	case NotesPlayed:
		for i := 0; i < held.Len(); i++ {
			c.push(i, held.At(i))
		}

	case AsIs:
		for i := 0; i < held.Len(); i++ {
			c.push(0, held.At(i))
		}
		sortNotes(c.notes[:c.n])
		low := int(c.notes[0])
		c.Base = low - low%12
		for i := 0; i < c.n; i++ {
			c.degrees[i] = int(c.notes[i]) - c.Base
		}

	case SingleNote:
		note, _ := held.Last()
		if follow {
			scale.Root = int(note) % 12
		}
		pc := util.Mod(int(note)-scale.Root, 12)
		c.Base = int(note) - pc
		c.push(scale.DegreeOf(pc), note)
	}
	return c, scale
}

// insertion sort, no allocation
func sortNotes(notes []uint8) {
	for i := 1; i < len(notes); i++ {
		for j := i; j > 0 && notes[j] < notes[j-1]; j-- {
			notes[j], notes[j-1] = notes[j-1], notes[j]
		}
	}
}

// Resolve maps a sounding step onto a MIDI note. Indexes past the chord
// wrap around and climb an octave per wrap; the result is clamped into
// the MIDI range.
func (c *Chord) Resolve(step pattern.Step, scale Scale) uint8 {
	if c.n == 0 {
		return 0
	}
	i := step.Index
	wrap := 12 * util.FloorDiv(i, c.n)
	m := util.Mod(i, c.n)

	var note int
	switch {
	case step.Kind == pattern.StepChordNote || c.Method == NotesPlayed:
		note = int(c.notes[m]) + wrap
	case c.Method == AsIs:
		note = c.Base + c.degrees[m] + wrap
	default:
		note = c.Base + scale.Offset(c.degrees[0]+i)
	}
	return util.ClampNote(note + 12*step.Octave)
}
