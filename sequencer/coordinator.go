package sequencer

import (
	"errors"
	"fmt"
	"slices"

	"go-arp/midi"
	"go-arp/pattern"
	"go-arp/theory"
)

// MaxVoices is the number of independent arpeggiators
const MaxVoices = 4

var ErrInvalidVoice = errors.New("invalid voice index")

// Voice is one arpeggiator: a scheduler plus its routing
type Voice struct {
	Scheduler
	On      bool
	Channel uint8 // MIDI output channel (1-16)

	noteCh uint8 // channel the sounding note went out on
}

// Coordinator runs the voices against one shared chord and merges their
// output into a single offset-ordered event list
type Coordinator struct {
	voices [MaxVoices]Voice
	chord  theory.Chord
	scale  theory.Scale

	playing    bool
	ppq        float64 // host position at the start of the current block
	bpm        float64
	sampleRate float64
}

// NewCoordinator returns voices on channels 1-4, all off
func NewCoordinator() *Coordinator {
	c := &Coordinator{
		scale:      theory.NewScale(0, theory.ScaleMajor),
		bpm:        DefaultTempo,
		sampleRate: DefaultSampleRate,
	}
	for i := range c.voices {
		c.voices[i].init()
		c.voices[i].Channel = uint8(i + 1)
		c.voices[i].noteCh = uint8(i + 1)
	}
	return c
}

// Voice returns voice i for inspection
func (c *Coordinator) Voice(i int) (*Voice, error) {
	if i < 0 || i >= MaxVoices {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVoice, i)
	}
	return &c.voices[i], nil
}

// SetVoiceOn toggles voice i. Turning on may start it in phase with the
// voices already stepping.
func (c *Coordinator) SetVoiceOn(i int, on bool) error {
	v, err := c.Voice(i)
	if err != nil {
		return err
	}
	if v.On == on {
		return nil
	}
	v.On = on
	if !on {
		v.TurnOff()
		return nil
	}
	c.start(i, c.stepping(i))
	return nil
}

// SetPattern parses text and hands it to voice i. On a parse error the
// voice keeps its previous pattern.
func (c *Coordinator) SetPattern(i int, text string) error {
	if _, err := c.Voice(i); err != nil {
		return err
	}
	p, err := pattern.Parse(text)
	if err != nil {
		return err
	}
	return c.UsePattern(i, p)
}

// UsePattern installs an already parsed pattern on voice i
func (c *Coordinator) UsePattern(i int, p *pattern.Pattern) error {
	v, err := c.Voice(i)
	if err != nil {
		return err
	}
	v.Scheduler.SetPattern(p)
	if v.On && v.State() == Idle {
		c.start(i, c.stepping(i))
	}
	return nil
}

// SetMidiChannel routes voice i to channel ch (1-16)
func (c *Coordinator) SetMidiChannel(i int, ch uint8) error {
	v, err := c.Voice(i)
	if err != nil {
		return err
	}
	if ch < 1 || ch > 16 {
		return fmt.Errorf("%w: channel %d", ErrInvalidParameter, ch)
	}
	v.Channel = ch
	return nil
}

// SetSubdivision sets the step length of voice i
func (c *Coordinator) SetSubdivision(i int, sub Subdivision) error {
	v, err := c.Voice(i)
	if err != nil {
		return err
	}
	if !sub.Valid() {
		return fmt.Errorf("%w: subdivision %d", ErrInvalidParameter, sub)
	}
	v.Scheduler.SetSubdivision(sub)
	return nil
}

// SetVelocity sets the velocity every voice plays at
func (c *Coordinator) SetVelocity(vel uint8) {
	for i := range c.voices {
		c.voices[i].SetVelocity(vel)
	}
}

// SetTiming updates sample rate and tempo on every voice
func (c *Coordinator) SetTiming(sampleRate, bpm float64) {
	if sampleRate > 0 {
		c.sampleRate = sampleRate
	}
	if bpm > 0 {
		c.bpm = bpm
	}
	for i := range c.voices {
		c.voices[i].SetTiming(sampleRate, bpm)
	}
}

// SetChord broadcasts a chord to every voice. at is the sample offset of
// the change inside the current block. Voices that were not stepping
// start together: in phase with a voice that already was, or from step 0.
func (c *Coordinator) SetChord(ch theory.Chord, scale theory.Scale, at int) {
	c.chord = ch
	c.scale = scale

	var was [MaxVoices]bool
	ref := -1
	for i := range c.voices {
		was[i] = c.voices[i].On && c.voices[i].State() == Stepping
		if was[i] && ref < 0 {
			ref = i
		}
	}

	for i := range c.voices {
		c.voices[i].SetChord(ch, scale)
	}
	if ch.Empty() {
		return
	}
	for i := range c.voices {
		if !was[i] {
			c.startAt(i, ref, at)
		}
	}
}

// Chord returns the chord last broadcast
func (c *Coordinator) Chord() theory.Chord {
	return c.chord
}

// stepping returns a sibling of i that is stepping, or -1
func (c *Coordinator) stepping(i int) int {
	for j := range c.voices {
		if j != i && c.voices[j].On && c.voices[j].State() == Stepping {
			return j
		}
	}
	return -1
}

func (c *Coordinator) start(i, ref int) {
	c.startAt(i, ref, 0)
}

// startAt starts voice i at block offset at. With a reference voice the
// countdown is copied so both hit the same boundaries; while the host
// plays the grid decides instead.
func (c *Coordinator) startAt(i, ref, at int) {
	v := &c.voices[i]
	if !v.On || !v.Playable() {
		return
	}
	if ref >= 0 {
		v.Start(c.voices[ref].Countdown(), true)
	} else {
		v.Start(0, false)
	}
	if c.playing {
		ppq := c.ppq + float64(at)*c.bpm/(60*c.sampleRate)
		v.SyncToPlayHead(ppq, c.bpm)
	}
}

// Reset rewinds every voice to step 0, dropping phase. Voices with
// something to play restart one full step later.
func (c *Coordinator) Reset() {
	for i := range c.voices {
		v := &c.voices[i]
		v.Reset()
		if v.On && v.Playable() {
			v.Start(v.SamplesPerStep(), false)
		}
	}
}

// Suspend parks every voice for a transport stop; sounding notes are
// released at the start of the next Process
func (c *Coordinator) Suspend() {
	c.playing = false
	for i := range c.voices {
		c.voices[i].Suspend()
	}
}

// Resume restarts parked voices for a transport start
func (c *Coordinator) Resume() {
	c.playing = true
	for i := range c.voices {
		if c.voices[i].On {
			c.voices[i].Resume()
		}
	}
}

// SyncToPlayHead locks every stepping voice to the host position at the
// start of the block
func (c *Coordinator) SyncToPlayHead(ppq, bpm float64) {
	c.playing = true
	c.ppq = ppq
	if bpm > 0 {
		c.bpm = bpm
	}
	for i := range c.voices {
		c.voices[i].SyncToPlayHead(ppq, bpm)
	}
}

// Process runs every voice over n samples starting at block offset
// offset, tags events with the voice channel and appends them in offset
// order
func (c *Coordinator) Process(n, offset int, out []midi.Event) []midi.Event {
	start := len(out)
	for i := range c.voices {
		v := &c.voices[i]
		from := len(out)
		out = v.Scheduler.Process(n, offset, out)
		for k := from; k < len(out); k++ {
			if out[k].Type == midi.NoteOn {
				v.noteCh = v.Channel
			}
			out[k].Channel = v.noteCh
		}
	}
	slices.SortStableFunc(out[start:], byOffset)
	return out
}

func byOffset(a, b midi.Event) int {
	return a.Offset - b.Offset
}
