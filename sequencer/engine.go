package sequencer

import (
	"math"
	"slices"

	"go-arp/midi"
	"go-arp/theory"
	"go-arp/util"
)

// Transport is the host play state at the start of a block
type Transport struct {
	Playing bool
	BPM     float64
	PPQ     float64 // beat position, quarter notes
}

// Block is one audio callback's worth of input
type Block struct {
	Frames    int
	Input     []midi.Event // note events sorted by offset
	Transport Transport
}

// Engine is the per-block entry point: held notes in, arpeggiated notes
// out. Process must only be called from one goroutine; the controller and
// board are safe to use from others.
type Engine struct {
	ctrl       *Controller
	params     *Params
	sampleRate float64

	coord *Coordinator
	held  theory.HeldNotes

	method   theory.ChordMethod
	scale    theory.Scale
	follow   bool
	followed int // root picked by follow-input, -1 for none

	playing bool
	board   *Board
}

// NewEngine builds an engine reading its controls from ctrl
func NewEngine(sampleRate float64, ctrl *Controller) *Engine {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	e := &Engine{
		ctrl:       ctrl,
		sampleRate: sampleRate,
		coord:      NewCoordinator(),
		followed:   -1,
		board:      newBoard(),
	}
	e.coord.SetTiming(sampleRate, DefaultTempo)
	e.applyParams()
	e.publish()
	return e
}

// Board returns the UI status board
func (e *Engine) Board() *Board {
	return e.board
}

// Controller returns the parameter store the engine reads
func (e *Engine) Controller() *Controller {
	return e.ctrl
}

// SampleRate returns the rate the engine was built for
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// VoiceStatus is shorthand for Board().Voice(i)
func (e *Engine) VoiceStatus(i int) VoiceStatus {
	return e.board.Voice(i)
}

// NotesHeld reports whether any key is down
func (e *Engine) NotesHeld() bool {
	return e.board.NotesHeld()
}

// Process renders one block. Events are appended to out in offset order;
// with enough capacity in out nothing is allocated.
func (e *Engine) Process(b Block, out []midi.Event) []midi.Event {
	start := len(out)
	e.applyParams()

	tr := b.Transport
	bpm := tr.BPM
	if math.IsNaN(bpm) || bpm <= 0 {
		bpm = DefaultTempo
	}
	bpm = util.Clamp(bpm, MinHostTempo, MaxHostTempo)
	e.coord.SetTiming(e.sampleRate, bpm)

	switch {
	case e.playing && !tr.Playing:
		e.coord.Suspend()
	case !e.playing && tr.Playing:
		e.coord.Resume()
	}
	e.playing = tr.Playing
	if tr.Playing {
		e.coord.SyncToPlayHead(tr.PPQ, bpm)
	}

	pos := 0
	last := max(b.Frames-1, 0)
	for _, in := range b.Input {
		at := util.Clamp(in.Offset, pos, last)
		if at > pos {
			out = e.coord.Process(at-pos, pos, out)
			pos = at
		}
		e.handleInput(in, at)
	}
	if pos < b.Frames {
		out = e.coord.Process(b.Frames-pos, pos, out)
	}

	slices.SortStableFunc(out[start:], byOffset)
	e.publish()
	return out
}

func (e *Engine) handleInput(in midi.Event, at int) {
	changed := false
	switch {
	case in.IsNoteOn():
		e.coord.SetVelocity(in.Velocity)
		changed = e.held.Add(in.Note)
	case in.IsNoteOff():
		changed = e.held.Remove(in.Note)
	}
	if changed {
		e.rebuild(at)
	}
}

// rebuild derives a chord from the held notes and hands it to every voice
func (e *Engine) rebuild(at int) {
	scale := e.effectiveScale()
	chord, used := theory.BuildChord(&e.held, e.method, scale, e.follow)
	if e.follow && e.method == theory.SingleNote && !chord.Empty() {
		e.followed = used.Root
	}
	e.coord.SetChord(chord, used, at)
}

func (e *Engine) effectiveScale() theory.Scale {
	s := e.scale
	if e.follow && e.followed >= 0 {
		s.Root = e.followed
	}
	return s
}

// applyParams picks up a newer snapshot and applies what changed
func (e *Engine) applyParams() {
	if e.ctrl == nil {
		return
	}
	p := e.ctrl.Load()
	if p == e.params {
		return
	}
	old := e.params
	e.params = p

	for i := range p.Voices {
		nv := &p.Voices[i]
		var ov *VoiceParams
		if old != nil {
			ov = &old.Voices[i]
		}
		if ov == nil || ov.Pattern != nv.Pattern {
			e.coord.UsePattern(i, nv.Pattern)
		}
		if ov == nil || ov.Subdivision != nv.Subdivision {
			e.coord.SetSubdivision(i, nv.Subdivision)
		}
		if ov == nil || ov.Channel != nv.Channel {
			e.coord.SetMidiChannel(i, nv.Channel)
		}
		if ov == nil || ov.On != nv.On {
			e.coord.SetVoiceOn(i, nv.On)
		}
	}

	methodChanged := old == nil || old.Method != p.Method
	scaleChanged := old == nil || old.Root != p.Root || old.Scale != p.Scale || old.FollowInput != p.FollowInput

	e.method = p.Method
	if !e.method.Valid() {
		e.method = theory.NotesPlayed
	}
	e.scale = p.ScaleValue()
	e.follow = p.FollowInput
	if !e.follow || p.Root == e.followed {
		e.followed = -1
	}

	switch {
	case methodChanged && old != nil:
		e.coord.Reset()
		e.rebuild(0)
	case scaleChanged && old != nil:
		e.rebuild(0)
	}
}

func (e *Engine) publish() {
	b := e.board
	for i := range e.coord.voices {
		b.publishVoice(i, &e.coord.voices[i])
	}
	b.notesHeld.Store(int32(e.held.Len()))

	var held, chord [2]uint64
	for i := 0; i < e.held.Len(); i++ {
		n := e.held.At(i)
		held[n/64] |= 1 << (n % 64)
	}
	for i := 0; i < e.coord.chord.Len(); i++ {
		n := e.coord.chord.Note(i)
		chord[n/64] |= 1 << (n % 64)
	}
	b.held.store(held)
	b.chord.store(chord)

	if e.follow && e.followed >= 0 {
		b.followed.Store(int32(e.followed))
	} else {
		b.followed.Store(-1)
	}
}
