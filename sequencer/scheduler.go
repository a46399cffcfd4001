package sequencer

import (
	"math"

	"go-arp/midi"
	"go-arp/pattern"
	"go-arp/theory"
	"go-arp/util"
)

// State of a step scheduler
type State int

const (
	Idle      State = iota // no chord, no pattern or voice off
	Stepping               // cycling through the pattern
	Releasing              // parked after a transport stop until the chord changes or play resumes
)

var stateNames = []string{"idle", "stepping", "releasing"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

const (
	DefaultSampleRate = 48000.0
	DefaultTempo      = 120.0
	MinHostTempo      = 1.0
	MaxHostTempo      = 999.0
	DefaultVelocity   = 100

	accentBoost = 24

	// boundaries closer than this (in steps) to the play head count as reached
	syncEpsilon = 1e-7

	noBoundary = math.MinInt64
)

// Scheduler turns one pattern and the shared chord into timed note events.
// It is owned by the audio goroutine; nothing here allocates.
type Scheduler struct {
	pattern *pattern.Pattern
	pending *pattern.Pattern // swapped in at the next boundary
	swap    bool

	step    int // next step to fire
	current int // step that fired last, -1 before the first

	countdown  float64 // samples until the next boundary
	sampleRate float64
	bpm        float64
	sub        Subdivision

	chord    theory.Chord
	scale    theory.Scale
	base     int
	velocity uint8

	lastNote int // sounding note, -1 for none
	release  int // note-off owed at the start of the next Process, -1 for none

	// host grid bookkeeping
	clock     int64 // grid index of the next boundary
	lastFired int64

	state State
}

// NewScheduler returns an idle scheduler with an empty pattern
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.init()
	return s
}

func (s *Scheduler) init() {
	s.pattern = pattern.Empty
	s.current = -1
	s.sampleRate = DefaultSampleRate
	s.bpm = DefaultTempo
	s.sub = DefaultSubdivision
	s.velocity = DefaultVelocity
	s.lastNote = -1
	s.release = -1
	s.lastFired = noBoundary
	s.scale = theory.NewScale(0, theory.ScaleMajor)
}

// State returns the current state
func (s *Scheduler) State() State {
	return s.state
}

// Step returns the index of the step that fired last, -1 if none has
func (s *Scheduler) Step() int {
	return s.current
}

// Span returns the text range of the step that fired last
func (s *Scheduler) Span() (pattern.Span, bool) {
	if s.current < 0 || s.current >= len(s.pattern.Spans) {
		return pattern.Span{}, false
	}
	return s.pattern.Spans[s.current], true
}

// LastNote returns the sounding note, -1 during rests
func (s *Scheduler) LastNote() int {
	return s.lastNote
}

// Pattern returns the pattern currently being played
func (s *Scheduler) Pattern() *pattern.Pattern {
	return s.pattern
}

// Countdown returns the samples left until the next boundary
func (s *Scheduler) Countdown() float64 {
	return s.countdown
}

// BaseNote returns the octave anchor taken from the chord
func (s *Scheduler) BaseNote() int {
	return s.base
}

func (s *Scheduler) Subdivision() Subdivision {
	return s.sub
}

func (s *Scheduler) samplesPerBeat() float64 {
	return s.sampleRate * 60 / s.bpm
}

// SamplesPerStep is the current step length in samples
func (s *Scheduler) SamplesPerStep() float64 {
	return s.samplesPerBeat() * s.sub.Beats()
}

// SetTiming updates sample rate and tempo; non-positive values are ignored
func (s *Scheduler) SetTiming(sampleRate, bpm float64) {
	if sampleRate > 0 {
		s.sampleRate = sampleRate
	}
	if bpm > 0 {
		s.bpm = bpm
	}
}

// SetSubdivision changes the step length from the next boundary on
func (s *Scheduler) SetSubdivision(sub Subdivision) {
	if !sub.Valid() {
		sub = DefaultSubdivision
	}
	s.sub = sub
}

// SetVelocity sets the velocity for new notes
func (s *Scheduler) SetVelocity(v uint8) {
	if v > 0 {
		s.velocity = util.Clamp(v, 1, 127)
	}
}

// SetPattern queues p for the next boundary. A scheduler that isn't
// stepping takes it immediately.
func (s *Scheduler) SetPattern(p *pattern.Pattern) {
	if p == nil {
		p = pattern.Empty
	}
	if s.state == Stepping {
		s.pending = p
		s.swap = true
		return
	}
	s.pattern = p
	s.pending = nil
	s.swap = false
	s.clampStep()
}

// nextPattern is what will play at the next boundary
func (s *Scheduler) nextPattern() *pattern.Pattern {
	if s.swap {
		return s.pending
	}
	return s.pattern
}

func (s *Scheduler) clampStep() {
	n := s.pattern.Len()
	if n == 0 {
		s.step = 0
		s.current = -1
		return
	}
	if s.step >= n || s.step < 0 {
		s.step = 0
	}
	if s.current >= n {
		s.current = -1
	}
}

// Playable reports whether Start would produce notes
func (s *Scheduler) Playable() bool {
	return !s.chord.Empty() && s.nextPattern().Len() > 0
}

// SetChord installs a new chord. An empty chord silences the scheduler;
// starting from Idle or Releasing is left to the caller so it can choose
// the phase.
func (s *Scheduler) SetChord(c theory.Chord, scale theory.Scale) {
	s.chord = c
	s.scale = scale
	if c.Method != theory.NotesPlayed && !c.Empty() {
		s.base = c.Base
	}
	if c.Empty() {
		s.TurnOff()
	}
}

// Start enters Stepping with the given countdown. With keepStep false the
// pattern restarts from its first step.
func (s *Scheduler) Start(countdown float64, keepStep bool) {
	if s.swap {
		s.pattern = s.pending
		s.pending = nil
		s.swap = false
	}
	if !keepStep {
		s.step = 0
		s.current = -1
	}
	s.clampStep()
	s.countdown = math.Max(countdown, 0)
	s.lastFired = noBoundary
	s.state = Stepping
}

// TurnOff releases the sounding note and goes Idle; the chord is kept
func (s *Scheduler) TurnOff() {
	s.releaseNow()
	s.state = Idle
}

// Reset releases the sounding note, rewinds to step 0 and drops the phase
func (s *Scheduler) Reset() {
	s.releaseNow()
	s.step = 0
	s.current = -1
	s.countdown = s.SamplesPerStep()
	s.lastFired = noBoundary
	s.state = Idle
}

// Suspend resets and parks the scheduler until Resume or a chord change
func (s *Scheduler) Suspend() {
	wasActive := s.state != Idle
	s.Reset()
	if wasActive && s.Playable() {
		s.state = Releasing
	}
}

// Resume leaves Releasing; the countdown is expected to be synced next.
// Boundaries counted while free running are not host grid indices, so
// the last fired one is forgotten.
func (s *Scheduler) Resume() {
	s.lastFired = noBoundary
	if s.state == Releasing && s.Playable() {
		s.Start(0, false)
	}
}

func (s *Scheduler) releaseNow() {
	if s.lastNote >= 0 {
		s.release = s.lastNote
		s.lastNote = -1
	}
}

// SyncToPlayHead derives the countdown from the host beat position so the
// step grid stays locked to the host through tempo changes and loops
func (s *Scheduler) SyncToPlayHead(ppq, bpm float64) {
	if bpm > 0 {
		s.bpm = bpm
	}
	if s.state != Stepping {
		return
	}
	stepBeats := s.sub.Beats()
	next := int64(math.Ceil(ppq/stepBeats - syncEpsilon))
	if next == s.lastFired {
		next++
	}
	s.clock = next
	s.countdown = math.Max((float64(next)*stepBeats-ppq)*s.samplesPerBeat(), 0)
}

// Process emits the events of the next n samples. offset is the position
// of those samples inside the audio block.
func (s *Scheduler) Process(n, offset int, out []midi.Event) []midi.Event {
	if s.release >= 0 {
		out = append(out, midi.Off(offset, uint8(s.release)))
		s.release = -1
	}
	if s.state != Stepping || n <= 0 {
		return out
	}

	t := s.countdown
	for t < float64(n) {
		at := offset + util.Clamp(int(t), 0, n-1)
		out = s.fire(at, out)
		if s.state != Stepping {
			return out
		}
		t += s.SamplesPerStep()
	}
	s.countdown = t - float64(n)
	return out
}

func (s *Scheduler) fire(at int, out []midi.Event) []midi.Event {
	if s.swap {
		s.pattern = s.pending
		s.pending = nil
		s.swap = false
		s.clampStep()
	}
	s.lastFired = s.clock
	s.clock++

	n := s.pattern.Len()
	if n == 0 || s.chord.Empty() {
		out = s.noteOff(at, out)
		s.current = -1
		s.state = Idle
		return out
	}
	if s.step >= n {
		s.step = 0
	}
	st := s.pattern.Steps[s.step]
	s.current = s.step
	s.step = (s.step + 1) % n

	switch st.Kind {
	case pattern.StepRest:
		out = s.noteOff(at, out)
	case pattern.StepHold:
	default:
		note := s.chord.Resolve(st, s.scale)
		vel := s.velocity
		if st.Accent {
			vel = uint8(util.Clamp(int(vel)+accentBoost, 1, 127))
		}
		out = s.noteOff(at, out)
		out = append(out, midi.On(at, note, vel))
		s.lastNote = int(note)
	}
	return out
}

func (s *Scheduler) noteOff(at int, out []midi.Event) []midi.Event {
	if s.lastNote >= 0 {
		out = append(out, midi.Off(at, uint8(s.lastNote)))
		s.lastNote = -1
	}
	return out
}
