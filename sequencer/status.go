package sequencer

import (
	"sync/atomic"

	"go-arp/pattern"
)

// VoiceStatus is what the UI shows for one voice
type VoiceStatus struct {
	On       bool
	Channel  uint8
	State    State
	Step     int // -1 before the first step
	Span     pattern.Span
	HasSpan  bool
	LastNote int // -1 during rests
	Pattern  *pattern.Pattern
}

// NoteInfo tags a sounding note with the voice playing it
type NoteInfo struct {
	Note  int
	Voice int
}

// voiceSlot is a seqlock: the audio goroutine is the only writer, readers
// retry while the sequence is odd or moved under them
type voiceSlot struct {
	seq      atomic.Uint64
	on       atomic.Bool
	channel  atomic.Uint32
	state    atomic.Int32
	step     atomic.Int32
	spanFrom atomic.Int32
	spanTo   atomic.Int32
	hasSpan  atomic.Bool
	lastNote atomic.Int32
	pattern  atomic.Pointer[pattern.Pattern]
}

// noteSet is a 128-bit note bitmap
type noteSet [2]atomic.Uint64

func (s *noteSet) store(bits [2]uint64) {
	s[0].Store(bits[0])
	s[1].Store(bits[1])
}

func (s *noteSet) notes() []uint8 {
	var out []uint8
	for w := range s {
		bits := s[w].Load()
		for b := 0; b < 64; b++ {
			if bits&(1<<b) != 0 {
				out = append(out, uint8(w*64+b))
			}
		}
	}
	return out
}

// Board publishes engine state for the UI without locks
type Board struct {
	voices    [MaxVoices]voiceSlot
	notesHeld atomic.Int32
	held      noteSet
	chord     noteSet
	followed  atomic.Int32 // -1 when follow-input has not set a root
}

func newBoard() *Board {
	b := &Board{}
	b.followed.Store(-1)
	for i := range b.voices {
		b.voices[i].step.Store(-1)
		b.voices[i].lastNote.Store(-1)
		b.voices[i].pattern.Store(pattern.Empty)
	}
	return b
}

func (b *Board) publishVoice(i int, v *Voice) {
	slot := &b.voices[i]
	span, ok := v.Span()
	slot.seq.Add(1)
	slot.on.Store(v.On)
	slot.channel.Store(uint32(v.Channel))
	slot.state.Store(int32(v.State()))
	slot.step.Store(int32(v.Step()))
	slot.spanFrom.Store(int32(span.Start))
	slot.spanTo.Store(int32(span.End))
	slot.hasSpan.Store(ok)
	slot.lastNote.Store(int32(v.LastNote()))
	slot.pattern.Store(v.Pattern())
	slot.seq.Add(1)
}

// Voice reads a consistent status for voice i
func (b *Board) Voice(i int) VoiceStatus {
	if i < 0 || i >= MaxVoices {
		return VoiceStatus{Step: -1, LastNote: -1}
	}
	slot := &b.voices[i]
	for {
		before := slot.seq.Load()
		if before&1 != 0 {
			continue
		}
		st := VoiceStatus{
			On:       slot.on.Load(),
			Channel:  uint8(slot.channel.Load()),
			State:    State(slot.state.Load()),
			Step:     int(slot.step.Load()),
			Span:     pattern.Span{Start: int(slot.spanFrom.Load()), End: int(slot.spanTo.Load())},
			HasSpan:  slot.hasSpan.Load(),
			LastNote: int(slot.lastNote.Load()),
			Pattern:  slot.pattern.Load(),
		}
		if slot.seq.Load() == before {
			return st
		}
	}
}

// NotesHeld reports whether any key is down
func (b *Board) NotesHeld() bool {
	return b.notesHeld.Load() > 0
}

// HeldNotes lists the keys down, ascending
func (b *Board) HeldNotes() []uint8 {
	return b.held.notes()
}

// ChordNotes lists the raw notes of the current chord, ascending
func (b *Board) ChordNotes() []uint8 {
	return b.chord.notes()
}

// CurrentNotes lists the sounding note of every voice
func (b *Board) CurrentNotes() []NoteInfo {
	var out []NoteInfo
	for i := range b.voices {
		if st := b.Voice(i); st.LastNote >= 0 {
			out = append(out, NoteInfo{Note: st.LastNote, Voice: i})
		}
	}
	return out
}

// FollowedRoot returns the root picked by follow-input, if any
func (b *Board) FollowedRoot() (int, bool) {
	r := b.followed.Load()
	return int(r), r >= 0
}
