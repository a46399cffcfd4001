package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is a note event placed inside an audio block
type Event struct {
	Offset   int   // sample offset within the block
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8 // 1-16, 0 = untagged
	Note     uint8
	Velocity uint8
}

// On returns a note-on at offset
func On(offset int, note, velocity uint8) Event {
	return Event{Offset: offset, Type: NoteOn, Note: note, Velocity: velocity}
}

// Off returns a note-off at offset
func Off(offset int, note uint8) Event {
	return Event{Offset: offset, Type: NoteOff, Note: note}
}

// IsNoteOn treats a zero-velocity note-on as a note-off
func (e Event) IsNoteOn() bool {
	return e.Type == NoteOn && e.Velocity > 0
}

// IsNoteOff reports note-offs, including zero-velocity note-ons
func (e Event) IsNoteOff() bool {
	return e.Type == NoteOff || (e.Type == NoteOn && e.Velocity == 0)
}

// Message encodes the event for a gomidi sender. Untagged events go out on
// channel 1.
func (e Event) Message() gomidi.Message {
	var midiCh uint8
	if e.Channel > 0 {
		midiCh = e.Channel - 1
	}
	if e.IsNoteOn() {
		return gomidi.NoteOn(midiCh, e.Note, e.Velocity)
	}
	return gomidi.NoteOff(midiCh, e.Note)
}

// FromMessage decodes note on/off messages; anything else reports false
func FromMessage(msg gomidi.Message, offset int) (Event, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return Event{Offset: offset, Type: NoteOn, Channel: ch + 1, Note: key, Velocity: vel}, true
	case msg.GetNoteEnd(&ch, &key):
		return Event{Offset: offset, Type: NoteOff, Channel: ch + 1, Note: key}, true
	}
	return Event{}, false
}

func (e Event) String() string {
	kind := "off"
	if e.IsNoteOn() {
		kind = "on "
	}
	return fmt.Sprintf("@%-6d ch%-2d %s %3d vel %3d", e.Offset, e.Channel, kind, e.Note, e.Velocity)
}
