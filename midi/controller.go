package midi

import "time"

// NoteEvent is a key going down or up on an input device, stamped when it
// arrived
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8 // 1-16
	On       bool
	Time     time.Time
}

// At places the key event offset frames into a block. A note-on with
// velocity 0 is a release.
func (n NoteEvent) At(offset int) Event {
	e := Off(offset, n.Note)
	if n.On && n.Velocity > 0 {
		e = On(offset, n.Note, n.Velocity)
	}
	e.Channel = n.Channel
	return e
}

// Controller is an input device the host can play from
type Controller interface {
	ID() string
	NoteEvents() <-chan NoteEvent
	Close() error
}
