package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Keyboard forwards the note messages of one input port
type Keyboard struct {
	id     string
	events chan NoteEvent
	stop   func()
	once   sync.Once
}

var _ Controller = (*Keyboard)(nil)

// OpenKeyboard listens on port. A nil port gives a keyboard that only
// receives what is passed to handle.
func OpenKeyboard(id string, port drivers.In) (*Keyboard, error) {
	kb := &Keyboard{id: id, events: make(chan NoteEvent, 64)}
	if port == nil {
		return kb, nil
	}
	stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, _ int32) {
		kb.handle(msg, time.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", id, err)
	}
	kb.stop = stop
	return kb, nil
}

// handle queues note on/off; everything else is ignored and a full queue
// drops the event
func (kb *Keyboard) handle(msg gomidi.Message, at time.Time) {
	var ch, key, vel uint8
	var evt NoteEvent
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		evt = NoteEvent{Note: key, Velocity: vel, Channel: ch + 1, On: true, Time: at}
	case msg.GetNoteEnd(&ch, &key):
		evt = NoteEvent{Note: key, Channel: ch + 1, Time: at}
	default:
		return
	}
	select {
	case kb.events <- evt:
	default:
	}
}

func (kb *Keyboard) ID() string {
	return kb.id
}

func (kb *Keyboard) NoteEvents() <-chan NoteEvent {
	return kb.events
}

func (kb *Keyboard) Close() error {
	kb.once.Do(func() {
		if kb.stop != nil {
			kb.stop()
		}
		close(kb.events)
	})
	return nil
}
