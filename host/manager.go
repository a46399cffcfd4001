package host

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-arp/debug"
	"go-arp/midi"
	"go-arp/sequencer"
	"go-arp/util"
)

// Sender writes one MIDI message, as returned by gomidi.SendTo
type Sender func(gomidi.Message) error

// UI refresh rate
const uiFPS = 30

// batch is one rendered block waiting for the output loop
type batch struct {
	start  time.Time
	events []midi.Event
}

// Manager clocks the engine in real time: a block loop renders audio-block
// sized slices of time and an output loop sends the events at their wall
// clock position
type Manager struct {
	engine     *sequencer.Engine
	transport  *Transport
	frames     int
	sampleRate float64
	period     time.Duration

	senderMu sync.RWMutex
	sender   Sender

	input     chan midi.NoteEvent
	inputStop chan struct{}
	inputMu   sync.Mutex

	out  chan batch
	done sync.WaitGroup

	// block loop only
	in        []midi.Event
	buf       []midi.Event
	lastBlock time.Time

	// output loop only
	sounding [16][128]bool

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager wraps engine with a real-time clock of blockSize frames
func NewManager(engine *sequencer.Engine, transport *Transport, blockSize int) *Manager {
	if blockSize <= 0 {
		blockSize = 512
	}
	if transport == nil {
		transport = NewTransport(int(sequencer.DefaultTempo))
	}
	sr := engine.SampleRate()
	return &Manager{
		engine:     engine,
		transport:  transport,
		frames:     blockSize,
		sampleRate: sr,
		period:     time.Duration(float64(blockSize) / sr * float64(time.Second)),
		input:      make(chan midi.NoteEvent, 64),
		out:        make(chan batch, 8),
		in:         make([]midi.Event, 0, 64),
		buf:        make([]midi.Event, 0, 256),
		UpdateChan: make(chan struct{}, 1),
	}
}

func (m *Manager) Engine() *sequencer.Engine {
	return m.engine
}

func (m *Manager) Transport() *Transport {
	return m.transport
}

// SetOutput sets where events go; nil discards them
func (m *Manager) SetOutput(s Sender) {
	m.senderMu.Lock()
	m.sender = s
	m.senderMu.Unlock()
}

// StartRuntime starts the block and output loops; both stop with ctx
func (m *Manager) StartRuntime(ctx context.Context) {
	m.done.Add(2)
	go func() {
		defer m.done.Done()
		m.blockLoop(ctx)
	}()
	go func() {
		defer m.done.Done()
		m.outputLoop(ctx)
	}()
}

// Wait blocks until the loops have stopped and every note is released
func (m *Manager) Wait() {
	m.done.Wait()
}

// SetMIDIInput sets the MIDI keyboard input source, replacing any previous
// one. nil detaches.
func (m *Manager) SetMIDIInput(ctrl midi.Controller) {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	if m.inputStop != nil {
		close(m.inputStop)
		m.inputStop = nil
	}
	if ctrl == nil {
		return
	}

	stop := make(chan struct{})
	m.inputStop = stop
	go func() {
		events := ctrl.NoteEvents()
		for {
			select {
			case <-stop:
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				m.HandleNote(evt)
			}
		}
	}()
}

// HandleNote queues a key event for the next block
func (m *Manager) HandleNote(evt midi.NoteEvent) {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	select {
	case m.input <- evt:
	default:
		debug.Log("host", "input full, dropped note %d", evt.Note)
	}
}

// Play starts the internal transport
func (m *Manager) Play() {
	if m.transport.Play() {
		debug.Log("host", "play at %d bpm", m.transport.Tempo())
		m.notifyUpdate()
	}
}

// Stop stops the internal transport; the engine releases its notes on the
// next block
func (m *Manager) Stop() {
	if m.transport.Stop() {
		debug.Log("host", "stop")
		m.notifyUpdate()
	}
}

// SetTempo sets the BPM (20-300)
func (m *Manager) SetTempo(bpm int) {
	m.transport.SetTempo(bpm)
	m.notifyUpdate()
}

// GetState returns the transport state
func (m *Manager) GetState() (playing bool, tempo int, beat float64) {
	return m.transport.Playing(), m.transport.Tempo(), m.transport.Beat()
}

func (m *Manager) blockLoop(ctx context.Context) {
	ticker := time.NewTicker(m.period)
	uiTicker := time.NewTicker(time.Second / uiFPS)
	defer ticker.Stop()
	defer uiTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b := m.renderBlock(now)
			if len(b.events) == 0 {
				continue
			}
			select {
			case m.out <- b:
			case <-ctx.Done():
				return
			}
		case <-uiTicker.C:
			m.engine.Controller().Poll(m.engine.Board())
			m.notifyUpdate()
		}
	}
}

// renderBlock runs the engine over the block starting at now. Keys that
// arrived since the previous block keep their relative timing.
func (m *Manager) renderBlock(now time.Time) batch {
	prev := m.lastBlock
	if prev.IsZero() {
		prev = now.Add(-m.period)
	}
	m.lastBlock = now

	in := m.in[:0]
drain:
	for {
		select {
		case evt := <-m.input:
			in = append(in, m.blockEvent(evt, prev))
		default:
			break drain
		}
	}
	slices.SortStableFunc(in, func(a, b midi.Event) int { return a.Offset - b.Offset })
	m.in = in

	tr := m.transport.Advance(m.frames, m.sampleRate)
	m.buf = m.engine.Process(sequencer.Block{Frames: m.frames, Input: in, Transport: tr}, m.buf[:0])
	return batch{start: now, events: slices.Clone(m.buf)}
}

func (m *Manager) blockEvent(evt midi.NoteEvent, blockStart time.Time) midi.Event {
	offset := int(evt.Time.Sub(blockStart).Seconds() * m.sampleRate)
	return evt.At(util.Clamp(offset, 0, m.frames-1))
}

func (m *Manager) offsetTime(start time.Time, offset int) time.Time {
	return start.Add(time.Duration(float64(offset) / m.sampleRate * float64(time.Second)))
}

// outputLoop sends rendered events at their wall clock time
func (m *Manager) outputLoop(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer m.allNotesOff()

	for {
		select {
		case <-ctx.Done():
			return
		case b := <-m.out:
			for _, e := range b.events {
				if wait := time.Until(m.offsetTime(b.start, e.Offset)); wait > 0 {
					timer := time.NewTimer(wait)
					select {
					case <-ctx.Done():
						timer.Stop()
						return
					case <-timer.C:
					}
				}
				m.send(e)
			}
		}
	}
}

func (m *Manager) send(e midi.Event) {
	ch := util.Clamp(int(e.Channel), 1, 16) - 1
	if e.IsNoteOn() {
		m.sounding[ch][e.Note] = true
	} else {
		m.sounding[ch][e.Note] = false
	}

	m.senderMu.RLock()
	sender := m.sender
	m.senderMu.RUnlock()
	if sender == nil {
		return
	}
	if err := sender(e.Message()); err != nil {
		debug.Log("dispatch", "send %s: %v", e, err)
		return
	}
	debug.LogEvery(64, "dispatch", "%s", e)
}

// allNotesOff releases whatever is still sounding so nothing hangs on exit
func (m *Manager) allNotesOff() {
	for ch := range m.sounding {
		for note, on := range m.sounding[ch] {
			if on {
				off := midi.Off(0, uint8(note))
				off.Channel = uint8(ch + 1)
				m.send(off)
			}
		}
	}
}

// notifyUpdate pokes the TUI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
