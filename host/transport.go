package host

import (
	"sync"

	"go-arp/sequencer"
	"go-arp/util"
)

const (
	MinTempo = 20
	MaxTempo = 300
)

// Transport is the internal play head used when no plugin host drives the
// engine
type Transport struct {
	mu      sync.Mutex
	playing bool
	tempo   int
	beat    float64 // quarter notes since Play
}

// NewTransport returns a stopped transport
func NewTransport(tempo int) *Transport {
	t := &Transport{}
	t.SetTempo(tempo)
	return t
}

// Play starts from beat 0; false if already playing
func (t *Transport) Play() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		return false
	}
	t.playing = true
	t.beat = 0
	return true
}

// Stop halts the play head; false if already stopped
func (t *Transport) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return false
	}
	t.playing = false
	return true
}

// SetTempo sets the BPM, clamped to 20-300, and returns what was set
func (t *Transport) SetTempo(bpm int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tempo = util.Clamp(bpm, MinTempo, MaxTempo)
	return t.tempo
}

func (t *Transport) Tempo() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tempo
}

func (t *Transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// Beat returns the play head position in quarter notes
func (t *Transport) Beat() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.beat
}

// Advance returns the transport for a block of frames and moves the play
// head past it
func (t *Transport) Advance(frames int, sampleRate float64) sequencer.Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr := sequencer.Transport{
		Playing: t.playing,
		BPM:     float64(t.tempo),
		PPQ:     t.beat,
	}
	if t.playing && sampleRate > 0 {
		t.beat += float64(frames) * float64(t.tempo) / (60 * sampleRate)
	}
	return tr
}
