package sequencer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go-arp/pattern"
	"go-arp/theory"
)

var ErrInvalidParameter = errors.New("invalid parameter")

// DefaultPattern is what every voice starts with
const DefaultPattern = "1 2 3"

// VoiceParams are the per-voice controls
type VoiceParams struct {
	On          bool
	Channel     uint8 // 1-16
	Subdivision Subdivision
	Pattern     *pattern.Pattern
}

// Params is an immutable snapshot of every control. The audio goroutine
// only ever reads a published *Params; writers copy, modify and publish.
type Params struct {
	Version     uint64
	Method      theory.ChordMethod
	Root        int // 0-11
	Scale       theory.ScaleType
	FollowInput bool
	Voices      [MaxVoices]VoiceParams
}

// DefaultParams has voice 1 on, channels 1-4, sixteenth notes and the
// default pattern everywhere
func DefaultParams() Params {
	p := Params{
		Method: theory.NotesPlayed,
		Scale:  theory.ScaleMajor,
	}
	def := pattern.MustParse(DefaultPattern)
	for i := range p.Voices {
		p.Voices[i] = VoiceParams{
			On:          i == 0,
			Channel:     uint8(i + 1),
			Subdivision: DefaultSubdivision,
			Pattern:     def,
		}
	}
	return p
}

// ScaleValue returns the scale described by the snapshot
func (p *Params) ScaleValue() theory.Scale {
	return theory.NewScale(p.Root, p.Scale)
}

// ParamID names a control
type ParamID int

const (
	ParamMethod ParamID = iota
	ParamRoot
	ParamScale
	ParamFollowInput
	ParamVoiceOn
	ParamChannel
	ParamSubdivision
	paramCount
)

var paramNames = []string{"method", "root", "scale", "followInput", "voiceOn", "channel", "subdivision"}

// ParamKey identifies one control; Voice is only meaningful for per-voice IDs
type ParamKey struct {
	ID    ParamID
	Voice int
}

// PerVoice reports whether the ID belongs to a voice
func (id ParamID) PerVoice() bool {
	return id >= ParamVoiceOn && id < paramCount
}

func (k ParamKey) String() string {
	if k.ID < 0 || k.ID >= paramCount {
		return fmt.Sprintf("param(%d)", int(k.ID))
	}
	if k.ID.PerVoice() {
		return fmt.Sprintf("%s%d", paramNames[k.ID], k.Voice+1)
	}
	return paramNames[k.ID]
}

// ParseParamKey reads a key written by ParamKey.String, e.g. "root" or
// "channel3" (voices are 1-based)
func ParseParamKey(name string) (ParamKey, error) {
	for id := ParamID(0); id < paramCount; id++ {
		if !id.PerVoice() {
			if name == paramNames[id] {
				return ParamKey{ID: id}, nil
			}
			continue
		}
		num, ok := strings.CutPrefix(name, paramNames[id])
		if !ok {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			break
		}
		if n < 1 || n > MaxVoices {
			return ParamKey{}, fmt.Errorf("%w: %q", ErrInvalidVoice, name)
		}
		return ParamKey{ID: id, Voice: n - 1}, nil
	}
	return ParamKey{}, fmt.Errorf("%w: %q", ErrInvalidParameter, name)
}

// Controller owns the published parameter snapshot. Setters run on control
// goroutines; the audio goroutine calls Load only.
type Controller struct {
	mu  sync.Mutex // serializes writers
	cur atomic.Pointer[Params]
}

// NewController publishes p as the first snapshot
func NewController(p Params) *Controller {
	c := &Controller{}
	c.cur.Store(&p)
	return c
}

// Load returns the current snapshot without blocking
func (c *Controller) Load() *Params {
	return c.cur.Load()
}

// update copies the snapshot, applies fn and publishes the result. Nothing
// is published when fn fails.
func (c *Controller) update(fn func(p *Params) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := *c.cur.Load()
	if err := fn(&next); err != nil {
		return err
	}
	next.Version++
	c.cur.Store(&next)
	return nil
}

func checkVoice(i int) error {
	if i < 0 || i >= MaxVoices {
		return fmt.Errorf("%w: %d", ErrInvalidVoice, i)
	}
	return nil
}

// SetMethod selects the chord method
func (c *Controller) SetMethod(m theory.ChordMethod) error {
	if !m.Valid() {
		return fmt.Errorf("%w: method %d", ErrInvalidParameter, m)
	}
	return c.update(func(p *Params) error {
		p.Method = m
		return nil
	})
}

// SetRoot sets the scale root pitch class
func (c *Controller) SetRoot(root int) error {
	if root < 0 || root > 11 {
		return fmt.Errorf("%w: root %d", ErrInvalidParameter, root)
	}
	return c.update(func(p *Params) error {
		p.Root = root
		return nil
	})
}

// SetScale sets the scale type
func (c *Controller) SetScale(t theory.ScaleType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %d", theory.ErrInvalidScaleType, t)
	}
	return c.update(func(p *Params) error {
		p.Scale = t
		return nil
	})
}

// SetFollowInput makes single-note chords redefine the scale root
func (c *Controller) SetFollowInput(follow bool) error {
	return c.update(func(p *Params) error {
		p.FollowInput = follow
		return nil
	})
}

// SetVoiceOn toggles voice i
func (c *Controller) SetVoiceOn(i int, on bool) error {
	if err := checkVoice(i); err != nil {
		return err
	}
	return c.update(func(p *Params) error {
		p.Voices[i].On = on
		return nil
	})
}

// SetMidiChannel routes voice i to channel ch (1-16)
func (c *Controller) SetMidiChannel(i int, ch int) error {
	if err := checkVoice(i); err != nil {
		return err
	}
	if ch < 1 || ch > 16 {
		return fmt.Errorf("%w: channel %d", ErrInvalidParameter, ch)
	}
	return c.update(func(p *Params) error {
		p.Voices[i].Channel = uint8(ch)
		return nil
	})
}

// SetSubdivision sets the step length of voice i
func (c *Controller) SetSubdivision(i int, sub Subdivision) error {
	if err := checkVoice(i); err != nil {
		return err
	}
	if !sub.Valid() {
		return fmt.Errorf("%w: subdivision %d", ErrInvalidParameter, sub)
	}
	return c.update(func(p *Params) error {
		p.Voices[i].Subdivision = sub
		return nil
	})
}

// SetPattern parses text for voice i. A parse error leaves the previous
// pattern in place and is returned as *pattern.ParseError.
func (c *Controller) SetPattern(i int, text string) error {
	if err := checkVoice(i); err != nil {
		return err
	}
	pat, err := pattern.Parse(text)
	if err != nil {
		return err
	}
	return c.update(func(p *Params) error {
		p.Voices[i].Pattern = pat
		return nil
	})
}

// Set changes a numeric control by key. Booleans take 0 or 1.
func (c *Controller) Set(key ParamKey, value int) error {
	if key.ID.PerVoice() {
		if err := checkVoice(key.Voice); err != nil {
			return err
		}
	}
	switch key.ID {
	case ParamMethod:
		return c.SetMethod(theory.ChordMethod(value))
	case ParamRoot:
		return c.SetRoot(value)
	case ParamScale:
		return c.SetScale(theory.ScaleType(value))
	case ParamFollowInput:
		return c.SetFollowInput(value != 0)
	case ParamVoiceOn:
		return c.SetVoiceOn(key.Voice, value != 0)
	case ParamChannel:
		return c.SetMidiChannel(key.Voice, value)
	case ParamSubdivision:
		return c.SetSubdivision(key.Voice, Subdivision(value))
	}
	return fmt.Errorf("%w: %v", ErrInvalidParameter, key)
}

// Get reads a numeric control by key
func (c *Controller) Get(key ParamKey) (int, error) {
	if key.ID.PerVoice() {
		if err := checkVoice(key.Voice); err != nil {
			return 0, err
		}
	}
	p := c.Load()
	switch key.ID {
	case ParamMethod:
		return int(p.Method), nil
	case ParamRoot:
		return p.Root, nil
	case ParamScale:
		return int(p.Scale), nil
	case ParamFollowInput:
		return boolInt(p.FollowInput), nil
	case ParamVoiceOn:
		return boolInt(p.Voices[key.Voice].On), nil
	case ParamChannel:
		return int(p.Voices[key.Voice].Channel), nil
	case ParamSubdivision:
		return int(p.Voices[key.Voice].Subdivision), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidParameter, key)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Poll folds a root picked up by follow-input back into the parameters so
// the UI shows it. Call from the UI goroutine.
func (c *Controller) Poll(b *Board) bool {
	root, ok := b.FollowedRoot()
	if !ok {
		return false
	}
	p := c.Load()
	if !p.FollowInput || p.Root == root {
		return false
	}
	return c.SetRoot(root) == nil
}
