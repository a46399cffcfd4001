package sequencer

import (
	"errors"
	"fmt"

	"go-arp/pattern"
	"go-arp/theory"
)

// Session is the persisted form of the parameters
type Session struct {
	Method      int            `json:"method" yaml:"method"`
	Root        int            `json:"root" yaml:"root"`
	Scale       int            `json:"scale" yaml:"scale"`
	FollowInput bool           `json:"followInput" yaml:"followInput"`
	Voices      []VoiceSession `json:"voices" yaml:"voices"`
}

// VoiceSession holds one voice's saved controls
type VoiceSession struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	On          bool   `json:"on" yaml:"on"`
	Channel     int    `json:"channel" yaml:"channel"`
	Subdivision string `json:"subdivision" yaml:"subdivision"`
}

// DefaultSession mirrors DefaultParams
func DefaultSession() Session {
	p := DefaultParams()
	return SessionOf(&p)
}

// SessionOf captures a parameter snapshot for saving
func SessionOf(p *Params) Session {
	s := Session{
		Method:      int(p.Method),
		Root:        p.Root,
		Scale:       int(p.Scale),
		FollowInput: p.FollowInput,
		Voices:      make([]VoiceSession, MaxVoices),
	}
	for i, v := range p.Voices {
		text := ""
		if v.Pattern != nil {
			text = v.Pattern.Text
		}
		s.Voices[i] = VoiceSession{
			Pattern:     text,
			On:          v.On,
			Channel:     int(v.Channel),
			Subdivision: v.Subdivision.String(),
		}
	}
	return s
}

// Session captures the current parameters
func (c *Controller) Session() Session {
	return SessionOf(c.Load())
}

// Restore applies a saved session in one publish. Out-of-range values
// and unparsable patterns keep their current setting and are reported
// together; everything valid is still applied.
func (c *Controller) Restore(s Session) error {
	var errs []error
	err := c.update(func(p *Params) error {
		if m := theory.ChordMethod(s.Method); m.Valid() {
			p.Method = m
		} else {
			errs = append(errs, fmt.Errorf("%w: method %d", ErrInvalidParameter, s.Method))
		}
		if s.Root >= 0 && s.Root <= 11 {
			p.Root = s.Root
		} else {
			errs = append(errs, fmt.Errorf("%w: root %d", ErrInvalidParameter, s.Root))
		}
		if t := theory.ScaleType(s.Scale); t.Valid() {
			p.Scale = t
		} else {
			errs = append(errs, fmt.Errorf("%w: %d", theory.ErrInvalidScaleType, s.Scale))
		}
		p.FollowInput = s.FollowInput

		for i, vs := range s.Voices {
			if i >= MaxVoices {
				errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidVoice, i))
				break
			}
			v := &p.Voices[i]
			v.On = vs.On
			if vs.Channel >= 1 && vs.Channel <= 16 {
				v.Channel = uint8(vs.Channel)
			} else {
				errs = append(errs, fmt.Errorf("voice %d: %w: channel %d", i+1, ErrInvalidParameter, vs.Channel))
			}
			if vs.Subdivision != "" {
				sub, err := ParseSubdivision(vs.Subdivision)
				if err != nil {
					errs = append(errs, fmt.Errorf("voice %d: %w", i+1, err))
				} else {
					v.Subdivision = sub
				}
			}
			pat, err := pattern.Parse(vs.Pattern)
			if err != nil {
				errs = append(errs, fmt.Errorf("voice %d: %w", i+1, err))
				continue
			}
			v.Pattern = pat
		}
		return nil
	})
	if err != nil {
		return err
	}
	return errors.Join(errs...)
}
