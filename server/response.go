package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-arp/pattern"
	"go-arp/sequencer"
	"go-arp/theory"
)

type VoiceResponse struct {
	Voice       int    `json:"voice"` // 1-based
	On          bool   `json:"on"`
	Channel     int    `json:"channel"`
	Subdivision string `json:"subdivision"`
	Pattern     string `json:"pattern"`
	State       string `json:"state"`
	Step        int    `json:"step"`
	LastNote    int    `json:"lastNote"`
	SpanStart   int    `json:"spanStart,omitempty"`
	SpanEnd     int    `json:"spanEnd,omitempty"`
}

type TransportResponse struct {
	Playing bool    `json:"playing"`
	Tempo   int     `json:"tempo"`
	Beat    float64 `json:"beat"`
}

type StateResponse struct {
	Method      int                `json:"method"`
	MethodName  string             `json:"methodName"`
	Root        int                `json:"root"`
	RootName    string             `json:"rootName"`
	Scale       int                `json:"scale"`
	ScaleName   string             `json:"scaleName"`
	FollowInput bool               `json:"followInput"`
	Held        []uint8            `json:"held"`
	Chord       []uint8            `json:"chord"`
	Voices      []VoiceResponse    `json:"voices"`
	Transport   *TransportResponse `json:"transport,omitempty"`
}

type PatternResponse struct {
	Pattern string `json:"pattern"`
}

type ParamResponse struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Offset *int   `json:"offset,omitempty"` // pattern parse errors only
	Token  string `json:"token,omitempty"`
}

func (s *Server) state() StateResponse {
	p := s.ctrl.Load()
	st := StateResponse{
		Method:      int(p.Method),
		MethodName:  p.Method.String(),
		Root:        p.Root,
		RootName:    theory.PitchName(p.Root),
		Scale:       int(p.Scale),
		ScaleName:   p.Scale.String(),
		FollowInput: p.FollowInput,
		Held:        nonNil(s.board.HeldNotes()),
		Chord:       nonNil(s.board.ChordNotes()),
	}
	for i := range p.Voices {
		st.Voices = append(st.Voices, s.voice(p, i))
	}
	if s.transport != nil {
		st.Transport = &TransportResponse{
			Playing: s.transport.Playing(),
			Tempo:   s.transport.Tempo(),
			Beat:    s.transport.Beat(),
		}
	}
	return st
}

// voice merges the requested settings with what the engine last reported
func (s *Server) voice(p *sequencer.Params, i int) VoiceResponse {
	vp := p.Voices[i]
	st := s.board.Voice(i)
	text := ""
	if vp.Pattern != nil {
		text = vp.Pattern.Text
	}
	v := VoiceResponse{
		Voice:       i + 1,
		On:          vp.On,
		Channel:     int(vp.Channel),
		Subdivision: vp.Subdivision.String(),
		Pattern:     text,
		State:       st.State.String(),
		Step:        st.Step,
		LastNote:    st.LastNote,
	}
	if st.HasSpan {
		v.SpanStart, v.SpanEnd = st.Span.Start, st.Span.End
	}
	return v
}

func nonNil(notes []uint8) []uint8 {
	if notes == nil {
		return []uint8{}
	}
	return notes
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes
func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var pe *pattern.ParseError
	switch {
	case errors.As(err, &pe):
		status = http.StatusBadRequest
		resp.Offset = &pe.Offset
		resp.Token = pe.Token
	case errors.Is(err, sequencer.ErrInvalidVoice):
		status = http.StatusNotFound
	case errors.Is(err, sequencer.ErrInvalidParameter),
		errors.Is(err, theory.ErrInvalidScaleType),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}
