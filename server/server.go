package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"go-arp/debug"
	"go-arp/host"
	"go-arp/pattern"
	"go-arp/sequencer"
	"go-arp/theory"
)

// Server exposes the engine controls over HTTP for browser based editors
type Server struct {
	ctrl      *sequencer.Controller
	board     *sequencer.Board
	transport *host.Transport // nil when a plugin host owns the transport

	// called after every successful change, e.g. to schedule an autosave
	OnChange func()

	router *mux.Router
}

// New builds the routes. transport may be nil.
func New(ctrl *sequencer.Controller, board *sequencer.Board, transport *host.Transport) *Server {
	s := &Server{
		ctrl:      ctrl,
		board:     board,
		transport: transport,
		router:    mux.NewRouter().StrictSlash(true),
	}

	r := s.router
	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/voices/{voice:[0-9]+}", s.handleVoice).Methods(http.MethodGet)
	r.HandleFunc("/voices/{voice:[0-9]+}/pattern", s.handlePattern).Methods(http.MethodPut)
	r.HandleFunc("/voices/{voice:[0-9]+}/on", s.handleVoiceOn).Methods(http.MethodPut)
	r.HandleFunc("/voices/{voice:[0-9]+}/channel", s.handleChannel).Methods(http.MethodPut)
	r.HandleFunc("/voices/{voice:[0-9]+}/subdivision", s.handleSubdivision).Methods(http.MethodPut)
	r.HandleFunc("/scale", s.handleScale).Methods(http.MethodPut)
	r.HandleFunc("/method", s.handleMethod).Methods(http.MethodPut)
	r.HandleFunc("/params/{name}", s.handleGetParam).Methods(http.MethodGet)
	r.HandleFunc("/params/{name}", s.handlePutParam).Methods(http.MethodPut)
	r.HandleFunc("/generate/euclid", s.handleEuclid).Methods(http.MethodGet)
	r.HandleFunc("/generate/random", s.handleRandom).Methods(http.MethodGet)
	return s
}

// Handler returns the router wrapped for cross-origin use
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		debug.Log("http", "listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	i, err := voiceIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.voice(s.ctrl.Load(), i))
}

func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pattern string `json:"pattern"`
	}
	s.voiceUpdate(w, r, &body, func(i int) error {
		return s.ctrl.SetPattern(i, body.Pattern)
	})
}

func (s *Server) handleVoiceOn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On bool `json:"on"`
	}
	s.voiceUpdate(w, r, &body, func(i int) error {
		return s.ctrl.SetVoiceOn(i, body.On)
	})
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Channel int `json:"channel"`
	}
	s.voiceUpdate(w, r, &body, func(i int) error {
		return s.ctrl.SetMidiChannel(i, body.Channel)
	})
}

func (s *Server) handleSubdivision(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subdivision string `json:"subdivision"`
	}
	s.voiceUpdate(w, r, &body, func(i int) error {
		sub, err := sequencer.ParseSubdivision(body.Subdivision)
		if err != nil {
			return err
		}
		return s.ctrl.SetSubdivision(i, sub)
	})
}

// voiceUpdate decodes body, applies fn to the addressed voice and answers
// with the voice's new settings
func (s *Server) voiceUpdate(w http.ResponseWriter, r *http.Request, body any, fn func(i int) error) {
	i, err := voiceIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := decode(r, body); err != nil {
		writeError(w, err)
		return
	}
	if err := fn(i); err != nil {
		writeError(w, err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusOK, s.voice(s.ctrl.Load(), i))
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Root        *int  `json:"root"`
		Scale       *int  `json:"scale"`
		FollowInput *bool `json:"followInput"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Root != nil {
		if err := s.ctrl.SetRoot(*body.Root); err != nil {
			writeError(w, err)
			return
		}
	}
	if body.Scale != nil {
		if err := s.ctrl.SetScale(theory.ScaleType(*body.Scale)); err != nil {
			writeError(w, err)
			return
		}
	}
	if body.FollowInput != nil {
		if err := s.ctrl.SetFollowInput(*body.FollowInput); err != nil {
			writeError(w, err)
			return
		}
	}
	s.changed()
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method int `json:"method"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ctrl.SetMethod(theory.ChordMethod(body.Method)); err != nil {
		writeError(w, err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleGetParam(w http.ResponseWriter, r *http.Request) {
	key, err := sequencer.ParseParamKey(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := s.ctrl.Get(key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ParamResponse{Name: key.String(), Value: v})
}

// handlePutParam sets any numeric control by name; booleans take 0 or 1
func (s *Server) handlePutParam(w http.ResponseWriter, r *http.Request) {
	key, err := sequencer.ParseParamKey(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Value *int `json:"value"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Value == nil {
		writeError(w, fmt.Errorf("%w: missing value", errBadRequest))
		return
	}
	if err := s.ctrl.Set(key, *body.Value); err != nil {
		writeError(w, err)
		return
	}
	s.changed()
	v, _ := s.ctrl.Get(key)
	writeJSON(w, http.StatusOK, ParamResponse{Name: key.String(), Value: v})
}

func (s *Server) handleEuclid(w http.ResponseWriter, r *http.Request) {
	hits, err := queryInt(r, "hits", pattern.DefaultHits)
	if err != nil {
		writeError(w, err)
		return
	}
	steps, err := queryInt(r, "steps", pattern.DefaultSteps)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PatternResponse{Pattern: pattern.Euclid(hits, steps)})
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "length", pattern.RandomLength)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PatternResponse{Pattern: pattern.RandomN(nil, n)})
}

func (s *Server) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

var errBadRequest = errors.New("bad request")

// voiceIndex reads the 1-based voice number from the path
func voiceIndex(r *http.Request) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)["voice"])
	if err != nil {
		return 0, errBadRequest
	}
	if n < 1 || n > sequencer.MaxVoices {
		return 0, fmt.Errorf("%w: %d", sequencer.ErrInvalidVoice, n)
	}
	return n - 1, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errBadRequest
	}
	return n, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
