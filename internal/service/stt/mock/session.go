// Package mock provides a scripted stt.Session for running the
// pipeline without service credentials. It simulates realistic
// behavior: progressive partial transcripts and exactly one committed
// transcript per utterance.
package mock

import (
	"context"
	"sync"

	"tolk/internal/service/stt"
)

// SimulatedUtterance is one scripted utterance with progressive
// partial transcripts.
type SimulatedUtterance struct {
	Partials  []string
	Committed string
}

// DefaultUtterances provides sample utterances for simulation.
var DefaultUtterances = []SimulatedUtterance{
	{
		Partials:  []string{"good", "good morning"},
		Committed: "good morning everyone",
	},
	{
		Partials:  []string{"today we", "today we will talk"},
		Committed: "today we will talk about the harbor",
	},
	{
		Partials:  []string{"thank", "thank you"},
		Committed: "thank you for listening",
	},
}

// Session implements stt.Session with scripted responses. Each
// SendFrame advances the script by one partial; once an utterance's
// partials are exhausted the committed transcript is emitted and the
// script moves to the next utterance, cycling.
type Session struct {
	utterances []SimulatedUtterance

	hmu      sync.RWMutex
	handlers stt.Handlers

	mu           sync.Mutex
	state        stt.State
	utteranceIdx int
	partialIdx   int
}

// NewSession creates a mock session playing the given utterances, or
// DefaultUtterances when none are provided.
func NewSession(utterances ...SimulatedUtterance) *Session {
	if len(utterances) == 0 {
		utterances = DefaultUtterances
	}
	return &Session{utterances: utterances}
}

// SetHandlers installs the consumer callbacks.
func (s *Session) SetHandlers(h stt.Handlers) {
	s.hmu.Lock()
	s.handlers = h
	s.hmu.Unlock()
}

func (s *Session) currentHandlers() stt.Handlers {
	s.hmu.RLock()
	defer s.hmu.RUnlock()
	return s.handlers
}

// State reports the current lifecycle state.
func (s *Session) State() stt.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect opens the scripted session immediately. No-op when already
// open.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == stt.StateOpen {
		s.mu.Unlock()
		return nil
	}
	s.state = stt.StateOpen
	s.mu.Unlock()

	if h := s.currentHandlers(); h.OnOpen != nil {
		h.OnOpen()
	}
	return nil
}

// SendFrame advances the script by one event. Frames sent while not
// open are dropped, matching the real transport.
func (s *Session) SendFrame(frame []byte) {
	s.mu.Lock()
	if s.state != stt.StateOpen {
		s.mu.Unlock()
		return
	}

	utt := s.utterances[s.utteranceIdx%len(s.utterances)]
	var emitPartial, emitCommitted string
	if s.partialIdx < len(utt.Partials) {
		emitPartial = utt.Partials[s.partialIdx]
		s.partialIdx++
	} else {
		emitCommitted = utt.Committed
		s.partialIdx = 0
		s.utteranceIdx++
	}
	s.mu.Unlock()

	h := s.currentHandlers()
	if emitPartial != "" && h.OnPartial != nil {
		h.OnPartial(emitPartial)
	}
	if emitCommitted != "" && h.OnCommitted != nil {
		h.OnCommitted(emitCommitted)
	}
}

// Disconnect returns the session to idle. Idempotent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	wasOpen := s.state == stt.StateOpen
	s.state = stt.StateIdle
	s.partialIdx = 0
	s.mu.Unlock()

	if wasOpen {
		if h := s.currentHandlers(); h.OnClose != nil {
			h.OnClose()
		}
	}
}
