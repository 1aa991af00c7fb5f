// Package stt defines the interface for streaming speech-to-text sessions.
package stt

import (
	"context"
	"errors"
	"fmt"
)

// State is the connection lifecycle state of a session.
type State int

const (
	// StateIdle - no transport; Connect may be called.
	StateIdle State = iota
	// StateConnecting - token fetch or dial in progress.
	StateConnecting
	// StateOpen - transport established, frames may be sent.
	StateOpen
	// StateClosing - consumer-initiated teardown in progress.
	StateClosing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Session errors.
var (
	// ErrTokenFetch - the single-use credential could not be obtained.
	ErrTokenFetch = errors.New("stt: token fetch failed")
	// ErrTransport - the duplex transport failed to open or broke.
	ErrTransport = errors.New("stt: transport error")
)

// ServiceError is an error reported by the transcription service itself
// through its error-family message types.
type ServiceError struct {
	Kind   string // e.g. auth_error, quota_exceeded
	Reason string
}

func (e *ServiceError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("stt: service error (%s)", e.Kind)
	}
	return fmt.Sprintf("stt: service error (%s): %s", e.Kind, e.Reason)
}

// Handlers receives transcription events. Any field may be nil.
//
// A session dispatches through the handlers installed at the time each
// event arrives, never through handlers captured at connect time, so a
// consumer can rebind behavior between Connect calls without
// reconstructing the session.
type Handlers struct {
	// OnOpen is called when the transport is established.
	OnOpen func()

	// OnPartial is called for each tentative transcript. Superseded by
	// the next partial or committed event.
	OnPartial func(text string)

	// OnCommitted is called once per finalized utterance.
	OnCommitted func(text string)

	// OnError is called for token, transport and service errors.
	OnError func(err error)

	// OnClose is called when the transport ends for any reason.
	OnClose func()
}

// Session is a duplex streaming transcription session.
type Session interface {
	// Connect fetches a single-use credential and opens the transport.
	// No-op when already connecting or open. On failure the session
	// returns to idle without a transport.
	Connect(ctx context.Context) error

	// SendFrame transmits one PCM frame. Frames sent while the session
	// is not open are silently dropped.
	SendFrame(frame []byte)

	// Disconnect closes the transport and returns to idle. Valid from
	// any state, idempotent.
	Disconnect()

	// SetHandlers installs the consumer callbacks.
	SetHandlers(h Handlers)

	// State reports the current lifecycle state.
	State() State
}
