// Package scribe implements stt.Session over the realtime scribe
// websocket protocol: a duplex connection authenticated with a
// single-use token, carrying base64 PCM out and transcript events in.
package scribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tolk/internal/observability/logging"
	"tolk/internal/observability/metrics"
	"tolk/internal/service/stt"
)

// TokenProvider supplies the single-use credential for one connection
// attempt.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Config holds connection parameters passed at open time.
type Config struct {
	Endpoint            string // websocket URL without query parameters
	ModelID             string
	LanguageCode        string
	AudioFormat         string
	CommitStrategy      string
	VADSilenceThreshold time.Duration
}

// Session is a websocket-backed streaming transcription session.
//
// The session is owned by exactly one consumer; only one transport is
// ever open at a time. Handlers are read at dispatch time, so the
// consumer can rebind them between Connect calls.
type Session struct {
	cfg     Config
	tokens  TokenProvider
	dialer  *websocket.Dialer
	metrics *metrics.Metrics
	log     zerolog.Logger

	hmu      sync.RWMutex
	handlers stt.Handlers

	mu    sync.Mutex
	state stt.State
	conn  *websocket.Conn
	gen   uint64 // connection generation; stale read loops are ignored

	wmu sync.Mutex // serializes transport writes
}

// NewSession creates an idle session. Connect must be called before
// frames can be sent.
func NewSession(cfg Config, tokens TokenProvider) *Session {
	return &Session{
		cfg:     cfg,
		tokens:  tokens,
		dialer:  websocket.DefaultDialer,
		metrics: metrics.DefaultMetrics,
		log:     logging.WithComponent("scribe"),
	}
}

// SetHandlers installs the consumer callbacks. May be called at any
// time, including while the session is open.
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

// Connect fetches a single-use token and opens the websocket. A call
// while already connecting or open is a no-op. On any failure the
// session returns to idle without a transport and the error is
// returned once; there is no automatic reconnect.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == stt.StateConnecting || s.state == stt.StateOpen {
		s.mu.Unlock()
		return nil
	}
	s.state = stt.StateConnecting
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	token, err := s.tokens.Token(ctx)
	s.metrics.RecordTokenFetch(err)
	if err != nil {
		s.resetToIdle(gen)
		return fmt.Errorf("%w: %v", stt.ErrTokenFetch, err)
	}

	wsURL, err := s.connectURL(token)
	if err != nil {
		s.resetToIdle(gen)
		return fmt.Errorf("%w: %v", stt.ErrTransport, err)
	}

	conn, _, err := s.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		s.resetToIdle(gen)
		s.metrics.RecordTransportError("dial")
		return fmt.Errorf("%w: %v", stt.ErrTransport, err)
	}

	s.mu.Lock()
	if s.gen != gen || s.state != stt.StateConnecting {
		// Disconnected while dialing; this transport is stale.
		s.mu.Unlock()
		conn.Close()
		return nil
	}
	s.conn = conn
	s.state = stt.StateOpen
	s.mu.Unlock()

	go s.readLoop(conn, gen)

	s.log.Info().Str("model", s.cfg.ModelID).Str("language", s.cfg.LanguageCode).Msg("transport open")
	if h := s.currentHandlers(); h.OnOpen != nil {
		h.OnOpen()
	}
	return nil
}

func (s *Session) connectURL(token string) (string, error) {
	u, err := url.Parse(s.cfg.Endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("model_id", s.cfg.ModelID)
	q.Set("language_code", s.cfg.LanguageCode)
	q.Set("audio_format", s.cfg.AudioFormat)
	q.Set("token", token)
	q.Set("commit_strategy", s.cfg.CommitStrategy)
	q.Set("vad_silence_threshold_secs", strconv.FormatFloat(s.cfg.VADSilenceThreshold.Seconds(), 'f', -1, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SendFrame transmits one PCM frame as a base64 audio chunk message.
// Frames sent while the transport is not open are dropped rather than
// buffered: speech cannot pause during a disconnection, and bounded
// loss beats unbounded memory growth.
func (s *Session) SendFrame(frame []byte) {
	s.mu.Lock()
	conn := s.conn
	open := s.state == stt.StateOpen
	s.mu.Unlock()

	if !open || conn == nil {
		s.metrics.RecordAudioDropped()
		return
	}

	msg := audioChunkMessage{
		MessageType: messageTypeAudioChunk,
		AudioBase64: base64.StdEncoding.EncodeToString(frame),
	}

	s.wmu.Lock()
	err := conn.WriteJSON(msg)
	s.wmu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("frame write failed")
		s.metrics.RecordTransportError("write")
		return
	}
	s.metrics.RecordAudioSent(len(frame))
}

// Disconnect closes the transport and returns to idle. Valid from any
// state, idempotent. A Connect in flight is invalidated.
func (s *Session) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		// Clears connecting intent and invalidates an in-flight dial.
		s.state = stt.StateIdle
		s.gen++
		s.mu.Unlock()
		return
	}
	s.state = stt.StateClosing
	s.mu.Unlock()

	s.wmu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"))
	s.wmu.Unlock()
	conn.Close()
	// The read loop observes the closed transport and finishes the
	// transition to idle.
}

func (s *Session) resetToIdle(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.state = stt.StateIdle
		s.conn = nil
	}
	s.mu.Unlock()
}

func (s *Session) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.teardown(conn, gen, err)
			return
		}
		s.handleMessage(data)
	}
}

// teardown resolves a finished transport to idle and notifies the
// consumer. Stale transports (superseded by a newer generation) are
// closed silently.
func (s *Session) teardown(conn *websocket.Conn, gen uint64, cause error) {
	s.mu.Lock()
	stale := s.gen != gen || s.conn != conn
	closing := s.state == stt.StateClosing
	if !stale {
		s.conn = nil
		s.state = stt.StateIdle
	}
	s.mu.Unlock()

	conn.Close()
	if stale {
		return
	}

	h := s.currentHandlers()
	if !closing && !isNormalClose(cause) {
		s.log.Warn().Err(cause).Msg("transport closed unexpectedly")
		s.metrics.RecordTransportError("read")
		if h.OnError != nil {
			h.OnError(fmt.Errorf("%w: %v", stt.ErrTransport, cause))
		}
	}
	if h.OnClose != nil {
		h.OnClose()
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// handleMessage maps one inbound service message to at most one
// consumer event. Malformed messages are logged and dropped; a single
// bad frame must not interrupt an otherwise healthy stream.
func (s *Session) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Warn().Err(err).Msg("dropping malformed message")
		return
	}

	h := s.currentHandlers()
	switch classify(msg.MessageType) {
	case classPartial:
		if msg.Text == "" {
			return
		}
		s.metrics.RecordPartialTranscript()
		if h.OnPartial != nil {
			h.OnPartial(msg.Text)
		}
	case classCommitted:
		if msg.Text == "" {
			return
		}
		s.metrics.RecordFinalTranscript()
		if h.OnCommitted != nil {
			h.OnCommitted(msg.Text)
		}
	case classError:
		reason := msg.Error
		if reason == "" {
			reason = "unknown error"
		}
		if h.OnError != nil {
			h.OnError(&stt.ServiceError{Kind: msg.MessageType, Reason: reason})
		}
	default:
		s.log.Debug().Str("messageType", msg.MessageType).Msg("ignoring unrecognized message")
	}
}
