// Package pipeline coordinates one live recording session: capture,
// streaming transcription, the segment timeline and per-segment
// translation dispatch.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tolk/internal/events"
	"tolk/internal/models"
	"tolk/internal/observability/logging"
	"tolk/internal/observability/metrics"
	"tolk/internal/service/audio"
	"tolk/internal/service/stt"
	"tolk/internal/service/timeline"
	"tolk/internal/service/translate"
)

// Config holds per-session settings.
type Config struct {
	SessionID        string // generated when empty
	SourceLang       string // STT-side code; "auto" or "" requests detection
	TargetLang       string
	TargetSampleRate int
	ChunkSize        int
}

// Listener receives consumer-facing pipeline events. Any field may be
// nil.
type Listener struct {
	OnPartial     func(text string)
	OnSegment     func(seg timeline.Segment)
	OnTranslation func(index int, text, detectedSourceLang string)
	OnError       func(err error)
}

// Pipeline owns the microphone source and the transcription transport
// for one recording session; no concurrent session may hold either.
// Committed transcripts append timeline segments in arrival order and
// fire one translation dispatch each, keyed by segment index.
type Pipeline struct {
	cfg        Config
	source     *audio.Source
	session    stt.Session
	timeline   *timeline.Timeline
	dispatcher *translate.Dispatcher
	publisher  *events.Publisher
	listener   Listener
	metrics    *metrics.Metrics
	log        zerolog.Logger

	mu        sync.Mutex
	running   bool
	startedAt time.Time
}

// New builds a pipeline around the given capture device, transcription
// session and translator. The publisher may be a disabled (log-only)
// one.
func New(device audio.Device, session stt.Session, translator translate.Translator, publisher *events.Publisher, cfg Config, listener Listener) *Pipeline {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	p := &Pipeline{
		cfg:       cfg,
		session:   session,
		timeline:  timeline.New(),
		publisher: publisher,
		listener:  listener,
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithSession(cfg.SessionID),
	}
	p.dispatcher = translate.NewDispatcher(translator, p.timeline, p.onTranslationDone)
	p.source = audio.NewSource(device, cfg.TargetSampleRate, cfg.ChunkSize, session.SendFrame)
	return p
}

// Timeline exposes the session's segment timeline.
func (p *Pipeline) Timeline() *timeline.Timeline {
	return p.timeline
}

// SessionID returns the identifier of this recording session.
func (p *Pipeline) SessionID() string {
	return p.cfg.SessionID
}

// Start resets the timeline, connects the transcription session and
// begins capture. Capture and connection errors are terminal for this
// attempt; retry is the caller's decision.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.startedAt = time.Now()
	p.mu.Unlock()

	p.timeline.Reset()
	p.session.SetHandlers(stt.Handlers{
		OnPartial:   p.onPartial,
		OnCommitted: p.onCommitted,
		OnError:     p.onSessionError,
	})

	if err := p.session.Connect(ctx); err != nil {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		return err
	}

	if err := p.source.Start(ctx); err != nil {
		p.session.Disconnect()
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		return err
	}

	p.metrics.RecordSessionStart()
	p.log.Info().
		Str("sourceLang", p.cfg.SourceLang).
		Str("targetLang", p.cfg.TargetLang).
		Msg("recording session started")
	return nil
}

// Stop ends capture and closes the transport. In-flight translation
// requests are not cancelled; late results still land on their
// segments. Idempotent.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	started := p.startedAt
	p.mu.Unlock()

	p.source.Stop()
	p.session.Disconnect()
	p.metrics.RecordSessionEnd(time.Since(started).Seconds())
	p.log.Info().Msg("recording session stopped")
}

// DrainTranslations blocks until every dispatched translation request
// has completed. Intended for batch runs and tests.
func (p *Pipeline) DrainTranslations() {
	p.dispatcher.Wait()
}

func (p *Pipeline) onPartial(text string) {
	p.timeline.OnPartial(text)
	if p.listener.OnPartial != nil {
		p.listener.OnPartial(text)
	}
}

func (p *Pipeline) onCommitted(text string) {
	index, appended := p.timeline.OnCommitted(text)
	if !appended {
		return
	}
	p.metrics.RecordSegmentCreated()

	seg, _ := p.timeline.Segment(index)
	if err := p.publisher.PublishCommitted(context.Background(), p.cfg.SessionID, models.SegmentCommitted{
		EventType: "segment.committed",
		SessionID: p.cfg.SessionID,
		Index:     seg.Index,
		Text:      seg.Text,
		Timestamp: seg.Timestamp,
		EmittedAt: time.Now().UnixMilli(),
	}); err != nil {
		p.log.Warn().Err(err).Int("segmentIndex", index).Msg("failed to publish committed event")
	}

	if p.listener.OnSegment != nil {
		p.listener.OnSegment(seg)
	}

	p.dispatcher.Dispatch(index, text, p.cfg.SourceLang, p.cfg.TargetLang)
}

func (p *Pipeline) onTranslationDone(index int, res translate.Response, err error) {
	if err != nil {
		// Local to one segment: its translation stays blank, the
		// session keeps running.
		if p.listener.OnError != nil {
			p.listener.OnError(fmt.Errorf("translation failed for segment %d: %w", index, err))
		}
		return
	}

	if perr := p.publisher.PublishTranslated(context.Background(), p.cfg.SessionID, models.SegmentTranslated{
		EventType:          "segment.translated",
		SessionID:          p.cfg.SessionID,
		Index:              index,
		TranslatedText:     res.TranslatedText,
		DetectedSourceLang: res.DetectedSourceLang,
		EmittedAt:          time.Now().UnixMilli(),
	}); perr != nil {
		p.log.Warn().Err(perr).Int("segmentIndex", index).Msg("failed to publish translated event")
	}

	if p.listener.OnTranslation != nil {
		p.listener.OnTranslation(index, res.TranslatedText, res.DetectedSourceLang)
	}
}

func (p *Pipeline) onSessionError(err error) {
	p.log.Warn().Err(err).Msg("session error")
	if p.listener.OnError != nil {
		p.listener.OnError(err)
	}
}
