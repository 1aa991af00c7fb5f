package translate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tolk/internal/observability/logging"
	"tolk/internal/observability/metrics"
)

// Writer is the translation write-back target, satisfied by
// *timeline.Timeline.
type Writer interface {
	SetTranslation(index int, text string) error
}

// DoneFunc is called exactly once per dispatched request after the
// write-back attempt, with the segment index and the request outcome.
type DoneFunc func(index int, res Response, err error)

// Dispatcher issues one independent asynchronous translation request
// per committed segment, keyed by the segment's stable index.
// Requests complete in arbitrary order; each result lands on exactly
// the segment it was dispatched for. A failed request leaves that one
// segment untranslated and is not retried; it never blocks later
// dispatches.
type Dispatcher struct {
	translator Translator
	writer     Writer
	onDone     DoneFunc
	metrics    *metrics.Metrics
	log        zerolog.Logger
	wg         sync.WaitGroup
}

// NewDispatcher creates a dispatcher writing results into writer.
// onDone may be nil.
func NewDispatcher(translator Translator, writer Writer, onDone DoneFunc) *Dispatcher {
	return &Dispatcher{
		translator: translator,
		writer:     writer,
		onDone:     onDone,
		metrics:    metrics.DefaultMetrics,
		log:        logging.WithComponent("translate"),
	}
}

// Dispatch fires one translation request for the segment at index.
// Fire-and-forget: the call returns immediately. sourceLang "auto" or
// "" requests auto-detection. Requests deliberately outlive the
// session that dispatched them; a late result still lands on its
// segment, and the client timeout bounds the wait.
func (d *Dispatcher) Dispatch(index int, text, sourceLang, targetLang string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if strings.EqualFold(sourceLang, "auto") {
		sourceLang = ""
	}

	req := Request{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}

	d.metrics.RecordTranslationDispatched()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		start := time.Now()

		res, err := d.translator.Translate(context.Background(), req)
		d.metrics.RecordTranslationResult(err, time.Since(start).Seconds())
		if err != nil {
			d.log.Warn().Err(err).Int("segmentIndex", index).Msg("translation failed")
			if d.onDone != nil {
				d.onDone(index, Response{}, err)
			}
			return
		}

		if werr := d.writer.SetTranslation(index, res.TranslatedText); werr != nil {
			d.log.Warn().Err(werr).Int("segmentIndex", index).Msg("translation write-back rejected")
			if d.onDone != nil {
				d.onDone(index, res, werr)
			}
			return
		}

		if d.onDone != nil {
			d.onDone(index, res, nil)
		}
	}()
}

// Wait blocks until every dispatched request has completed. Intended
// for tests and orderly process exit; a live session never waits.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
