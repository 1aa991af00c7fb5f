// Command livecap runs the live transcription and translation pipeline
// against a PCM audio stream, printing segments as they commit and
// translations as they attach.
//
// Input is raw PCM16 little-endian mono read from a file or stdin; it
// stands in for a microphone. Use -mock to run without the streaming
// STT service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"tolk/internal/config"
	"tolk/internal/events"
	"tolk/internal/observability/logging"
	"tolk/internal/service/audio"
	"tolk/internal/service/pipeline"
	"tolk/internal/service/stt"
	"tolk/internal/service/stt/mock"
	"tolk/internal/service/stt/scribe"
	"tolk/internal/service/timeline"
	"tolk/internal/service/translate"
)

func main() {
	_ = godotenv.Load()

	input := flag.String("input", "-", "raw PCM16LE mono input file, or - for stdin")
	nativeRate := flag.Int("rate", 48000, "input sample rate in Hz")
	sourceLang := flag.String("source-lang", "", "source language code (empty for auto-detect)")
	targetLang := flag.String("target-lang", "", "target language code (default from config)")
	useMock := flag.Bool("mock", false, "use the scripted mock transcription session")
	realtime := flag.Bool("realtime", false, "pace input delivery to wall-clock speed")
	flag.Parse()

	cfg := config.Load()
	logging.Init(logging.Config{
		Level:   cfg.Observability.LogLevel,
		Console: true,
		Service: "livecap",
	})

	reader := os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("input", *input).Msg("cannot open input")
		}
		defer f.Close()
		reader = f
	}

	lang := *sourceLang
	if lang == "" {
		lang = cfg.Scribe.LanguageCode
	}
	target := *targetLang
	if target == "" {
		target = cfg.Translate.TargetLanguage
	}

	var session stt.Session
	if *useMock {
		session = mock.NewSession()
	} else {
		session = scribe.NewSession(scribe.Config{
			Endpoint:            cfg.Scribe.Endpoint,
			ModelID:             cfg.Scribe.ModelID,
			LanguageCode:        lang,
			AudioFormat:         cfg.Scribe.AudioFormat,
			CommitStrategy:      cfg.Scribe.CommitStrategy,
			VADSilenceThreshold: cfg.Scribe.VADSilenceThreshold,
		}, scribe.NewEndpointTokenProvider(cfg.Scribe.TokenURL, cfg.Translate.RequestTimeout))
	}

	translator := translate.NewClient(cfg.Translate.Endpoint, cfg.Translate.RequestTimeout)
	publisher := events.New(&events.Config{
		Enabled:         cfg.Kafka.Enabled,
		Brokers:         cfg.Kafka.Brokers,
		TopicCommitted:  cfg.Kafka.TopicCommitted,
		TopicTranslated: cfg.Kafka.TopicTranslated,
		Principal:       cfg.Kafka.Principal,
	})
	defer publisher.Close()

	device := audio.NewReaderDevice(reader, *nativeRate, *realtime)

	p := pipeline.New(device, session, translator, publisher, pipeline.Config{
		SourceLang:       lang,
		TargetLang:       target,
		TargetSampleRate: cfg.Audio.TargetSampleRate,
		ChunkSize:        cfg.Audio.ChunkSize,
	}, pipeline.Listener{
		OnSegment: func(seg timeline.Segment) {
			fmt.Printf("[%s] %s\n", timeline.FormatTimestamp(seg.Timestamp), timeline.Capitalize(seg.Text))
		},
		OnTranslation: func(index int, text, detected string) {
			fmt.Printf("      #%d -> %s\n", index, text)
		},
		OnError: func(err error) {
			log.Warn().Err(err).Msg("pipeline error")
		},
	})

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("pipeline start failed")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		device.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-sig:
	}

	p.Stop()
	p.DrainTranslations()

	segs := p.Timeline().Segments()
	fmt.Printf("\n%d segments:\n", len(segs))
	for _, seg := range segs {
		translated := seg.Translation
		if !seg.Translated {
			translated = "..."
		}
		fmt.Printf("[%s] %s | %s\n", timeline.FormatTimestamp(seg.Timestamp), timeline.Capitalize(seg.Text), translated)
	}
}
