package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"tolk/internal/config"
	"tolk/internal/httpapi"
	"tolk/internal/observability"
	"tolk/internal/observability/logging"
	"tolk/internal/service/translate"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Config{
		Level:   cfg.Observability.LogLevel,
		Console: cfg.Service.Env == "dev",
		Service: "tolkd",
	})

	translator := translate.NewDeepL(cfg.Translate.UpstreamURL, cfg.Translate.APIKey, cfg.Translate.RequestTimeout)
	tokens := httpapi.NewUpstreamTokenSource(cfg.Scribe.TokenUpstreamURL, cfg.Scribe.APIKey, cfg.Translate.RequestTimeout)

	router := httpapi.NewRouter(translator, tokens)
	server := &http.Server{
		Addr:         ":" + cfg.Service.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 125 * time.Second, // above the translation request timeout
		IdleTimeout:  60 * time.Second,
	}

	obs := observability.NewServer(":" + cfg.Observability.MetricsPort)
	obs.Start()

	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("tolkd API started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down tolkd")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := obs.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("observability shutdown")
	}
}
