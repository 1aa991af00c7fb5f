// Package httpapi provides the tolkd HTTP API: the single-use token
// proxy, the translation endpoint and ping routes.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tolk/internal/correlation"
	"tolk/internal/observability/logging"
	"tolk/internal/service/translate"
)

// NewRouter constructs the HTTP router for tolkd.
func NewRouter(translator translate.Translator, tokens TokenSource) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(Correlation)
	r.Use(RequestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/ping/liveness", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		r.Get("/ping/readiness", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
		})

		r.Post("/translate", handleTranslate(translator))
		r.Post("/scribe/token", handleToken(tokens))
	})

	return r
}

func handleTranslate(translator translate.Translator) http.HandlerFunc {
	log := logging.WithComponent("httpapi")
	return func(w http.ResponseWriter, r *http.Request) {
		var req translate.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Text) == "" || req.TargetLang == "" {
			writeError(w, r, http.StatusBadRequest, "text and targetLang are required")
			return
		}

		res, err := translator.Translate(r.Context(), req)
		if err != nil {
			if errors.Is(err, translate.ErrNotConfigured) {
				writeError(w, r, http.StatusBadRequest, "translation api key not configured")
				return
			}
			log.Error().Err(err).Str("cid", correlation.FromContext(r.Context())).Msg("translation failed")
			writeError(w, r, http.StatusBadGateway, "translation failed")
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func handleToken(tokens TokenSource) http.HandlerFunc {
	log := logging.WithComponent("httpapi")
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := tokens.Issue(r.Context())
		if err != nil {
			if errors.Is(err, ErrTokenNotConfigured) {
				writeError(w, r, http.StatusBadRequest, "speech api key not configured")
				return
			}
			log.Error().Err(err).Str("cid", correlation.FromContext(r.Context())).Msg("token issue failed")
			writeError(w, r, http.StatusBadRequest, "failed to obtain streaming token")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"cid":   correlation.FromContext(r.Context()),
	})
}
