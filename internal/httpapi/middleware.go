package httpapi

import (
	"net/http"
	"time"

	"tolk/internal/correlation"
	"tolk/internal/observability/logging"
)

// Correlation assigns every request a correlation identifier: reuses
// an incoming X-Correlation-ID unchanged, otherwise issues a fresh
// one. The identifier is echoed on the response and carried on the
// request context for downstream calls.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(correlation.Header)
		if cid == "" {
			cid = correlation.NewID()
		}
		w.Header().Set(correlation.Header, cid)
		next.ServeHTTP(w, r.WithContext(correlation.WithContext(r.Context(), cid)))
	})
}

// RequestLogger logs one line per request with the correlation
// identifier attached. Ping routes are skipped.
func RequestLogger(next http.Handler) http.Handler {
	logger := logging.WithComponent("httpapi")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/ping/liveness" || r.URL.Path == "/v1/ping/readiness" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Str("cid", correlation.FromContext(r.Context())).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
