package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tolk/internal/correlation"
	"tolk/internal/service/translate"
)

type stubTranslator struct {
	res translate.Response
	err error

	gotReq translate.Request
}

func (s *stubTranslator) Translate(ctx context.Context, req translate.Request) (translate.Response, error) {
	s.gotReq = req
	return s.res, s.err
}

type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) Issue(ctx context.Context) (string, error) {
	return s.token, s.err
}

func TestPingRoutes(t *testing.T) {
	router := NewRouter(&stubTranslator{}, stubTokens{})

	for _, path := range []string{"/v1/ping/liveness", "/v1/ping/readiness"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestTranslate_Success(t *testing.T) {
	translator := &stubTranslator{res: translate.Response{TranslatedText: "hola", DetectedSourceLang: "EN"}}
	router := NewRouter(translator, stubTokens{})

	body := `{"text":"hello","targetLang":"ES"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/translate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res translate.Response
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TranslatedText != "hola" || res.DetectedSourceLang != "EN" {
		t.Errorf("unexpected response: %+v", res)
	}
	if translator.gotReq.Text != "hello" || translator.gotReq.TargetLang != "ES" {
		t.Errorf("unexpected upstream request: %+v", translator.gotReq)
	}
}

func TestTranslate_Validation(t *testing.T) {
	router := NewRouter(&stubTranslator{}, stubTokens{})

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing text", `{"targetLang":"ES"}`},
		{"blank text", `{"text":"   ","targetLang":"ES"}`},
		{"missing target", `{"text":"hello"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/translate", strings.NewReader(tc.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTranslate_NotConfigured(t *testing.T) {
	router := NewRouter(&stubTranslator{err: translate.ErrNotConfigured}, stubTokens{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/translate",
		strings.NewReader(`{"text":"hello","targetLang":"ES"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestTranslate_UpstreamFailure(t *testing.T) {
	router := NewRouter(&stubTranslator{err: errors.New("timeout")}, stubTokens{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/translate",
		strings.NewReader(`{"text":"hello","targetLang":"ES"}`)))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestToken_Success(t *testing.T) {
	router := NewRouter(&stubTranslator{}, stubTokens{token: "tok-1"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/scribe/token", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res["token"] != "tok-1" {
		t.Errorf("expected token tok-1, got %q", res["token"])
	}
}

func TestToken_NotConfigured(t *testing.T) {
	router := NewRouter(&stubTranslator{}, stubTokens{err: ErrTokenNotConfigured})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/scribe/token", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCorrelation_EchoesIncomingID(t *testing.T) {
	router := NewRouter(&stubTranslator{}, stubTokens{token: "tok"})

	req := httptest.NewRequest(http.MethodPost, "/v1/scribe/token", nil)
	req.Header.Set(correlation.Header, "cid-fixed")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(correlation.Header); got != "cid-fixed" {
		t.Errorf("expected incoming correlation id echoed, got %q", got)
	}
}

func TestCorrelation_GeneratesIDWhenAbsent(t *testing.T) {
	router := NewRouter(&stubTranslator{}, stubTokens{token: "tok"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/scribe/token", nil))

	if rec.Header().Get(correlation.Header) == "" {
		t.Error("expected generated correlation id on response")
	}
}

func TestErrorPayloadCarriesCorrelationID(t *testing.T) {
	router := NewRouter(&stubTranslator{err: errors.New("down")}, stubTokens{})

	req := httptest.NewRequest(http.MethodPost, "/v1/translate",
		strings.NewReader(`{"text":"hello","targetLang":"ES"}`))
	req.Header.Set(correlation.Header, "cid-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var res map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res["cid"] != "cid-9" {
		t.Errorf("expected cid in error payload, got %q", res["cid"])
	}
}
