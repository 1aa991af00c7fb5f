package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDeepL_Translate(t *testing.T) {
	var gotAuth string
	var gotBody deepLRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{
				{"text": "hallo welt", "detected_source_language": "EN"},
			},
		})
	}))
	defer server.Close()

	d := NewDeepL(server.URL, "secret-key", 5*time.Second)

	res, err := d.Translate(context.Background(), Request{
		Text:       "hello world",
		SourceLang: "no",
		TargetLang: "de",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "hallo welt" {
		t.Errorf("expected 'hallo welt', got %q", res.TranslatedText)
	}
	if res.DetectedSourceLang != "EN" {
		t.Errorf("expected detected 'EN', got %q", res.DetectedSourceLang)
	}
	if gotAuth != "DeepL-Auth-Key secret-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if len(gotBody.Text) != 1 || gotBody.Text[0] != "hello world" {
		t.Errorf("unexpected text payload: %v", gotBody.Text)
	}
	// Norwegian remaps to the Bokmål code; target is upper-cased.
	if gotBody.SourceLang != "NB" {
		t.Errorf("expected source 'NB', got %q", gotBody.SourceLang)
	}
	if gotBody.TargetLang != "DE" {
		t.Errorf("expected target 'DE', got %q", gotBody.TargetLang)
	}
}

func TestDeepL_MissingKeyIsNotConfigured(t *testing.T) {
	d := NewDeepL("http://localhost", "", 5*time.Second)

	_, err := d.Translate(context.Background(), Request{Text: "hi", TargetLang: "ES"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestDeepL_UpstreamErrorIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	d := NewDeepL(server.URL, "key", 5*time.Second)

	if _, err := d.Translate(context.Background(), Request{Text: "hi", TargetLang: "ES"}); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestDeepL_EmptyTranslationsIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"translations": []any{}})
	}))
	defer server.Close()

	d := NewDeepL(server.URL, "key", 5*time.Second)

	if _, err := d.Translate(context.Background(), Request{Text: "hi", TargetLang: "ES"}); err == nil {
		t.Fatal("expected error for empty translations")
	}
}
